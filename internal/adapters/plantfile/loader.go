package plantfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
)

// Format is a plant file encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ErrInvalidPlantFile wraps any read, decode or validation failure of a plant file
type ErrInvalidPlantFile struct {
	Path   string
	Reason string
	Err    error
}

func (e *ErrInvalidPlantFile) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("plant file %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("plant file %s: %s", e.Path, e.Reason)
}

func (e *ErrInvalidPlantFile) Unwrap() error { return e.Err }

var validate = validator.New()

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", &ErrInvalidPlantFile{Path: path, Reason: "unsupported extension, want .yaml, .yml or .json"}
	}
}

// Load reads, decodes and validates a plant definition file
func Load(path string) (catalog.Definition, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return catalog.Definition{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return catalog.Definition{}, &ErrInvalidPlantFile{Path: path, Reason: "read failed", Err: err}
	}

	def, err := Parse(data, format)
	if err != nil {
		return catalog.Definition{}, &ErrInvalidPlantFile{Path: path, Reason: "decode failed", Err: err}
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := Validate(def); err != nil {
		return catalog.Definition{}, &ErrInvalidPlantFile{Path: path, Reason: "invalid definition", Err: err}
	}
	return def, nil
}

// Parse decodes a definition without validating it
func Parse(data []byte, format Format) (catalog.Definition, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatJSON:
		return parseJSON(data)
	default:
		return catalog.Definition{}, fmt.Errorf("unsupported format: %s", format)
	}
}

// Validate checks field constraints and that every name reference resolves
func Validate(def catalog.Definition) error {
	if err := validate.Struct(def); err != nil {
		return formatValidationError(err)
	}
	if _, err := catalog.Build(def); err != nil {
		return err
	}
	return nil
}

// Resolve returns the definition of a plant file when one is given, otherwise the
// named built-in plant
func Resolve(plantFile, builtin string) (catalog.Definition, error) {
	if plantFile != "" {
		return Load(plantFile)
	}
	def, ok := catalog.BuiltinDefinition(builtin)
	if !ok {
		return catalog.Definition{}, fmt.Errorf("unknown built-in plant: %s", builtin)
	}
	return def, nil
}

func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, fmt.Sprintf("%s failed %s (value: '%v')", e.Namespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}
