package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
)

// FieldProblem is one failed validation rule
type FieldProblem struct {
	Field string
	Rule  string
	Value interface{}
}

// ErrInvalidConfig lists every field that failed validation
type ErrInvalidConfig struct {
	Problems []FieldProblem
}

func (e *ErrInvalidConfig) Error() string {
	lines := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		lines = append(lines, fmt.Sprintf("field '%s' failed validation: %s (value: '%v')", p.Field, p.Rule, p.Value))
	}
	return "validation failed:\n  " + strings.Join(lines, "\n  ")
}

// Validator wraps go-playground/validator with the plant rules
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the plantfile and builtinplant rules
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("plantfile", validatePlantFile)
	_ = v.RegisterValidation("builtinplant", validateBuiltinPlant)
	return &Validator{validate: v}
}

// validatePlantFile accepts the extensions the plant file loader understands
func validatePlantFile(fl validator.FieldLevel) bool {
	switch strings.ToLower(filepath.Ext(fl.Field().String())) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}

func validateBuiltinPlant(fl validator.FieldLevel) bool {
	_, ok := catalog.BuiltinDefinitions[fl.Field().String()]
	return ok
}

// BuiltinPlants lists the names accepted by simulation.plant
func BuiltinPlants() []string {
	names := make([]string, 0, len(catalog.BuiltinDefinitions))
	for name := range catalog.BuiltinDefinitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks validation tags and collects every failure
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	invalid := &ErrInvalidConfig{}
	for _, fe := range fieldErrs {
		invalid.Problems = append(invalid.Problems, FieldProblem{Field: fe.Namespace(), Rule: fe.Tag(), Value: fe.Value()})
	}
	return invalid
}

// ValidateConfig validates the entire configuration
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}
