package plantfile

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
)

// parseYAML decodes a definition, rejecting unknown keys
func parseYAML(data []byte) (catalog.Definition, error) {
	var def catalog.Definition
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&def); err != nil {
		return catalog.Definition{}, err
	}
	return def, nil
}

// EncodeYAML renders a definition in the plant file layout
func EncodeYAML(def catalog.Definition) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(def); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToMap renders a definition as generic maps and lists in the plant file layout
func ToMap(def catalog.Definition) (map[string]interface{}, error) {
	data, err := EncodeYAML(def)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
