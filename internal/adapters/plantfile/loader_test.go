package plantfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/plantfile"
	"github.com/andrescamacho/jobshop-sim/internal/domain/catalog"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ShippedYAMLMatchesBuiltins(t *testing.T) {
	tests := []struct {
		file    string
		builtin func() catalog.Definition
	}{
		{file: "simple_chain.yaml", builtin: catalog.SimpleChainDefinition},
		{file: "reference_plant.yaml", builtin: catalog.ReferenceDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			// Act
			def, err := plantfile.Load(filepath.Join("..", "..", "..", "configs", tt.file))

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.builtin(), def)
		})
	}
}

func TestLoad_JSONWithCountedInputs(t *testing.T) {
	// Arrange
	path := writeFile(t, "bolts.json", `{
		"part_types": [
			{"name": "bolt", "cost": 1},
			{"name": "plate", "cost": 3},
			{"name": "frame", "value": 40, "finished": true}
		],
		"transformations": [
			{"name": "weld", "inputs": {"bolt": 2, "plate": 1}, "output": "frame", "duration": 4}
		],
		"machine_types": [{"name": "welder", "slots": 2, "transformations": ["weld"]}],
		"machines": [{"id": "w1", "type": "welder"}]
	}`)

	// Act
	def, err := plantfile.Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "bolts", def.Name, "name defaults to the file stem")
	require.Len(t, def.Transformations, 1)
	assert.Equal(t, []string{"bolt", "bolt", "plate"}, def.Transformations[0].Inputs)
	assert.True(t, def.PartTypes[2].Finished)
	assert.Equal(t, 2, def.MachineTypes[0].Slots)
}

func TestLoad_ShippedJSONMatchesSimpleChain(t *testing.T) {
	// Act
	def, err := plantfile.Load(filepath.Join("..", "..", "..", "configs", "simple_chain.json"))

	// Assert
	require.NoError(t, err)
	expected := catalog.SimpleChainDefinition()
	expected.Name = "simple-chain-json"
	assert.Equal(t, expected, def)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		contains string
	}{
		{
			name:     "unsupported extension",
			file:     "plant.toml",
			content:  "",
			contains: "unsupported extension",
		},
		{
			name:     "unknown yaml key",
			file:     "plant.yaml",
			content:  "name: x\npart_types: [{name: a}]\nconveyors: []\n",
			contains: "decode failed",
		},
		{
			name:     "malformed json",
			file:     "plant.json",
			content:  `{"part_types": [`,
			contains: "malformed JSON",
		},
		{
			name:     "non-positive input count",
			file:     "plant.json",
			content:  `{"part_types": [{"name": "a"}], "transformations": [{"name": "t", "inputs": {"a": 0}, "output": "a", "duration": 1}]}`,
			contains: "count must be positive",
		},
		{
			name:     "input count above cap",
			file:     "plant.json",
			content:  `{"part_types": [{"name": "a"}], "transformations": [{"name": "t", "inputs": {"a": 1e9}, "output": "a", "duration": 1}]}`,
			contains: "count must be at most 1000",
		},
		{
			name:     "fractional input count",
			file:     "plant.json",
			content:  `{"part_types": [{"name": "a"}], "transformations": [{"name": "t", "inputs": {"a": 1.5}, "output": "a", "duration": 1}]}`,
			contains: "must be an integer",
		},
		{
			name:     "fractional duration",
			file:     "plant.json",
			content:  `{"part_types": [{"name": "a"}, {"name": "b", "value": 1}], "transformations": [{"name": "t", "inputs": ["a"], "output": "b", "duration": 2.7}]}`,
			contains: "duration: must be an integer",
		},
		{
			name:     "fractional slots",
			file:     "plant.json",
			content:  `{"part_types": [{"name": "a"}], "machine_types": [{"name": "m", "slots": 1.5, "transformations": []}]}`,
			contains: "slots: must be an integer",
		},
		{
			name:     "string duration",
			file:     "plant.json",
			content:  `{"part_types": [{"name": "a"}, {"name": "b", "value": 1}], "transformations": [{"name": "t", "inputs": ["a"], "output": "b", "duration": "2"}]}`,
			contains: "must be a number",
		},
		{
			name:     "zero duration",
			file:     "plant.yaml",
			content:  "name: x\npart_types: [{name: a}, {name: b, value: 1}]\ntransformations: [{name: t, inputs: [a], output: b, duration: 0}]\n",
			contains: "Duration",
		},
		{
			name:     "unknown part type reference",
			file:     "plant.yaml",
			content:  "name: x\npart_types: [{name: a}]\ntransformations: [{name: t, inputs: [ghost], output: a, duration: 1}]\n",
			contains: "ghost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			path := writeFile(t, tt.file, tt.content)

			// Act
			_, err := plantfile.Load(path)

			// Assert
			require.Error(t, err)
			var invalid *plantfile.ErrInvalidPlantFile
			require.ErrorAs(t, err, &invalid)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	// Act
	_, err := plantfile.Load(filepath.Join(t.TempDir(), "absent.yaml"))

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestResolve(t *testing.T) {
	// Act
	builtin, err := plantfile.Resolve("", "simple-chain")
	require.NoError(t, err)
	_, unknownErr := plantfile.Resolve("", "moon-base")

	// Assert
	assert.Equal(t, catalog.SimpleChainDefinition(), builtin)
	assert.Contains(t, unknownErr.Error(), "moon-base")
}

func TestEncodeYAML_RoundTripsThroughLoad(t *testing.T) {
	// Arrange
	data, err := plantfile.EncodeYAML(catalog.ReferenceDefinition())
	require.NoError(t, err)
	path := writeFile(t, "exported.yaml", string(data))

	// Act
	def, err := plantfile.Load(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, catalog.ReferenceDefinition(), def)
}

func TestToMap_UsesPlantFileKeys(t *testing.T) {
	// Act
	out, err := plantfile.ToMap(catalog.SimpleChainDefinition())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "simple-chain", out["name"])
	partTypes, ok := out["part_types"].([]interface{})
	require.True(t, ok)
	require.Len(t, partTypes, 3)
	assert.Equal(t, "raw", partTypes[0].(map[string]interface{})["name"])
}
