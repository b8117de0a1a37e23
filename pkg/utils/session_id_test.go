package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateSessionID(t *testing.T) {
	tests := []struct {
		plant  string
		prefix string
	}{
		{plant: "reference", prefix: "reference"},
		{plant: "Simple Chain", prefix: "simple-chain"},
		{plant: "  plant_7 ", prefix: "plant-7"},
		{plant: "", prefix: "session"},
	}

	for _, tt := range tests {
		t.Run(tt.plant, func(t *testing.T) {
			// Act
			id := GenerateSessionID(tt.plant)

			// Assert
			assert.Regexp(t, regexp.MustCompile("^"+tt.prefix+"-[0-9a-f]{8}$"), id)
		})
	}
}

func TestGenerateSessionID_Unique(t *testing.T) {
	assert.NotEqual(t, GenerateSessionID("x"), GenerateSessionID("x"))
}
