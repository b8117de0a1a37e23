package logsink_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/logsink"
	"github.com/andrescamacho/jobshop-sim/internal/application/logging"
	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
)

var start = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestStdLogger_TextFormatSortsMetadata(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logsink.NewStdLogger(&buf, "info", "text", "runner", shared.NewSteppingClock(start, time.Second))

	// Act
	logger.Log(logging.LevelInfo, "[Episode] Finished", map[string]interface{}{"ticks": 50, "plant": "reference"})

	// Assert
	assert.Equal(t, "[2025-03-01T12:00:00Z] [runner] INFO: [Episode] Finished plant=reference ticks=50\n", buf.String())
}

func TestStdLogger_FiltersBelowLevel(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logsink.NewStdLogger(&buf, "warn", "text", "daemon", nil)

	// Act
	logger.Log(logging.LevelDebug, "tick", nil)
	logger.Log(logging.LevelInfo, "step", nil)
	logger.Log(logging.LevelError, "failed", nil)

	// Assert
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "ERROR: failed")
}

func TestStdLogger_JSONFormat(t *testing.T) {
	// Arrange
	var buf bytes.Buffer
	logger := logsink.NewStdLogger(&buf, "debug", "json", "sessions", shared.NewSteppingClock(start, time.Second))

	// Act
	logger.Log("debug", "[Session] Created", map[string]interface{}{"session_id": "reference-0a1b2c3d"})

	// Assert
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "sessions", entry["component"])
	assert.Equal(t, "[Session] Created", entry["message"])
	assert.Equal(t, "2025-03-01T12:00:00Z", entry["time"])
	assert.Equal(t, map[string]interface{}{"session_id": "reference-0a1b2c3d"}, entry["metadata"])
}
