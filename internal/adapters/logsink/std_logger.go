package logsink

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andrescamacho/jobshop-sim/internal/application/logging"
	"github.com/andrescamacho/jobshop-sim/internal/domain/shared"
	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/config"
)

var levelRank = map[string]int{
	logging.LevelDebug: 0,
	logging.LevelInfo:  1,
	logging.LevelWarn:  2,
	logging.LevelError: 3,
}

// StdLogger writes application log entries as text lines or JSON objects
type StdLogger struct {
	mu        sync.Mutex
	out       io.Writer
	minRank   int
	json      bool
	component string
	clock     shared.Clock
}

// NewStdLogger creates a logger writing entries at or above level. Format is
// "text" or "json".
func NewStdLogger(out io.Writer, level, format, component string, clock shared.Clock) *StdLogger {
	if clock == nil {
		clock = shared.NewSystemClock()
	}
	rank, ok := levelRank[strings.ToUpper(level)]
	if !ok {
		rank = levelRank[logging.LevelInfo]
	}
	return &StdLogger{
		out:       out,
		minRank:   rank,
		json:      format == "json",
		component: component,
		clock:     clock,
	}
}

// FromConfig builds a logger from the logging section
func FromConfig(cfg config.LoggingConfig, component string) *StdLogger {
	return NewStdLogger(cfg.Writer(), cfg.Level, cfg.Format, component, nil)
}

// Log implements logging.Logger
func (l *StdLogger) Log(level, message string, metadata map[string]interface{}) {
	level = strings.ToUpper(level)
	rank, ok := levelRank[level]
	if !ok {
		rank = levelRank[logging.LevelInfo]
	}
	if rank < l.minRank {
		return
	}

	now := l.clock.Now()
	var line string
	if l.json {
		line = l.formatJSON(now, level, message, metadata)
	} else {
		line = l.formatText(now, level, message, metadata)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, line)
}

func (l *StdLogger) formatText(now time.Time, level, message string, metadata map[string]interface{}) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] %s: %s", now.Format(time.RFC3339), l.component, level, message)
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, metadata[k])
	}
	return b.String()
}

func (l *StdLogger) formatJSON(now time.Time, level, message string, metadata map[string]interface{}) string {
	entry := map[string]interface{}{
		"time":      now.Format(time.RFC3339),
		"level":     level,
		"component": l.component,
		"message":   message,
	}
	if len(metadata) > 0 {
		entry["metadata"] = metadata
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return l.formatText(now, level, message, map[string]interface{}{"marshal_error": err.Error()})
	}
	return string(data)
}
