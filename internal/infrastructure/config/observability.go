package config

import (
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
)

// LoggingConfig controls the logsink used by the CLI and the daemon
type LoggingConfig struct {
	// debug, info, warn or error
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`

	// text lines or one JSON object per line
	Format string `mapstructure:"format" validate:"required,oneof=json text"`

	Output string `mapstructure:"output" validate:"required,oneof=stdout stderr"`
}

// Writer resolves Output to a stream; anything but stdout logs to stderr
func (c LoggingConfig) Writer() io.Writer {
	if c.Output == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// MetricsConfig controls the Prometheus endpoint of episode runs and the daemon
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port 0 picks a free port
	Port int `mapstructure:"port" validate:"omitempty,min=1024,max=65535"`

	Host string `mapstructure:"host"`
	Path string `mapstructure:"path"`
}

// ListenAddress joins host and port
func (c MetricsConfig) ListenAddress() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Endpoint is the scrape URL for the configured address
func (c MetricsConfig) Endpoint() string {
	return fmt.Sprintf("http://%s%s", c.ListenAddress(), c.Path)
}
