package config

import "time"

// ServerConfig holds the simulation daemon configuration
type ServerConfig struct {
	// gRPC listen address (host:port)
	Address string `mapstructure:"address" validate:"required"`

	// PID file location
	PIDFile string `mapstructure:"pid_file"`

	// Maximum number of concurrent simulation sessions
	MaxSessions int `mapstructure:"max_sessions" validate:"min=1"`

	// Sessions idle for longer than this are closed
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" validate:"required"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
}
