package config

import "time"

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Simulation defaults
	if cfg.Simulation.PlantFile == "" && cfg.Simulation.Plant == "" {
		cfg.Simulation.Plant = "reference"
	}
	if cfg.Simulation.MaxBuffer == 0 {
		cfg.Simulation.MaxBuffer = 10
	}
	if cfg.Simulation.Horizon == 0 {
		cfg.Simulation.Horizon = 50
	}
	if cfg.Simulation.Gamma == 0 {
		cfg.Simulation.Gamma = 0.99
	}
	if cfg.Simulation.GoalConditioned == nil {
		enabled := true
		cfg.Simulation.GoalConditioned = &enabled
	}
	if cfg.Simulation.PropagationMaxPasses == 0 {
		cfg.Simulation.PropagationMaxPasses = 1000
	}

	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Type == "sqlite" && cfg.Database.Path == "" {
		cfg.Database.Path = "jobshop.db"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "jobshop"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "jobshop"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = "localhost:50061"
	}
	if cfg.Server.PIDFile == "" {
		cfg.Server.PIDFile = "/tmp/jobshop-daemon.pid"
	}
	if cfg.Server.MaxSessions == 0 {
		cfg.Server.MaxSessions = 64
	}
	if cfg.Server.SessionIdleTimeout == 0 {
		cfg.Server.SessionIdleTimeout = 30 * time.Minute
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}

	// Metrics defaults
	if cfg.Metrics.Port == 0 {
		cfg.Metrics.Port = 9090
	}
	if cfg.Metrics.Host == "" {
		cfg.Metrics.Host = "localhost"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}
