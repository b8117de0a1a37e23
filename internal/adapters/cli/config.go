package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/config"
)

// NewConfigCommand creates the config command with subcommands
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration settings",
		Long: `Inspect jobshop configuration settings.

Configuration is loaded from multiple sources with priority:
1. Environment variables (JS_* prefix, DATABASE_URL)
2. Config file (config.yaml)
3. Default values

Examples:
  jobshop config show
  jobshop config show --config ./configs/config.yaml`,
	}

	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				fmt.Printf("Warning: Failed to load config: %v\n", err)
				fmt.Println("Using default configuration.")
				cfg = config.LoadConfigOrDefault("")
			}

			fmt.Println("jobshop Configuration")
			fmt.Println("=====================")

			fmt.Println("Simulation:")
			if cfg.Simulation.PlantFile != "" {
				fmt.Printf("  Plant File:       %s\n", cfg.Simulation.PlantFile)
			} else {
				fmt.Printf("  Plant:            %s (built-in)\n", cfg.Simulation.Plant)
			}
			fmt.Printf("  Max Buffer:       %d\n", cfg.Simulation.MaxBuffer)
			fmt.Printf("  Horizon:          %d\n", cfg.Simulation.Horizon)
			fmt.Printf("  Gamma:            %g\n", cfg.Simulation.Gamma)
			fmt.Printf("  Goal:             %s\n", valueOrNone(cfg.Simulation.Goal))
			fmt.Printf("  Goal One-Hot:     %t\n", cfg.Simulation.IsGoalConditioned())
			fmt.Printf("  Repeat Routing:   %t\n", cfg.Simulation.RepeatRouting)
			fmt.Printf("  Require Support:  %t\n", cfg.Simulation.RequireSupport)
			fmt.Printf("  Max Passes:       %d\n", cfg.Simulation.PropagationMaxPasses)

			fmt.Println("\nDatabase:")
			fmt.Printf("  Type:             %s\n", cfg.Database.Type)
			switch {
			case cfg.Database.URL != "":
				fmt.Printf("  URL:              %s\n", maskPassword(cfg.Database.URL))
			case cfg.Database.Type == "sqlite":
				fmt.Printf("  Path:             %s\n", cfg.Database.Path)
			default:
				fmt.Printf("  Host:             %s\n", cfg.Database.Host)
				fmt.Printf("  Port:             %d\n", cfg.Database.Port)
				fmt.Printf("  Database:         %s\n", cfg.Database.Name)
				fmt.Printf("  User:             %s\n", cfg.Database.User)
			}

			fmt.Println("\nDaemon:")
			fmt.Printf("  Address:          %s\n", cfg.Server.Address)
			fmt.Printf("  PID File:         %s\n", cfg.Server.PIDFile)
			fmt.Printf("  Max Sessions:     %d\n", cfg.Server.MaxSessions)
			fmt.Printf("  Idle Timeout:     %s\n", cfg.Server.SessionIdleTimeout)

			fmt.Println("\nMetrics:")
			fmt.Printf("  Enabled:          %t\n", cfg.Metrics.Enabled)
			fmt.Printf("  Endpoint:         %s\n", cfg.Metrics.Endpoint())

			fmt.Println("\nLogging:")
			fmt.Printf("  Level:            %s\n", cfg.Logging.Level)
			fmt.Printf("  Format:           %s\n", cfg.Logging.Format)
			fmt.Printf("  Output:           %s\n", cfg.Logging.Output)

			return nil
		},
	}

	return cmd
}

// maskPassword hides the password of a database URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, has := u.User.Password(); has {
		u.User = url.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
