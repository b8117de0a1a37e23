package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/jobshop-sim/internal/infrastructure/config"
)

var (
	// Global flags
	configPath    string
	plantFile     string
	plantName     string
	daemonAddress string
	verbose       bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jobshop",
		Short: "jobshop - flexible job-shop plant simulator",
		Long: `jobshop simulates manufacturing plants whose machines transform typed parts
through time. It inspects plant definitions, runs episodes with built-in policies,
keeps their history and drives the simulation daemon.

Examples:
  jobshop catalog show --plant simple-chain
  jobshop graph distance a1 fp2
  jobshop simulate run --policy greedy --horizon 100 --trace
  jobshop episodes list --limit 10
  jobshop remote run --policy random --seed 7`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to config.yaml (default: search ., ./configs, /etc/jobshop)")
	rootCmd.PersistentFlags().StringVar(&plantFile, "plant-file", "",
		"Plant definition file (.yaml, .yml or .json); overrides --plant")
	rootCmd.PersistentFlags().StringVar(&plantName, "plant", "",
		"Built-in plant: "+strings.Join(config.BuiltinPlants(), ", ")+" (default from config)")
	rootCmd.PersistentFlags().StringVar(&daemonAddress, "address", getDefaultDaemonAddress(),
		"Simulation daemon address (host:port or unix:<path>)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	// Add command groups
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewCatalogCommand())
	rootCmd.AddCommand(NewGraphCommand())
	rootCmd.AddCommand(NewSimulateCommand())
	rootCmd.AddCommand(NewEpisodesCommand())
	rootCmd.AddCommand(NewRemoteCommand())

	return rootCmd
}

// getDefaultDaemonAddress returns the daemon address from the environment, if set
func getDefaultDaemonAddress() string {
	if addr := os.Getenv("JOBSHOP_DAEMON_ADDRESS"); addr != "" {
		return addr
	}
	return ""
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
