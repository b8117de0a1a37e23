package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/metrics"
	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/commands"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/policies"
)

// NewSimulateCommand creates the simulate command with subcommands
func NewSimulateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run simulation episodes in process",
		Long: `Run episodes of the environment with a built-in policy and record them.

Examples:
  jobshop simulate run
  jobshop simulate run --policy random --seed 42 --episodes 5
  jobshop simulate run --plant simple-chain --goal finished --trace --tick-rate 2`,
	}

	cmd.AddCommand(newSimulateRunCommand())

	return cmd
}

func newSimulateRunCommand() *cobra.Command {
	var (
		policyName    string
		seed          int64
		episodes      int
		horizon       int
		maxBuffer     int
		goal          string
		randomSubgoal bool
		tickRate      float64
		trace         bool
		noHistory     bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run episodes from reset to horizon",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(!noHistory)
			if err != nil {
				return err
			}
			defer a.Close()

			def, err := a.definition()
			if err != nil {
				return err
			}

			envCfg := a.cfg.Simulation.EnvironmentConfig()
			if horizon > 0 {
				envCfg.Horizon = horizon
			}
			if maxBuffer > 0 {
				envCfg.MaxBuffer = maxBuffer
			}
			if goal != "" {
				envCfg.Goal = goal
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = a.context(ctx)

			if a.cfg.Metrics.Enabled {
				stopMetrics, err := serveMetrics(a)
				if err != nil {
					return err
				}
				defer stopMetrics()
			}

			for i := 0; i < episodes; i++ {
				command := &commands.RunEpisodeCommand{
					Definition:    def,
					Config:        envCfg,
					MaxPasses:     a.cfg.Simulation.PropagationMaxPasses,
					Policy:        policyName,
					Seed:          seed + int64(i),
					RandomSubgoal: randomSubgoal,
					TickRate:      tickRate,
				}
				if trace {
					command.Trace = os.Stdout
				}

				result, runErr := mediator.SendAs[*commands.RunEpisodeResponse](ctx, a.mediator, command)
				if result != nil {
					printEpisodeResult(result)
				}
				if runErr != nil {
					return fmt.Errorf("episode failed: %w", runErr)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", "greedy",
		fmt.Sprintf("Policy choosing actions: %v", policies.Names()))
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for the random policy and subgoal draw; episode i uses seed+i")
	cmd.Flags().IntVar(&episodes, "episodes", 1, "Number of episodes to run")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "Ticks per episode (default from config)")
	cmd.Flags().IntVar(&maxBuffer, "max-buffer", 0, "Global buffer capacity (default from config)")
	cmd.Flags().StringVar(&goal, "goal", "", "Goal part type for potential shaping")
	cmd.Flags().BoolVar(&randomSubgoal, "random-subgoal", false, "Draw a random non-elementary goal per episode")
	cmd.Flags().Float64Var(&tickRate, "tick-rate", 0, "Ticks per second for live runs (0 = unpaced)")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print the plant status after every tick")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record the episode in the database")

	return cmd
}

func printEpisodeResult(r *commands.RunEpisodeResponse) {
	fmt.Printf("Episode %s [%s]\n", r.EpisodeID, r.Status)
	fmt.Printf("  Plant:        %s\n", r.Plant)
	fmt.Printf("  Policy:       %s\n", r.Policy)
	fmt.Printf("  Goal:         %s\n", valueOrNone(r.Goal))
	fmt.Printf("  Ticks:        %d\n", r.Ticks)
	fmt.Printf("  Total Reward: %.3f\n", r.TotalReward)
	fmt.Printf("  Final Profit: %.3f\n", r.FinalProfit)
	fmt.Printf("  Sold:         %d\n", r.Sold)
}

// serveMetrics exposes the registry while a command runs
func serveMetrics(a *app) (func(), error) {
	server, err := metrics.NewServer(a.cfg.Metrics.Host, a.cfg.Metrics.Port, a.cfg.Metrics.Path)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := server.Serve(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}()
	fmt.Printf("Metrics available at http://%s%s\n", server.Addr(), a.cfg.Metrics.Path)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}
