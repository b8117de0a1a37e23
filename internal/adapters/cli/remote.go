package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	grpcadapter "github.com/andrescamacho/jobshop-sim/internal/adapters/grpc"
	"github.com/andrescamacho/jobshop-sim/internal/adapters/plantfile"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/policies"
)

// NewRemoteCommand creates the remote command with subcommands
func NewRemoteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Drive the simulation daemon",
		Long: `Drive sessions of a running jobshop-daemon over gRPC, the way an external
learner would.

Examples:
  jobshop remote run --policy greedy
  jobshop remote run --plant-file ./configs/simple_chain.json --horizon 20 --trace
  jobshop remote sessions --address localhost:50061`,
	}

	cmd.AddCommand(newRemoteRunCommand())
	cmd.AddCommand(newRemoteSessionsCommand())

	return cmd
}

func newRemoteRunCommand() *cobra.Command {
	var (
		policyName string
		seed       int64
		horizon    int
		goal       string
		trace      bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one episode on a remote session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, a, err := connectDaemon()
			if err != nil {
				return err
			}
			defer client.Close()
			defer a.Close()

			policy, err := policies.New(policyName, seed)
			if err != nil {
				return err
			}

			opts := grpcadapter.SessionOptions{Plant: plantName, Horizon: horizon, Goal: goal}
			if plantFile != "" {
				def, err := plantfile.Load(plantFile)
				if err != nil {
					return err
				}
				if opts.Definition, err = plantfile.ToMap(def); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			state, err := client.CreateSession(ctx, opts)
			if err != nil {
				return err
			}
			defer func() {
				if err := client.CloseSession(context.Background(), state.SessionID); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
				}
			}()
			fmt.Printf("Session %s on %s (%d actions, observation size %d)\n",
				state.SessionID, state.Plant, state.ActionCount, state.ObservationSize)

			observation, mask := state.Observation, state.Mask
			total := 0.0
			var last grpcadapter.StepReply
			for {
				action := policy.Choose(observation, mask)
				reply, err := client.Step(ctx, state.SessionID, action)
				if err != nil {
					return err
				}
				total += reply.Reward
				last = reply
				if trace {
					fmt.Printf("tick %d action %d reward %.3f routed %t\n", reply.Tick, action, reply.Reward, reply.Routed)
				}
				if reply.Done {
					break
				}
				observation, mask = reply.Observation, reply.Mask
			}

			fmt.Printf("Finished after %d ticks: total reward %.3f, final profit %.3f\n", last.Tick, total, last.Profit)
			return nil
		},
	}

	cmd.Flags().StringVar(&policyName, "policy", "greedy",
		fmt.Sprintf("Policy choosing actions: %v", policies.Names()))
	cmd.Flags().Int64Var(&seed, "seed", 1, "Seed for the random policy")
	cmd.Flags().IntVar(&horizon, "horizon", 0, "Ticks per episode (default from daemon)")
	cmd.Flags().StringVar(&goal, "goal", "", "Goal part type for potential shaping")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print every step")

	return cmd
}

func newRemoteSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List open daemon sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, a, err := connectDaemon()
			if err != nil {
				return err
			}
			defer client.Close()
			defer a.Close()

			sessions, err := client.ListSessions(context.Background())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No open sessions")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "SESSION\tPLANT\tTICK\tSTEPS\tLAST USED")
			for _, s := range sessions {
				fmt.Fprintf(w, "%v\t%v\t%v\t%v\t%v\n", s["session_id"], s["plant"], s["tick"], s["steps"], s["last_used"])
			}
			return w.Flush()
		},
	}

	return cmd
}

// connectDaemon dials --address, falling back to the configured server address
func connectDaemon() (*grpcadapter.SimulationClient, *app, error) {
	a, err := newApp(false)
	if err != nil {
		return nil, nil, err
	}

	address := daemonAddress
	if address == "" {
		address = a.cfg.Server.Address
	}
	client, err := grpcadapter.NewSimulationClient(address)
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return client, a, nil
}
