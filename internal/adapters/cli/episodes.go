package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/queries"
)

// NewEpisodesCommand creates the episodes command with subcommands
func NewEpisodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "Browse recorded episodes",
		Long: `Browse the run history written by 'jobshop simulate run'.

Examples:
  jobshop episodes list --limit 20
  jobshop episodes list --policy random
  jobshop episodes show <episode-id> --ticks`,
	}

	cmd.AddCommand(newEpisodesListCommand())
	cmd.AddCommand(newEpisodesShowCommand())

	return cmd
}

func newEpisodesListCommand() *cobra.Command {
	var (
		policyFilter string
		plantFilter  string
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List episodes newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := mediator.SendAs[*queries.ListEpisodesResponse](a.context(context.Background()), a.mediator, &queries.ListEpisodesQuery{
				Plant:  plantFilter,
				Policy: policyFilter,
				Limit:  limit,
			})
			if err != nil {
				return fmt.Errorf("failed to list episodes: %w", err)
			}

			if len(list.Episodes) == 0 {
				fmt.Println("No episodes recorded")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPLANT\tPOLICY\tGOAL\tSTATUS\tTICKS\tREWARD\tPROFIT\tCREATED")
			for _, e := range list.Episodes {
				s := e.Settings()
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%.3f\t%.3f\t%s\n",
					e.ID(), s.Plant, s.Policy, valueOrNone(s.Goal), e.Status(), e.Ticks(),
					e.TotalReward(), e.FinalProfit(), e.CreatedAt().Format(time.RFC3339))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&policyFilter, "policy", "", "Only episodes run with this policy")
	cmd.Flags().StringVar(&plantFilter, "plant-name", "", "Only episodes of this plant")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of episodes")

	return cmd
}

func newEpisodesShowCommand() *cobra.Command {
	var showTicks bool

	cmd := &cobra.Command{
		Use:   "show EPISODE_ID",
		Short: "Show one episode and optionally its tick records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := mediator.SendAs[*queries.GetEpisodeResponse](a.context(context.Background()), a.mediator, &queries.GetEpisodeQuery{ID: args[0]})
			if err != nil {
				return err
			}
			e := resp.Episode
			s := e.Settings()

			fmt.Printf("Episode %s [%s]\n", e.ID(), e.Status())
			fmt.Printf("  Plant:        %s\n", s.Plant)
			fmt.Printf("  Policy:       %s (seed %d)\n", s.Policy, s.Seed)
			fmt.Printf("  Goal:         %s\n", valueOrNone(s.Goal))
			fmt.Printf("  Horizon:      %d  Max Buffer: %d  Gamma: %g\n", s.Horizon, s.MaxBuffer, s.Gamma)
			fmt.Printf("  Ticks:        %d\n", e.Ticks())
			fmt.Printf("  Total Reward: %.3f\n", e.TotalReward())
			fmt.Printf("  Final Profit: %.3f\n", e.FinalProfit())
			fmt.Printf("  Sold:         %d\n", e.Sold())
			fmt.Printf("  Runtime:      %s\n", e.RuntimeDuration())
			if e.LastError() != "" {
				fmt.Printf("  Error:        %s\n", e.LastError())
			}

			if !showTicks {
				return nil
			}

			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TICK\tACTION\tROUTED\tREWARD\tPROFIT\tPOTENTIAL\tSTARTED\tCOMPLETED\tSOLD\tBUFFER")
			for _, r := range e.Records() {
				fmt.Fprintf(w, "%d\t%d\t%t\t%.3f\t%.3f\t%.4f\t%d\t%d\t%d\t%d\n",
					r.Tick, r.Action, r.Routed, r.Reward, r.Profit, r.Potential,
					r.Started, r.Completed, r.Sold, r.GlobalBuffered)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&showTicks, "ticks", false, "Print every tick record")

	return cmd
}
