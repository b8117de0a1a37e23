package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/queries"
)

// NewGraphCommand creates the graph command with subcommands
func NewGraphCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Query the production graph",
		Long: `Query the production graph built from the plant's machines: one node per
part type, one edge from every input to the output of each transformation.

Examples:
  jobshop graph distance a1 fp2
  jobshop graph subgoals --plant simple-chain`,
	}

	cmd.AddCommand(newGraphDistanceCommand())
	cmd.AddCommand(newGraphSubgoalsCommand())

	return cmd
}

func newGraphDistanceCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distance FROM TO",
		Short: "Shortest production distance between two part types",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			def, err := a.definition()
			if err != nil {
				return err
			}

			dist, err := mediator.SendAs[*queries.GetDistanceResponse](a.context(context.Background()), a.mediator, &queries.GetDistanceQuery{
				Definition: def,
				From:       args[0],
				To:         args[1],
			})
			if err != nil {
				return err
			}

			if !dist.Reachable {
				fmt.Printf("%s cannot reach %s (potential weight 0)\n", dist.From, dist.To)
				return nil
			}
			fmt.Printf("%s -> %s: distance %d, potential weight %.4f\n", dist.From, dist.To, dist.Distance, dist.Weight)
			fmt.Printf("Path: %s\n", strings.Join(dist.Path, " -> "))
			return nil
		},
	}

	return cmd
}

func newGraphSubgoalsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subgoals",
		Short: "List the part types a goal may name",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(false)
			if err != nil {
				return err
			}
			defer a.Close()

			def, err := a.definition()
			if err != nil {
				return err
			}

			resp, err := mediator.SendAs[*queries.ListSubgoalsResponse](a.context(context.Background()), a.mediator, &queries.ListSubgoalsQuery{Definition: def})
			if err != nil {
				return err
			}

			for _, sg := range resp.Subgoals {
				marker := " "
				if sg.Finished {
					marker = "*"
				}
				fmt.Printf("%s %-6s <- %s\n", marker, sg.Name, strings.Join(sg.Upstream, ", "))
			}
			fmt.Println("\n* finished good")
			return nil
		},
	}

	return cmd
}
