package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/andrescamacho/jobshop-sim/internal/adapters/plantfile"
	"github.com/andrescamacho/jobshop-sim/internal/application/mediator"
	"github.com/andrescamacho/jobshop-sim/internal/application/simulation/queries"
)

// NewCatalogCommand creates the catalog command with subcommands
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect plant catalogs",
		Long: `Inspect the part types, transformations, machines and action space of a plant.

Examples:
  jobshop catalog show
  jobshop catalog show --plant-file ./configs/simple_chain.yaml --json
  jobshop catalog export --plant reference > reference.yaml`,
	}

	cmd.AddCommand(newCatalogShowCommand())
	cmd.AddCommand(newCatalogExportCommand())

	return cmd
}

func newCatalogShowCommand() *cobra.Command {
	var asJSON bool
	var showActions bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show part values after propagation, machines and dimensions",
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

			desc, err := mediator.SendAs[*queries.DescribePlantResponse](a.context(context.Background()), a.mediator, &queries.DescribePlantQuery{
				Definition: def,
				Config:     a.cfg.Simulation.EnvironmentConfig(),
				MaxPasses:  a.cfg.Simulation.PropagationMaxPasses,
			})
			if err != nil {
				return fmt.Errorf("failed to describe plant: %w", err)
			}

			if asJSON {
				return printJSON(desc)
			}

			fmt.Printf("Plant: %s\n", desc.Plant)
			fmt.Printf("Actions: %d  Observation size: %d  Propagation passes: %d\n\n",
				desc.ActionCount, desc.ObservationSize, desc.PropagationPasses)

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PART TYPE\tCOST\tVALUE\tMARGIN\tKIND")
			for _, pt := range desc.PartTypes {
				fmt.Fprintf(w, "%s\t%.2f\t%.4g\t%.4g\t%s\n", pt.Name, pt.Cost, pt.Value, pt.Margin, partKind(pt))
			}
			w.Flush()

			fmt.Println()
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TRANSFORMATION\tINPUTS\tOUTPUT\tDURATION")
			for _, t := range desc.Transformations {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", t.Name, strings.Join(t.Inputs, ", "), t.Output, t.Duration)
			}
			w.Flush()

			fmt.Println()
			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MACHINE\tTYPE\tSLOTS\tTRANSFORMATIONS")
			for _, m := range desc.Machines {
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", m.ID, m.Type, m.Slots, strings.Join(m.Transformations, ", "))
			}
			w.Flush()

			if showActions {
				fmt.Println("\nAction space:")
				for _, action := range desc.ActionSpace {
					fmt.Printf("  %s\n", action)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the description as JSON")
	cmd.Flags().BoolVar(&showActions, "actions", false, "List every action index")

	return cmd
}

func newCatalogExportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the plant definition as YAML to stdout",
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
			data, err := plantfile.EncodeYAML(def)
			if err != nil {
				return fmt.Errorf("failed to encode definition: %w", err)
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	return cmd
}

func partKind(pt queries.PartTypeSummary) string {
	switch {
	case pt.Finished:
		return "finished"
	case pt.Elementary:
		return "elementary"
	default:
		return "intermediate"
	}
}

// printJSON formats JSON for display
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
