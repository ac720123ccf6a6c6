package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chemloop/chemloop/cycle"
	"github.com/chemloop/chemloop/internal/cli/config"
	"github.com/chemloop/chemloop/internal/cli/input"
	"github.com/chemloop/chemloop/internal/cli/ui"
	"github.com/chemloop/chemloop/search"
)

var (
	cyclesData        string
	cyclesSpecPath    string
	cyclesMaxStepCost float64
	cyclesJSON        bool
	cyclesNoColor     bool
	cyclesVerbose     bool
)

func init() {
	cyclesCmd.Flags().StringVar(&cyclesData, "data", "", "Reaction dataset file (YAML or JSON)")
	cyclesCmd.Flags().StringVar(&cyclesSpecPath, "spec", "", "Cycle query file describing both legs")
	cyclesCmd.Flags().Float64Var(&cyclesMaxStepCost, "max-step-cost", 0, "Reject steps costlier than this")
	cyclesCmd.Flags().BoolVar(&cyclesJSON, "json", false, "Output results in JSON format")
	cyclesCmd.Flags().BoolVar(&cyclesNoColor, "no-color", false, "Disable colored output")
	cyclesCmd.Flags().BoolVar(&cyclesVerbose, "verbose", false, "Log per-reaction build decisions")
	cyclesCmd.MarkFlagRequired("data")
	cyclesCmd.MarkFlagRequired("spec")
}

var cyclesCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Pair reduction and oxidation pathways into closed redox cycles",
	Long: `Build the reaction network, search both legs of a cycle query, and pair
the results into cycles whose carrier change cancels. Cycles are ranked
by combined cost plus instability penalty.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		spec, err := input.LoadCycleSpec(cyclesSpecPath)
		if err != nil {
			return err
		}

		log, err := newLogger(cyclesVerbose)
		if err != nil {
			return err
		}

		net, report, err := buildNetwork(cfg, cyclesData, log)
		if err != nil {
			return err
		}
		if !report.Clean() && !cyclesJSON {
			fmt.Fprintf(os.Stderr, "warning: %d reaction(s) rejected during build\n", len(report.Rejected))
		}

		engine := search.NewEngine(net, log)
		opts := searchOptions(cfg, cyclesMaxStepCost, cmd.Flags().Changed("max-step-cost"))
		filter := &cycle.Filter{InstabilityPenalty: cfg.Cycle.InstabilityPenalty}
		reporter := ui.NewReporter(os.Stdout, cyclesNoColor)

		cycles, err := filter.FindCycles(cmd.Context(), engine, spec, opts)
		if err != nil {
			var nvc *cycle.NoValidCycleError
			if errors.As(err, &nvc) && !cyclesJSON {
				reporter.Error(err)
				return nil
			}
			return err
		}

		if cyclesJSON {
			return outputCyclesJSON(cycles)
		}
		reporter.Cycles(cycles)
		return nil
	},
}

func outputCyclesJSON(cycles []cycle.Cycle) error {
	type cycleJSON struct {
		Score        float64     `json:"score"`
		CombinedCost float64     `json:"combined_cost"`
		Penalty      float64     `json:"penalty"`
		Scale        float64     `json:"scale"`
		Reduction    pathwayJSON `json:"reduction"`
		Oxidation    pathwayJSON `json:"oxidation"`
	}

	out := make([]cycleJSON, 0, len(cycles))
	for _, c := range cycles {
		red := pathwaysToJSON([]search.Pathway{c.Reduction})
		oxi := pathwaysToJSON([]search.Pathway{c.Oxidation})
		out = append(out, cycleJSON{
			Score:        c.Score(),
			CombinedCost: c.CombinedCost,
			Penalty:      c.Penalty,
			Scale:        c.Scale,
			Reduction:    red[0],
			Oxidation:    oxi[0],
		})
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Cycles []cycleJSON `json:"cycles"`
	}{Cycles: out})
}
