package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chemloop/chemloop/analysis"
	"github.com/chemloop/chemloop/internal/cli/config"
	"github.com/chemloop/chemloop/internal/cli/input"
	"github.com/chemloop/chemloop/internal/cli/ui"
	"github.com/chemloop/chemloop/network"
	"github.com/chemloop/chemloop/search"
)

var (
	pathwaysData        string
	pathwaysNetwork     string
	pathwaysStart       []string
	pathwaysTarget      []string
	pathwaysQueries     string
	pathwaysWorkers     int
	pathwaysMaxStepCost float64
	pathwaysRank        string
	pathwaysJSON        bool
	pathwaysNoColor     bool
	pathwaysVerbose     bool
)

func init() {
	pathwaysCmd.Flags().StringVar(&pathwaysData, "data", "", "Reaction dataset file (YAML or JSON)")
	pathwaysCmd.Flags().StringVar(&pathwaysNetwork, "network", "", "Prebuilt network snapshot to search instead of --data")
	pathwaysCmd.Flags().StringSliceVar(&pathwaysStart, "start", nil, "Starting phase formulas")
	pathwaysCmd.Flags().StringSliceVar(&pathwaysTarget, "target", nil, "Target phase formulas")
	pathwaysCmd.Flags().StringVar(&pathwaysQueries, "queries", "", "Query file for a batch survey")
	pathwaysCmd.Flags().IntVar(&pathwaysWorkers, "workers", 4, "Parallel workers for batch surveys")
	pathwaysCmd.Flags().Float64Var(&pathwaysMaxStepCost, "max-step-cost", 0, "Reject steps costlier than this")
	pathwaysCmd.Flags().StringVar(&pathwaysRank, "rank", "cumulative", "Result order: cumulative or arithmetic (mean step cost)")
	pathwaysCmd.Flags().BoolVar(&pathwaysJSON, "json", false, "Output results in JSON format")
	pathwaysCmd.Flags().BoolVar(&pathwaysNoColor, "no-color", false, "Disable colored output")
	pathwaysCmd.Flags().BoolVar(&pathwaysVerbose, "verbose", false, "Log per-reaction build decisions")
	pathwaysCmd.MarkFlagsOneRequired("data", "network")
	pathwaysCmd.MarkFlagsMutuallyExclusive("data", "network")
}

var pathwaysCmd = &cobra.Command{
	Use:   "pathways",
	Short: "Enumerate low-cost reaction pathways between phase sets",
	Long: `Build the reaction network from a dataset and enumerate the lowest-cost
pathways from the start phases to the target phases. With --queries, run
many start/target pairs in parallel as a survey.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		single := len(pathwaysStart) > 0 || len(pathwaysTarget) > 0
		if single == (pathwaysQueries != "") {
			return fmt.Errorf("give either --start and --target, or --queries")
		}
		if single && (len(pathwaysStart) == 0 || len(pathwaysTarget) == 0) {
			return fmt.Errorf("--start and --target must both be given")
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log, err := newLogger(pathwaysVerbose)
		if err != nil {
			return err
		}

		var (
			net    *network.Network
			report *network.BuildReport
		)
		if pathwaysNetwork != "" {
			net, report, err = loadNetwork(pathwaysNetwork, log)
		} else {
			net, report, err = buildNetwork(cfg, pathwaysData, log)
		}
		if err != nil {
			return err
		}
		if !report.Clean() && !pathwaysJSON {
			fmt.Fprintf(os.Stderr, "warning: %d reaction(s) rejected during build\n", len(report.Rejected))
		}

		engine := search.NewEngine(net, log)
		opts := searchOptions(cfg, pathwaysMaxStepCost, cmd.Flags().Changed("max-step-cost"))
		if _, err := rankMethod(pathwaysRank); err != nil {
			return err
		}
		reporter := ui.NewReporter(os.Stdout, pathwaysNoColor)

		if single {
			return runSingleQuery(cmd, engine, opts, reporter)
		}
		return runSurvey(cmd, engine, opts, reporter)
	},
}

func runSingleQuery(cmd *cobra.Command, engine *search.Engine, opts search.Options, reporter *ui.Reporter) error {
	start, err := input.Compositions(pathwaysStart)
	if err != nil {
		return err
	}
	target, err := input.Compositions(pathwaysTarget)
	if err != nil {
		return err
	}

	paths, err := engine.FindPathways(cmd.Context(), start, target, opts)
	if err != nil {
		if _, ok := err.(*search.PathNotFoundError); ok && !pathwaysJSON {
			reporter.Error(err)
			return nil
		}
		return err
	}
	paths = rankPathways(paths, pathwaysRank)

	if pathwaysJSON {
		return outputPathwaysJSON(paths)
	}
	reporter.Pathways(paths)
	return nil
}

// rankMethod maps the --rank flag onto a ranking aggregate.
func rankMethod(name string) (analysis.Method, error) {
	switch name {
	case "cumulative":
		return analysis.MethodCumulative, nil
	case "arithmetic":
		return analysis.MethodArithmetic, nil
	}
	return 0, fmt.Errorf("unknown rank method %q (want cumulative or arithmetic)", name)
}

func rankPathways(paths []search.Pathway, name string) []search.Pathway {
	method, err := rankMethod(name)
	if err != nil {
		return paths
	}
	return analysis.Set{Method: method}.Rank(paths)
}

func runSurvey(cmd *cobra.Command, engine *search.Engine, opts search.Options, reporter *ui.Reporter) error {
	queries, err := input.LoadQueries(pathwaysQueries)
	if err != nil {
		return err
	}

	results, err := search.Survey(cmd.Context(), engine, queries, pathwaysWorkers, opts)
	if err != nil {
		return err
	}
	for i := range results {
		if results[i].Err == nil {
			results[i].Pathways = rankPathways(results[i].Pathways, pathwaysRank)
		}
	}

	if pathwaysJSON {
		return outputSurveyJSON(results)
	}
	for i, res := range results {
		fmt.Printf("query %d: %s -> %s\n", i+1, joinFormulas(res.Query.Start), joinFormulas(res.Query.Target))
		if res.Err != nil {
			reporter.Error(res.Err)
			continue
		}
		reporter.Pathways(res.Pathways)
	}
	return nil
}

type pathwayJSON struct {
	Cost      float64  `json:"cost"`
	Steps     int      `json:"steps"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Reactions []string `json:"reactions"`
}

func pathwaysToJSON(paths []search.Pathway) []pathwayJSON {
	out := make([]pathwayJSON, 0, len(paths))
	for _, p := range paths {
		pj := pathwayJSON{
			Cost:  p.CumulativeCost,
			Steps: p.Steps(),
			Start: p.Start(),
			End:   p.End(),
		}
		for _, rxn := range p.Reactions() {
			pj.Reactions = append(pj.Reactions, rxn.String())
		}
		out = append(out, pj)
	}
	return out
}

func outputPathwaysJSON(paths []search.Pathway) error {
	output := struct {
		Pathways []pathwayJSON `json:"pathways"`
	}{
		Pathways: pathwaysToJSON(paths),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputSurveyJSON(results []search.SurveyResult) error {
	type resultJSON struct {
		Start    []string      `json:"start"`
		Target   []string      `json:"target"`
		Error    string        `json:"error,omitempty"`
		Pathways []pathwayJSON `json:"pathways,omitempty"`
	}

	out := make([]resultJSON, 0, len(results))
	for _, res := range results {
		rj := resultJSON{}
		for _, c := range res.Query.Start {
			rj.Start = append(rj.Start, c.ReducedFormula())
		}
		for _, c := range res.Query.Target {
			rj.Target = append(rj.Target, c.ReducedFormula())
		}
		if res.Err != nil {
			rj.Error = res.Err.Error()
		} else {
			rj.Pathways = pathwaysToJSON(res.Pathways)
		}
		out = append(out, rj)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Results []resultJSON `json:"results"`
	}{Results: out})
}
