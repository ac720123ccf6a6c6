package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chemloop/chemloop/internal/cli/config"
	"github.com/chemloop/chemloop/internal/cli/ui"
	"github.com/chemloop/chemloop/network"
)

var (
	validateData    string
	validateVerbose bool
	validateNoColor bool
	validateOutput  string
)

func init() {
	validateCmd.Flags().StringVar(&validateData, "data", "", "Reaction dataset file (YAML or JSON)")
	validateCmd.Flags().BoolVar(&validateVerbose, "verbose", false, "Log per-reaction build decisions")
	validateCmd.Flags().BoolVar(&validateNoColor, "no-color", false, "Disable colored output")
	validateCmd.Flags().StringVar(&validateOutput, "output", "", "Write the built network snapshot to a file")
	validateCmd.MarkFlagRequired("data")
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Build the reaction network and report rejected reactions",
	Long: `Load a dataset, annotate reaction costs, and build the reaction network.
Every rejected candidate is reported with its reason. Exits non-zero if
any reaction was rejected.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		log, err := newLogger(validateVerbose)
		if err != nil {
			return err
		}

		net, report, err := buildNetwork(cfg, validateData, log)
		if err != nil {
			return err
		}

		reporter := ui.NewReporter(os.Stdout, validateNoColor)
		reporter.BuildReport(net, report)

		if validateOutput != "" {
			if err := saveNetwork(net, validateOutput); err != nil {
				return err
			}
			fmt.Printf("snapshot written to %s\n", validateOutput)
		}

		if !report.Clean() {
			return fmt.Errorf("%d reaction(s) rejected", len(report.Rejected))
		}
		return nil
	},
}

func saveNetwork(net *network.Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer f.Close()
	return net.Save(f)
}
