package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chemloop",
		Short: "Chemical looping reaction pathway analysis",
		Long: `chemloop builds weighted reaction networks from candidate reaction sets,
enumerates low-cost reaction pathways between phase sets, and pairs
reduction and oxidation legs into closed redox cycles.`,
	}

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(pathwaysCmd)
	rootCmd.AddCommand(cyclesCmd)
	rootCmd.AddCommand(twostepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
