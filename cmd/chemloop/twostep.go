package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chemloop/chemloop/internal/cli/input"
	"github.com/chemloop/chemloop/loop"
)

var (
	twostepSpecPath string
	twostepJSON     bool
)

func init() {
	twostepCmd.Flags().StringVar(&twostepSpecPath, "spec", "", "Loop description file (materials plus net reaction)")
	twostepCmd.Flags().BoolVar(&twostepJSON, "json", false, "Output the scheme in JSON format")
	twostepCmd.MarkFlagRequired("spec")
}

var twostepCmd = &cobra.Command{
	Use:   "twostep",
	Short: "Derive the two-step scheme for a redox pair and net reaction",
	Long: `Given a redox material pair and a net transformation, balance the
reduction and oxidation subreactions that realize it as a two-step
chemical loop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		redox, net, err := input.LoadLoopSpec(twostepSpecPath)
		if err != nil {
			return err
		}

		scheme, err := loop.NewTwoStep(redox, net)
		if err != nil {
			return err
		}

		if twostepJSON {
			return outputTwoStepJSON(scheme)
		}
		fmt.Println(scheme)
		return nil
	},
}

func outputTwoStepJSON(scheme *loop.TwoStep) error {
	subs := scheme.Subreactions()
	output := struct {
		Reduction string   `json:"reduction"`
		Oxidation string   `json:"oxidation"`
		Net       string   `json:"net"`
		Carrier   []string `json:"carrier_elements"`
		System    []string `json:"chemical_system"`
	}{
		Reduction: subs[0].String(),
		Oxidation: subs[1].String(),
		Net:       scheme.NetReaction().Equation(),
		Carrier:   scheme.CarrierElements(),
		System:    scheme.ChemicalSystem(),
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
