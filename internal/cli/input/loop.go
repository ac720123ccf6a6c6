package input

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/chemloop/chemloop/chem"
	"github.com/chemloop/chemloop/loop"
)

// loopFile is the on-disk shape of a two-step loop description: the redox
// material pair plus the net transformation the loop should realize.
// Coefficients follow the reactant-negative convention, ordered oxidant,
// reducing agent, then products.
type loopFile struct {
	Materials []string `yaml:"materials" json:"materials"`
	Net       struct {
		Oxidant       string    `yaml:"oxidant" json:"oxidant"`
		ReducingAgent string    `yaml:"reducing_agent" json:"reducing_agent"`
		Products      []string  `yaml:"products" json:"products"`
		Coefficients  []float64 `yaml:"coefficients" json:"coefficients"`
	} `yaml:"net" json:"net"`
}

// LoadLoopSpec reads a two-step loop description file.
func LoadLoopSpec(path string) (*loop.RedoxSet, loop.NetReaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, loop.NetReaction{}, fmt.Errorf("failed to read loop spec: %w", err)
	}

	var lf loopFile
	if isJSON(path) {
		err = json.Unmarshal(data, &lf)
	} else {
		err = yaml.Unmarshal(data, &lf)
	}
	if err != nil {
		return nil, loop.NetReaction{}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	materials, err := Compositions(lf.Materials)
	if err != nil {
		return nil, loop.NetReaction{}, fmt.Errorf("materials: %w", err)
	}
	redox, err := loop.NewRedoxSet(materials)
	if err != nil {
		return nil, loop.NetReaction{}, err
	}

	if lf.Net.Oxidant == "" || lf.Net.ReducingAgent == "" || len(lf.Net.Products) == 0 {
		return nil, loop.NetReaction{}, fmt.Errorf("net reaction needs oxidant, reducing_agent, and products")
	}
	if want := 2 + len(lf.Net.Products); len(lf.Net.Coefficients) != want {
		return nil, loop.NetReaction{}, fmt.Errorf("net reaction needs %d coefficients, got %d", want, len(lf.Net.Coefficients))
	}

	oxidant, err := chem.ParseFormula(lf.Net.Oxidant)
	if err != nil {
		return nil, loop.NetReaction{}, fmt.Errorf("oxidant: %w", err)
	}
	agent, err := chem.ParseFormula(lf.Net.ReducingAgent)
	if err != nil {
		return nil, loop.NetReaction{}, fmt.Errorf("reducing_agent: %w", err)
	}
	products, err := Compositions(lf.Net.Products)
	if err != nil {
		return nil, loop.NetReaction{}, fmt.Errorf("products: %w", err)
	}

	net := loop.NetReaction{
		Oxidant:       oxidant,
		ReducingAgent: agent,
		Products:      products,
		Coefficients:  lf.Net.Coefficients,
	}
	return redox, net, nil
}
