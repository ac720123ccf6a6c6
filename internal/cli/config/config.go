package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the chemloop tool configuration
type Config struct {
	Network NetworkConfig `mapstructure:"network"`
	Costs   CostsConfig   `mapstructure:"costs"`
	Search  SearchConfig  `mapstructure:"search"`
	Cycle   CycleConfig   `mapstructure:"cycle"`
}

// NetworkConfig controls reaction network construction
type NetworkConfig struct {
	BalanceTolerance float64 `mapstructure:"balance_tolerance"`
}

// CostsConfig controls reaction cost annotation
type CostsConfig struct {
	Weighting    string  `mapstructure:"weighting"`
	TemperatureK float64 `mapstructure:"temperature_k"`
}

// SearchConfig controls pathway enumeration
type SearchConfig struct {
	MaxPathLength int     `mapstructure:"max_path_length"`
	CostTolerance float64 `mapstructure:"cost_tolerance"`
	K             int     `mapstructure:"k"`
}

// CycleConfig controls cycle pairing and filtering
type CycleConfig struct {
	InstabilityPenalty float64 `mapstructure:"instability_penalty"`
}

// Load loads the configuration from chemloop.yml or chemloop.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("network.balance_tolerance", 1e-6)
	v.SetDefault("costs.weighting", "energy")
	v.SetDefault("costs.temperature_k", 1073.0)
	v.SetDefault("search.max_path_length", 10)
	v.SetDefault("search.cost_tolerance", 0.0)
	v.SetDefault("search.k", 5)
	v.SetDefault("cycle.instability_penalty", 0.0)

	// Set config name and paths
	v.SetConfigName("chemloop")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.SetEnvPrefix("CHEMLOOP")
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Network.BalanceTolerance < 0 {
		return fmt.Errorf("network.balance_tolerance must not be negative, got: %g", cfg.Network.BalanceTolerance)
	}
	switch cfg.Costs.Weighting {
	case "energy", "softplus":
	default:
		return fmt.Errorf("costs.weighting must be 'energy' or 'softplus', got: %s", cfg.Costs.Weighting)
	}
	if cfg.Costs.TemperatureK <= 0 {
		return fmt.Errorf("costs.temperature_k must be positive, got: %g", cfg.Costs.TemperatureK)
	}
	if cfg.Search.MaxPathLength < 1 {
		return fmt.Errorf("search.max_path_length must be at least 1, got: %d", cfg.Search.MaxPathLength)
	}
	if cfg.Search.CostTolerance < 0 {
		return fmt.Errorf("search.cost_tolerance must not be negative, got: %g", cfg.Search.CostTolerance)
	}
	if cfg.Search.K < 1 {
		return fmt.Errorf("search.k must be at least 1, got: %d", cfg.Search.K)
	}
	if cfg.Cycle.InstabilityPenalty < 0 {
		return fmt.Errorf("cycle.instability_penalty must not be negative, got: %g", cfg.Cycle.InstabilityPenalty)
	}
	return nil
}
