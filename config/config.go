// Package config loads a complete backtest description from a YAML or
// JSON file: the dataset, the asset and book prototypes, the strategy
// and its parameter grid, and where to journal results.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantfold/stratsim/backtest"
	"github.com/quantfold/stratsim/risk"
	"github.com/quantfold/stratsim/strategies"
)

// Config represents one complete backtest configuration.
type Config struct {
	Data     DataConfig     `json:"data" yaml:"data"`
	Assets   []AssetConfig  `json:"assets" yaml:"assets"`
	Books    []BookConfig   `json:"books" yaml:"books"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Run      RunConfig      `json:"run" yaml:"run"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// DataConfig points at the wide CSV dataset (optionally .xz
// compressed).
type DataConfig struct {
	Path string `json:"path" yaml:"path"`
}

// AssetConfig describes one OHLC asset prototype.
type AssetConfig struct {
	Name            string `json:"name" yaml:"name"`
	Denom           string `json:"denom" yaml:"denom"`
	DataLabel       string `json:"data_label,omitempty" yaml:"data_label,omitempty"`
	PriceRoundDP    *int   `json:"price_round_dp,omitempty" yaml:"price_round_dp,omitempty"`
	QuantityRoundDP *int   `json:"quantity_round_dp,omitempty" yaml:"quantity_round_dp,omitempty"`
}

// BookConfig describes one book prototype. The optional limits become
// the book's mandate policy; trades that breach them are rejected.
type BookConfig struct {
	Name            string  `json:"name" yaml:"name"`
	Denom           string  `json:"denom" yaml:"denom"`
	Cash            float64 `json:"cash" yaml:"cash"`
	Rate            float64 `json:"rate,omitempty" yaml:"rate,omitempty"`
	InterestRoundDP *int    `json:"interest_round_dp,omitempty" yaml:"interest_round_dp,omitempty"`

	MinCash     *float64 `json:"min_cash,omitempty" yaml:"min_cash,omitempty"`
	MaxPosition *float64 `json:"max_position,omitempty" yaml:"max_position,omitempty"`
}

// StrategyConfig names a built-in strategy, the assets it trades, and
// the parameter grid to sweep. Each grid entry is merged over the base
// params for one run; an empty grid means a single run with the base
// params.
type StrategyConfig struct {
	Name   string           `json:"name" yaml:"name"`
	Assets []string         `json:"assets" yaml:"assets"`
	Size   float64          `json:"size,omitempty" yaml:"size,omitempty"`
	Params map[string]any   `json:"params,omitempty" yaml:"params,omitempty"`
	Grid   []map[string]any `json:"grid,omitempty" yaml:"grid,omitempty"`
}

// RunConfig contains batch execution parameters.
type RunConfig struct {
	// Workers bounds the batch worker pool; 0 means one worker per
	// parameter set.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type        string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath      string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	OrdersFile  string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	HistoryFile string `json:"history_file,omitempty" yaml:"history_file,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML first, JSON
// fallback).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if len(c.Assets) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	for i, a := range c.Assets {
		if a.Name == "" {
			return fmt.Errorf("assets[%d].name is required", i)
		}
		if a.Denom == "" {
			return fmt.Errorf("assets[%d].denom is required", i)
		}
	}
	if len(c.Books) == 0 {
		return fmt.Errorf("at least one book is required")
	}
	for i, b := range c.Books {
		if b.Name == "" {
			return fmt.Errorf("books[%d].name is required", i)
		}
		if b.Denom == "" {
			return fmt.Errorf("books[%d].denom is required", i)
		}
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if c.Run.Workers < 0 {
		return fmt.Errorf("run.workers must not be negative")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.HistoryFile == "" {
			return fmt.Errorf("journal orders_file and history_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// BuildAssets constructs the asset prototypes.
func (c *Config) BuildAssets() []backtest.Asset {
	out := make([]backtest.Asset, len(c.Assets))
	for i, ac := range c.Assets {
		a := backtest.NewOHLCAsset(ac.Name, ac.Denom)
		if ac.DataLabel != "" {
			a.DataLabel = ac.DataLabel
		}
		if ac.PriceRoundDP != nil {
			a.PriceRoundDP = *ac.PriceRoundDP
		}
		if ac.QuantityRoundDP != nil {
			a.QuantityRoundDP = *ac.QuantityRoundDP
		}
		out[i] = a
	}
	return out
}

// BuildBooks constructs the book prototypes.
func (c *Config) BuildBooks() []*backtest.Book {
	out := make([]*backtest.Book, len(c.Books))
	for i, bc := range c.Books {
		b := backtest.NewBook(bc.Name, bc.Denom, bc.Cash)
		b.Rate = bc.Rate
		if bc.InterestRoundDP != nil {
			b.InterestRoundDP = *bc.InterestRoundDP
		}

		var policies []backtest.MandatePolicy
		if bc.MinCash != nil {
			policies = append(policies, risk.CashFloor(*bc.MinCash))
		}
		if bc.MaxPosition != nil {
			policies = append(policies, risk.MaxPosition(*bc.MaxPosition))
		}
		if len(policies) > 0 {
			b.Mandate = risk.All(policies...)
		}
		out[i] = b
	}
	return out
}

// BuildStrategy constructs the strategy prototype. Names registered
// via strategies.Register take precedence over the built-ins.
func (c *Config) BuildStrategy() (backtest.Strategy, error) {
	if s := strategies.Get(c.Strategy.Name); s != nil {
		return s, nil
	}
	assets := c.Strategy.Assets
	if len(assets) == 0 {
		for _, a := range c.Assets {
			assets = append(assets, a.Name)
		}
	}
	return strategies.ByName(c.Strategy.Name, assets, c.Strategy.Size)
}

// ParamSets expands the base params and grid into one parameter set
// per run.
func (c *Config) ParamSets() []backtest.Params {
	if len(c.Strategy.Grid) == 0 {
		return []backtest.Params{backtest.Params(c.Strategy.Params)}
	}
	out := make([]backtest.Params, len(c.Strategy.Grid))
	for i, entry := range c.Strategy.Grid {
		p := make(backtest.Params, len(c.Strategy.Params)+len(entry))
		for k, v := range c.Strategy.Params {
			p[k] = v
		}
		for k, v := range entry {
			p[k] = v
		}
		out[i] = p
	}
	return out
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Data: DataConfig{Path: "./data.csv"},
		Assets: []AssetConfig{
			{Name: "GOOG", Denom: "USD"},
		},
		Books: []BookConfig{
			{Name: "Main", Denom: "USD", Cash: 100000},
		},
		Strategy: StrategyConfig{
			Name:   "sma-cross",
			Size:   100,
			Params: map[string]any{"fast": 10, "slow": 20},
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./stratsim.sqlite",
		},
	}
}
