// Package config resolves backtest parameters from YAML or JSON files
// into the structures the simulation core consumes.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/futuresim/backtest"
	"github.com/rustyeddy/futuresim/market"
	"github.com/rustyeddy/futuresim/strategies"
)

// Config is the complete backtest configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Contract ContractConfig `json:"contract" yaml:"contract"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Data     DataConfig     `json:"data" yaml:"data"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Lookback int            `json:"lookback" yaml:"lookback"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	InitialBalance        float64 `json:"initial_balance" yaml:"initial_balance"`
	CommissionPerContract float64 `json:"commission_per_contract" yaml:"commission_per_contract"`
	SlippagePerContract   float64 `json:"slippage_per_contract" yaml:"slippage_per_contract"`
}

// ContractConfig contains the futures contract specification. Omitted
// optional fields follow the standard defaults: point value = tick
// value / tick size, initial margin 10000, maintenance 80% of initial.
type ContractConfig struct {
	Symbol            string  `json:"symbol" yaml:"symbol"`
	ContractMonth     string  `json:"contract_month" yaml:"contract_month"`
	TickSize          float64 `json:"tick_size" yaml:"tick_size"`
	TickValue         float64 `json:"tick_value" yaml:"tick_value"`
	PointValue        float64 `json:"point_value,omitempty" yaml:"point_value,omitempty"`
	InitialMargin     float64 `json:"initial_margin,omitempty" yaml:"initial_margin,omitempty"`
	MaintenanceMargin float64 `json:"maintenance_margin,omitempty" yaml:"maintenance_margin,omitempty"`
}

// StrategyConfig contains the strategy name and its parameters.
type StrategyConfig struct {
	Name string `json:"name" yaml:"name"`
	Qty  int    `json:"qty" yaml:"qty"`

	Fast int `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow int `json:"slow,omitempty" yaml:"slow,omitempty"`

	RSILookback int     `json:"rsi_lookback,omitempty" yaml:"rsi_lookback,omitempty"`
	RSILower    float64 `json:"rsi_lower,omitempty" yaml:"rsi_lower,omitempty"`
	RSIUpper    float64 `json:"rsi_upper,omitempty" yaml:"rsi_upper,omitempty"`
}

// DataConfig locates the input bars.
type DataConfig struct {
	CSVPath string `json:"csv_path" yaml:"csv_path"`
	Symbol  string `json:"symbol,omitempty" yaml:"symbol,omitempty"` // defaults to contract symbol
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	FillsFile  string `json:"fills_file,omitempty" yaml:"fills_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// LoadFromFile loads configuration from a YAML or JSON file and
// validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
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

// SaveToFile saves configuration as YAML (.yaml/.yml extension) or
// pretty-printed JSON.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks the configuration before a run starts. Strategy
// parameter validation is delegated to strategies.ByName so unknown
// names and missing parameters fail here, never mid-run.
func (c *Config) Validate() error {
	if c.Account.InitialBalance <= 0 {
		return fmt.Errorf("account.initial_balance must be positive")
	}
	if c.Account.CommissionPerContract < 0 {
		return fmt.Errorf("account.commission_per_contract must not be negative")
	}
	if c.Account.SlippagePerContract < 0 {
		return fmt.Errorf("account.slippage_per_contract must not be negative")
	}
	if c.Contract.Symbol == "" {
		return fmt.Errorf("contract.symbol is required")
	}
	if c.Contract.TickSize <= 0 {
		return fmt.Errorf("contract.tick_size must be positive")
	}
	if c.Contract.TickValue <= 0 {
		return fmt.Errorf("contract.tick_value must be positive")
	}
	if c.Strategy.Name == "" {
		return fmt.Errorf("strategy.name is required")
	}
	if _, err := strategies.ByName(c.Strategy.Name, c.StrategyParams()); err != nil {
		return fmt.Errorf("strategy: %w", err)
	}
	if c.Data.CSVPath == "" {
		return fmt.Errorf("data.csv_path is required")
	}
	if c.Lookback < 0 {
		return fmt.Errorf("lookback must not be negative")
	}
	switch c.Journal.Type {
	case "", "none":
	case "csv":
		if c.Journal.FillsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal fills_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}
	return nil
}

// ContractSpec builds the market.Contract this config describes.
func (c *Config) ContractSpec() market.Contract {
	return market.ContractFromParams(market.ContractParams{
		Symbol:            c.Contract.Symbol,
		ContractMonth:     c.Contract.ContractMonth,
		TickSize:          c.Contract.TickSize,
		TickValue:         c.Contract.TickValue,
		PointValue:        c.Contract.PointValue,
		InitialMargin:     c.Contract.InitialMargin,
		MaintenanceMargin: c.Contract.MaintenanceMargin,
	})
}

// RunnerConfig builds the backtest.Config this config describes.
func (c *Config) RunnerConfig() backtest.Config {
	rc := backtest.DefaultConfig()
	rc.InitialBalance = c.Account.InitialBalance
	rc.CommissionPerContract = c.Account.CommissionPerContract
	rc.SlippagePerContract = c.Account.SlippagePerContract
	if c.Lookback > 0 {
		rc.MaxLookback = c.Lookback
	}
	return rc
}

// StrategyParams builds the strategies.Params this config describes.
func (c *Config) StrategyParams() strategies.Params {
	return strategies.Params{
		Qty:         c.Strategy.Qty,
		FastWindow:  c.Strategy.Fast,
		SlowWindow:  c.Strategy.Slow,
		RSILookback: c.Strategy.RSILookback,
		RSILower:    c.Strategy.RSILower,
		RSIUpper:    c.Strategy.RSIUpper,
	}
}

// DataSymbol returns the symbol to filter bars by: the explicit data
// symbol if present, otherwise the contract symbol.
func (c *Config) DataSymbol() string {
	if c.Data.Symbol != "" {
		return c.Data.Symbol
	}
	return c.Contract.Symbol
}

// Default returns a configuration with sensible defaults: an ES
// contract, SMA crossover, $100k account.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialBalance:        100000,
			CommissionPerContract: 2.5,
			SlippagePerContract:   1.0,
		},
		Contract: ContractConfig{
			Symbol:        "ES",
			ContractMonth: "2025-03",
			TickSize:      0.25,
			TickValue:     12.50,
			PointValue:    50.0,
			InitialMargin: 13000.0,
		},
		Strategy: StrategyConfig{
			Name: "sma",
			Qty:  1,
			Fast: 10,
			Slow: 30,
		},
		Data: DataConfig{
			CSVPath: "./bars.csv",
		},
		Journal: JournalConfig{
			Type: "none",
		},
		Lookback: 500,
	}
}
