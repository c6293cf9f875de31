// Package config loads the HCL configuration shared by every command.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/headsup/internal/strategy"
)

// Config is the resolved configuration with defaults applied
type Config struct {
	Table   TableSettings
	AI      AISettings
	Policy  strategy.Policy
	Log     LogSettings
	Server  ServerSettings
	History HistorySettings
}

// TableSettings describes the heads-up table
type TableSettings struct {
	SmallBlind    int
	BigBlind      int
	StartingStack int
}

// AISettings configures the computer opponent
type AISettings struct {
	Name           string
	Seed           int64
	ThinkDelay     time.Duration
	NarrowOnOwnBet bool
	// BlindIncrement is the largest owed amount that tells the AI nothing; zero means the small blind
	BlindIncrement int
}

// LogSettings selects log verbosity and destination
type LogSettings struct {
	Level string
	File  string
}

// ServerSettings configures the decision service
type ServerSettings struct {
	Address string
	Port    int
	// RequestsPerSecond limits each client; zero means unlimited
	RequestsPerSecond float64
	Burst             int
}

// HistorySettings locates the hand history database
type HistorySettings struct {
	Path string
}

// Addr returns the listen address of the decision service
func (s ServerSettings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

// fileConfig mirrors the HCL layout; every block is optional
type fileConfig struct {
	Table   *tableBlock   `hcl:"table,block"`
	AI      *aiBlock      `hcl:"ai,block"`
	Policy  *policyBlock  `hcl:"policy,block"`
	Log     *logBlock     `hcl:"log,block"`
	Server  *serverBlock  `hcl:"server,block"`
	History *historyBlock `hcl:"history,block"`
}

type tableBlock struct {
	SmallBlind    int `hcl:"small_blind,optional"`
	BigBlind      int `hcl:"big_blind,optional"`
	StartingStack int `hcl:"starting_stack,optional"`
}

type aiBlock struct {
	Name           string `hcl:"name,optional"`
	Seed           int64  `hcl:"seed,optional"`
	ThinkDelayMS   *int   `hcl:"think_delay_ms,optional"`
	NarrowOnOwnBet *bool  `hcl:"narrow_on_own_bet,optional"`
	BlindIncrement int    `hcl:"blind_increment,optional"`
}

type policyBlock struct {
	CheckBands []float64 `hcl:"check_bands,optional"`
	BetRolls   []int     `hcl:"bet_rolls,optional"`
	RaiseBands []float64 `hcl:"raise_bands,optional"`
	RaiseRolls []int     `hcl:"raise_rolls,optional"`
}

type logBlock struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

type serverBlock struct {
	Address           string  `hcl:"address,optional"`
	Port              int     `hcl:"port,optional"`
	RequestsPerSecond float64 `hcl:"requests_per_second,optional"`
	Burst             int     `hcl:"burst,optional"`
}

type historyBlock struct {
	Path string `hcl:"path,optional"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Table: TableSettings{
			SmallBlind:    1,
			BigBlind:      2,
			StartingStack: 200,
		},
		AI: AISettings{
			Name:           "Daniel",
			ThinkDelay:     3 * time.Second,
			NarrowOnOwnBet: true,
		},
		Policy: strategy.DefaultPolicy(),
		Log: LogSettings{
			Level: "info",
			File:  "headsup.log",
		},
		Server: ServerSettings{
			Address: "localhost",
			Port:    8080,
		},
	}
}

// Load reads filename, falling back to defaults when it does not exist
func Load(filename string) (*Config, error) {
	cfg := Default()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body, cfg)
}

// Parse decodes HCL source held in memory; filename is used in diagnostics
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}
	return decode(file.Body, Default())
}

func decode(body hcl.Body, cfg *Config) (*Config, error) {
	var fc fileConfig
	if diags := gohcl.DecodeBody(body, nil, &fc); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if t := fc.Table; t != nil {
		if t.SmallBlind != 0 {
			cfg.Table.SmallBlind = t.SmallBlind
		}
		if t.BigBlind != 0 {
			cfg.Table.BigBlind = t.BigBlind
		}
		if t.StartingStack != 0 {
			cfg.Table.StartingStack = t.StartingStack
		}
	}

	if a := fc.AI; a != nil {
		if a.Name != "" {
			cfg.AI.Name = a.Name
		}
		cfg.AI.Seed = a.Seed
		if a.ThinkDelayMS != nil {
			cfg.AI.ThinkDelay = time.Duration(*a.ThinkDelayMS) * time.Millisecond
		}
		if a.NarrowOnOwnBet != nil {
			cfg.AI.NarrowOnOwnBet = *a.NarrowOnOwnBet
		}
		cfg.AI.BlindIncrement = a.BlindIncrement
	}

	if p := fc.Policy; p != nil {
		if err := mergePolicy(&cfg.Policy, p); err != nil {
			return nil, err
		}
	}

	if l := fc.Log; l != nil {
		if l.Level != "" {
			cfg.Log.Level = l.Level
		}
		if l.File != "" {
			cfg.Log.File = l.File
		}
	}

	if s := fc.Server; s != nil {
		if s.Address != "" {
			cfg.Server.Address = s.Address
		}
		if s.Port != 0 {
			cfg.Server.Port = s.Port
		}
		cfg.Server.RequestsPerSecond = s.RequestsPerSecond
		cfg.Server.Burst = s.Burst
	}

	if h := fc.History; h != nil {
		cfg.History.Path = h.Path
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergePolicy(dst *strategy.Policy, p *policyBlock) error {
	if p.CheckBands != nil {
		if len(p.CheckBands) != len(dst.CheckBands) {
			return fmt.Errorf("policy.check_bands needs %d entries, got %d", len(dst.CheckBands), len(p.CheckBands))
		}
		copy(dst.CheckBands[:], p.CheckBands)
	}
	if p.BetRolls != nil {
		if len(p.BetRolls) != len(dst.BetRolls) {
			return fmt.Errorf("policy.bet_rolls needs %d entries, got %d", len(dst.BetRolls), len(p.BetRolls))
		}
		copy(dst.BetRolls[:], p.BetRolls)
	}
	if p.RaiseBands != nil {
		if len(p.RaiseBands) != len(dst.RaiseBands) {
			return fmt.Errorf("policy.raise_bands needs %d entries, got %d", len(dst.RaiseBands), len(p.RaiseBands))
		}
		copy(dst.RaiseBands[:], p.RaiseBands)
	}
	if p.RaiseRolls != nil {
		if len(p.RaiseRolls) != len(dst.RaiseRolls) {
			return fmt.Errorf("policy.raise_rolls needs %d entries, got %d", len(dst.RaiseRolls), len(p.RaiseRolls))
		}
		copy(dst.RaiseRolls[:], p.RaiseRolls)
	}
	return nil
}

// Validate reports every inconsistent setting at once
func (c *Config) Validate() error {
	var errs []error
	if c.Table.SmallBlind <= 0 {
		errs = append(errs, fmt.Errorf("table.small_blind must be positive, got %d", c.Table.SmallBlind))
	}
	if c.Table.BigBlind <= c.Table.SmallBlind {
		errs = append(errs, fmt.Errorf("table.big_blind %d must exceed small_blind %d", c.Table.BigBlind, c.Table.SmallBlind))
	}
	if c.Table.StartingStack < c.Table.BigBlind {
		errs = append(errs, fmt.Errorf("table.starting_stack %d must cover the big blind", c.Table.StartingStack))
	}
	if c.AI.ThinkDelay < 0 {
		errs = append(errs, errors.New("ai.think_delay_ms must not be negative"))
	}
	if c.AI.BlindIncrement < 0 {
		errs = append(errs, fmt.Errorf("ai.blind_increment must not be negative, got %d", c.AI.BlindIncrement))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.RequestsPerSecond < 0 || c.Server.Burst < 0 {
		errs = append(errs, errors.New("server.requests_per_second and server.burst must not be negative"))
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("policy: %w", err))
	}
	return errors.Join(errs...)
}

// EngineConfig builds the strategy settings for an AI seat at this table
func (c *Config) EngineConfig() strategy.Config {
	policy := c.Policy
	increment := c.AI.BlindIncrement
	if increment == 0 {
		increment = c.Table.SmallBlind
	}
	return strategy.Config{
		Policy:              &policy,
		MinBet:              c.Table.BigBlind,
		BlindIncrement:      increment,
		SkipOwnBetNarrowing: !c.AI.NarrowOnOwnBet,
	}
}
