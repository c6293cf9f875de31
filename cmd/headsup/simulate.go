package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/lox/headsup/internal/handid"
	"github.com/lox/headsup/internal/history"
	"github.com/lox/headsup/internal/simulator"
	"github.com/lox/headsup/internal/table"
)

// SimulateCmd runs AI matches against a scripted opponent
type SimulateCmd struct {
	Opponent string        `default:"random" help:"Opponent: ${enum}" enum:"fold,call,random,ai"`
	Matches  int           `default:"100" help:"Number of matches"`
	Hands    int           `default:"200" help:"Hands per match (0 plays until someone is broke)"`
	Seed     int64         `help:"RNG seed (0 for random)"`
	Parallel int           `help:"Matches run at once (0 uses every CPU)"`
	Timeout  time.Duration `default:"1m" help:"Time limit per match"`
	History  string        `help:"Record every hand in this SQLite database"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger, err := g.newLogger(os.Stderr, cfg.Log.Level)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(logger)
	defer cancel()

	simCfg := simulator.Config{
		Matches:       c.Matches,
		HandsPerMatch: c.Hands,
		Opponent:      c.Opponent,
		Seed:          c.Seed,
		Parallel:      c.Parallel,
		SmallBlind:    cfg.Table.SmallBlind,
		BigBlind:      cfg.Table.BigBlind,
		StartingStack: cfg.Table.StartingStack,
		Timeout:       c.Timeout,
		Engine:        cfg.EngineConfig(),
		Logger:        logger,
	}

	if c.History != "" {
		store, err := history.Open(history.Config{Path: c.History, Logger: logger})
		if err != nil {
			return err
		}
		defer store.Close()
		run, err := handid.New()
		if err != nil {
			return err
		}
		simCfg.OnHand = func(match int, r *table.HandResult) {
			session := fmt.Sprintf("%s-%04d", run, match)
			if _, err := store.Record(ctx, session, cfg.Table.SmallBlind, cfg.Table.BigBlind, r); err != nil {
				logger.Error("Failed to record hand", "match", match, "hand", r.Number, "error", err)
			}
		}
		logger.Info("Recording hands", "db", c.History, "run", run)
	}

	sim, err := simulator.New(simCfg)
	if err != nil {
		return err
	}

	start := time.Now()
	report, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Simulation finished", "hands", report.Stats.Hands, "elapsed", time.Since(start).Round(time.Millisecond))

	fmt.Println(titleStyle.Render(fmt.Sprintf(" AI vs %s ", strings.ToUpper(c.Opponent))))
	simulator.PrintSummary(os.Stdout, report)
	return nil
}
