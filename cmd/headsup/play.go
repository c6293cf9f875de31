package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/headsup/internal/handid"
	"github.com/lox/headsup/internal/history"
	"github.com/lox/headsup/internal/table"
	"github.com/lox/headsup/internal/tui"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

// PlayCmd starts an interactive session
type PlayCmd struct {
	Name    string `default:"You" help:"Your name at the table"`
	Hands   int    `help:"Stop after this many hands (0 plays until someone is broke)"`
	Seed    *int64 `help:"Deterministic seed for cards and the AI (optional)"`
	History string `help:"Record hands in this SQLite database (overrides history.path)"`
	LogFile string `help:"Session log file (overrides log.file)"`
	NoDelay bool   `help:"Let the AI answer without thinking time"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	logPath := cfg.Log.File
	if c.LogFile != "" {
		logPath = c.LogFile
	}
	logFile, err := openLogFile(logPath)
	if err != nil {
		return err
	}
	defer logFile.Close()

	logger, err := g.newLogger(logFile, cfg.Log.Level)
	if err != nil {
		return err
	}
	logger.Info("Starting headsup", "version", version, "config", g.Config)

	ctx, cancel := signalContext(logger)
	defer cancel()

	seed := cfg.AI.Seed
	if c.Seed != nil {
		seed = *c.Seed
	}
	delay := cfg.AI.ThinkDelay
	if c.NoDelay {
		delay = 0
	}

	onHand, closeHistory, err := recorder(ctx, c.History, cfg.History.Path, cfg.Table.SmallBlind, cfg.Table.BigBlind, logger)
	if err != nil {
		return err
	}
	defer closeHistory()

	res, err := tui.Run(ctx, tui.SessionConfig{
		HumanName:     c.Name,
		AIName:        cfg.AI.Name,
		SmallBlind:    cfg.Table.SmallBlind,
		BigBlind:      cfg.Table.BigBlind,
		StartingStack: cfg.Table.StartingStack,
		MaxHands:      c.Hands,
		Seed:          seed,
		ThinkDelay:    delay,
		Engine:        cfg.EngineConfig(),
		OnHand:        onHand,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(" ♠ ♥ headsup ♦ ♣ "))
	fmt.Printf("%d hands played. %s %d, %s %d.\n", res.Hands, c.Name, res.Stacks[0], cfg.AI.Name, res.Stacks[1])
	return nil
}

// recorder opens the history store when a path is configured and returns a
// hand callback that records into one new session
func recorder(ctx context.Context, flagPath, cfgPath string, smallBlind, bigBlind int, logger *log.Logger) (func(*table.HandResult), func(), error) {
	path := cfgPath
	if flagPath != "" {
		path = flagPath
	}
	if path == "" {
		return nil, func() {}, nil
	}

	store, err := history.Open(history.Config{Path: path, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	session, err := handid.New()
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	logger.Info("Recording hands", "db", path, "session", session)

	onHand := func(r *table.HandResult) {
		if _, err := store.Record(ctx, session, smallBlind, bigBlind, r); err != nil {
			logger.Error("Failed to record hand", "hand", r.Number, "error", err)
		}
	}
	return onHand, func() { store.Close() }, nil
}
