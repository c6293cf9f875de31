package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/internal/table"
)

// SessionConfig describes a game between the terminal user and the AI
type SessionConfig struct {
	HumanName     string
	AIName        string
	SmallBlind    int
	BigBlind      int
	StartingStack int
	MaxHands      int // zero plays until someone is broke
	Seed          int64
	ThinkDelay    time.Duration
	Engine        strategy.Config
	Clock         quartz.Clock
	// OnHand is called on the game goroutine after every finished hand
	OnHand  func(*table.HandResult)
	Logger  *log.Logger
	Options []tea.ProgramOption
}

// SessionResult is how the session ended
type SessionResult struct {
	Hands  int
	Stacks [2]int
	Quit   bool
}

// Run plays a session in the terminal. The human sits in seat 0 and deals
// the first hand. It returns when the game ends and the user dismisses the
// screen, or when ctx is cancelled.
func Run(ctx context.Context, cfg SessionConfig) (SessionResult, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	seed := randutil.Seed(cfg.Seed)
	logger.Info("Starting session", "seed", seed, "human", cfg.HumanName, "ai", cfg.AIName)

	var program *tea.Program
	send := func(msg tea.Msg) { program.Send(msg) }

	human := NewHumanAgent(send, logger)
	engineCfg := cfg.Engine
	if engineCfg.Logger == nil {
		engineCfg.Logger = logger
	}
	ai := table.NewAIAgent(strategy.NewEngine(randutil.New(randutil.Derive(seed, 0)), engineCfg), cfg.Clock, cfg.ThinkDelay)

	players := [2]*table.Player{
		{Name: cfg.HumanName, Stack: cfg.StartingStack, Agent: human},
		{Name: cfg.AIName, Stack: cfg.StartingStack, Agent: ai},
	}
	tbl, err := table.New(randutil.New(randutil.Derive(seed, 1)), table.Config{
		SmallBlind: cfg.SmallBlind,
		BigBlind:   cfg.BigBlind,
		Observer:   func(e table.Event) { send(EventMsg{Event: e}) },
		Logger:     logger,
	}, players)
	if err != nil {
		return SessionResult{}, err
	}

	model := NewModel([2]string{cfg.HumanName, cfg.AIName}, 0,
		[2]int{cfg.StartingStack, cfg.StartingStack}, human.Submit, logger)
	opts := cfg.Options
	if opts == nil {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	program = tea.NewProgram(model, append(opts, tea.WithContext(ctx))...)

	gameCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		err := tbl.Play(gameCtx, cfg.MaxHands, cfg.OnHand)
		msg := GameOverMsg{Summary: summarize(tbl)}
		if err != nil && !errors.Is(err, ErrQuit) && !errors.Is(err, context.Canceled) {
			msg.Err = err
		}
		send(msg)
		done <- err
	}()

	_, runErr := program.Run()
	cancel()
	gameErr := <-done

	res := SessionResult{
		Hands:  tbl.HandsPlayed(),
		Stacks: [2]int{players[0].Stack, players[1].Stack},
		Quit:   errors.Is(gameErr, ErrQuit),
	}
	logger.Info("Session finished", "hands", res.Hands, "stacks", fmt.Sprintf("%d/%d", res.Stacks[0], res.Stacks[1]))

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return res, fmt.Errorf("terminal: %w", runErr)
	}
	if gameErr != nil && !errors.Is(gameErr, ErrQuit) && !errors.Is(gameErr, context.Canceled) {
		return res, gameErr
	}
	return res, nil
}

func summarize(tbl *table.Table) string {
	p := tbl.Players()
	switch {
	case p[0].Stack == 0:
		return fmt.Sprintf("%s wins after %d hands.", p[1].Name, tbl.HandsPlayed())
	case p[1].Stack == 0:
		return fmt.Sprintf("%s wins after %d hands.", p[0].Name, tbl.HandsPlayed())
	}
	return fmt.Sprintf("After %d hands: %s %d, %s %d.", tbl.HandsPlayed(), p[0].Name, p[0].Stack, p[1].Name, p[1].Stack)
}
