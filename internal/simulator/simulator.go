// Package simulator plays many heads-up matches between the AI and a scripted
// opponent and summarises the results.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/statistics"
	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/internal/table"
)

// Opponents lists the opponent types a simulation can be run against
var Opponents = []string{"fold", "call", "random", "ai"}

// Config holds configuration for running simulations
type Config struct {
	Matches       int
	HandsPerMatch int // zero plays each match until someone is broke
	Opponent      string
	Seed          int64
	Parallel      int
	SmallBlind    int
	BigBlind      int
	StartingStack int
	Timeout       time.Duration // per match
	Engine        strategy.Config
	// OnHand is called for every finished hand, from several goroutines at once
	OnHand func(match int, r *table.HandResult)
	Logger *log.Logger
}

// MatchResult describes one finished match; seat 0 is the AI
type MatchResult struct {
	Index  int
	Seed   int64
	Hands  int
	Stacks [2]int
	Winner int // -1 when neither player was ahead
	Busted bool
}

// Report is the outcome of a simulation
type Report struct {
	Opponent string
	Seed     int64
	Stats    *statistics.Statistics
	Matches  []MatchResult
}

// Record counts matches won, lost and drawn by the AI
func (r *Report) Record() (won, lost, drawn int) {
	for _, m := range r.Matches {
		switch m.Winner {
		case 0:
			won++
		case 1:
			lost++
		default:
			drawn++
		}
	}
	return won, lost, drawn
}

// Simulator runs heads-up matches
type Simulator struct {
	config Config
	logger *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config) (*Simulator, error) {
	if !slices.Contains(Opponents, config.Opponent) {
		return nil, fmt.Errorf("unknown opponent %q, want one of %v", config.Opponent, Opponents)
	}
	if config.Matches <= 0 {
		return nil, fmt.Errorf("matches must be positive, got %d", config.Matches)
	}
	if config.HandsPerMatch < 0 {
		return nil, fmt.Errorf("hands per match must not be negative, got %d", config.HandsPerMatch)
	}
	if config.Parallel <= 0 {
		config.Parallel = runtime.GOMAXPROCS(0)
	}
	if config.SmallBlind == 0 && config.BigBlind == 0 {
		config.SmallBlind, config.BigBlind = 1, 2
	}
	if config.StartingStack == 0 {
		config.StartingStack = 100 * config.BigBlind
	}
	if config.Timeout == 0 {
		config.Timeout = time.Minute
	}
	config.Seed = randutil.Seed(config.Seed)

	logger := config.Logger
	if logger == nil {
		logger = log.Default()
	}
	config.Engine.Logger = logger
	if config.Engine.MinBet == 0 {
		config.Engine.MinBet = config.BigBlind
	}
	return &Simulator{config: config, logger: logger.WithPrefix("sim")}, nil
}

// Run plays every match, at most Parallel at a time, and merges their
// statistics in match order so the report depends only on the seed.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	outcomes := make([]*matchOutcome, s.config.Matches)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Parallel)
	for m := range s.config.Matches {
		g.Go(func() error {
			out, err := s.playMatch(ctx, m)
			if err != nil {
				return err
			}
			outcomes[m] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Opponent: s.config.Opponent,
		Seed:     s.config.Seed,
		Stats:    &statistics.Statistics{},
	}
	for _, out := range outcomes {
		report.Stats.Merge(out.stats)
		report.Matches = append(report.Matches, out.result)
	}
	if err := report.Stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	return report, nil
}

type matchOutcome struct {
	result MatchResult
	stats  *statistics.Statistics
}

func (s *Simulator) playMatch(ctx context.Context, m int) (*matchOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	seed := randutil.Derive(s.config.Seed, m)
	engine := strategy.NewEngine(randutil.New(randutil.Derive(seed, 0)), s.config.Engine)
	opponent := s.newOpponent(seed)

	tbl, err := table.New(randutil.New(randutil.Derive(seed, 1)), table.Config{
		SmallBlind: s.config.SmallBlind,
		BigBlind:   s.config.BigBlind,
		Logger:     s.config.Logger,
	}, [2]*table.Player{
		{Name: "ai", Stack: s.config.StartingStack, Agent: table.NewAIAgent(engine, nil, 0)},
		{Name: s.config.Opponent, Stack: s.config.StartingStack, Agent: opponent},
	})
	if err != nil {
		return nil, err
	}

	stats := &statistics.Statistics{}
	err = tbl.Play(ctx, s.config.HandsPerMatch, func(r *table.HandResult) {
		stats.Add(HandStat(r, 0, seed, s.config.BigBlind))
		if s.config.OnHand != nil {
			s.config.OnHand(m, r)
		}
	})
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("match %d timed out after %v (seed %d): %w", m, s.config.Timeout, seed, err)
	case err != nil:
		return nil, fmt.Errorf("match %d (seed %d): %w", m, seed, err)
	}

	players := tbl.Players()
	result := MatchResult{
		Index:  m,
		Seed:   seed,
		Hands:  tbl.HandsPlayed(),
		Stacks: [2]int{players[0].Stack, players[1].Stack},
		Winner: tbl.Leader(),
		Busted: tbl.GameOver(),
	}
	s.logger.Debug("match finished", "match", m, "hands", result.Hands, "stacks", fmt.Sprintf("%d/%d", result.Stacks[0], result.Stacks[1]))
	return &matchOutcome{result: result, stats: stats}, nil
}

func (s *Simulator) newOpponent(seed int64) table.Agent {
	switch s.config.Opponent {
	case "fold":
		return table.Folder{}
	case "call":
		return table.CallingStation{}
	case "random":
		return table.NewRandomAgent(randutil.New(randutil.Derive(seed, 2)))
	default:
		mirror := strategy.NewEngine(randutil.New(randutil.Derive(seed, 3)), s.config.Engine)
		return table.NewAIAgent(mirror, nil, 0)
	}
}

// HandStat converts a table result into the statistics of seat
func HandStat(r *table.HandResult, seat int, seed int64, bigBlind int) statistics.HandResult {
	return statistics.HandResult{
		NetBB:          float64(r.Net[seat]) / float64(bigBlind),
		Seed:           seed,
		Dealer:         r.Dealer == seat,
		WentToShowdown: r.Showdown != nil,
		FinalPotSize:   r.Pot,
		PotBB:          float64(r.Pot) / float64(bigBlind),
		EndedOn:        r.EndedOn,
	}
}

// PrintSummary writes a summary of the report to w
func PrintSummary(w io.Writer, report *Report) {
	stats := report.Stats
	low, high := stats.ConfidenceInterval95()
	won, lost, drawn := report.Record()

	fmt.Fprintf(w, "\n=== FINAL RESULTS vs %s (seed %d) ===\n", report.Opponent, report.Seed)
	fmt.Fprintf(w, "Matches: %d won, %d lost, %d undecided\n", won, lost, drawn)
	fmt.Fprintf(w, "Hands played: %d\n", stats.Hands)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Mean: %.4f bb/hand\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f bb/hand\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f bb\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f bb\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] bb/hand\n", low, high)
	fmt.Fprintf(w, "Percentiles: P5=%.3f, P25=%.3f, P75=%.3f, P95=%.3f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))

	fmt.Fprintf(w, "\n=== PROFIT SOURCE ANALYSIS ===\n")
	if wins := stats.ShowdownWins + stats.NonShowdownWins; wins > 0 {
		fmt.Fprintf(w, "Winning hands: %d showdown (%.1f%%), %d fold equity (%.1f%%)\n",
			stats.ShowdownWins, float64(stats.ShowdownWins)/float64(wins)*100,
			stats.NonShowdownWins, float64(stats.NonShowdownWins)/float64(wins)*100)
	}
	if stats.Hands > 0 {
		fmt.Fprintf(w, "Non-showdown: %.2f bb/hand avg (all hands)\n", stats.NonShowdownBB/float64(stats.Hands))
		fmt.Fprintf(w, "Showdown: %.2f bb/hand avg (all hands)\n", stats.ShowdownBB/float64(stats.Hands))
	}

	fmt.Fprintf(w, "\n=== POT SIZE ANALYSIS ===\n")
	fmt.Fprintf(w, "Max pot observed: %d chips (%.1f bb)\n", stats.MaxPotChips, stats.MaxPotBB)
	if stats.Hands > 0 {
		fmt.Fprintf(w, "Big pots (>=%dbb): %d hands (%.1f%%), %.2f bb total\n",
			statistics.BigPotBB, stats.BigPots, float64(stats.BigPots)/float64(stats.Hands)*100, stats.BigPotsBB)
	}

	fmt.Fprintf(w, "\n=== POSITION ANALYSIS ===\n")
	fmt.Fprintf(w, "Button: %d hands, %.3f bb/hand\n", stats.Button.Hands, stats.Button.Mean())
	fmt.Fprintf(w, "Big blind: %d hands, %.3f bb/hand\n", stats.BigBlind.Hands, stats.BigBlind.Mean())

	fmt.Fprintf(w, "\n=== HAND ENDINGS ===\n")
	for round := strategy.PreFlop; round <= strategy.River; round++ {
		fmt.Fprintf(w, "%s: %d\n", round, stats.EndedOn[round])
	}
}
