package strategy

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/poker"
)

// ErrInvalidSituation is wrapped by every rejected decision request
var ErrInvalidSituation = errors.New("invalid situation")

// Action is the kind of move the engine chooses
type Action uint8

const (
	Fold Action = iota
	Check
	Raise
)

func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case Check:
		return "check"
	case Raise:
		return "raise"
	default:
		return "unknown"
	}
}

// Decision is the engine's answer. For Raise, Amount is the number of
// additional chips put in; a call is a Raise of exactly the amount owed.
type Decision struct {
	Action     Action
	Amount     int
	Reasoning  string
	Confidence float64
}

// IsCall reports whether the decision only matches the outstanding bet
func (d Decision) IsCall(owed int) bool {
	return d.Action == Raise && owed > 0 && d.Amount <= owed
}

// Situation is everything the engine is told before acting
type Situation struct {
	CurrentBet    int // opponent's total bet this round
	LastOwnBet    int // engine's total bet this round
	Pot           int // all chips in the middle, including CurrentBet
	OwnStack      int
	OpponentStack int
	Hole          []poker.Card
	Board         []poker.Card
	Round         Round
}

// Owed returns the chips needed to call
func (s Situation) Owed() int {
	return s.CurrentBet - s.LastOwnBet
}

// Validate checks the situation for internal consistency
func (s Situation) Validate() error {
	if !s.Round.Valid() {
		return fmt.Errorf("%w: round %d outside 0..3", ErrInvalidSituation, int(s.Round))
	}
	if len(s.Hole) != 2 {
		return fmt.Errorf("%w: need 2 hole cards, got %d", ErrInvalidSituation, len(s.Hole))
	}
	if want := s.Round.BoardSize(); len(s.Board) != want {
		return fmt.Errorf("%w: %s needs %d board cards, got %d", ErrInvalidSituation, s.Round, want, len(s.Board))
	}

	seen := make(map[poker.Card]bool, 7)
	for _, c := range append(append([]poker.Card{}, s.Hole...), s.Board...) {
		if !c.Valid() {
			return fmt.Errorf("%w: %v is not a playing card", ErrInvalidSituation, c)
		}
		if seen[c] {
			return fmt.Errorf("%w: %s appears twice", ErrInvalidSituation, c)
		}
		seen[c] = true
	}

	switch {
	case s.CurrentBet < 0, s.LastOwnBet < 0, s.Pot < 0, s.OwnStack < 0, s.OpponentStack < 0:
		return fmt.Errorf("%w: chip amounts must not be negative", ErrInvalidSituation)
	case s.Owed() < 0:
		return fmt.Errorf("%w: own bet %d exceeds current bet %d", ErrInvalidSituation, s.LastOwnBet, s.CurrentBet)
	case s.Pot < s.Owed():
		return fmt.Errorf("%w: pot %d smaller than the %d owed", ErrInvalidSituation, s.Pot, s.Owed())
	}
	return nil
}

// Config tunes an Engine. Zero fields take defaults.
type Config struct {
	Policy *Policy
	// MinBet is the smallest bet the engine makes, normally the big blind
	MinBet int
	// BlindIncrement is the largest owed amount that does not narrow the range
	BlindIncrement int
	// SkipOwnBetNarrowing disables narrowing the range after the engine's own bets
	SkipOwnBetNarrowing bool
	Logger              *log.Logger
}

// Engine decides for one AI seat. It owns the opponent range for the hand in
// progress, so one Engine must not serve two tables at once.
type Engine struct {
	rng    *rand.Rand
	opp    *Range
	policy Policy
	cfg    Config
	logger *log.Logger
}

// NewEngine creates an engine drawing randomness from rng
func NewEngine(rng *rand.Rand, cfg Config) *Engine {
	policy := DefaultPolicy()
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}
	if cfg.MinBet <= 0 {
		cfg.MinBet = 2
	}
	if cfg.BlindIncrement <= 0 {
		cfg.BlindIncrement = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		rng:    rng,
		opp:    NewRange(),
		policy: policy,
		cfg:    cfg,
		logger: logger.WithPrefix("ai"),
	}
}

// ResetRange starts a new hand with every opponent holding possible
func (e *Engine) ResetRange() {
	e.opp.Reset()
}

// Range exposes the opponent model of the current hand
func (e *Engine) Range() *Range {
	return e.opp
}

// Decide picks the engine's action for s
func (e *Engine) Decide(s Situation) (Decision, error) {
	if err := s.Validate(); err != nil {
		return Decision{}, err
	}

	// never owe more than can be paid
	if s.Owed() > s.OwnStack {
		s.CurrentBet = s.LastOwnBet + s.OwnStack
	}

	confidence := e.assess(s)
	d := e.choose(confidence, s)

	e.logger.Debug("decision",
		"round", s.Round,
		"hole", poker.FormatCards(s.Hole),
		"owed", s.Owed(),
		"pot", s.Pot,
		"live", e.opp.Size(),
		"confidence", fmt.Sprintf("%.3f", confidence),
		"action", d.Action,
		"amount", d.Amount,
		"reason", d.Reasoning)
	return d, nil
}

// assess prunes the range with everything known and returns the share of it the engine beats
func (e *Engine) assess(s Situation) float64 {
	e.opp.ExcludeCards(s.Hole...)
	e.opp.ExcludeCards(s.Board...)

	cards := make([]poker.Card, 0, 2+len(s.Board))
	cards = append(cards, s.Hole...)
	cards = append(cards, s.Board...)
	own := score(cards, s.Round)

	e.opp.Rescore(s.Board, s.Round)
	if owed := s.Owed(); owed > e.cfg.BlindIncrement {
		removed := e.opp.NarrowByBet(owed, s.Pot-owed)
		e.logger.Debug("range narrowed by bet", "owed", owed, "removed", removed, "live", e.opp.Size())
	}
	return e.opp.Confidence(own)
}

// choose applies the policy to a known confidence
func (e *Engine) choose(confidence float64, s Situation) Decision {
	owed := s.Owed()

	if owed == 0 {
		if !e.policy.WantsBet(confidence, randutil.Roll100(e.rng)) {
			return Decision{Action: Check, Reasoning: "not confident enough to bet", Confidence: confidence}
		}
		return e.raise(confidence, s, "value bet")
	}

	breakEven := BreakEven(owed, s.Pot)
	if confidence < breakEven {
		return Decision{
			Action:     Fold,
			Reasoning:  fmt.Sprintf("confidence %.2f below break-even %.2f", confidence, breakEven),
			Confidence: confidence,
		}
	}
	if owed == s.OwnStack {
		return Decision{Action: Raise, Amount: owed, Reasoning: "all-in call", Confidence: confidence}
	}
	if s.OpponentStack == 0 {
		return Decision{Action: Raise, Amount: owed, Reasoning: "call, opponent all in", Confidence: confidence}
	}

	aggression := (confidence - breakEven) / (1 - breakEven)
	if !e.policy.WantsRaise(aggression, randutil.Roll100(e.rng)) {
		return Decision{Action: Raise, Amount: owed, Reasoning: "call", Confidence: confidence}
	}
	return e.raise(confidence, s, "raise for value")
}

func (e *Engine) raise(confidence float64, s Situation, reason string) Decision {
	bet := BetSize(confidence, s.Pot, s.CurrentBet, s.OwnStack, e.cfg.MinBet, randutil.Roll100(e.rng))
	amount := min(s.Owed()+bet, s.OwnStack)
	if amount <= 0 {
		return Decision{Action: Check, Reasoning: "no chips behind", Confidence: confidence}
	}
	if amount == s.OwnStack {
		reason = "all in"
	}

	// the opponent has to call this bet, so their range can be narrowed now
	if !e.cfg.SkipOwnBetNarrowing && bet > e.cfg.BlindIncrement {
		e.opp.NarrowByBet(bet, s.Pot)
	}
	return Decision{Action: Raise, Amount: amount, Reasoning: reason, Confidence: confidence}
}
