package table

import (
	"context"
	rand "math/rand/v2"
	"time"

	"github.com/coder/quartz"

	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/poker"
)

// Agent represents any entity (human or AI) that can make decisions for a seat.
// For a Raise, Decision.Amount is the number of chips added; calling is a
// Raise of exactly the amount owed.
type Agent interface {
	Act(ctx context.Context, v View) (strategy.Decision, error)
}

// HandListener is implemented by agents that keep per-hand state
type HandListener interface {
	NewHand(hand, seat int)
}

// AIAgent plays a seat with a strategy.Engine
type AIAgent struct {
	engine *strategy.Engine
	clock  quartz.Clock
	delay  time.Duration
}

// NewAIAgent wraps engine; each answer is held back for delay on clock
func NewAIAgent(engine *strategy.Engine, clock quartz.Clock, delay time.Duration) *AIAgent {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &AIAgent{engine: engine, clock: clock, delay: delay}
}

// NewHand clears the opponent model
func (a *AIAgent) NewHand(int, int) {
	a.engine.ResetRange()
}

// Engine returns the wrapped engine
func (a *AIAgent) Engine() *strategy.Engine {
	return a.engine
}

// Act decides and then waits out the think delay
func (a *AIAgent) Act(ctx context.Context, v View) (strategy.Decision, error) {
	d, err := a.engine.Decide(v.Situation())
	if err != nil {
		return strategy.Decision{}, err
	}
	if a.delay <= 0 {
		return d, nil
	}

	timer := a.clock.NewTimer(a.delay, "ai", "think")
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return strategy.Decision{}, ctx.Err()
	case <-timer.C:
		return d, nil
	}
}

// CallingStation checks when it can and calls everything else
type CallingStation struct{}

// Act checks or calls
func (CallingStation) Act(_ context.Context, v View) (strategy.Decision, error) {
	if v.CanCheck() {
		return strategy.Decision{Action: strategy.Check, Reasoning: "check"}, nil
	}
	return strategy.Decision{Action: strategy.Raise, Amount: v.Owed(), Reasoning: "call"}, nil
}

// Folder gives up whenever it owes chips
type Folder struct{}

// Act checks or folds
func (Folder) Act(_ context.Context, v View) (strategy.Decision, error) {
	if v.CanCheck() {
		return strategy.Decision{Action: strategy.Check, Reasoning: "check"}, nil
	}
	return strategy.Decision{Action: strategy.Fold, Reasoning: "fold"}, nil
}

// RandomAgent plays random legal moves, folding weak holdings more often
type RandomAgent struct {
	rng *rand.Rand
}

// NewRandomAgent creates a random player drawing from rng
func NewRandomAgent(rng *rand.Rand) *RandomAgent {
	return &RandomAgent{rng: rng}
}

var foldChance = map[poker.HoleClass]int{
	poker.ClassPremium: 0,
	poker.ClassStrong:  10,
	poker.ClassMedium:  25,
	poker.ClassWeak:    40,
	poker.ClassTrash:   60,
}

// Act picks fold, check/call or a raise between the minimum and all-in
func (r *RandomAgent) Act(_ context.Context, v View) (strategy.Decision, error) {
	roll := randutil.Roll100(r.rng)
	class := poker.ClassifyHole(v.Hole[0], v.Hole[1])

	if !v.CanCheck() && roll < foldChance[class] {
		return strategy.Decision{Action: strategy.Fold, Reasoning: "random fold with " + string(class)}, nil
	}
	if v.CanRaise() && roll >= 80 {
		lo, hi := v.MinRaise(), v.OwnStack
		amount := lo
		if hi > lo {
			// favour small raises; shove one time in ten
			if r.rng.IntN(10) == 0 {
				amount = hi
			} else {
				amount = lo + r.rng.IntN(min(hi-lo, v.Pot)+1)
			}
		}
		return strategy.Decision{Action: strategy.Raise, Amount: amount, Reasoning: "random raise"}, nil
	}
	return CallingStation{}.Act(context.Background(), v)
}
