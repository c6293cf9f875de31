package table

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/poker"
)

func preFlopView() View {
	return View{
		Hand:          1,
		Seat:          0,
		Dealer:        true,
		Round:         strategy.PreFlop,
		Hole:          poker.MustParseCards("Qs Qd"),
		Pot:           3,
		CurrentBet:    2,
		OwnBet:        1,
		OwnStack:      199,
		OpponentStack: 198,
		OpponentBet:   2,
		BigBlind:      2,
	}
}

type actResult struct {
	d   strategy.Decision
	err error
}

func TestAIAgentWaitsThinkDelay(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	engine := strategy.NewEngine(randutil.New(5), strategy.Config{Logger: discard()})
	agent := NewAIAgent(engine, clock, 3*time.Second)

	done := make(chan actResult, 1)
	go func() {
		d, err := agent.Act(ctx, preFlopView())
		done <- actResult{d, err}
	}()

	select {
	case <-done:
		t.Fatal("answered before the think delay elapsed")
	default:
	}

	for {
		select {
		case r := <-done:
			require.NoError(t, r.err)
			assert.NotEqual(t, strategy.Fold, r.d.Action, "queens do not fold to the blind")
			return
		case <-ctx.Done():
			t.Fatal("agent never answered")
		default:
		}
		clock.Advance(3 * time.Second).MustWait(ctx)
	}
}

func TestAIAgentHonoursCancellation(t *testing.T) {
	t.Parallel()
	clock := quartz.NewMock(t)
	engine := strategy.NewEngine(randutil.New(5), strategy.Config{Logger: discard()})
	agent := NewAIAgent(engine, clock, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := agent.Act(ctx, preFlopView())
	require.ErrorIs(t, err, context.Canceled)
}

func TestAIAgentResetsRangeEachHand(t *testing.T) {
	t.Parallel()
	engine := strategy.NewEngine(randutil.New(6), strategy.Config{Logger: discard()})
	agent := NewAIAgent(engine, nil, 0)

	_, err := agent.Act(context.Background(), preFlopView())
	require.NoError(t, err)
	assert.Less(t, engine.Range().Size(), poker.ComboCount)

	agent.NewHand(2, 1)
	assert.Equal(t, poker.ComboCount, engine.Range().Size())
}

func TestCallingStation(t *testing.T) {
	t.Parallel()
	v := preFlopView()
	d, err := CallingStation{}.Act(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, strategy.Decision{Action: strategy.Raise, Amount: 1, Reasoning: "call"}, d)

	v.OwnBet = 2
	d, err = CallingStation{}.Act(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, strategy.Check, d.Action)
}

func TestRandomAgentOnlyMakesLegalMoves(t *testing.T) {
	t.Parallel()
	agent := NewRandomAgent(randutil.New(7))
	v := preFlopView()
	v.Hole = poker.MustParseCards("7h 2c")

	seen := map[strategy.Action]bool{}
	for range 500 {
		d, err := agent.Act(context.Background(), v)
		require.NoError(t, err)
		seen[d.Action] = true
		switch d.Action {
		case strategy.Check:
			t.Fatal("checked while owing chips")
		case strategy.Raise:
			require.True(t, d.Amount == v.Owed() || d.Amount >= v.MinRaise(), "amount %d", d.Amount)
			require.LessOrEqual(t, d.Amount, v.OwnStack)
		}
	}
	assert.True(t, seen[strategy.Fold])
	assert.True(t, seen[strategy.Raise])
}
