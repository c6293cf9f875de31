package strategy

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/poker"
)

func newTestEngine(seed int64, cfg Config) *Engine {
	cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	return NewEngine(randutil.New(seed), cfg)
}

func TestFacingPotSizedBet(t *testing.T) {
	t.Parallel()
	e := newTestEngine(1, Config{})
	s := Situation{
		CurrentBet:    100,
		Pot:           100,
		OwnStack:      300,
		OpponentStack: 100,
		Hole:          poker.MustParseCards("9h 9d"),
		Round:         PreFlop,
	}
	require.Equal(t, 0.5, BreakEven(s.Owed(), s.Pot))

	for range 50 {
		d := e.choose(0.4, s)
		require.Equal(t, Fold, d.Action)
	}
	for range 50 {
		d := e.choose(0.9, s)
		require.Equal(t, Raise, d.Action)
		require.GreaterOrEqual(t, d.Amount, 100, "must at least call")
		require.LessOrEqual(t, d.Amount, s.OwnStack)
	}
}

func TestAllInCallWhenOwingWholeStack(t *testing.T) {
	t.Parallel()
	e := newTestEngine(2, Config{})
	s := Situation{
		CurrentBet:    80,
		Pot:           100,
		OwnStack:      50,
		OpponentStack: 120,
		Hole:          poker.MustParseCards("Ah Ad"),
		Round:         PreFlop,
	}
	d, err := e.Decide(s)
	require.NoError(t, err)
	assert.Equal(t, Raise, d.Action)
	assert.Equal(t, 50, d.Amount)
}

func TestCallsWhenOpponentAllIn(t *testing.T) {
	t.Parallel()
	e := newTestEngine(3, Config{})
	s := Situation{
		CurrentBet:    40,
		Pot:           60,
		OwnStack:      200,
		OpponentStack: 0,
		Hole:          poker.MustParseCards("Ah Ad"),
		Round:         PreFlop,
	}
	for range 20 {
		e.ResetRange()
		d, err := e.Decide(s)
		require.NoError(t, err)
		require.Equal(t, Raise, d.Action)
		require.Equal(t, 40, d.Amount)
		require.True(t, d.IsCall(s.Owed()))
	}
}

func TestFoldsTrashToOverbet(t *testing.T) {
	t.Parallel()
	e := newTestEngine(4, Config{})
	d, err := e.Decide(Situation{
		CurrentBet:    150,
		LastOwnBet:    2,
		Pot:           160,
		OwnStack:      198,
		OpponentStack: 48,
		Hole:          poker.MustParseCards("7h 2c"),
		Round:         PreFlop,
	})
	require.NoError(t, err)
	assert.Equal(t, Fold, d.Action)
	assert.Less(t, e.Range().Size(), 1326/2)
}

func TestNeverFoldsTheNuts(t *testing.T) {
	t.Parallel()
	e := newTestEngine(5, Config{})
	s := Situation{
		Pot:           40,
		OwnStack:      180,
		OpponentStack: 180,
		Hole:          poker.MustParseCards("Ah Kh"),
		Board:         poker.MustParseCards("Qh Jh Th 2c 3d"),
		Round:         River,
	}
	for range 20 {
		e.ResetRange()
		d, err := e.Decide(s)
		require.NoError(t, err)
		require.Equal(t, Raise, d.Action, "confidence %.2f", d.Confidence)
		require.Equal(t, 1.0, d.Confidence)
	}
}

func TestOwnBetNarrowsRange(t *testing.T) {
	t.Parallel()
	s := Situation{
		Pot:           40,
		OwnStack:      180,
		OpponentStack: 180,
		Hole:          poker.MustParseCards("Ah Kh"),
		Board:         poker.MustParseCards("Qh Jh Th 2c 3d"),
		Round:         River,
	}

	narrowing := newTestEngine(6, Config{})
	_, err := narrowing.Decide(s)
	require.NoError(t, err)

	plain := newTestEngine(6, Config{SkipOwnBetNarrowing: true})
	_, err = plain.Decide(s)
	require.NoError(t, err)

	// both exclude the same 7 known cards; only one narrows after betting
	assert.Equal(t, 45*44/2, plain.Range().Size())
	assert.Less(t, narrowing.Range().Size(), plain.Range().Size())
}

func TestDecideExcludesKnownCards(t *testing.T) {
	t.Parallel()
	e := newTestEngine(7, Config{SkipOwnBetNarrowing: true})
	s := Situation{
		CurrentBet:    2,
		LastOwnBet:    1,
		Pot:           3,
		OwnStack:      199,
		OpponentStack: 198,
		Hole:          poker.MustParseCards("Ks Qs"),
		Round:         PreFlop,
	}
	_, err := e.Decide(s)
	require.NoError(t, err)
	// owing a single chip does not narrow; only the two hole cards are removed
	assert.Equal(t, 50*49/2, e.Range().Size())

	e.ResetRange()
	assert.Equal(t, 1326, e.Range().Size())
}

func TestDecideRejectsInvalidSituations(t *testing.T) {
	t.Parallel()
	valid := Situation{
		CurrentBet:    10,
		Pot:           20,
		OwnStack:      100,
		OpponentStack: 100,
		Hole:          poker.MustParseCards("Ah Kd"),
		Board:         poker.MustParseCards("2c 3c 4c"),
		Round:         Flop,
	}

	tests := []struct {
		name   string
		mutate func(s *Situation)
	}{
		{"bad round", func(s *Situation) { s.Round = 7 }},
		{"one hole card", func(s *Situation) { s.Hole = s.Hole[:1] }},
		{"board does not match round", func(s *Situation) { s.Round = Turn }},
		{"duplicate card", func(s *Situation) { s.Board = poker.MustParseCards("Ah 3c 4c") }},
		{"sentinel card", func(s *Situation) { s.Hole = []poker.Card{poker.Absent, poker.NewCard(poker.Two, poker.Hearts)} }},
		{"negative stack", func(s *Situation) { s.OwnStack = -1 }},
		{"own bet above current", func(s *Situation) { s.LastOwnBet = 20 }},
		{"pot smaller than owed", func(s *Situation) { s.Pot = 5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := valid
			s.Hole = append([]poker.Card{}, valid.Hole...)
			s.Board = append([]poker.Card{}, valid.Board...)
			tt.mutate(&s)

			e := newTestEngine(8, Config{})
			_, err := e.Decide(s)
			require.ErrorIs(t, err, ErrInvalidSituation)
		})
	}

	e := newTestEngine(8, Config{})
	_, err := e.Decide(valid)
	require.NoError(t, err)
}

func TestDecisionsAreReproducible(t *testing.T) {
	t.Parallel()
	s := Situation{
		CurrentBet:    6,
		LastOwnBet:    2,
		Pot:           8,
		OwnStack:      198,
		OpponentStack: 194,
		Hole:          poker.MustParseCards("Jc Tc"),
		Round:         PreFlop,
	}
	a, b := newTestEngine(99, Config{}), newTestEngine(99, Config{})
	for range 10 {
		a.ResetRange()
		b.ResetRange()
		da, err := a.Decide(s)
		require.NoError(t, err)
		db, err := b.Decide(s)
		require.NoError(t, err)
		require.Equal(t, da, db)
	}
}
