package tui

import (
	"context"
	"io"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/internal/table"
	"github.com/lox/headsup/poker"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func newTestModel(submit func(string) bool) *Model {
	if submit == nil {
		submit = func(string) bool { return true }
	}
	return NewModel([2]string{"You", "Daniel"}, 0, [2]int{200, 200}, submit, quietLogger())
}

func enter(m *Model, input string) tea.Cmd {
	m.actionInput.SetValue(input)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func TestModelLogsHand(t *testing.T) {
	t.Parallel()
	m := newTestModel(nil)

	events := []table.Event{
		{Type: table.EventHandStart, Hand: 1, Dealer: 1, Stacks: [2]int{200, 200}},
		{Type: table.EventPlayerAction, Hand: 1, Pot: 1, Action: &table.ActionRecord{Seat: 1, Player: "Daniel", Kind: table.PostSmallBlind, Amount: 1, Total: 1, Pot: 1}},
		{Type: table.EventPlayerAction, Hand: 1, Pot: 3, Action: &table.ActionRecord{Seat: 0, Player: "You", Kind: table.PostBigBlind, Amount: 2, Total: 2, Pot: 3}},
		{Type: table.EventPlayerAction, Hand: 1, Pot: 4, Action: &table.ActionRecord{Seat: 1, Player: "Daniel", Kind: table.Call, Amount: 1, Total: 2, Pot: 4}},
		{Type: table.EventPlayerAction, Hand: 1, Pot: 4, Action: &table.ActionRecord{Seat: 0, Player: "You", Kind: table.Check, Total: 2, Pot: 4}},
		{Type: table.EventStreetChange, Hand: 1, Round: strategy.Flop, Board: poker.MustParseCards("Ah 7c 2d"), Pot: 4},
	}
	for _, e := range events {
		m.Update(EventMsg{Event: e})
	}

	assert.Equal(t, []string{
		"*** HAND #1 *** Daniel deals",
		"Daniel posts small blind 1",
		"You posts big blind 2",
		"Daniel calls 1",
		"You checks",
		"*** FLOP *** [Ah 7c 2d]",
	}, m.Log())
	assert.Equal(t, 4, m.pot)
	assert.Len(t, m.board, 3)
}

func TestModelShowdownRevealsCards(t *testing.T) {
	t.Parallel()
	m := newTestModel(nil)

	r := &table.HandResult{
		Number:   3,
		Players:  [2]string{"You", "Daniel"},
		Hole:     [2][]poker.Card{poker.MustParseCards("As Ad"), poker.MustParseCards("Kc Qc")},
		Board:    poker.MustParseCards("Ah 7c 2d 9s 3h"),
		Pot:      20,
		Winner:   0,
		Won:      [2]int{20, 0},
		Net:      [2]int{10, -10},
		Stacks:   [2]int{210, 190},
		EndedOn:  strategy.River,
		Showdown: &poker.Showdown{First: poker.ThreeOfAKind, Second: poker.HighCard, Outcome: poker.FirstWins},
	}
	m.Update(EventMsg{Event: table.Event{Type: table.EventHandEnd, Hand: 3, Result: r}})

	lines := m.Log()
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "Daniel shows [Kc Qc] (High Card)", lines[0])
	assert.Equal(t, "You show [As Ad] (Three of a Kind)", lines[1])
	assert.Equal(t, [2]int{210, 190}, m.stacks)
}

func TestModelSubmitsOnlyOnTurn(t *testing.T) {
	t.Parallel()
	var submitted []string
	m := newTestModel(func(s string) bool {
		submitted = append(submitted, s)
		return true
	})

	enter(m, "call")
	assert.Empty(t, submitted)
	assert.Equal(t, "Not your turn", m.Status())

	m.Update(TurnMsg{View: facingRaise})
	assert.Empty(t, m.Status())
	enter(m, "call")
	assert.Equal(t, []string{"call"}, submitted)

	m.Update(InvalidCommandMsg{Input: "raise 3", Err: assert.AnError})
	assert.Equal(t, assert.AnError.Error(), m.Status())
}

func TestModelQuits(t *testing.T) {
	t.Parallel()

	m := newTestModel(nil)
	cmd := enter(m, "quit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m = newTestModel(nil)
	m.Update(GameOverMsg{Summary: "Daniel wins after 12 hands."})
	assert.Contains(t, m.Log(), "Daniel wins after 12 hands.")
	cmd = enter(m, "")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelView(t *testing.T) {
	t.Parallel()
	m := newTestModel(nil)
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(EventMsg{Event: table.Event{Type: table.EventHandStart, Hand: 1, Dealer: 0, Stacks: [2]int{199, 198}}})
	m.Update(TurnMsg{View: table.View{Hole: poker.MustParseCards("As Kd"), CurrentBet: 2, OwnBet: 1, OwnStack: 199, OpponentStack: 198, BigBlind: 2, Pot: 3}})

	out := m.View()
	assert.Contains(t, out, "Hand #1")
	assert.Contains(t, out, "Premium")
	assert.Contains(t, out, "call 1")
}

func TestHumanAgent(t *testing.T) {
	t.Parallel()
	msgs := make(chan tea.Msg, 8)
	h := NewHumanAgent(func(m tea.Msg) { msgs <- m }, quietLogger())

	assert.False(t, h.Submit("call"), "nobody is waiting")

	type result struct {
		d   strategy.Decision
		err error
	}
	done := make(chan result, 1)
	go func() {
		d, err := h.Act(context.Background(), facingRaise)
		done <- result{d, err}
	}()

	turn := receiveMsg[TurnMsg](t, msgs)
	assert.Equal(t, facingRaise.CurrentBet, turn.View.CurrentBet)

	submit(t, h, "raise 7")
	invalid := receiveMsg[InvalidCommandMsg](t, msgs)
	assert.Equal(t, "raise 7", invalid.Input)

	submit(t, h, "raise 12")
	r := <-done
	require.NoError(t, r.err)
	assert.Equal(t, strategy.Raise, r.d.Action)
	assert.Equal(t, 10, r.d.Amount)
}

func TestHumanAgentQuitAndCancel(t *testing.T) {
	t.Parallel()
	h := NewHumanAgent(func(tea.Msg) {}, quietLogger())

	done := make(chan error, 1)
	go func() {
		_, err := h.Act(context.Background(), unopened)
		done <- err
	}()
	submit(t, h, "quit")
	assert.ErrorIs(t, <-done, ErrQuit)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Act(ctx, unopened)
	assert.ErrorIs(t, err, context.Canceled)
}

// submit retries until Act is waiting for input
func submit(t *testing.T, h *HumanAgent, input string) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Submit(input) }, 2*time.Second, time.Millisecond)
}

func receiveMsg[T tea.Msg](t *testing.T, msgs <-chan tea.Msg) T {
	t.Helper()
	select {
	case m := <-msgs:
		v, ok := m.(T)
		require.True(t, ok, "unexpected %T", m)
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("no message")
	}
	var zero T
	return zero
}
