// Package table plays heads-up hold'em hands between two agents.
//
// The dealer posts the small blind and acts first before the flop; the other
// seat posts the big blind and acts first on every later street.
package table

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/poker"
)

var (
	// ErrIllegalAction is wrapped when an agent answers with a move the rules forbid
	ErrIllegalAction = errors.New("illegal action")
	// ErrGameOver is returned once a player has no chips left
	ErrGameOver = errors.New("game over")
)

// Source supplies the cards of each hand. Hole cards are dealt two at a time,
// the big blind first, followed by three, one and one board cards.
type Source interface {
	Shuffle()
	Deal(n int) ([]poker.Card, error)
}

// Config describes the table
type Config struct {
	SmallBlind int
	BigBlind   int
	// Source defaults to a shoe shuffled with the table's rng
	Source   Source
	Observer Observer
	Logger   *log.Logger
}

// Player is a seat at the table
type Player struct {
	Name  string
	Stack int
	Agent Agent
}

// Table holds the two seats between hands
type Table struct {
	cfg     Config
	players [2]*Player
	dealer  int
	source  Source
	hands   int
	logger  *log.Logger
}

// New seats two players. Seat 0 deals the first hand.
func New(rng *rand.Rand, cfg Config, players [2]*Player) (*Table, error) {
	if cfg.SmallBlind <= 0 || cfg.BigBlind <= cfg.SmallBlind {
		return nil, fmt.Errorf("blinds %d/%d: big blind must exceed a positive small blind", cfg.SmallBlind, cfg.BigBlind)
	}
	for i, p := range players {
		if p == nil || p.Agent == nil {
			return nil, fmt.Errorf("seat %d has no agent", i)
		}
		if p.Stack <= 0 {
			return nil, fmt.Errorf("seat %d (%s) has no chips", i, p.Name)
		}
	}

	source := cfg.Source
	if source == nil {
		source = poker.NewShoe(rng)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Table{
		cfg:     cfg,
		players: players,
		source:  source,
		logger:  logger.WithPrefix("table"),
	}, nil
}

// Players returns both seats
func (t *Table) Players() [2]*Player {
	return t.players
}

// Dealer returns the seat that deals the next hand
func (t *Table) Dealer() int {
	return t.dealer
}

// HandsPlayed returns the number of completed hands
func (t *Table) HandsPlayed() int {
	return t.hands
}

// GameOver reports whether either player is out of chips
func (t *Table) GameOver() bool {
	return t.players[0].Stack == 0 || t.players[1].Stack == 0
}

// Leader returns the seat with more chips, or -1 when level
func (t *Table) Leader() int {
	switch a, b := t.players[0].Stack, t.players[1].Stack; {
	case a > b:
		return 0
	case b > a:
		return 1
	default:
		return -1
	}
}

// PlayHand plays one complete hand and passes the deal. If an agent fails
// or acts illegally the hand is void and both stacks are restored.
func (t *Table) PlayHand(ctx context.Context) (*HandResult, error) {
	if t.GameOver() {
		return nil, ErrGameOver
	}

	h := &hand{
		table:  t,
		number: t.hands + 1,
		dealer: t.dealer,
		start:  [2]int{t.players[0].Stack, t.players[1].Stack},
	}
	result, err := h.play(ctx)
	if err != nil {
		t.players[0].Stack, t.players[1].Stack = h.start[0], h.start[1]
		return nil, err
	}

	t.hands++
	t.dealer = 1 - t.dealer
	t.logger.Info("hand finished",
		"hand", result.Number,
		"winner", winnerName(result),
		"pot", result.Pot,
		"ended", result.EndedOn,
		"stacks", fmt.Sprintf("%d/%d", t.players[0].Stack, t.players[1].Stack))
	t.emit(Event{Type: EventHandEnd, Hand: result.Number, Result: result})
	return result, nil
}

// Play deals hands until one player is broke, maxHands is reached (zero means
// no limit) or ctx is cancelled. Every result is passed to fn when non-nil.
func (t *Table) Play(ctx context.Context, maxHands int, fn func(*HandResult)) error {
	for played := 0; maxHands == 0 || played < maxHands; played++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if t.GameOver() {
			return nil
		}
		result, err := t.PlayHand(ctx)
		if err != nil {
			return err
		}
		if fn != nil {
			fn(result)
		}
	}
	return nil
}

func (t *Table) emit(e Event) {
	if t.cfg.Observer != nil {
		t.cfg.Observer(e)
	}
}

func winnerName(r *HandResult) string {
	if r.Chopped() {
		return "split"
	}
	return r.Players[r.Winner]
}

// hand is the state of the hand in progress
type hand struct {
	table      *Table
	number     int
	dealer     int
	start      [2]int
	hole       [2][]poker.Card
	board      []poker.Card
	round      strategy.Round
	bets       [2]int
	pot        int
	currentBet int
	actions    []ActionRecord
}

func (h *hand) play(ctx context.Context) (*HandResult, error) {
	t := h.table
	t.source.Shuffle()

	bigBlind := 1 - h.dealer
	for _, seat := range []int{bigBlind, h.dealer} {
		cards, err := t.source.Deal(2)
		if err != nil {
			return nil, fmt.Errorf("deal hole cards: %w", err)
		}
		h.hole[seat] = cards
	}

	for seat, p := range t.players {
		if l, ok := p.Agent.(HandListener); ok {
			l.NewHand(h.number, seat)
		}
	}
	t.emit(Event{Type: EventHandStart, Hand: h.number, Dealer: h.dealer, Stacks: h.stacks()})
	t.logger.Debug("hand started", "hand", h.number, "dealer", t.players[h.dealer].Name)

	h.post(h.dealer, t.cfg.SmallBlind, PostSmallBlind)
	h.post(bigBlind, t.cfg.BigBlind, PostBigBlind)

	for round := strategy.PreFlop; round <= strategy.River; round++ {
		h.round = round
		if round > strategy.PreFlop {
			if err := h.dealBoard(round); err != nil {
				return nil, err
			}
		}

		first := bigBlind
		if round == strategy.PreFlop {
			first = h.dealer
		}
		folded, err := h.bettingRound(ctx, first)
		if err != nil {
			return nil, err
		}
		if folded >= 0 {
			return h.finishFold(1 - folded), nil
		}
		h.returnUncalled()
	}
	return h.showdown()
}

func (h *hand) stacks() [2]int {
	return [2]int{h.table.players[0].Stack, h.table.players[1].Stack}
}

func (h *hand) post(seat, blind int, kind ActionKind) {
	p := h.table.players[seat]
	amount := min(blind, p.Stack)
	h.commit(seat, amount)
	h.record(seat, kind, amount, "")
}

func (h *hand) commit(seat, amount int) {
	h.table.players[seat].Stack -= amount
	h.bets[seat] += amount
	h.pot += amount
	h.currentBet = max(h.currentBet, h.bets[seat])
}

func (h *hand) record(seat int, kind ActionKind, amount int, reasoning string) ActionRecord {
	rec := ActionRecord{
		Seat:      seat,
		Player:    h.table.players[seat].Name,
		Round:     h.round,
		Kind:      kind,
		Amount:    amount,
		Total:     h.bets[seat],
		Pot:       h.pot,
		Reasoning: reasoning,
	}
	h.actions = append(h.actions, rec)
	h.table.emit(Event{Type: EventPlayerAction, Hand: h.number, Round: h.round, Action: &rec, Pot: h.pot, Stacks: h.stacks()})
	return rec
}

func (h *hand) dealBoard(round strategy.Round) error {
	n := round.BoardSize() - len(h.board)
	cards, err := h.table.source.Deal(n)
	if err != nil {
		return fmt.Errorf("deal %s: %w", round, err)
	}
	h.board = append(h.board, cards...)
	h.bets = [2]int{}
	h.currentBet = 0

	h.table.emit(Event{Type: EventStreetChange, Hand: h.number, Round: round, Board: slices.Clone(h.board), Pot: h.pot, Stacks: h.stacks()})
	h.table.logger.Debug("board dealt", "hand", h.number, "round", round, "board", poker.FormatCards(h.board))
	return nil
}

// canAct reports whether seat has a decision to make
func (h *hand) canAct(seat int) bool {
	own, other := h.table.players[seat].Stack, h.table.players[1-seat].Stack
	return own > 0 && (other > 0 || h.bets[seat] < h.currentBet)
}

// bettingRound runs one street and returns the seat that folded, or -1
func (h *hand) bettingRound(ctx context.Context, first int) (int, error) {
	pending := [2]bool{true, true}
	seat := first
	for pending[0] || pending[1] {
		if !pending[seat] || !h.canAct(seat) {
			pending[seat] = false
			seat = 1 - seat
			continue
		}

		p := h.table.players[seat]
		d, err := p.Agent.Act(ctx, h.view(seat))
		if err != nil {
			return -1, fmt.Errorf("%s: %w", p.Name, err)
		}

		before := h.currentBet
		rec, err := h.apply(seat, d)
		if err != nil {
			return -1, fmt.Errorf("%s: %w", p.Name, err)
		}
		h.table.logger.Debug("action", "hand", h.number, "round", h.round, "player", p.Name,
			"kind", rec.Kind, "amount", rec.Amount, "pot", rec.Pot)

		if rec.Kind == Fold {
			return seat, nil
		}
		if h.currentBet > before {
			pending[1-seat] = true
		}
		pending[seat] = false
		seat = 1 - seat
	}
	return -1, nil
}

// apply validates d for seat and moves the chips
func (h *hand) apply(seat int, d strategy.Decision) (ActionRecord, error) {
	p := h.table.players[seat]
	owed := h.currentBet - h.bets[seat]

	switch d.Action {
	case strategy.Fold:
		return h.record(seat, Fold, 0, d.Reasoning), nil

	case strategy.Check:
		if owed > 0 {
			return ActionRecord{}, fmt.Errorf("%w: cannot check facing %d", ErrIllegalAction, owed)
		}
		return h.record(seat, Check, 0, d.Reasoning), nil

	case strategy.Raise:
		amount := d.Amount
		if amount <= 0 {
			return ActionRecord{}, fmt.Errorf("%w: bet of %d chips", ErrIllegalAction, amount)
		}
		if amount > p.Stack {
			return ActionRecord{}, fmt.Errorf("%w: %d chips exceeds stack of %d", ErrIllegalAction, amount, p.Stack)
		}

		total := h.bets[seat] + amount
		allIn := amount == p.Stack
		var kind ActionKind
		switch {
		case total < h.currentBet:
			if !allIn {
				return ActionRecord{}, fmt.Errorf("%w: %d chips does not call %d", ErrIllegalAction, amount, owed)
			}
			kind = AllIn
		case total == h.currentBet:
			kind = Call
		default:
			if h.table.players[1-seat].Stack == 0 {
				return ActionRecord{}, fmt.Errorf("%w: cannot raise an all-in player", ErrIllegalAction)
			}
			minimum := h.table.cfg.BigBlind
			kind = Bet
			if h.currentBet > 0 {
				minimum = 2*h.currentBet - h.bets[seat]
				kind = Raise
			}
			if amount < minimum && !allIn {
				return ActionRecord{}, fmt.Errorf("%w: %s of %d below minimum %d", ErrIllegalAction, kind, amount, minimum)
			}
		}
		if allIn {
			kind = AllIn
		}
		h.commit(seat, amount)
		return h.record(seat, kind, amount, d.Reasoning), nil

	default:
		return ActionRecord{}, fmt.Errorf("%w: unknown action %d", ErrIllegalAction, d.Action)
	}
}

func (h *hand) view(seat int) View {
	other := 1 - seat
	return View{
		Hand:          h.number,
		Seat:          seat,
		Dealer:        seat == h.dealer,
		Round:         h.round,
		Hole:          slices.Clone(h.hole[seat]),
		Board:         slices.Clone(h.board),
		Pot:           h.pot,
		CurrentBet:    h.currentBet,
		OwnBet:        h.bets[seat],
		OwnStack:      h.table.players[seat].Stack,
		OpponentStack: h.table.players[other].Stack,
		OpponentBet:   h.bets[other],
		BigBlind:      h.table.cfg.BigBlind,
		OpponentName:  h.table.players[other].Name,
		Actions:       slices.Clone(h.actions),
	}
}

// returnUncalled gives back the part of a bet the all-in opponent could not match
func (h *hand) returnUncalled() {
	hi := 0
	if h.bets[1] > h.bets[0] {
		hi = 1
	}
	excess := h.bets[hi] - h.bets[1-hi]
	if excess == 0 {
		return
	}
	h.table.players[hi].Stack += excess
	h.bets[hi] -= excess
	h.pot -= excess
	h.currentBet = h.bets[hi]
	h.table.logger.Debug("uncalled bet returned", "hand", h.number, "player", h.table.players[hi].Name, "amount", excess)
}

func (h *hand) finishFold(winner int) *HandResult {
	r := h.result()
	r.Folded = true
	r.Winner = winner
	r.Won[winner] = h.pot
	h.table.players[winner].Stack += h.pot
	return h.settle(r)
}

func (h *hand) showdown() (*HandResult, error) {
	first := append(slices.Clone(h.hole[0]), h.board...)
	second := append(slices.Clone(h.hole[1]), h.board...)
	sd, err := poker.Compare(first, second)
	if err != nil {
		return nil, fmt.Errorf("showdown: %w", err)
	}

	r := h.result()
	r.Showdown = &sd
	switch sd.Outcome {
	case poker.FirstWins:
		r.Winner = 0
		r.Won[0] = h.pot
	case poker.SecondWins:
		r.Winner = 1
		r.Won[1] = h.pot
	default:
		r.Winner = -1
		half := h.pot / 2
		r.Won = [2]int{half, half}
		r.Won[h.dealer] += h.pot % 2
	}
	for seat := range r.Won {
		h.table.players[seat].Stack += r.Won[seat]
	}
	return h.settle(r), nil
}

func (h *hand) result() *HandResult {
	players := h.table.players
	return &HandResult{
		Number:  h.number,
		Dealer:  h.dealer,
		Players: [2]string{players[0].Name, players[1].Name},
		Hole:    h.hole,
		Board:   slices.Clone(h.board),
		Pot:     h.pot,
		EndedOn: h.round,
		Actions: h.actions,
	}
}

func (h *hand) settle(r *HandResult) *HandResult {
	for seat, p := range h.table.players {
		r.Stacks[seat] = p.Stack
		r.Net[seat] = p.Stack - h.start[seat]
	}
	return r
}
