package strategy

import (
	"math"
	"slices"

	"github.com/lox/headsup/poker"
)

// SlotState tags a range slot as still possible or ruled out
type SlotState uint8

const (
	Active SlotState = iota
	Excluded
)

func (s SlotState) String() string {
	if s == Active {
		return "active"
	}
	return "excluded"
}

type slot struct {
	state SlotState
	score float64
}

// Range tracks which of the 1326 two-card combinations the opponent may
// still hold. Slots are addressed by poker.ComboID and only ever move from
// Active to Excluded until Reset.
type Range struct {
	slots [poker.ComboCount]slot
	live  int
}

// NewRange returns a range with every combination live
func NewRange() *Range {
	r := &Range{}
	r.Reset()
	return r
}

// Reset makes every combination live again
func (r *Range) Reset() {
	for i := range r.slots {
		r.slots[i] = slot{state: Active}
	}
	r.live = poker.ComboCount
}

// Size returns the number of live combinations
func (r *Range) Size() int {
	return r.live
}

// State returns the state of one slot
func (r *Range) State(id poker.ComboID) SlotState {
	return r.slots[id].state
}

// SlotScore returns the last computed score of a slot, ExcludedScore once excluded
func (r *Range) SlotScore(id poker.ComboID) float64 {
	if r.slots[id].state == Excluded {
		return ExcludedScore
	}
	return r.slots[id].score
}

// ExcludeCards removes every live combination holding any of the given cards
// and returns how many were removed.
func (r *Range) ExcludeCards(cards ...poker.Card) int {
	removed := 0
	for _, card := range cards {
		idx, ok := poker.IndexOf(card)
		if !ok || idx == poker.AbsentIndex {
			continue
		}
		for other := range poker.DeckSize {
			id, ok := poker.ComboOf(idx, poker.Index(other))
			if !ok {
				continue
			}
			if r.exclude(id) {
				removed++
			}
		}
	}
	return removed
}

func (r *Range) exclude(id poker.ComboID) bool {
	s := &r.slots[id]
	if s.state == Excluded {
		return false
	}
	s.state = Excluded
	s.score = ExcludedScore
	r.live--
	return true
}

// Rescore recomputes the score of every live combination against board.
// The board must hold exactly round.BoardSize() valid cards.
func (r *Range) Rescore(board []poker.Card, round Round) {
	cards := make([]poker.Card, 2+len(board))
	copy(cards[2:], board)
	for i := range r.slots {
		s := &r.slots[i]
		if s.state == Excluded {
			s.score = ExcludedScore
			continue
		}
		cards[0], cards[1] = poker.ComboAt(poker.ComboID(i)).Cards()
		s.score = score(cards, round)
	}
}

// Confidence returns the share of live combinations scoring at or below own.
// An empty range yields zero.
func (r *Range) Confidence(own float64) float64 {
	if r.live == 0 {
		return 0
	}
	beaten := 0
	for _, s := range r.slots[:] {
		if s.state == Active && s.score <= own {
			beaten++
		}
	}
	return float64(beaten) / float64(r.live)
}

// ExclusionFraction maps a bet-to-pot ratio to the share of the range a bet of that size rules out
func ExclusionFraction(ratio float64) float64 {
	switch {
	case ratio <= 0.25:
		return 0.25
	case ratio <= 0.5:
		return 0.40
	case ratio <= 1.0:
		return 0.50
	case ratio <= 2.0:
		return 0.70
	case ratio <= 4.0:
		return 0.80
	default:
		return 0.90
	}
}

// NarrowByBet drops the weakest live combinations after a bet of owed chips
// into a pot that held potBeforeBet. Combinations scoring strictly below the
// cutoff are removed, so ties at the cutoff survive. It returns the number removed.
func (r *Range) NarrowByBet(owed, potBeforeBet int) int {
	if r.live == 0 || owed <= 0 {
		return 0
	}

	frac := ExclusionFraction(betRatio(owed, potBeforeBet))

	scores := make([]float64, 0, r.live)
	for _, s := range r.slots[:] {
		if s.state == Active {
			scores = append(scores, s.score)
		}
	}
	slices.Sort(scores)
	slices.Reverse(scores)

	cutoff := scores[int((1-frac)*float64(len(scores)))]

	removed := 0
	for i := range r.slots {
		if r.slots[i].state == Active && r.slots[i].score < cutoff {
			r.exclude(poker.ComboID(i))
			removed++
		}
	}
	return removed
}

// betRatio treats an empty or negative pot as an unbounded ratio
func betRatio(owed, potBeforeBet int) float64 {
	if potBeforeBet <= 0 {
		return math.Inf(1)
	}
	return float64(owed) / float64(potBeforeBet)
}
