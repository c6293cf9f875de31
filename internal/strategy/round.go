// Package strategy implements the AI opponent: a hand-strength heuristic, a
// model of the cards the opponent may hold, and the betting policy that
// compares the two.
package strategy

import "fmt"

// Round identifies the betting street
type Round int

const (
	PreFlop Round = iota
	Flop
	Turn
	River
)

// String returns the string representation of the round
func (r Round) String() string {
	switch r {
	case PreFlop:
		return "Pre-flop"
	case Flop:
		return "Flop"
	case Turn:
		return "Turn"
	case River:
		return "River"
	default:
		return fmt.Sprintf("Round(%d)", int(r))
	}
}

// Valid reports whether r is one of the four streets
func (r Round) Valid() bool {
	return r >= PreFlop && r <= River
}

// BoardSize returns how many community cards are visible in round r
func (r Round) BoardSize() int {
	switch r {
	case Flop:
		return 3
	case Turn:
		return 4
	case River:
		return 5
	default:
		return 0
	}
}

// RoundForBoard returns the round matching a visible board size
func RoundForBoard(n int) (Round, bool) {
	switch n {
	case 0:
		return PreFlop, true
	case 3:
		return Flop, true
	case 4:
		return Turn, true
	case 5:
		return River, true
	default:
		return PreFlop, false
	}
}
