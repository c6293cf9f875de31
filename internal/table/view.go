package table

import (
	"fmt"

	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/poker"
)

// ActionKind labels an entry in the hand log
type ActionKind string

const (
	PostSmallBlind ActionKind = "small_blind"
	PostBigBlind   ActionKind = "big_blind"
	Fold           ActionKind = "fold"
	Check          ActionKind = "check"
	Call           ActionKind = "call"
	Bet            ActionKind = "bet"
	Raise          ActionKind = "raise"
	AllIn          ActionKind = "allin"
)

func (k ActionKind) String() string {
	return string(k)
}

// ActionRecord is one entry of the hand log
type ActionRecord struct {
	Seat      int
	Player    string
	Round     strategy.Round
	Kind      ActionKind
	Amount    int // chips added by this action
	Total     int // seat's total bet this round afterwards
	Pot       int // pot after the action
	Reasoning string
}

func (a ActionRecord) String() string {
	switch a.Kind {
	case Fold, Check:
		return fmt.Sprintf("%s %ss", a.Player, a.Kind)
	case PostSmallBlind:
		return fmt.Sprintf("%s posts small blind %d", a.Player, a.Amount)
	case PostBigBlind:
		return fmt.Sprintf("%s posts big blind %d", a.Player, a.Amount)
	case Call:
		return fmt.Sprintf("%s calls %d", a.Player, a.Amount)
	case Bet:
		return fmt.Sprintf("%s bets %d", a.Player, a.Amount)
	case Raise:
		return fmt.Sprintf("%s raises to %d", a.Player, a.Total)
	case AllIn:
		return fmt.Sprintf("%s is all in for %d", a.Player, a.Amount)
	default:
		return fmt.Sprintf("%s %s %d", a.Player, a.Kind, a.Amount)
	}
}

// View is what an agent is shown when it is asked to act
type View struct {
	Hand          int
	Seat          int
	Dealer        bool
	Round         strategy.Round
	Hole          []poker.Card
	Board         []poker.Card
	Pot           int // every chip committed this hand, current round included
	CurrentBet    int // highest total bet this round
	OwnBet        int
	OwnStack      int
	OpponentStack int
	OpponentBet   int
	BigBlind      int
	OpponentName  string
	Actions       []ActionRecord
}

// Owed returns the chips needed to call, capped at the stack
func (v View) Owed() int {
	return min(v.CurrentBet-v.OwnBet, v.OwnStack)
}

// CanCheck reports whether nothing is owed
func (v View) CanCheck() bool {
	return v.CurrentBet == v.OwnBet
}

// CanRaise reports whether a bet or raise is possible at all
func (v View) CanRaise() bool {
	return v.OpponentStack > 0 && v.OwnStack > v.CurrentBet-v.OwnBet
}

// MinRaise returns the fewest chips that make a legal bet or raise, capped at the stack
func (v View) MinRaise() int {
	if v.CurrentBet == 0 {
		return min(v.BigBlind, v.OwnStack)
	}
	return min(2*v.CurrentBet-v.OwnBet, v.OwnStack)
}

// Situation converts the view into the engine's input
func (v View) Situation() strategy.Situation {
	return strategy.Situation{
		CurrentBet:    v.CurrentBet,
		LastOwnBet:    v.OwnBet,
		Pot:           v.Pot,
		OwnStack:      v.OwnStack,
		OpponentStack: v.OpponentStack,
		Hole:          v.Hole,
		Board:         v.Board,
		Round:         v.Round,
	}
}

// HandResult summarises a finished hand
type HandResult struct {
	Number   int
	Dealer   int
	Players  [2]string
	Hole     [2][]poker.Card
	Board    []poker.Card
	Pot      int
	Winner   int // seat of the winner, -1 when the pot was chopped
	Won      [2]int
	Net      [2]int
	Stacks   [2]int
	Folded   bool
	EndedOn  strategy.Round
	Showdown *poker.Showdown
	Actions  []ActionRecord
}

// Chopped reports whether the pot was split
func (r *HandResult) Chopped() bool {
	return r.Winner < 0
}

// Categories returns both players' made hands, or false when nobody showed down
func (r *HandResult) Categories() ([2]poker.Category, bool) {
	if r.Showdown == nil {
		return [2]poker.Category{}, false
	}
	return [2]poker.Category{r.Showdown.First, r.Showdown.Second}, true
}

func (r *HandResult) String() string {
	if r.Chopped() {
		return fmt.Sprintf("hand %d: %s and %s split %d", r.Number, r.Players[0], r.Players[1], r.Pot)
	}
	winner := r.Players[r.Winner]
	if r.Folded {
		return fmt.Sprintf("hand %d: %s wins %d uncontested", r.Number, winner, r.Pot)
	}
	cats, _ := r.Categories()
	return fmt.Sprintf("hand %d: %s wins %d with %s", r.Number, winner, r.Pot, cats[r.Winner])
}
