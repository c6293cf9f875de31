package phh

import (
	"fmt"
	"strings"
	"time"

	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/internal/table"
	"github.com/lox/headsup/poker"
)

// Variant is the PHH code for no-limit Texas hold'em
const Variant = "NT"

// Cards joins cards without separators, as PHH expects ("AsKd")
func Cards(cards []poker.Card) string {
	var b strings.Builder
	for _, c := range cards {
		b.WriteString(c.String())
	}
	return b.String()
}

// FromResult converts a finished hand. Player p1 is the small blind, which
// heads-up is the dealer.
func FromResult(id, tableName string, smallBlind, bigBlind int, r *table.HandResult, at time.Time) *HandHistory {
	order := [2]int{r.Dealer, 1 - r.Dealer}
	index := func(seat int) int {
		if seat == r.Dealer {
			return 0
		}
		return 1
	}

	at = at.UTC()
	h := &HandHistory{
		Variant:           Variant,
		Table:             tableName,
		SeatCount:         2,
		Seats:             []int{1, 2},
		Antes:             []int{0, 0},
		BlindsOrStraddles: []int{smallBlind, bigBlind},
		MinBet:            bigBlind,
		HandID:            id,
		Time:              at.Format("15:04:05"),
		TimeZone:          "UTC",
		Day:               at.Day(),
		Month:             int(at.Month()),
		Year:              at.Year(),
		Timestamp:         at,
	}
	for _, seat := range order {
		h.Players = append(h.Players, r.Players[seat])
		h.StartingStacks = append(h.StartingStacks, r.Stacks[seat]-r.Net[seat])
		h.FinishingStacks = append(h.FinishingStacks, r.Stacks[seat])
		h.Winnings = append(h.Winnings, r.Won[seat])
	}

	for p, seat := range order {
		h.Actions = append(h.Actions, fmt.Sprintf("d dh p%d %s", p+1, Cards(r.Hole[seat])))
	}

	dealt := strategy.PreFlop
	dealTo := func(round strategy.Round) {
		for dealt < round && dealt < strategy.River {
			dealt++
			if len(r.Board) < dealt.BoardSize() {
				return
			}
			from := (dealt - 1).BoardSize()
			h.Actions = append(h.Actions, "d db "+Cards(r.Board[from:dealt.BoardSize()]))
		}
	}

	currentBet := 0
	for _, a := range r.Actions {
		if a.Round != dealt {
			dealTo(a.Round)
			currentBet = 0
		}
		kind := a.Kind
		// an all-in that does not raise is a call
		if kind == table.AllIn && a.Total <= currentBet {
			kind = table.Call
		}
		currentBet = max(currentBet, a.Total)
		if s, ok := FormatAction(index(a.Seat), kind, a.Total); ok {
			h.Actions = append(h.Actions, s)
		}
	}

	if r.Showdown != nil {
		dealTo(strategy.River)
		for p, seat := range order {
			h.Actions = append(h.Actions, fmt.Sprintf("p%d sm %s", p+1, Cards(r.Hole[seat])))
		}
	}
	return h
}
