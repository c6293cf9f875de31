package table

import (
	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/poker"
)

// EventType identifies what happened at the table
type EventType string

const (
	EventHandStart    EventType = "hand_start"
	EventHandEnd      EventType = "hand_end"
	EventStreetChange EventType = "street_change"
	EventPlayerAction EventType = "player_action"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is published to the table's observer. Only the fields relevant to
// Type are set.
type Event struct {
	Type   EventType
	Hand   int
	Dealer int
	Round  strategy.Round
	Board  []poker.Card
	Action *ActionRecord
	Result *HandResult
	Pot    int
	Stacks [2]int
}

// Observer receives table events synchronously on the game goroutine
type Observer func(Event)
