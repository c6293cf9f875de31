package poker

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidInput is wrapped by every precondition failure in this package.
var ErrInvalidInput = errors.New("invalid input")

// Suit represents a card suit
type Suit uint8

const (
	Hearts Suit = iota
	Diamonds
	Spades
	Clubs

	// NoSuit is carried only by the absent sentinel card
	NoSuit Suit = 0xFF
)

// Suits lists the four real suits in deck order
var Suits = [4]Suit{Hearts, Diamonds, Spades, Clubs}

// String returns the single-letter suit code used by ParseCard
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Spades:
		return "s"
	case Clubs:
		return "c"
	default:
		return "x"
	}
}

// Symbol returns the unicode suit symbol
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Spades:
		return "♠"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// IsRed returns true for hearts and diamonds
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Card values. Aces are high (14); straights additionally treat them as 1.
const (
	Two   = 2
	Three = 3
	Four  = 4
	Five  = 5
	Six   = 6
	Seven = 7
	Eight = 8
	Nine  = 9
	Ten   = 10
	Jack  = 11
	Queen = 12
	King  = 13
	Ace   = 14

	// AbsentValue marks a card removed from consideration
	AbsentValue = -1
)

// Card is an immutable playing card. Two cards are the same card when value and suit match.
type Card struct {
	Value int
	Suit  Suit
}

// Absent is the sentinel "no card" value stored at the end of the deck table
var Absent = Card{Value: AbsentValue, Suit: NoSuit}

// NewCard creates a card from a value (2..14) and suit
func NewCard(value int, suit Suit) Card {
	return Card{Value: value, Suit: suit}
}

// IsAbsent reports whether c is the sentinel card
func (c Card) IsAbsent() bool {
	return c.Value == AbsentValue
}

// Valid reports whether c is one of the 52 real cards
func (c Card) Valid() bool {
	return c.Value >= Two && c.Value <= Ace && c.Suit <= Clubs
}

// String returns the short form, e.g. "Ah" or "Tc"
func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return valueLetter(c.Value) + c.Suit.String()
}

// Symbol returns the display form, e.g. "A♥"
func (c Card) Symbol() string {
	if !c.Valid() {
		return "??"
	}
	return valueLetter(c.Value) + c.Suit.Symbol()
}

func valueLetter(v int) string {
	return string("23456789TJQKA"[v-Two])
}

// ParseCard parses strings like "As", "td", "10h" or "K♣"
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Absent, fmt.Errorf("%w: empty card string", ErrInvalidInput)
	}

	var valuePart, suitPart string
	switch {
	case strings.HasSuffix(s, "♥"), strings.HasSuffix(s, "♦"), strings.HasSuffix(s, "♠"), strings.HasSuffix(s, "♣"):
		valuePart = s[:len(s)-len("♥")]
		suitPart = s[len(valuePart):]
	default:
		valuePart = s[:len(s)-1]
		suitPart = s[len(s)-1:]
	}

	var value int
	switch strings.ToUpper(valuePart) {
	case "2", "3", "4", "5", "6", "7", "8", "9":
		value = int(valuePart[0] - '0')
	case "T", "10":
		value = Ten
	case "J":
		value = Jack
	case "Q":
		value = Queen
	case "K":
		value = King
	case "A":
		value = Ace
	default:
		return Absent, fmt.Errorf("%w: invalid card value in %q", ErrInvalidInput, s)
	}

	var suit Suit
	switch strings.ToLower(suitPart) {
	case "h", "♥":
		suit = Hearts
	case "d", "♦":
		suit = Diamonds
	case "s", "♠":
		suit = Spades
	case "c", "♣":
		suit = Clubs
	default:
		return Absent, fmt.Errorf("%w: invalid card suit in %q", ErrInvalidInput, s)
	}

	return NewCard(value, suit), nil
}

// ParseCards parses a list of card strings. A single string may hold several
// cards separated by spaces or commas.
func ParseCards(inputs ...string) ([]Card, error) {
	var cards []Card
	for _, in := range inputs {
		for _, field := range strings.FieldsFunc(in, func(r rune) bool { return r == ' ' || r == ',' }) {
			c, err := ParseCard(field)
			if err != nil {
				return nil, err
			}
			cards = append(cards, c)
		}
	}
	return cards, nil
}

// MustParseCards is ParseCards for literals in tests and examples
func MustParseCards(inputs ...string) []Card {
	cards, err := ParseCards(inputs...)
	if err != nil {
		panic(err)
	}
	return cards
}

// FormatCards joins cards in short form separated by spaces
func FormatCards(cards []Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// validateCards checks that every card is real and that the count is within bounds
func validateCards(cards []Card, minCount, maxCount int) error {
	if len(cards) < minCount || len(cards) > maxCount {
		if minCount == maxCount {
			return fmt.Errorf("%w: expected %d cards, got %d", ErrInvalidInput, minCount, len(cards))
		}
		return fmt.Errorf("%w: expected %d to %d cards, got %d", ErrInvalidInput, minCount, maxCount, len(cards))
	}
	for i, c := range cards {
		if !c.Valid() {
			return fmt.Errorf("%w: card %d is not a playing card (value %d, suit %d)", ErrInvalidInput, i, c.Value, c.Suit)
		}
	}
	return nil
}
