package poker

import (
	"math/bits"
)

// Category enumerates poker hand categories ordered from weakest to strongest.
type Category uint8

const (
	HighCard Category = iota
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

// Valid reports whether c is one of the nine categories
func (c Category) Valid() bool {
	return c <= StraightFlush
}

// String returns the human readable name of the category
func (c Category) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	default:
		return "Unknown"
	}
}

const (
	// MinHandCards and MaxHandCards bound the input of Evaluate and ResolveTie
	MinHandCards = 5
	MaxHandCards = 7

	// a five-bit window; shifted so its top bit sits on the candidate top value
	straightWindow uint16 = 0x1F
	aceLowBit      uint16 = 1 << 1
	aceHighBit     uint16 = 1 << Ace
)

// shape is the bitmask summary of a card set. Bit v of a mask means value v is present.
type shape struct {
	cards      []Card
	values     uint16
	suitValues [4]uint16
	suitCounts [4]int
	counts     [Ace + 1]int
}

func newShape(cards []Card) shape {
	s := shape{cards: cards}
	for _, c := range cards {
		bit := uint16(1) << c.Value
		s.values |= bit
		s.suitValues[c.Suit] |= bit
		s.suitCounts[c.Suit]++
		s.counts[c.Value]++
	}
	return s
}

// Evaluate returns the best category formed by any five of the 5..7 given cards.
func Evaluate(cards []Card) (Category, error) {
	if err := validateCards(cards, MinHandCards, MaxHandCards); err != nil {
		return HighCard, err
	}
	s := newShape(cards)
	return s.category(), nil
}

func (s *shape) category() Category {
	if s.straightFlushTop() > 0 {
		return StraightFlush
	}
	if s.highestWithCount(4) > 0 {
		return FourOfAKind
	}
	if trips := s.highestWithCount(3); trips > 0 && s.highestWithCount(2, trips) > 0 {
		return FullHouse
	}
	if s.flushSuit() >= 0 {
		return Flush
	}
	if straightTop(s.values) > 0 {
		return Straight
	}
	if s.highestWithCount(3) > 0 {
		return ThreeOfAKind
	}
	if high := s.highestWithCount(2); high > 0 {
		if s.highestWithCount(2, high) > 0 {
			return TwoPair
		}
		return Pair
	}
	return HighCard
}

// straightTop returns the top value of the highest five-value run in mask, or 0.
// An ace also counts as value 1 so the wheel reports a top of five.
func straightTop(mask uint16) int {
	if mask&aceHighBit != 0 {
		mask |= aceLowBit
	}
	for top := Ace; top >= Five; top-- {
		window := straightWindow << (top - 4)
		if mask&window == window {
			return top
		}
	}
	return 0
}

func (s *shape) straightFlushTop() int {
	best := 0
	for suit, mask := range s.suitValues {
		if s.suitCounts[suit] < 5 {
			continue
		}
		best = max(best, straightTop(mask))
	}
	return best
}

// flushSuit returns the suit holding at least five cards, or -1
func (s *shape) flushSuit() int {
	for suit, n := range s.suitCounts {
		if n >= 5 {
			return suit
		}
	}
	return -1
}

// highestWithCount returns the highest value occurring at least n times,
// skipping the excluded values, or 0 when there is none.
func (s *shape) highestWithCount(n int, exclude ...int) int {
	for v := Ace; v >= Two; v-- {
		if s.counts[v] >= n && !containsValue(exclude, v) {
			return v
		}
	}
	return 0
}

// kickers returns up to n distinct present values in descending order, skipping the excluded values.
func (s *shape) kickers(n int, exclude ...int) []int {
	out := make([]int, 0, n)
	mask := s.values
	for len(out) < n && mask != 0 {
		v := bits.Len16(mask) - 1
		mask &^= 1 << v
		if containsValue(exclude, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func containsValue(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
