package poker

import (
	"fmt"
	"slices"
)

// Outcome is the result of comparing two hands
type Outcome int8

const (
	Tie Outcome = iota
	FirstWins
	SecondWins
)

func (o Outcome) String() string {
	switch o {
	case Tie:
		return "tie"
	case FirstWins:
		return "first"
	case SecondWins:
		return "second"
	default:
		return "unknown"
	}
}

// Swap returns the outcome seen from the other hand's side
func (o Outcome) Swap() Outcome {
	switch o {
	case FirstWins:
		return SecondWins
	case SecondWins:
		return FirstWins
	default:
		return o
	}
}

// Showdown describes the comparison of two hands
type Showdown struct {
	First   Category
	Second  Category
	Outcome Outcome
}

// ResolveTie decides between two hands already known to share category cat.
// It fails if either hand is malformed or does not evaluate to cat.
func ResolveTie(cat Category, a, b []Card) (Outcome, error) {
	if !cat.Valid() {
		return Tie, fmt.Errorf("%w: unknown category %d", ErrInvalidInput, cat)
	}
	keyA, err := categoryKey(cat, a)
	if err != nil {
		return Tie, fmt.Errorf("first hand: %w", err)
	}
	keyB, err := categoryKey(cat, b)
	if err != nil {
		return Tie, fmt.Errorf("second hand: %w", err)
	}
	return compareKeys(keyA, keyB), nil
}

// Compare evaluates both hands and breaks equal categories with ResolveTie.
func Compare(a, b []Card) (Showdown, error) {
	catA, err := Evaluate(a)
	if err != nil {
		return Showdown{}, fmt.Errorf("first hand: %w", err)
	}
	catB, err := Evaluate(b)
	if err != nil {
		return Showdown{}, fmt.Errorf("second hand: %w", err)
	}

	result := Showdown{First: catA, Second: catB}
	switch {
	case catA > catB:
		result.Outcome = FirstWins
	case catA < catB:
		result.Outcome = SecondWins
	default:
		result.Outcome, err = ResolveTie(catA, a, b)
		if err != nil {
			return Showdown{}, err
		}
	}
	return result, nil
}

// categoryKey builds the ordered comparison key for a hand of category cat:
// values grouped by frequency first, remaining kickers after.
func categoryKey(cat Category, cards []Card) ([]int, error) {
	if err := validateCards(cards, MinHandCards, MaxHandCards); err != nil {
		return nil, err
	}
	s := newShape(cards)
	if got := s.category(); got != cat {
		return nil, fmt.Errorf("%w: hand %s is %s, not %s", ErrInvalidInput, FormatCards(cards), got, cat)
	}

	switch cat {
	case StraightFlush:
		return []int{s.straightFlushTop()}, nil
	case FourOfAKind:
		quads := s.highestWithCount(4)
		return append([]int{quads}, s.kickers(1, quads)...), nil
	case FullHouse:
		trips := s.highestWithCount(3)
		return []int{trips, s.highestWithCount(2, trips)}, nil
	case Flush:
		return s.flushValues(), nil
	case Straight:
		return []int{straightTop(s.values)}, nil
	case ThreeOfAKind:
		trips := s.highestWithCount(3)
		return append([]int{trips}, s.kickers(2, trips)...), nil
	case TwoPair:
		high := s.highestWithCount(2)
		low := s.highestWithCount(2, high)
		return append([]int{high, low}, s.kickers(1, high, low)...), nil
	case Pair:
		pair := s.highestWithCount(2)
		return append([]int{pair}, s.kickers(3, pair)...), nil
	default:
		return s.kickers(5), nil
	}
}

// flushValues returns the five highest values of the flush suit
func (s *shape) flushValues() []int {
	suit := Suit(s.flushSuit())
	values := make([]int, 0, len(s.cards))
	for _, c := range s.cards {
		if c.Suit == suit {
			values = append(values, c.Value)
		}
	}
	slices.Sort(values)
	slices.Reverse(values)
	return values[:5]
}

func compareKeys(a, b []int) Outcome {
	for i := range min(len(a), len(b)) {
		switch {
		case a[i] > b[i]:
			return FirstWins
		case a[i] < b[i]:
			return SecondWins
		}
	}
	return Tie
}
