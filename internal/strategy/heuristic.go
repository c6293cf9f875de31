package strategy

import (
	"fmt"

	"github.com/lox/headsup/poker"
)

// ExcludedScore is stored for range slots that are no longer live. Every real score is higher.
const ExcludedScore = -1.5

// houseShape classifies the two largest value multiplicities
type houseShape int

const (
	houseNone     houseShape = iota // one and one
	houseTwoOne                     // a pair, nothing else paired
	houseTwoTwo                     // two pairs
	houseThreeOne                   // a set, nothing else paired
	houseMade                       // set plus a pair
)

// streetWeights holds the sub-score tables of one post-flop street. Each
// table is indexed by a count capped at the table's last index.
type streetWeights struct {
	flush         [6]float64 // cards in the most common suit
	straight      [6]float64 // longest run of consecutive values
	straightFlush [6]float64 // longest run within one suit
	quads         [5]float64 // largest value multiplicity
	fullHouse     [5]float64 // by houseShape
	trips         [4]float64 // largest value multiplicity
	twoPair       [3]float64 // number of paired values
}

var streets = [...]streetWeights{
	Flop: {
		flush:         [6]float64{3: 0.25, 4: 1.25, 5: 5.0},
		straight:      [6]float64{3: 0.4, 4: 0.6, 5: 4.0},
		straightFlush: [6]float64{3: 0.4, 4: 0.7, 5: 7.0},
		quads:         [5]float64{2: 0.4, 3: 0.7, 4: 6.5},
		fullHouse:     [5]float64{houseTwoOne: 0.4, houseTwoTwo: 1.0, houseThreeOne: 0.7, houseMade: 6.0},
		trips:         [4]float64{1: 0.5, 2: 1.0, 3: 3.5},
		twoPair:       [3]float64{0: 0.3, 1: 0.7, 2: 2.75},
	},
	Turn: {
		flush:         [6]float64{4: 1.25, 5: 5.0},
		straight:      [6]float64{4: 0.6, 5: 4.0},
		straightFlush: [6]float64{4: 0.6, 5: 7.0},
		quads:         [5]float64{3: 0.6, 4: 6.5},
		fullHouse:     [5]float64{houseTwoTwo: 0.9, houseThreeOne: 0.6, houseMade: 6.0},
		trips:         [4]float64{2: 1.0, 3: 3.5},
		twoPair:       [3]float64{1: 0.6, 2: 2.75},
	},
	River: {
		flush:         [6]float64{5: 5.0},
		straight:      [6]float64{5: 4.0},
		straightFlush: [6]float64{5: 7.0},
		quads:         [5]float64{4: 6.5},
		fullHouse:     [5]float64{houseMade: 6.0},
		trips:         [4]float64{3: 3.5},
		twoPair:       [3]float64{2: 2.75},
	},
}

// Score rates two hole cards plus the board visible in round. Higher is
// stronger; the scale is arbitrary and only meaningful for comparisons
// within the same round.
func Score(cards []poker.Card, round Round) (float64, error) {
	if !round.Valid() {
		return 0, fmt.Errorf("%w: round %d outside 0..3", ErrInvalidSituation, int(round))
	}
	if want := 2 + round.BoardSize(); len(cards) != want {
		return 0, fmt.Errorf("%w: %s scoring needs %d cards, got %d", ErrInvalidSituation, round, want, len(cards))
	}
	for i, c := range cards {
		if !c.Valid() {
			return 0, fmt.Errorf("%w: card %d is not a playing card", ErrInvalidSituation, i)
		}
	}
	return score(cards, round), nil
}

// score assumes validated input
func score(cards []poker.Card, round Round) float64 {
	if round == PreFlop {
		return preFlopScore(cards[0], cards[1])
	}
	s := summarize(cards)
	w := &streets[round]
	return w.flush[min(s.maxSuit, 5)] +
		w.straight[min(longestRun(s.values), 5)] +
		s.goodPair() +
		w.straightFlush[min(s.longestSuitedRun(), 5)] +
		w.quads[min(s.most, 4)] +
		w.fullHouse[s.house()] +
		w.trips[min(s.most, 3)] +
		w.twoPair[min(s.pairs, 2)]
}

func preFlopScore(a, b poker.Card) float64 {
	total := 0.0
	if a.Suit == b.Suit {
		total += 0.80
	}
	total += preFlopStraight(a.Value, b.Value)
	total += preFlopPair(a.Value, b.Value)
	return total
}

func preFlopStraight(a, b int) float64 {
	gap := absInt(a - b)
	switch {
	case gap == 0:
		return 0
	case gap == 1:
		return 1.0
	case gap < 5:
		return 0.5
	case gap > 8:
		// order matters here: the first card's ace-low value minus the second's
		switch d := aceLow(a) - aceLow(b); {
		case d == 1:
			return 1.0
		case d < 5:
			return 0.5
		}
	}
	return 0
}

func preFlopPair(a, b int) float64 {
	if a != b {
		return float64(a+b) / 27 * 1.5
	}
	switch a {
	case poker.Ace:
		return 5.0
	case poker.King:
		return 4.75
	case poker.Queen:
		return 4.5
	default:
		return float64(a) / 14.0 * 3.0
	}
}

type summary struct {
	counts     [poker.Ace + 1]int
	values     uint16
	suitValues [4]uint16
	maxSuit    int
	most       int // largest value multiplicity
	second     int // largest multiplicity among the other values
	pairs      int // values seen at least twice
	topPair    int
	high       int
}

func summarize(cards []poker.Card) summary {
	var s summary
	var suitCounts [4]int
	for _, c := range cards {
		s.counts[c.Value]++
		s.values |= 1 << c.Value
		s.suitValues[c.Suit] |= 1 << c.Value
		suitCounts[c.Suit]++
		s.high = max(s.high, c.Value)
	}
	for _, n := range suitCounts {
		s.maxSuit = max(s.maxSuit, n)
	}
	for v := poker.Ace; v >= poker.Two; v-- {
		n := s.counts[v]
		switch {
		case n > s.most:
			s.second = s.most
			s.most = n
		case n > s.second:
			s.second = n
		}
		if n >= 2 {
			if s.pairs == 0 {
				s.topPair = v
			}
			s.pairs++
		}
	}
	return s
}

func (s *summary) goodPair() float64 {
	if s.pairs == 0 {
		return float64(s.high) / 14.0
	}
	switch s.topPair {
	case poker.Ace:
		return 2.5
	case poker.King:
		return 2.25
	case poker.Queen:
		return 2.0
	default:
		return float64(s.topPair) / 14.0 * 1.5
	}
}

func (s *summary) house() houseShape {
	switch {
	case s.most >= 3 && s.second >= 2:
		return houseMade
	case s.most >= 3:
		return houseThreeOne
	case s.most == 2 && s.second == 2:
		return houseTwoTwo
	case s.most == 2:
		return houseTwoOne
	default:
		return houseNone
	}
}

func (s *summary) longestSuitedRun() int {
	best := 0
	for _, mask := range s.suitValues {
		best = max(best, longestRun(mask))
	}
	return best
}

// longestRun counts the longest chain of consecutive values in mask.
// Aces only count high here.
func longestRun(mask uint16) int {
	best, run := 0, 0
	for v := poker.Two; v <= poker.Ace; v++ {
		if mask&(1<<v) == 0 {
			run = 0
			continue
		}
		run++
		best = max(best, run)
	}
	return best
}

func aceLow(v int) int {
	if v == poker.Ace {
		return 1
	}
	return v
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
