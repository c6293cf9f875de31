package poker

import (
	"fmt"
	rand "math/rand/v2"
)

const (
	// DeckSize is the number of real cards
	DeckSize = 52
	// AbsentIndex is the position of the sentinel in the lookup table
	AbsentIndex = DeckSize
)

// Index addresses a card in the lookup table
type Index uint8

// table holds A♥ A♦ A♠ A♣, 2♥ 2♦ 2♠ 2♣ ... K♥ K♦ K♠ K♣ followed by the sentinel.
// It is built once and never written again, so concurrent readers need no locking.
var table = buildTable()

func buildTable() [DeckSize + 1]Card {
	var t [DeckSize + 1]Card
	i := 0
	// Aces lead the table; the remaining values follow in ascending order
	values := [13]int{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}
	for _, v := range values {
		for _, s := range Suits {
			t[i] = NewCard(v, s)
			i++
		}
	}
	t[AbsentIndex] = Absent
	return t
}

// Table returns a copy of the 53-entry lookup table
func Table() [DeckSize + 1]Card {
	return table
}

// At returns the card stored at index i, or Absent when i is out of range
func At(i Index) Card {
	if int(i) > AbsentIndex {
		return Absent
	}
	return table[i]
}

// IndexOf returns the table position of c. The sentinel maps to AbsentIndex.
func IndexOf(c Card) (Index, bool) {
	if c.IsAbsent() {
		return AbsentIndex, true
	}
	if !c.Valid() {
		return AbsentIndex, false
	}
	row := c.Value
	if row == Ace {
		row = 0
	} else {
		row--
	}
	return Index(row*4 + int(c.Suit)), true
}

// Shoe deals cards from a shuffled copy of the lookup table
type Shoe struct {
	order [DeckSize]Index
	next  int
	rng   *rand.Rand
}

// NewShoe creates a shuffled shoe using the provided random source
func NewShoe(rng *rand.Rand) *Shoe {
	s := &Shoe{rng: rng}
	for i := range s.order {
		s.order[i] = Index(i)
	}
	s.Shuffle()
	return s
}

// Shuffle restores all 52 cards and shuffles them using Fisher-Yates
func (s *Shoe) Shuffle() {
	s.next = 0
	for i := len(s.order) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.order[i], s.order[j] = s.order[j], s.order[i]
	}
}

// Deal deals n cards from the shoe
func (s *Shoe) Deal(n int) ([]Card, error) {
	if n < 0 || s.next+n > len(s.order) {
		return nil, fmt.Errorf("%w: cannot deal %d cards, %d remaining", ErrInvalidInput, n, s.Remaining())
	}
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = table[s.order[s.next]]
		s.next++
	}
	return cards, nil
}


// Remaining returns the number of undealt cards
func (s *Shoe) Remaining() int {
	return len(s.order) - s.next
}
