package poker

// ComboCount is the number of unordered two-card combinations in a deck
const ComboCount = DeckSize * (DeckSize - 1) / 2

// ComboID is the canonical position of a combination: outer index ascending,
// inner index ascending with inner > outer.
type ComboID uint16

// Combo is an unordered pair of distinct table indices
type Combo struct {
	ID     ComboID
	First  Index
	Second Index
}

var combos = buildCombos()

func buildCombos() [ComboCount]Combo {
	var out [ComboCount]Combo
	id := 0
	for i := range DeckSize {
		for j := i + 1; j < DeckSize; j++ {
			out[id] = Combo{ID: ComboID(id), First: Index(i), Second: Index(j)}
			id++
		}
	}
	return out
}

// Combos returns the canonical list of all 1326 combinations
func Combos() []Combo {
	out := make([]Combo, ComboCount)
	copy(out, combos[:])
	return out
}

// ComboAt returns the combination with the given ID
func ComboAt(id ComboID) Combo {
	return combos[id]
}

// ComboOf returns the canonical ID of the pair (a, b) in either order
func ComboOf(a, b Index) (ComboID, bool) {
	if a == b || int(a) >= DeckSize || int(b) >= DeckSize {
		return 0, false
	}
	if a > b {
		a, b = b, a
	}
	i, j := int(a), int(b)
	// combos preceding row i: sum of (51-k) for k < i
	before := i*(DeckSize-1) - i*(i-1)/2
	return ComboID(before + j - i - 1), true
}

// Cards returns the two cards of the combination
func (c Combo) Cards() (Card, Card) {
	return table[c.First], table[c.Second]
}

// Contains reports whether card is one of the pair
func (c Combo) Contains(card Card) bool {
	return table[c.First] == card || table[c.Second] == card
}

// String returns the pair in short form, e.g. "Ah Kd"
func (c Combo) String() string {
	a, b := c.Cards()
	return a.String() + " " + b.String()
}
