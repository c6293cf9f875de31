package poker

// HoleClass is a coarse pre-flop strength label for two hole cards
type HoleClass string

const (
	ClassPremium HoleClass = "Premium"
	ClassStrong  HoleClass = "Strong"
	ClassMedium  HoleClass = "Medium"
	ClassWeak    HoleClass = "Weak"
	ClassTrash   HoleClass = "Trash"
	ClassUnknown HoleClass = "Unknown"
)

// ClassifyHole labels two hole cards.
// Premium (JJ+, AK), Strong (TT, AQ, AJ), Medium (77-99, suited broadway),
// Weak (small pairs, suited connectors), Trash (everything else).
func ClassifyHole(a, b Card) HoleClass {
	if !a.Valid() || !b.Valid() || a == b {
		return ClassUnknown
	}

	small, big := a.Value, b.Value
	if small > big {
		small, big = big, small
	}
	pair := small == big
	suited := a.Suit == b.Suit

	switch {
	case pair && small >= Jack, small == King && big == Ace:
		return ClassPremium
	case pair && small == Ten, big == Ace && (small == Queen || small == Jack):
		return ClassStrong
	case pair && small >= Seven, suited && small >= Ten:
		return ClassMedium
	case pair, suited && big-small <= 2:
		return ClassWeak
	default:
		return ClassTrash
	}
}
