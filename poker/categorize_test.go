package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHole(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		cards    string
		expected HoleClass
	}{
		{"Pocket Aces", "As Ah", ClassPremium},
		{"Pocket Jacks", "Jh Jd", ClassPremium},
		{"Ace King offsuit", "Ac Kh", ClassPremium},
		{"Pocket Tens", "Tc Th", ClassStrong},
		{"Ace Jack offsuit", "Ad Jc", ClassStrong},
		{"Pocket Sevens", "7h 7c", ClassMedium},
		{"Queen Jack suited", "Qd Jd", ClassMedium},
		{"Pocket Twos", "2c 2h", ClassWeak},
		{"Suited connectors 54s", "5d 4d", ClassWeak},
		{"Seven Two offsuit", "7c 2h", ClassTrash},
		{"Jack Four offsuit", "Jh 4c", ClassTrash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cards := MustParseCards(tt.cards)
			assert.Equal(t, tt.expected, ClassifyHole(cards[0], cards[1]))
			assert.Equal(t, tt.expected, ClassifyHole(cards[1], cards[0]), "order must not matter")
		})
	}
}

func TestClassifyHoleInvalid(t *testing.T) {
	t.Parallel()
	ace := NewCard(Ace, Spades)
	assert.Equal(t, ClassUnknown, ClassifyHole(ace, Absent))
	assert.Equal(t, ClassUnknown, ClassifyHole(ace, ace))
}
