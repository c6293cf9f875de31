package poker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTie(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		cat  Category
		a, b string
		want Outcome
	}{
		{"high card suits irrelevant", HighCard, "Ah Kd 9s 5c 2d 8s 3h", "As Kh 9d 5s 2s 8h 3d", Tie},
		{"high card fifth kicker", HighCard, "Ah Kd 9s 5c 3d", "As Kh 9d 5s 2s", FirstWins},
		{"high card ignores sixth card", HighCard, "Ah Kd 9s 6c 5d 3s", "As Kh 9d 6s 5h 2c", Tie},
		{"pair value", Pair, "Kh Kd 5s 4c 2d", "Qh Qd As Jc 9d", FirstWins},
		{"pair kickers", Pair, "Kh Kd Ts 4c 2d", "Ks Kc Ts 5c 2h", SecondWins},
		{"two pair low pair", TwoPair, "Kh Kd 7s 7c 2d", "Ks Kc 6s 6h Ah", FirstWins},
		{"two pair kicker from third pair", TwoPair, "Kh Kd 7s 7c 5d 5h 2c", "Ks Kc 7d 7h 4d 3c 2d", FirstWins},
		{"trips kickers", ThreeOfAKind, "8h 8d 8s Ac 2d", "8h 8d 8c Kc Qd", FirstWins},
		{"wheel loses to six high", Straight, "Ah 2d 3c 4s 5h", "2h 3d 4c 5s 6h", SecondWins},
		{"equal straights", Straight, "9h 8d 7c 6s 5h", "9s 8c 7d 6h 5d", Tie},
		{"flush top five", Flush, "Ah Jh 9h 5h 3h", "Ad Jd 9d 5d 2d", FirstWins},
		{"flush ignores off-suit cards", Flush, "Ah Jh 9h 5h 3h Kc Kd", "Ad Jd 9d 5d 3d 2c 2s", Tie},
		{"full house triple first", FullHouse, "3h 3d 3s 2c 2d", "2h 2s 2c Ac Ad", FirstWins},
		{"full house pair second", FullHouse, "Qh Qd Qs 9c 9d", "Qh Qd Qc 8c 8d", FirstWins},
		{"quads kicker", FourOfAKind, "7h 7d 7s 7c Ad", "7h 7d 7s 7c Kd", FirstWins},
		{"straight flush top", StraightFlush, "9h 8h 7h 6h 5h", "Td 9d 8d 7d 6d", SecondWins},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a, b := MustParseCards(tt.a), MustParseCards(tt.b)
			got, err := ResolveTie(tt.cat, a, b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			swapped, err := ResolveTie(tt.cat, b, a)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Swap(), swapped, "tie resolution must be symmetric")

			self, err := ResolveTie(tt.cat, a, a)
			require.NoError(t, err)
			assert.Equal(t, Tie, self)
		})
	}
}

func TestResolveTieRejectsMismatchedCategory(t *testing.T) {
	t.Parallel()
	_, err := ResolveTie(Pair, MustParseCards("Ah Kd 9s 5c 2d"), MustParseCards("Ah Ad 9s 5c 2d"))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = ResolveTie(Category(9), MustParseCards("Ah Kd 9s 5c 2d"), MustParseCards("Ah Kd 9s 5c 2d"))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = ResolveTie(HighCard, MustParseCards("Ah Kd 9s"), MustParseCards("Ah Kd 9s 5c 2d"))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestCompare(t *testing.T) {
	t.Parallel()
	result, err := Compare(MustParseCards("Ah Ad 9s 5c 2d"), MustParseCards("Kh Kd Ks 5c 2d"))
	require.NoError(t, err)
	assert.Equal(t, Pair, result.First)
	assert.Equal(t, ThreeOfAKind, result.Second)
	assert.Equal(t, SecondWins, result.Outcome)

	result, err = Compare(MustParseCards("Ah Ad 9s 5c 2d"), MustParseCards("As Ac 9d 5h 2c"))
	require.NoError(t, err)
	assert.Equal(t, Tie, result.Outcome)

	_, err = Compare(MustParseCards("Ah Ad"), MustParseCards("As Ac 9d 5h 2c"))
	require.ErrorIs(t, err, ErrInvalidInput)
}
