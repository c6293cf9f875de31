package statistics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/headsup/internal/strategy"
)

func TestStatistics_Empty(t *testing.T) {
	stats := &Statistics{}
	assert.Zero(t, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Zero(t, stats.StdDev())
	assert.Zero(t, stats.StdError())
	assert.Zero(t, stats.Median())
	assert.Zero(t, stats.Percentile(0.5))
	assert.Error(t, stats.Validate())
}

func TestStatistics_SingleValue(t *testing.T) {
	stats := &Statistics{}
	stats.Add(HandResult{
		NetBB:          2.5,
		Seed:           12345,
		Dealer:         true,
		WentToShowdown: true,
		FinalPotSize:   20,
		PotBB:          10,
		EndedOn:        strategy.River,
	})

	assert.Equal(t, 1, stats.Hands)
	assert.Equal(t, 2.5, stats.Mean())
	assert.Zero(t, stats.Variance())
	assert.Equal(t, 2.5, stats.Median())
	assert.Equal(t, 1, stats.ShowdownWins)
	assert.Zero(t, stats.NonShowdownWins)
	assert.Equal(t, 1, stats.Button.Hands)
	assert.Equal(t, 1, stats.EndedOn[strategy.River])
	assert.True(t, stats.IsLedgerBalanced())
	require.NoError(t, stats.Validate())
}

func TestStatistics_MultipleValues(t *testing.T) {
	stats := &Statistics{}
	results := []HandResult{
		{NetBB: 1.0, Dealer: true, FinalPotSize: 4, EndedOn: strategy.PreFlop},
		{NetBB: -2.0, WentToShowdown: true, FinalPotSize: 8, EndedOn: strategy.River},
		{NetBB: 3.0, Dealer: true, WentToShowdown: true, FinalPotSize: 12, EndedOn: strategy.River},
		{NetBB: 0.0, FinalPotSize: 2, EndedOn: strategy.PreFlop},
		{NetBB: -1.0, Dealer: true, FinalPotSize: 6, EndedOn: strategy.Turn},
	}
	for _, r := range results {
		stats.Add(r)
	}

	assert.InDelta(t, (1.0-2.0+3.0+0.0-1.0)/5.0, stats.Mean(), 1e-9)
	assert.Equal(t, 5, stats.Hands)
	assert.Equal(t, 0.0, stats.Median()) // -2, -1, 0, 1, 3
	assert.Equal(t, 1, stats.ShowdownWins)
	assert.Equal(t, 1, stats.NonShowdownWins)
	assert.Equal(t, 3, stats.Button.Hands)
	assert.Equal(t, 2, stats.BigBlind.Hands)
	assert.InDelta(t, 1.0, stats.Button.Mean(), 1e-9)
	assert.InDelta(t, -1.0, stats.BigBlind.Mean(), 1e-9)
	assert.Equal(t, [4]int{2, 0, 1, 2}, stats.EndedOn)
	assert.True(t, stats.IsLedgerBalanced())
	require.NoError(t, stats.Validate())
}

func TestStatistics_Percentiles(t *testing.T) {
	stats := &Statistics{}
	for i := 1; i <= 5; i++ {
		stats.Add(HandResult{NetBB: float64(i)})
	}

	tests := []struct {
		percentile float64
		expected   float64
	}{
		{0.0, 1.0},
		{0.25, 2.0},
		{0.5, 3.0},
		{0.75, 4.0},
		{1.0, 5.0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, stats.Percentile(tt.percentile), 1e-9, "percentile %.2f", tt.percentile)
	}
}

func TestStatistics_ConfidenceInterval(t *testing.T) {
	stats := &Statistics{}
	for _, v := range []float64{1, 2, 3, 4, 5} {
		stats.Add(HandResult{NetBB: v})
	}

	low, high := stats.ConfidenceInterval95()
	assert.InDelta(t, stats.Mean(), (low+high)/2, 1e-9, "symmetric around the mean")
	assert.Greater(t, high, low)
}

func TestStatistics_Variance(t *testing.T) {
	stats := &Statistics{}
	for _, v := range []float64{1, 3, 5} {
		stats.Add(HandResult{NetBB: v})
	}
	assert.InDelta(t, 4.0, stats.Variance(), 1e-9)
	assert.InDelta(t, 2.0, stats.StdDev(), 1e-9)
}

func TestStatistics_PotSizeTracking(t *testing.T) {
	stats := &Statistics{}
	stats.Add(HandResult{NetBB: 1.0, FinalPotSize: 20, PotBB: 10})
	stats.Add(HandResult{NetBB: 5.0, FinalPotSize: 200, PotBB: 100})
	stats.Add(HandResult{NetBB: -1.0, FinalPotSize: 4, PotBB: 2})

	assert.Equal(t, 200, stats.MaxPotChips)
	assert.InDelta(t, 100.0, stats.MaxPotBB, 1e-9)
	assert.Equal(t, 1, stats.BigPots)
	assert.InDelta(t, 5.0, stats.BigPotsBB, 1e-9)
}

func TestStatistics_Merge(t *testing.T) {
	results := []HandResult{
		{NetBB: 1.5, Dealer: true, FinalPotSize: 6, PotBB: 3},
		{NetBB: -4, WentToShowdown: true, FinalPotSize: 240, PotBB: 120, EndedOn: strategy.River},
		{NetBB: 0.5, FinalPotSize: 3, PotBB: 1.5},
		{NetBB: 10, Dealer: true, WentToShowdown: true, FinalPotSize: 40, PotBB: 20, EndedOn: strategy.Turn},
	}

	whole := &Statistics{}
	for _, r := range results {
		whole.Add(r)
	}

	a, b := &Statistics{}, &Statistics{}
	for _, r := range results[:2] {
		a.Add(r)
	}
	for _, r := range results[2:] {
		b.Add(r)
	}
	a.Merge(b)

	assert.Equal(t, whole.Hands, a.Hands)
	assert.InDelta(t, whole.Mean(), a.Mean(), 1e-9)
	assert.InDelta(t, whole.Variance(), a.Variance(), 1e-9)
	assert.Equal(t, whole.Button, a.Button)
	assert.Equal(t, whole.BigBlind, a.BigBlind)
	assert.Equal(t, whole.EndedOn, a.EndedOn)
	assert.Equal(t, whole.MaxPotChips, a.MaxPotChips)
	assert.Equal(t, whole.BigPots, a.BigPots)
	assert.Equal(t, whole.ShowdownWins+whole.NonShowdownWins, a.ShowdownWins+a.NonShowdownWins)
	require.NoError(t, a.Validate())
}

func TestStatistics_Validate(t *testing.T) {
	balanced := func() *Statistics {
		return &Statistics{
			Hands:         2,
			Values:        []float64{1.0, 1.0},
			AllBB:         2.0,
			ShowdownBB:    1.0,
			NonShowdownBB: 1.0,
			Button:        PositionStats{Hands: 1},
			BigBlind:      PositionStats{Hands: 1},
			EndedOn:       [4]int{2, 0, 0, 0},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *Statistics)
		wantMsg string
	}{
		{"ledger mismatch", func(s *Statistics) { s.NonShowdownBB = 1.1 }, "ledger mismatch"},
		{"no hands", func(s *Statistics) { *s = Statistics{} }, "invalid hands count"},
		{"values mismatch", func(s *Statistics) { s.Values = s.Values[:1] }, "values array length"},
		{"too many wins", func(s *Statistics) { s.ShowdownWins, s.NonShowdownWins = 2, 2 }, "exceeds total hands"},
		{"position mismatch", func(s *Statistics) { s.BigBlind.Hands = 0 }, "position hands total"},
		{"street mismatch", func(s *Statistics) { s.EndedOn[0] = 1 }, "street totals"},
	}

	require.NoError(t, balanced().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := balanced()
			tt.mutate(s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
