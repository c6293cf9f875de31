// Package statistics accumulates per-hand results of simulated heads-up play.
package statistics

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/headsup/internal/strategy"
)

// BigPotBB is the pot size in big blinds from which a hand counts as a big pot
const BigPotBB = 50

// HandResult represents the outcome of a single hand for the measured seat
type HandResult struct {
	NetBB          float64        // Net big blinds won/lost
	Seed           int64          // Seed of the match the hand belongs to
	Dealer         bool           // Whether the measured seat had the button
	WentToShowdown bool           // Did hand go to showdown?
	FinalPotSize   int            // Final pot size in chips
	PotBB          float64        // Final pot size in big blinds
	EndedOn        strategy.Round // Street the hand finished on
}

// PositionStats tracks statistics for one seat role
type PositionStats struct {
	Hands  int
	SumBB  float64
	SumBB2 float64
}

// Mean returns the mean result for the role
func (p PositionStats) Mean() float64 {
	if p.Hands == 0 {
		return 0
	}
	return p.SumBB / float64(p.Hands)
}

// Statistics tracks poker simulation statistics
type Statistics struct {
	Hands  int
	SumBB  float64
	SumBB2 float64   // Sum of squares for variance calculation
	Values []float64 // Store all values for median/percentile calculation

	ShowdownWins    int     // Hands won at showdown
	NonShowdownWins int     // Hands won without showdown (fold equity)
	ShowdownBB      float64 // BB from showdown (wins AND losses)
	NonShowdownBB   float64 // BB from fold equity (wins AND losses)
	AllBB           float64 // Total BB for sanity check

	// Button is the dealer seat, BigBlind the other one
	Button   PositionStats
	BigBlind PositionStats

	// EndedOn counts hands by the street they finished on
	EndedOn [4]int

	MaxPotChips int
	MaxPotBB    float64
	BigPots     int     // Pots >= BigPotBB
	BigPotsBB   float64 // BB from big pots
}

// Mean returns the arithmetic mean of all results in big blinds per hand
func (s *Statistics) Mean() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.SumBB / float64(s.Hands)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Hands < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumBB2 - float64(s.Hands)*mean*mean) / float64(s.Hands-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(max(s.Variance(), 0))
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Hands == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Hands))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Add incorporates a new hand result into the statistics
func (s *Statistics) Add(result HandResult) {
	netBB := result.NetBB
	s.Hands++
	s.SumBB += netBB
	s.SumBB2 += netBB * netBB
	s.Values = append(s.Values, netBB)

	if netBB > 0 {
		if result.WentToShowdown {
			s.ShowdownWins++
		} else {
			s.NonShowdownWins++
		}
	}

	// losses count too
	if result.WentToShowdown {
		s.ShowdownBB += netBB
	} else {
		s.NonShowdownBB += netBB
	}
	s.AllBB += netBB

	pos := &s.BigBlind
	if result.Dealer {
		pos = &s.Button
	}
	pos.Hands++
	pos.SumBB += netBB
	pos.SumBB2 += netBB * netBB

	if result.EndedOn.Valid() {
		s.EndedOn[result.EndedOn]++
	}

	if result.FinalPotSize > s.MaxPotChips {
		s.MaxPotChips = result.FinalPotSize
		s.MaxPotBB = result.PotBB
	}
	if result.PotBB >= BigPotBB {
		s.BigPots++
		s.BigPotsBB += netBB
	}
}

// Merge folds other into s
func (s *Statistics) Merge(other *Statistics) {
	s.Hands += other.Hands
	s.SumBB += other.SumBB
	s.SumBB2 += other.SumBB2
	s.Values = append(s.Values, other.Values...)
	s.ShowdownWins += other.ShowdownWins
	s.NonShowdownWins += other.NonShowdownWins
	s.ShowdownBB += other.ShowdownBB
	s.NonShowdownBB += other.NonShowdownBB
	s.AllBB += other.AllBB
	for _, pair := range [][2]*PositionStats{{&s.Button, &other.Button}, {&s.BigBlind, &other.BigBlind}} {
		pair[0].Hands += pair[1].Hands
		pair[0].SumBB += pair[1].SumBB
		pair[0].SumBB2 += pair[1].SumBB2
	}
	for i := range s.EndedOn {
		s.EndedOn[i] += other.EndedOn[i]
	}
	if other.MaxPotChips > s.MaxPotChips {
		s.MaxPotChips = other.MaxPotChips
		s.MaxPotBB = other.MaxPotBB
	}
	s.BigPots += other.BigPots
	s.BigPotsBB += other.BigPotsBB
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks if the accounting is consistent
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.AllBB-s.ShowdownBB-s.NonShowdownBB) <= 1e-6
}

// Validate performs consistency checks over the accumulated data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: AllBB=%.6f, ShowdownBB=%.6f, NonShowdownBB=%.6f",
			s.AllBB, s.ShowdownBB, s.NonShowdownBB)
	}
	if s.Hands <= 0 {
		return fmt.Errorf("invalid hands count: %d", s.Hands)
	}
	if len(s.Values) != s.Hands {
		return fmt.Errorf("values array length (%d) does not match hands count (%d)",
			len(s.Values), s.Hands)
	}
	if wins := s.ShowdownWins + s.NonShowdownWins; wins > s.Hands {
		return fmt.Errorf("total wins (%d) exceeds total hands (%d)", wins, s.Hands)
	}
	if seats := s.Button.Hands + s.BigBlind.Hands; seats != s.Hands {
		return fmt.Errorf("position hands total (%d) does not match total hands (%d)", seats, s.Hands)
	}
	ended := 0
	for _, n := range s.EndedOn {
		ended += n
	}
	if ended != s.Hands {
		return fmt.Errorf("street totals (%d) do not match total hands (%d)", ended, s.Hands)
	}
	return nil
}
