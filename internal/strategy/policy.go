package strategy

import (
	"errors"
	"fmt"
)

// Policy holds the confidence bands and dice thresholds of the betting policy.
// Rolls are uniform integers in [0, 100).
//
// With nothing owed, confidence falls into band i (the first CheckBands
// entry it does not exceed, or 3) and the AI bets when roll <= BetRolls[i].
// Facing a bet, the aggression ratio picks a band from RaiseBands and the
// AI raises instead of calling when roll > RaiseRolls[i].
type Policy struct {
	CheckBands [3]float64 `json:"check_bands"`
	BetRolls   [4]int     `json:"bet_rolls"`
	RaiseBands [3]float64 `json:"raise_bands"`
	RaiseRolls [4]int     `json:"raise_rolls"`
}

// DefaultPolicy returns the tuned policy table
func DefaultPolicy() Policy {
	return Policy{
		CheckBands: [3]float64{0.25, 0.5, 0.75},
		BetRolls:   [4]int{-1, 33, 67, 99},
		RaiseBands: [3]float64{0.25, 0.5, 0.75},
		RaiseRolls: [4]int{100, 75, 25, -1},
	}
}

// Validate checks that bands ascend within [0, 1] and rolls lie in [-1, 100]
func (p Policy) Validate() error {
	var errs []error
	if err := validateBands("check_bands", p.CheckBands); err != nil {
		errs = append(errs, err)
	}
	if err := validateBands("raise_bands", p.RaiseBands); err != nil {
		errs = append(errs, err)
	}
	if err := validateRolls("bet_rolls", p.BetRolls); err != nil {
		errs = append(errs, err)
	}
	if err := validateRolls("raise_rolls", p.RaiseRolls); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func validateBands(name string, bands [3]float64) error {
	prev := 0.0
	for i, b := range bands {
		if b < prev || b > 1 {
			return fmt.Errorf("%s[%d] = %.2f must ascend within [0, 1]", name, i, b)
		}
		prev = b
	}
	return nil
}

func validateRolls(name string, rolls [4]int) error {
	for i, r := range rolls {
		if r < -1 || r > 100 {
			return fmt.Errorf("%s[%d] = %d must be within [-1, 100]", name, i, r)
		}
	}
	return nil
}

// WantsBet reports whether the AI opens the betting at this confidence and roll
func (p Policy) WantsBet(confidence float64, roll int) bool {
	return roll <= p.BetRolls[band(p.CheckBands, confidence)]
}

// WantsRaise reports whether the AI raises rather than calls at this aggression and roll
func (p Policy) WantsRaise(aggression float64, roll int) bool {
	return roll > p.RaiseRolls[band(p.RaiseBands, aggression)]
}

func band(bands [3]float64, x float64) int {
	for i, b := range bands {
		if x <= b {
			return i
		}
	}
	return len(bands)
}

// BreakEven returns the share of the final pot a call of owed chips costs.
// pot already includes the opponent's outstanding bet.
func BreakEven(owed, pot int) float64 {
	if owed <= 0 {
		return 0
	}
	return float64(owed) / float64(pot+owed)
}

// BetSize chooses how many chips to put in on top of any call.
// Very confident hands sometimes bet small to keep the opponent in; the
// rest mostly bet in proportion to confidence with an occasional pot-sized bluff.
// The result is at least minBet and twice currentBet, and at most stack.
func BetSize(confidence float64, pot, currentBet, stack, minBet, roll int) int {
	var bet int
	switch {
	case confidence > 0.8 && roll <= 25:
		bet = int((0.25 + float64(roll)/50) * float64(pot))
	case confidence > 0.8:
		bet = int(confidence * float64(pot))
	case roll <= 20:
		bet = int((1 - float64(roll)/60) * float64(pot))
	default:
		bet = int(confidence * float64(pot))
	}

	bet = max(bet, minBet, 2*currentBet)
	return min(bet, stack)
}
