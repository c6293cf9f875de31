package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/internal/table"
)

// ErrQuit is returned by the human agent when the player leaves the table
var ErrQuit = errors.New("player quit")

// CommandHelp lists what can be typed at the prompt
const CommandHelp = "fold, check, call, bet N, raise N (to a total of N), allin, quit"

// ParseCommand turns a typed command into a decision for v. Bets and raises
// name the round total, as in "raise 12".
func ParseCommand(input string, v table.View) (strategy.Decision, error) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return strategy.Decision{}, fmt.Errorf("enter a command: %s", CommandHelp)
	}

	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "quit", "q", "exit":
		return strategy.Decision{}, ErrQuit

	case "fold", "f":
		if v.CanCheck() {
			return strategy.Decision{}, errors.New("nothing to call, check instead")
		}
		return strategy.Decision{Action: strategy.Fold, Reasoning: "human"}, nil

	case "check", "k", "ch":
		if !v.CanCheck() {
			return strategy.Decision{}, fmt.Errorf("you owe %d, call or fold", v.Owed())
		}
		return strategy.Decision{Action: strategy.Check, Reasoning: "human"}, nil

	case "call", "c":
		if v.CanCheck() {
			return strategy.Decision{Action: strategy.Check, Reasoning: "human"}, nil
		}
		return strategy.Decision{Action: strategy.Raise, Amount: v.Owed(), Reasoning: "human"}, nil

	case "allin", "all", "a", "shove":
		return strategy.Decision{Action: strategy.Raise, Amount: v.OwnStack, Reasoning: "human"}, nil

	case "bet", "b", "raise", "r":
		if len(args) != 1 {
			return strategy.Decision{}, fmt.Errorf("usage: %s N", cmd)
		}
		total, err := strconv.Atoi(args[0])
		if err != nil || total <= 0 {
			return strategy.Decision{}, fmt.Errorf("%q is not a chip amount", args[0])
		}
		return raiseTo(total, v)

	default:
		return strategy.Decision{}, fmt.Errorf("unknown command %q: %s", cmd, CommandHelp)
	}
}

func raiseTo(total int, v table.View) (strategy.Decision, error) {
	if !v.CanRaise() {
		return strategy.Decision{}, errors.New("raising is not possible, call or fold")
	}
	amount := total - v.OwnBet
	maxTotal := v.OwnBet + v.OwnStack
	minTotal := v.OwnBet + v.MinRaise()
	switch {
	case total > maxTotal:
		return strategy.Decision{}, fmt.Errorf("you can bet at most %d", maxTotal)
	case amount == v.OwnStack:
		return strategy.Decision{Action: strategy.Raise, Amount: amount, Reasoning: "human"}, nil
	case total < minTotal:
		return strategy.Decision{}, fmt.Errorf("the minimum is %d", minTotal)
	}
	return strategy.Decision{Action: strategy.Raise, Amount: amount, Reasoning: "human"}, nil
}
