package main

import (
	"fmt"
	"io"
	"os"

	"github.com/lox/headsup/poker"
)

// EvalCmd prints the category of 5 to 7 cards and, with --vs, which of two
// hands wins
type EvalCmd struct {
	Cards []string `arg:"" help:"Cards such as As Kd 9s 5c 2d"`
	Vs    []string `help:"Second hand to compare against, e.g. --vs 'Ah Ad 9s 5c 2d'"`
}

func (c *EvalCmd) Run() error {
	return evaluate(os.Stdout, c.Cards, c.Vs)
}

func evaluate(w io.Writer, first, second []string) error {
	a, err := poker.ParseCards(first...)
	if err != nil {
		return err
	}
	if len(second) == 0 {
		cat, err := poker.Evaluate(a)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s\n", poker.FormatCards(a), cat)
		return nil
	}

	b, err := poker.ParseCards(second...)
	if err != nil {
		return fmt.Errorf("--vs: %w", err)
	}
	sd, err := poker.Compare(a, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %s\n", poker.FormatCards(a), sd.First)
	fmt.Fprintf(w, "%s: %s\n", poker.FormatCards(b), sd.Second)
	switch sd.Outcome {
	case poker.FirstWins:
		fmt.Fprintln(w, "First hand wins")
	case poker.SecondWins:
		fmt.Fprintln(w, "Second hand wins")
	default:
		fmt.Fprintln(w, "Tie")
	}
	return nil
}
