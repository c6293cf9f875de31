// Package phh writes finished hands in the Poker Hand History TOML format.
package phh

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"

	"github.com/lox/headsup/internal/table"
)

// Encode writes the hand history to the provided writer in PHH TOML format.
func Encode(w io.Writer, hand *HandHistory) error {
	if hand == nil {
		return fmt.Errorf("phh: hand history is nil")
	}

	enc := toml.NewEncoder(w)
	enc.Indent = "\t"
	return enc.Encode(hand)
}

// EncodeAll writes several hands as numbered sections of one .phhs document
func EncodeAll(w io.Writer, hands []*HandHistory) error {
	for i, hand := range hands {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "[%d]\n", i+1); err != nil {
			return err
		}
		if err := Encode(w, hand); err != nil {
			return fmt.Errorf("phh: hand %d: %w", i+1, err)
		}
	}
	return nil
}

// FormatAction converts a table action to a PHH action string for player
// index p (0 for p1). It returns false for blind posts, which PHH records in
// blinds_or_straddles instead.
func FormatAction(p int, kind table.ActionKind, totalBet int) (string, bool) {
	player := fmt.Sprintf("p%d", p+1)
	switch kind {
	case table.Fold:
		return player + " f", true
	case table.Check, table.Call:
		return player + " cc", true
	case table.Bet, table.Raise, table.AllIn:
		if totalBet <= 0 {
			return "", false
		}
		return fmt.Sprintf("%s cbr %d", player, totalBet), true
	case table.PostSmallBlind, table.PostBigBlind:
		return "", false
	default:
		return fmt.Sprintf("# %s %s %d", player, kind, totalBet), true
	}
}
