package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/headsup/poker"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Padding(0, 1)

	HandInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ActionsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	BlackCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true)

	HiddenCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	BoardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

// renderCards draws cards with suit symbols, red suits in red. Missing board
// cards up to want are drawn face down.
func renderCards(cards []poker.Card, want int) string {
	parts := make([]string, 0, max(len(cards), want))
	for _, c := range cards {
		if c.Suit.IsRed() {
			parts = append(parts, RedCardStyle.Render(c.Symbol()))
		} else {
			parts = append(parts, BlackCardStyle.Render(c.Symbol()))
		}
	}
	for len(parts) < want {
		parts = append(parts, HiddenCardStyle.Render("##"))
	}
	return strings.Join(parts, " ")
}
