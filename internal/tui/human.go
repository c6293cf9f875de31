package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/internal/table"
)

// TurnMsg tells the model that the human must act on View
type TurnMsg struct {
	View table.View
}

// InvalidCommandMsg reports a command that was rejected; the prompt stays open
type InvalidCommandMsg struct {
	Input string
	Err   error
}

// HumanAgent plays a seat with commands typed into the model
type HumanAgent struct {
	commands chan string
	send     func(tea.Msg)
	logger   *log.Logger
}

// NewHumanAgent creates an agent that announces turns through send
func NewHumanAgent(send func(tea.Msg), logger *log.Logger) *HumanAgent {
	if logger == nil {
		logger = log.Default()
	}
	return &HumanAgent{
		commands: make(chan string),
		send:     send,
		logger:   logger.WithPrefix("human"),
	}
}

// Submit hands a typed command to a waiting Act. It returns false when the
// agent is not waiting for one.
func (h *HumanAgent) Submit(input string) bool {
	select {
	case h.commands <- input:
		return true
	default:
		return false
	}
}

// Act blocks until a valid command arrives
func (h *HumanAgent) Act(ctx context.Context, v table.View) (strategy.Decision, error) {
	h.send(TurnMsg{View: v})
	for {
		select {
		case <-ctx.Done():
			return strategy.Decision{}, ctx.Err()
		case input := <-h.commands:
			d, err := ParseCommand(input, v)
			if errors.Is(err, ErrQuit) {
				return strategy.Decision{}, ErrQuit
			}
			if err != nil {
				h.send(InvalidCommandMsg{Input: input, Err: err})
				continue
			}
			h.logger.Info("Player action", "round", v.Round, "input", input, "action", d.Action, "amount", d.Amount)
			return d, nil
		}
	}
}
