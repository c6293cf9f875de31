// Package tui is the terminal front end for playing against the AI.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/headsup/internal/strategy"
	"github.com/lox/headsup/internal/table"
	"github.com/lox/headsup/poker"
)

// EventMsg carries a table event into the model
type EventMsg struct {
	Event table.Event
}

// GameOverMsg ends the session; the model waits for a key before quitting
type GameOverMsg struct {
	Summary string
	Err     error
}

// Model is the Bubble Tea model for one heads-up session
type Model struct {
	logger *log.Logger
	submit func(string) bool

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model
	focusedPane int // 0 = log, 1 = input

	gameLog []string

	// table state, as far as the human may see it
	names     [2]string
	humanSeat int
	hand      int
	dealer    int
	round     strategy.Round
	board     []poker.Card
	hole      []poker.Card
	pot       int
	stacks    [2]int
	turn      *table.View
	status    string
	gameOver  bool
	quitting  bool

	width  int
	height int
}

// NewModel creates the model. submit delivers typed commands to the human
// agent and reports whether one was waiting.
func NewModel(names [2]string, humanSeat int, stacks [2]int, submit func(string) bool, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Placeholder = "Waiting for the deal"
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	if logger == nil {
		logger = log.Default()
	}
	return &Model{
		logger:      logger.WithPrefix("tui"),
		submit:      submit,
		logViewport: vp,
		actionInput: ti,
		focusedPane: 1,
		names:       names,
		humanSeat:   humanSeat,
		stacks:      stacks,
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case EventMsg:
		m.handleEvent(msg.Event)

	case TurnMsg:
		v := msg.View
		m.turn = &v
		m.hole = v.Hole
		m.status = ""
		m.actionInput.Placeholder = m.prompt(v)

	case InvalidCommandMsg:
		m.status = msg.Err.Error()

	case GameOverMsg:
		m.gameOver = true
		m.turn = nil
		if msg.Err != nil {
			m.addLog("Game stopped: " + msg.Err.Error())
		}
		if msg.Summary != "" {
			m.addLog("")
			m.addLog(msg.Summary)
		}
		m.actionInput.Placeholder = "Press Enter to exit"

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.processInput(input); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) processInput(input string) tea.Cmd {
	if m.gameOver {
		m.quitting = true
		return tea.Quit
	}
	if m.turn == nil {
		switch input {
		case "quit", "q", "exit":
			m.quitting = true
			return tea.Quit
		case "":
		default:
			m.status = "Not your turn"
		}
		return nil
	}
	if !m.submit(input) {
		m.status = "Not your turn"
		return nil
	}
	m.status = ""
	return nil
}

func (m *Model) handleEvent(e table.Event) {
	switch e.Type {
	case table.EventHandStart:
		m.hand = e.Hand
		m.dealer = e.Dealer
		m.round = strategy.PreFlop
		m.board = nil
		m.hole = nil
		m.turn = nil
		m.stacks = e.Stacks
		m.pot = e.Pot
		if len(m.gameLog) > 0 {
			m.addLog("")
		}
		m.addLog(fmt.Sprintf("*** HAND #%d *** %s deals", e.Hand, m.names[e.Dealer]))

	case table.EventPlayerAction:
		a := e.Action
		m.pot = e.Pot
		m.stacks = e.Stacks
		m.addLog(a.String())
		if a.Seat == m.humanSeat {
			m.turn = nil
			m.actionInput.Placeholder = "Waiting for " + m.names[1-m.humanSeat]
		}

	case table.EventStreetChange:
		m.round = e.Round
		m.board = e.Board
		m.pot = e.Pot
		m.addLog(fmt.Sprintf("*** %s *** [%s]", strings.ToUpper(e.Round.String()), poker.FormatCards(e.Board)))

	case table.EventHandEnd:
		r := e.Result
		m.stacks = r.Stacks
		m.turn = nil
		if r.Showdown != nil {
			opp := 1 - m.humanSeat
			m.board = r.Board
			m.addLog(fmt.Sprintf("%s shows [%s] (%s)", m.names[opp], poker.FormatCards(r.Hole[opp]), categoryOf(r, opp)))
			m.addLog(fmt.Sprintf("You show [%s] (%s)", poker.FormatCards(r.Hole[m.humanSeat]), categoryOf(r, m.humanSeat)))
		}
		m.addLog(r.String())
		m.actionInput.Placeholder = "Waiting for the deal"
	}
}

func categoryOf(r *table.HandResult, seat int) poker.Category {
	cats, _ := r.Categories()
	return cats[seat]
}

func (m *Model) prompt(v table.View) string {
	switch {
	case v.CanCheck() && v.CanRaise():
		return fmt.Sprintf("check, bet %d+, allin", v.OwnBet+v.MinRaise())
	case v.CanCheck():
		return "check"
	case v.CanRaise():
		return fmt.Sprintf("fold, call %d, raise %d+, allin", v.Owed(), v.OwnBet+v.MinRaise())
	default:
		return fmt.Sprintf("fold, call %d", v.Owed())
	}
}

func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the plain game log lines
func (m *Model) Log() []string {
	return append([]string(nil), m.gameLog...)
}

// Status returns the last message shown under the prompt
func (m *Model) Status() string {
	return m.status
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(m.logViewport.Width).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

func (m *Model) renderSidebarPane() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("Hand #%d", m.hand)))
	b.WriteString("\n\n")

	for seat, name := range m.names {
		label := name
		if seat == m.humanSeat {
			label += " (you)"
		}
		if seat == m.dealer && m.hand > 0 {
			label += " [D]"
		}
		fmt.Fprintf(&b, "%s: %d\n", label, m.stacks[seat])
	}
	b.WriteString("\n")
	b.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: %d", m.pot)))
	b.WriteString("\n")
	if m.hand > 0 {
		b.WriteString(BoardStyle.Render(renderCards(m.board, 5)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderActionPane() string {
	var b strings.Builder

	if len(m.hole) == 2 {
		hint := poker.ClassifyHole(m.hole[0], m.hole[1])
		b.WriteString(HandInfoStyle.Render("Hand: "))
		b.WriteString(renderCards(m.hole, 2))
		b.WriteString(InfoStyle.Render(fmt.Sprintf("  (%s)", hint)))
		b.WriteString("\n")
	}
	if m.turn != nil {
		b.WriteString(ActionsStyle.Render("Your move: " + m.prompt(*m.turn)))
		b.WriteString("\n")
	}

	b.WriteString(m.actionInput.View())
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(ErrorStyle.Render(m.status))
		b.WriteString("\n")
	}
	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Commands: " + CommandHelp + " • Tab to scroll log • Ctrl+C to quit"))
	}
	return b.String()
}
