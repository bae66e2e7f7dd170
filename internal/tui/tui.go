// Package tui renders the interactive table view. All game state shown
// here arrives over the wire as snapshots and events; the model never
// computes game logic itself.
package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/holdem-rooms/internal/deck"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/rooms"
	"github.com/lox/holdem-rooms/internal/server"
)

// Model is the Bubble Tea model for the holdem client
type Model struct {
	logger *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// Display state, written by network handlers and read by the render
	// loop
	mu        sync.Mutex
	gameLog   []string
	lobby     []rooms.RoomInfo
	snapshot  *game.Snapshot
	playerID  string
	roomID    string
	followLog bool

	actionResult chan ActionResult
	quitSignal   chan bool
	quitting     bool
	focusedPane  int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode        bool
	capturedLog     []string
	messageCallback func(messageType server.MessageType)
}

// ActionResult represents the result of a user action
type ActionResult struct {
	Action   string
	Args     []string
	Continue bool
	Error    error
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

// NewModel creates a new TUI model
func NewModel(logger *log.Logger) *Model {
	return NewModelWithOptions(logger, false)
}

// NewModelWithOptions creates a new TUI model with test mode option
func NewModelWithOptions(logger *log.Logger, testMode bool) *Model {
	// Sized properly when the first WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Enter a command (/list, /join <room>) or action (fold, call, raise 20)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &Model{
		logger:       logger.WithPrefix("tui"),
		logViewport:  vp,
		actionInput:  ti,
		gameLog:      []string{},
		actionResult: make(chan ActionResult, 1),
		quitSignal:   make(chan bool, 1),
		focusedPane:  1, // Start with input focused
		testMode:     testMode,
		capturedLog:  []string{},
	}
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listenForQuit())
}

// listenForQuit returns a command that listens for quit signals
func (m *Model) listenForQuit() tea.Cmd {
	return func() tea.Msg {
		<-m.quitSignal
		return QuitMsg{}
	}
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			m.actionResult <- ActionResult{Action: "quit", Continue: false}
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
		case "tab":
			// Switch focus between log and input
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				action := strings.TrimSpace(m.actionInput.Value())
				m.processAction(action)
				m.actionInput.SetValue("")
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
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

	// Only update input if it's focused
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Always update viewport (for scrolling)
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionWidth := m.width - 2
	actionInnerHeight := actionHeight - 2
	if actionWidth < 1 {
		actionWidth = 1
	}
	if actionInnerHeight < 1 {
		actionInnerHeight = 1
	}

	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(actionWidth).
		Height(actionInnerHeight)
	actionPane := actionStyle.Render(actionContent)

	// Sidebar pane (right side, same height as log pane)
	sidebarContent := m.renderSidebarPane()
	sidebarWidth := lipgloss.Width(sidebarContent)
	if sidebarWidth < 25 {
		sidebarWidth = 25
	}
	sidebarHeight := m.height - actionHeight - 4
	if sidebarHeight < 1 {
		sidebarHeight = 1
	}

	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(sidebarHeight)
	sidebarPane := sidebarStyle.Render(sidebarContent)

	// Log pane (top, fills the remaining space)
	logWidth := m.width - sidebarWidth - 4
	logHeight := m.height - actionHeight - 4
	if logWidth < 1 {
		logWidth = 1
	}
	if logHeight < 1 {
		logHeight = 1
	}

	m.logViewport.Width = logWidth
	m.logViewport.Height = logHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))

	// On first proper sizing, reset to top to avoid starting scrolled down
	if !m.initialized && logWidth > 1 && logHeight > 1 {
		m.logViewport.GotoTop()
		m.initialized = true
	} else if m.followLog {
		m.logViewport.GotoBottom()
	}
	m.followLog = false

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(logHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)

	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderSidebarPane shows the seated room, or the lobby when unseated.
// Callers hold m.mu.
func (m *Model) renderSidebarPane() string {
	var content strings.Builder

	if m.snapshot != nil {
		snap := m.snapshot
		content.WriteString(HandInfoStyle.Render("Room: " + snap.RoomID))
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("Phase: " + snap.Phase))
		content.WriteString("\n\n")

		content.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: $%d", snap.Pot)))
		if snap.CurrentBet > 0 {
			content.WriteString(" | ")
			content.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: $%d", snap.CurrentBet)))
		}
		content.WriteString("\n")

		if len(snap.Community) > 0 {
			content.WriteString("Board: " + formatCards(snap.Community))
			content.WriteString("\n")
		}
		content.WriteString("\n")

		for _, p := range snap.Players {
			line := fmt.Sprintf("%s: $%d", p.UserID, p.Chips)
			if p.Bet > 0 {
				line += fmt.Sprintf(" (bet $%d)", p.Bet)
			}
			switch {
			case p.Folded:
				line += " folded"
			case p.AllIn:
				line += " all-in"
			}
			if p.UserID == m.playerID {
				line = "* " + line
			} else {
				line = "  " + line
			}
			content.WriteString(line)
			content.WriteString("\n")
		}
		return content.String()
	}

	content.WriteString(HandInfoStyle.Render("Lobby"))
	content.WriteString("\n\n")
	if len(m.lobby) == 0 {
		content.WriteString(InfoStyle.Render("No open rooms."))
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("/join <room> creates one."))
		content.WriteString("\n")
	} else {
		for _, room := range m.lobby {
			content.WriteString(fmt.Sprintf("%s: %d/%d  BB $%d\n",
				room.RoomID, room.PlayerCount, room.MaxPlayers, room.BigBlind))
		}
	}
	return content.String()
}

// renderActionPane renders the action input pane. Callers hold m.mu.
func (m *Model) renderActionPane() string {
	var content strings.Builder

	yourTurn := m.snapshot != nil && m.snapshot.IsYourTurn
	if yourTurn {
		content.WriteString(m.renderHandInfo())
		content.WriteString("\n")
		content.WriteString(m.renderAvailableActions())
		content.WriteString("\n")
		m.actionInput.Placeholder = "Your action: fold, check, call, raise <amount>, allin"
	} else {
		content.WriteString(HandInfoStyle.Render("Waiting..."))
		content.WriteString("\n")
		m.actionInput.Placeholder = "Enter a command (/list, /join <room>, /leave, /quit)"
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(HelpStyle.Render(
			"Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else if yourTurn {
		content.WriteString(HelpStyle.Render(
			"Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	} else {
		content.WriteString(HelpStyle.Render(
			"Tab to scroll log • Ctrl+C to quit"))
	}

	return content.String()
}

// renderHandInfo shows the recipient's own cards and what a call costs.
// Callers hold m.mu.
func (m *Model) renderHandInfo() string {
	snap := m.snapshot

	var hand string
	var toCall int
	for _, p := range snap.Players {
		if p.UserID == m.playerID {
			hand = formatCards(p.HoleCards.Cards)
			toCall = snap.CurrentBet - p.Bet
			break
		}
	}

	info := fmt.Sprintf("Hand: %s  Pot: $%d", hand, snap.Pot)
	if toCall > 0 {
		info += fmt.Sprintf("  To call: $%d", toCall)
	}
	return HandInfoStyle.Render(info)
}

// renderAvailableActions derives the action row from the snapshot.
// Callers hold m.mu.
func (m *Model) renderAvailableActions() string {
	snap := m.snapshot

	var myBet int
	for _, p := range snap.Players {
		if p.UserID == m.playerID {
			myBet = p.Bet
			break
		}
	}

	actions := []string{ErrorStyle.Render("[fold]")}
	if snap.CurrentBet > myBet {
		actions = append(actions, SuccessStyle.Render(fmt.Sprintf("[call $%d]", snap.CurrentBet-myBet)))
	} else {
		actions = append(actions, SuccessStyle.Render("[check]"))
	}
	actions = append(actions,
		WarningStyle.Render("[raise <amount>]"),
		WarningStyle.Render("[allin]"))

	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// formatCards formats cards with suit colors
func formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}

	var formatted []string
	for _, card := range cards {
		if card.IsRed() {
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}

	return "[" + strings.Join(formatted, " ") + "]"
}

// AddLogEntry adds an entry to the game log. The viewport itself is
// only touched from the render loop; entries appended here are picked
// up on the next frame.
func (m *Model) AddLogEntry(entry string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gameLog = append(m.gameLog, entry)

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.followLog = true
}

// SetIdentity records which seat in incoming snapshots is ours
func (m *Model) SetIdentity(playerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playerID = playerID
}

// SetRoom records the joined room. Leaving clears the table view.
func (m *Model) SetRoom(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roomID = roomID
	if roomID == "" {
		m.snapshot = nil
	}
}

// CurrentRoom returns the room the model is displaying
func (m *Model) CurrentRoom() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomID
}

// SetSnapshot replaces the table view with a fresh server snapshot
func (m *Model) SetSnapshot(snapshot *game.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot = snapshot
}

// IsYourTurn reports whether the latest snapshot hands us the turn
func (m *Model) IsYourTurn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot != nil && m.snapshot.IsYourTurn
}

// UpsertLobbyRoom folds a lobby update into the room listing. Empty
// rooms disappear from the lobby.
func (m *Model) UpsertLobbyRoom(info rooms.RoomInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, room := range m.lobby {
		if room.RoomID == info.RoomID {
			if info.PlayerCount == 0 {
				m.lobby = append(m.lobby[:i], m.lobby[i+1:]...)
			} else {
				m.lobby[i] = info
			}
			return
		}
	}
	if info.PlayerCount > 0 {
		m.lobby = append(m.lobby, info)
	}
}

// SetLobby replaces the whole lobby listing
func (m *Model) SetLobby(listing []rooms.RoomInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lobby = listing
}

// processAction parses user input and hands it to the command loop
func (m *Model) processAction(input string) {
	parts := strings.Fields(strings.ToLower(input))

	var action string
	var args []string

	if len(parts) > 0 {
		action = parts[0]
		args = parts[1:]
	}

	m.actionResult <- ActionResult{
		Action:   action,
		Args:     args,
		Continue: true,
	}
}

// WaitForAction waits for user input (for use by the command loop)
func (m *Model) WaitForAction() (string, []string, bool, error) {
	result := <-m.actionResult
	return result.Action, result.Args, result.Continue, result.Error
}

// SendQuitSignal signals the TUI to quit gracefully
func (m *Model) SendQuitSignal() {
	select {
	case m.quitSignal <- true:
	default:
		// Quit signal already sent
	}
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *Model) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// InjectAction programmatically injects an action (test mode only)
func (m *Model) InjectAction(action string, args []string) error {
	if !m.testMode {
		return fmt.Errorf("action injection only available in test mode")
	}

	select {
	case m.actionResult <- ActionResult{
		Action:   action,
		Args:     args,
		Continue: true,
	}:
		return nil
	default:
		return fmt.Errorf("action channel full")
	}
}

// IsTestMode returns whether the TUI is in test mode
func (m *Model) IsTestMode() bool {
	return m.testMode
}

// SetMessageCallback sets a callback for test synchronization
func (m *Model) SetMessageCallback(callback func(messageType server.MessageType)) {
	if m.testMode {
		m.messageCallback = callback
	}
}

// notifyMessageCallback calls the message callback if in test mode
func (m *Model) notifyMessageCallback(messageType server.MessageType) {
	if m.testMode && m.messageCallback != nil {
		m.messageCallback(messageType)
	}
}
