package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/holdem-rooms/internal/tui"
)

// PlayCommand connects, optionally joins a room, and runs the TUI
type PlayCommand struct {
	Room string `arg:"" optional:"" help:"Room to join on startup; any id works, rooms are created on first join"`
}

func (cmd *PlayCommand) Run(flags *GlobalFlags) error {
	// Create client with file logging (handles config loading and log file creation)
	wsClient, cfg, logger, cleanup, err := SetupClientWithFileLogging(flags)
	if err != nil {
		return err
	}
	defer cleanup()

	logger.Info("Starting Holdem Client TUI",
		"server", cfg.Server.URL,
		"player", cfg.Player.Name,
		"room", cmd.Room)

	// Create TUI model
	model := tui.NewModel(logger)

	// Bridge server messages into the TUI
	tui.SetupNetworkHandlers(wsClient, model)

	model.AddLogEntry("=== Texas Hold'em ===")
	model.AddLogEntry("Connected to server: " + cfg.Server.URL)
	if cfg.Player.Name != "" {
		model.AddLogEntry("Player: " + cfg.Player.Name)
	} else {
		model.AddLogEntry("Playing as a guest")
	}
	model.AddLogEntry("")
	model.AddLogEntry("Commands:")
	model.AddLogEntry("  /list - List open rooms")
	model.AddLogEntry("  /join <room> - Join a room (created if new)")
	model.AddLogEntry("  /leave - Leave the current room")
	model.AddLogEntry("  /quit - Quit")
	model.AddLogEntry("")
	model.AddLogEntry("When it is your turn: fold, check, call, raise <amount>, allin")
	model.AddLogEntry("")

	if cmd.Room != "" {
		if err := wsClient.JoinRoom(cmd.Room); err != nil {
			return fmt.Errorf("failed to join room %s: %w", cmd.Room, err)
		}
	}

	// Start TUI
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Start command handler in TUI package
	tui.StartCommandHandler(wsClient, model)

	// Run TUI
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
