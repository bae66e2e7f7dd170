package tui

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-rooms/internal/deck"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/rooms"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func TestTUITestMode(t *testing.T) {
	logger := quietLogger()

	t.Run("test mode captures log entries", func(t *testing.T) {
		model := NewModelWithOptions(logger, true)

		assert.True(t, model.IsTestMode())
		assert.Empty(t, model.GetCapturedLog())

		model.AddLogEntry("alice sits down with $1000")
		model.AddLogEntry("*** FLOP ***")
		model.AddLogEntry("bob checks")

		captured := model.GetCapturedLog()
		require.Len(t, captured, 3)
		assert.Equal(t, "alice sits down with $1000", captured[0])
		assert.Equal(t, "*** FLOP ***", captured[1])
		assert.Equal(t, "bob checks", captured[2])
	})

	t.Run("production mode does not capture logs", func(t *testing.T) {
		model := NewModel(logger)

		assert.False(t, model.IsTestMode())

		model.AddLogEntry("Some log entry")

		assert.Nil(t, model.GetCapturedLog())
	})

	t.Run("action injection works in test mode", func(t *testing.T) {
		model := NewModelWithOptions(logger, true)

		err := model.InjectAction("call", nil)
		require.NoError(t, err)

		action, args, cont, err := model.WaitForAction()
		require.NoError(t, err)

		assert.Equal(t, "call", action)
		assert.Empty(t, args)
		assert.True(t, cont)
	})

	t.Run("action injection fails in production mode", func(t *testing.T) {
		model := NewModel(logger)

		err := model.InjectAction("call", nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "test mode")
	})

	t.Run("action injection with arguments", func(t *testing.T) {
		model := NewModelWithOptions(logger, true)

		err := model.InjectAction("raise", []string{"20"})
		require.NoError(t, err)

		action, args, cont, err := model.WaitForAction()
		require.NoError(t, err)

		assert.Equal(t, "raise", action)
		assert.Equal(t, []string{"20"}, args)
		assert.True(t, cont)
	})
}

func TestProcessActionParsing(t *testing.T) {
	logger := quietLogger()

	t.Run("input is lowercased and split into fields", func(t *testing.T) {
		model := NewModelWithOptions(logger, true)

		model.processAction("Raise  20")

		action, args, cont, err := model.WaitForAction()
		require.NoError(t, err)
		assert.Equal(t, "raise", action)
		assert.Equal(t, []string{"20"}, args)
		assert.True(t, cont)
	})

	t.Run("empty input still yields a result", func(t *testing.T) {
		model := NewModelWithOptions(logger, true)

		model.processAction("")

		action, args, cont, err := model.WaitForAction()
		require.NoError(t, err)
		assert.Equal(t, "", action)
		assert.Empty(t, args)
		assert.True(t, cont)
	})
}

func TestRoomStateTracking(t *testing.T) {
	logger := quietLogger()

	t.Run("snapshot drives turn reporting", func(t *testing.T) {
		model := NewModelWithOptions(logger, true)

		assert.False(t, model.IsYourTurn())

		model.SetSnapshot(&game.Snapshot{RoomID: "main", IsYourTurn: true})
		assert.True(t, model.IsYourTurn())

		model.SetSnapshot(&game.Snapshot{RoomID: "main", IsYourTurn: false})
		assert.False(t, model.IsYourTurn())
	})

	t.Run("leaving the room clears the table view", func(t *testing.T) {
		model := NewModelWithOptions(logger, true)

		model.SetRoom("main")
		model.SetSnapshot(&game.Snapshot{RoomID: "main", IsYourTurn: true})
		assert.Equal(t, "main", model.CurrentRoom())

		model.SetRoom("")
		assert.Equal(t, "", model.CurrentRoom())
		assert.False(t, model.IsYourTurn())
	})
}

func TestLobbyUpserts(t *testing.T) {
	logger := quietLogger()
	model := NewModelWithOptions(logger, true)

	model.UpsertLobbyRoom(rooms.RoomInfo{RoomID: "main", PlayerCount: 1, MaxPlayers: 6, BigBlind: 10})
	model.UpsertLobbyRoom(rooms.RoomInfo{RoomID: "side", PlayerCount: 2, MaxPlayers: 6, BigBlind: 10})

	model.mu.Lock()
	require.Len(t, model.lobby, 2)
	model.mu.Unlock()

	// Updates replace in place
	model.UpsertLobbyRoom(rooms.RoomInfo{RoomID: "main", PlayerCount: 3, MaxPlayers: 6, BigBlind: 10})

	model.mu.Lock()
	require.Len(t, model.lobby, 2)
	assert.Equal(t, 3, model.lobby[0].PlayerCount)
	model.mu.Unlock()

	// Empty rooms drop out of the listing
	model.UpsertLobbyRoom(rooms.RoomInfo{RoomID: "main", PlayerCount: 0, MaxPlayers: 6, BigBlind: 10})

	model.mu.Lock()
	require.Len(t, model.lobby, 1)
	assert.Equal(t, "side", model.lobby[0].RoomID)
	model.mu.Unlock()

	// Zero-count updates for unknown rooms are ignored
	model.UpsertLobbyRoom(rooms.RoomInfo{RoomID: "gone", PlayerCount: 0, MaxPlayers: 6, BigBlind: 10})

	model.mu.Lock()
	assert.Len(t, model.lobby, 1)
	model.mu.Unlock()
}

func TestViewRendersTable(t *testing.T) {
	logger := quietLogger()
	model := NewModel(logger)
	model.SetIdentity("alice")
	model.SetRoom("main")
	model.SetSnapshot(&game.Snapshot{
		RoomID:     "main",
		Phase:      "preflop",
		Pot:        15,
		CurrentBet: 10,
		Players: []game.PlayerView{
			{
				UserID:    "alice",
				Chips:     990,
				Bet:       10,
				HoleCards: game.HoleCardView{Cards: deck.MustParseCards("AsKh")},
			},
			{
				UserID:    "bob",
				Chips:     995,
				Bet:       5,
				HoleCards: game.HoleCardView{Hidden: true},
			},
		},
		IsYourTurn: true,
	})

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := updated.View()

	assert.Contains(t, view, "Room: main")
	assert.Contains(t, view, "Phase: preflop")
	assert.Contains(t, view, "Pot: $15")
	assert.Contains(t, view, "alice: $990")
	assert.Contains(t, view, "bob: $995")
	assert.Contains(t, view, "A♠")
	assert.Contains(t, view, "K♥")
}

func TestViewRendersLobbyWhenUnseated(t *testing.T) {
	logger := quietLogger()
	model := NewModel(logger)
	model.SetLobby([]rooms.RoomInfo{
		{RoomID: "main", PlayerCount: 2, MaxPlayers: 6, BigBlind: 10},
	})

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := updated.View()

	assert.Contains(t, view, "Lobby")
	assert.Contains(t, view, "main: 2/6")
	assert.Contains(t, view, "Waiting...")
}
