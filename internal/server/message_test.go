package server

import (
	"testing"
	"time"

	"github.com/lox/holdem-rooms/internal/game"
)

func TestNewMessage(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MessageTypeJoinRoom, JoinRoomData{RoomID: "main"})
	if err != nil {
		t.Fatalf("failed to build message: %v", err)
	}
	if msg.Type != MessageTypeJoinRoom {
		t.Errorf("expected type join_room, got %s", msg.Type)
	}
	if msg.Timestamp.IsZero() {
		t.Error("expected a timestamp on the message")
	}

	var data JoinRoomData
	decodeData(t, msg, &data)
	if data.RoomID != "main" {
		t.Errorf("expected room main, got %s", data.RoomID)
	}
}

func TestEventMessageHandStart(t *testing.T) {
	t.Parallel()

	event := game.HandStartEvent{
		HandID:     "hand-7",
		PlayerIDs:  []string{"alice", "bob"},
		DealerID:   "alice",
		SmallBlind: 5,
		BigBlind:   10,
	}
	msg, err := EventMessage("main", event)
	if err != nil {
		t.Fatalf("failed to convert event: %v", err)
	}
	if msg.Type != MessageTypeHandStart {
		t.Fatalf("expected hand_start, got %s", msg.Type)
	}

	var data HandStartData
	decodeData(t, msg, &data)
	if data.RoomID != "main" {
		t.Errorf("expected room main, got %s", data.RoomID)
	}
	if data.HandID != "hand-7" {
		t.Errorf("expected hand-7, got %s", data.HandID)
	}
	if len(data.Players) != 2 || data.Players[0] != "alice" {
		t.Errorf("unexpected players %v", data.Players)
	}
	if data.Dealer != "alice" {
		t.Errorf("expected dealer alice, got %s", data.Dealer)
	}
	if data.SmallBlind != 5 || data.BigBlind != 10 {
		t.Errorf("expected blinds 5/10, got %d/%d", data.SmallBlind, data.BigBlind)
	}
}

func TestEventMessagePlayerAction(t *testing.T) {
	t.Parallel()

	event := game.PlayerActionEvent{
		PlayerID: "bob",
		Action:   game.Raise,
		Amount:   30,
		Pot:      45,
	}
	msg, err := EventMessage("main", event)
	if err != nil {
		t.Fatalf("failed to convert event: %v", err)
	}
	if msg.Type != MessageTypePlayerAction {
		t.Fatalf("expected player_action, got %s", msg.Type)
	}

	var data PlayerActionData
	decodeData(t, msg, &data)
	if data.PlayerID != "bob" {
		t.Errorf("expected bob, got %s", data.PlayerID)
	}
	if data.Action != "raise" {
		t.Errorf("expected action raise, got %s", data.Action)
	}
	if data.Amount != 30 || data.Pot != 45 {
		t.Errorf("expected amount 30 pot 45, got %d %d", data.Amount, data.Pot)
	}
}

func TestEventMessageHandEnd(t *testing.T) {
	t.Parallel()

	event := game.HandEndEvent{
		HandID:   "hand-7",
		WinnerID: "alice",
		Pot:      120,
		Showdown: true,
	}
	msg, err := EventMessage("main", event)
	if err != nil {
		t.Fatalf("failed to convert event: %v", err)
	}
	if msg.Type != MessageTypeHandEnd {
		t.Fatalf("expected hand_end, got %s", msg.Type)
	}

	// The event's timestamp is carried, not the conversion time.
	if !msg.Timestamp.Equal(time.Time{}) {
		t.Errorf("expected the event timestamp, got %s", msg.Timestamp)
	}

	var data HandEndData
	decodeData(t, msg, &data)
	if data.Winner != "alice" {
		t.Errorf("expected winner alice, got %s", data.Winner)
	}
	if data.Pot != 120 {
		t.Errorf("expected pot 120, got %d", data.Pot)
	}
	if !data.Showdown {
		t.Error("expected a showdown win")
	}
}

func TestEventMessagePhaseChange(t *testing.T) {
	t.Parallel()

	event := game.PhaseChangeEvent{Phase: game.Flop}
	msg, err := EventMessage("main", event)
	if err != nil {
		t.Fatalf("failed to convert event: %v", err)
	}
	if msg.Type != MessageTypePhaseChange {
		t.Fatalf("expected phase_change, got %s", msg.Type)
	}

	var data PhaseChangeData
	decodeData(t, msg, &data)
	if data.Phase != "flop" {
		t.Errorf("expected phase flop, got %s", data.Phase)
	}
}

type fakeEvent struct{}

func (fakeEvent) EventType() game.EventType { return game.EventType("telemetry") }
func (fakeEvent) Timestamp() time.Time      { return time.Time{} }

func TestEventMessageUnknownEvent(t *testing.T) {
	t.Parallel()

	if _, err := EventMessage("main", fakeEvent{}); err == nil {
		t.Fatal("expected an error for an unmapped event type")
	}
}
