package game

import (
	"testing"

	"github.com/lox/holdem-rooms/internal/randutil"
)

// eventRecorder collects every event a room publishes so tests can
// assert on the stream after driving the engine.
type eventRecorder struct {
	events []Event
}

func (er *eventRecorder) OnEvent(roomID string, event Event) {
	er.events = append(er.events, event)
}

func (er *eventRecorder) ofType(et EventType) []Event {
	var out []Event
	for _, e := range er.events {
		if e.EventType() == et {
			out = append(out, e)
		}
	}
	return out
}

func (er *eventRecorder) last(et EventType) Event {
	evs := er.ofType(et)
	if len(evs) == 0 {
		return nil
	}
	return evs[len(evs)-1]
}

// balanceRecorder captures SetBalance calls for sync assertions
type balanceRecorder struct {
	calls    int
	balances map[string]int
}

func newBalanceRecorder() *balanceRecorder {
	return &balanceRecorder{balances: make(map[string]int)}
}

func (br *balanceRecorder) SetBalance(playerID string, chips int) {
	br.calls++
	br.balances[playerID] = chips
}

func newTestRoom(t *testing.T, bigBlind int, opts ...RoomOption) *Room {
	t.Helper()
	all := append([]RoomOption{WithRand(randutil.New(42))}, opts...)
	return NewRoom("room-1", bigBlind, all...)
}

func seatPlayers(t *testing.T, r *Room, chips int, ids ...string) {
	t.Helper()
	for _, id := range ids {
		if err := r.Seat(id, chips); err != nil {
			t.Fatalf("seating %s: %v", id, err)
		}
	}
}

func mustStart(t *testing.T, r *Room) {
	t.Helper()
	if err := r.StartHand(); err != nil {
		t.Fatalf("starting hand: %v", err)
	}
}

func mustApply(t *testing.T, r *Room, playerID string, action Action, amount int) {
	t.Helper()
	if !r.Apply(playerID, action, amount) {
		t.Fatalf("action %s by %s was dropped (current turn: %q)", action, playerID, r.CurrentPlayerID())
	}
}

func playerByID(t *testing.T, r *Room, id string) *Player {
	t.Helper()
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	t.Fatalf("player %s not seated", id)
	return nil
}

// playStreet drives every pending decision on the current street with
// calls (checks when nothing is owed) until the phase changes.
func playStreet(t *testing.T, r *Room) {
	t.Helper()
	phase := r.Phase
	for i := 0; r.Phase == phase; i++ {
		if i > 20 {
			t.Fatalf("street %s did not close after %d actions", phase, i)
		}
		id := r.CurrentPlayerID()
		if id == "" {
			t.Fatalf("no current player during %s", phase)
		}
		mustApply(t, r, id, Call, 0)
	}
}

// totalChips sums stacks plus the pot, the quantity conserved by every
// betting action.
func totalChips(r *Room) int {
	total := r.Pot
	for _, p := range r.Players {
		total += p.Chips
	}
	return total
}
