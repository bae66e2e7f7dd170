package game

import (
	"errors"
	"testing"
)

func TestSeatOrderIsJoinOrder(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)
	seatPlayers(t, r, 100, "Alice", "Bob", "Charlie")

	if r.SeatedCount() != 3 {
		t.Fatalf("Expected 3 seated players, got %d", r.SeatedCount())
	}
	for i, want := range []string{"Alice", "Bob", "Charlie"} {
		if r.Players[i].ID != want {
			t.Errorf("Seat %d should be %s, got %s", i, want, r.Players[i].ID)
		}
	}
}

func TestSeatRoomFull(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10, WithMaxPlayers(2))
	seatPlayers(t, r, 100, "Alice", "Bob")

	err := r.Seat("Charlie", 100)
	if !errors.Is(err, ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
	if r.IsSeated("Charlie") {
		t.Error("Charlie should not be seated after rejection")
	}
}

func TestSeatAlreadySeated(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)
	seatPlayers(t, r, 100, "Alice")

	err := r.Seat("Alice", 500)
	if !errors.Is(err, ErrAlreadySeated) {
		t.Errorf("Expected ErrAlreadySeated, got %v", err)
	}
	if r.SeatedCount() != 1 {
		t.Errorf("Duplicate seat attempt changed the seat count: %d", r.SeatedCount())
	}
}

func TestSeatInsufficientChips(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)

	// Minimum buy-in is ten big blinds, boundary inclusive.
	if err := r.Seat("Alice", 99); !errors.Is(err, ErrInsufficientChips) {
		t.Errorf("Expected ErrInsufficientChips for 99 chips, got %v", err)
	}
	if err := r.Seat("Bob", 100); err != nil {
		t.Errorf("100 chips should meet the minimum buy-in, got %v", err)
	}
}

func TestSeatChecksCapacityBeforeDuplicate(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10, WithMaxPlayers(1))
	seatPlayers(t, r, 100, "Alice")

	// A full room reports full even to someone already seated.
	if err := r.Seat("Alice", 100); !errors.Is(err, ErrRoomFull) {
		t.Errorf("Expected ErrRoomFull, got %v", err)
	}
}

func TestSeatDuringHandSitsOut(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)
	seatPlayers(t, r, 100, "Alice", "Bob")
	mustStart(t, r)

	if err := r.Seat("Charlie", 100); err != nil {
		t.Fatalf("mid-hand join should be allowed: %v", err)
	}

	charlie := playerByID(t, r, "Charlie")
	if !charlie.Folded {
		t.Error("Mid-hand joiner should sit out until the next hand")
	}
	if len(charlie.HoleCards) != 0 {
		t.Errorf("Mid-hand joiner should not be dealt in, got %d cards", len(charlie.HoleCards))
	}

	// Finish the hand; Charlie is dealt into the next one.
	mustApply(t, r, r.CurrentPlayerID(), Fold, 0)
	if r.Phase.Active() {
		t.Fatalf("Hand should have settled, phase is %s", r.Phase)
	}
	mustStart(t, r)
	if charlie.Folded {
		t.Error("Charlie should be live in the next hand")
	}
	if len(charlie.HoleCards) != 2 {
		t.Errorf("Charlie should have 2 hole cards, got %d", len(charlie.HoleCards))
	}
}

func TestUnseatUnknownPlayer(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)
	seatPlayers(t, r, 100, "Alice")

	if r.Unseat("Bob") {
		t.Error("Unseating an unknown player should report false")
	}
	if r.SeatedCount() != 1 {
		t.Errorf("Seat count changed: %d", r.SeatedCount())
	}
}

func TestUnseatLastPlayerResetsRoom(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)
	seatPlayers(t, r, 100, "Alice", "Bob")
	mustStart(t, r)

	if !r.Unseat("Alice") {
		t.Fatal("Unseat should succeed")
	}
	if !r.Unseat("Bob") {
		t.Fatal("Unseat should succeed")
	}

	if !r.Empty() {
		t.Error("Room should be empty")
	}
	if r.Phase != Waiting {
		t.Errorf("Empty room should be waiting, got %s", r.Phase)
	}
	if r.Pot != 0 || r.HandID != "" || r.CurrentIndex != -1 {
		t.Errorf("Empty room retained hand state: pot=%d handID=%q currentIndex=%d",
			r.Pot, r.HandID, r.CurrentIndex)
	}
}

func TestUnseatAdjustsDealerIndex(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)
	seatPlayers(t, r, 100, "Alice", "Bob", "Charlie")
	r.DealerIndex = 2

	r.Unseat("Alice")
	if r.DealerIndex != 1 {
		t.Errorf("Dealer index should shift down with the seats, got %d", r.DealerIndex)
	}
	if r.Players[r.DealerIndex].ID != "Charlie" {
		t.Errorf("Dealer should still be Charlie, got %s", r.Players[r.DealerIndex].ID)
	}

	// Removing the last seat wraps the button to seat zero.
	r.Unseat("Charlie")
	if r.DealerIndex != 0 {
		t.Errorf("Dealer index should wrap to 0, got %d", r.DealerIndex)
	}
}

func TestUnseatMidHandSettlesLastContender(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)
	rec := &eventRecorder{}
	r.Subscribe(rec)
	seatPlayers(t, r, 100, "Alice", "Bob")
	mustStart(t, r)

	pot := r.Pot
	if !r.Unseat(r.CurrentPlayerID()) {
		t.Fatal("Unseat should succeed")
	}

	if r.Phase.Active() {
		t.Fatalf("Hand should have settled, phase is %s", r.Phase)
	}
	end := rec.last(EventTypeHandEnd)
	if end == nil {
		t.Fatal("Expected a hand end event")
	}
	he := end.(HandEndEvent)
	if he.Showdown {
		t.Error("Walkover should not be a showdown")
	}
	if he.Pot != pot {
		t.Errorf("Winner should collect the pot of %d, got %d", pot, he.Pot)
	}
	if !r.IsSeated(he.WinnerID) {
		t.Errorf("Winner %s should still be seated", he.WinnerID)
	}
}

func TestUnseatCurrentPlayerPassesTurn(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)
	seatPlayers(t, r, 100, "Alice", "Bob", "Charlie")
	mustStart(t, r)

	// Dealer 0: Alice is under the gun.
	if got := r.CurrentPlayerID(); got != "Alice" {
		t.Fatalf("Expected Alice to act first, got %s", got)
	}

	r.Unseat("Alice")
	if r.Phase != Preflop {
		t.Fatalf("Hand should continue with two contenders, phase is %s", r.Phase)
	}
	if got := r.CurrentPlayerID(); got != "Bob" {
		t.Errorf("Turn should pass to Bob, got %s", got)
	}
}

func TestUnseatNonContenderKeepsHandRunning(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)
	seatPlayers(t, r, 100, "Alice", "Bob", "Charlie")
	mustStart(t, r)

	// Alice folds, then leaves. Bob and Charlie play on.
	mustApply(t, r, "Alice", Fold, 0)
	r.Unseat("Alice")

	if !r.Phase.Active() {
		t.Fatalf("Hand should still be running, phase is %s", r.Phase)
	}
	if got := r.CurrentPlayerID(); got != "Bob" {
		t.Errorf("Bob should hold the turn, got %s", got)
	}
}

func TestCanStartHand(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)

	if r.CanStartHand() {
		t.Error("Empty room should not be able to start a hand")
	}
	seatPlayers(t, r, 100, "Alice")
	if r.CanStartHand() {
		t.Error("One player is not enough to start a hand")
	}
	seatPlayers(t, r, 100, "Bob")
	if !r.CanStartHand() {
		t.Error("Two players should be able to start a hand")
	}
	mustStart(t, r)
	if r.CanStartHand() {
		t.Error("A running hand should block another start")
	}
}

func TestCurrentPlayerIDOutsideHand(t *testing.T) {
	t.Parallel()
	r := newTestRoom(t, 10)
	seatPlayers(t, r, 100, "Alice", "Bob")

	if got := r.CurrentPlayerID(); got != "" {
		t.Errorf("No hand running, expected empty current player, got %q", got)
	}
}
