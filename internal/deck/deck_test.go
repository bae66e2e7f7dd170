package deck

import (
	"errors"
	"testing"

	"github.com/lox/holdem-rooms/internal/randutil"
)

func TestNewDeckHas52UniqueCards(t *testing.T) {
	t.Parallel()

	d := New(randutil.New(42))
	if d.Remaining() != 52 {
		t.Fatalf("new deck has %d cards, want 52", d.Remaining())
	}

	seen := make(map[Card]bool)
	for i := 0; i < 52; i++ {
		card, err := d.Draw()
		if err != nil {
			t.Fatalf("Draw() error on card %d: %v", i, err)
		}
		if seen[card] {
			t.Errorf("duplicate card %s", card)
		}
		seen[card] = true
	}

	if len(seen) != 52 {
		t.Errorf("drew %d unique cards, want 52", len(seen))
	}
}

func TestDrawFromEmptyDeck(t *testing.T) {
	t.Parallel()

	d := New(randutil.New(1))
	for i := 0; i < 52; i++ {
		if _, err := d.Draw(); err != nil {
			t.Fatalf("unexpected error draining deck: %v", err)
		}
	}

	if !d.IsEmpty() {
		t.Fatal("deck should be empty after 52 draws")
	}

	_, err := d.Draw()
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Draw() on empty deck = %v, want ErrEmpty", err)
	}
}

func TestDrawN(t *testing.T) {
	t.Parallel()

	d := New(randutil.New(7))

	cards, err := d.DrawN(3)
	if err != nil {
		t.Fatalf("DrawN(3) error = %v", err)
	}
	if len(cards) != 3 {
		t.Fatalf("DrawN(3) returned %d cards", len(cards))
	}
	if d.Remaining() != 49 {
		t.Errorf("Remaining() = %d, want 49", d.Remaining())
	}

	// Asking for more than remain fails without consuming anything.
	if _, err := d.DrawN(50); !errors.Is(err, ErrEmpty) {
		t.Errorf("DrawN(50) = %v, want ErrEmpty", err)
	}
	if d.Remaining() != 49 {
		t.Errorf("failed DrawN consumed cards, Remaining() = %d", d.Remaining())
	}
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()

	d1 := New(randutil.New(42))
	d2 := New(randutil.New(42))
	d3 := New(randutil.New(43))

	var order1, order2, order3 []Card
	for i := 0; i < 52; i++ {
		c1, _ := d1.Draw()
		c2, _ := d2.Draw()
		c3, _ := d3.Draw()
		order1 = append(order1, c1)
		order2 = append(order2, c2)
		order3 = append(order3, c3)
	}

	if !cardsEqual(order1, order2) {
		t.Error("same seed should produce the same shuffle")
	}
	if cardsEqual(order1, order3) {
		t.Error("different seeds should produce different shuffles")
	}
}

func TestReset(t *testing.T) {
	t.Parallel()

	d := New(randutil.New(9))
	if _, err := d.DrawN(20); err != nil {
		t.Fatalf("DrawN(20) error = %v", err)
	}

	d.Reset()
	if d.Remaining() != 52 {
		t.Errorf("Remaining() after Reset = %d, want 52", d.Remaining())
	}

	seen := make(map[Card]bool)
	for !d.IsEmpty() {
		card, _ := d.Draw()
		seen[card] = true
	}
	if len(seen) != 52 {
		t.Errorf("reset deck has %d unique cards, want 52", len(seen))
	}
}
