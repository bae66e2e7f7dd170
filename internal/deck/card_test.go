package deck

import (
	"encoding/json"
	"testing"
)

func TestParseCards(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Card
		wantErr  bool
	}{
		{
			name:  "royal flush",
			input: "AsKsQsJsTs",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Spades, Rank: King},
				{Suit: Spades, Rank: Queen},
				{Suit: Spades, Rank: Jack},
				{Suit: Spades, Rank: Ten},
			},
		},
		{
			name:  "mixed suits",
			input: "AhKdQcJs9s",
			expected: []Card{
				{Suit: Hearts, Rank: Ace},
				{Suit: Diamonds, Rank: King},
				{Suit: Clubs, Rank: Queen},
				{Suit: Spades, Rank: Jack},
				{Suit: Spades, Rank: Nine},
			},
		},
		{
			name:  "low cards",
			input: "5h4d3c2s",
			expected: []Card{
				{Suit: Hearts, Rank: Five},
				{Suit: Diamonds, Rank: Four},
				{Suit: Clubs, Rank: Three},
				{Suit: Spades, Rank: Two},
			},
		},
		{
			name:  "case insensitive",
			input: "asKHqDjc",
			expected: []Card{
				{Suit: Spades, Rank: Ace},
				{Suit: Hearts, Rank: King},
				{Suit: Diamonds, Rank: Queen},
				{Suit: Clubs, Rank: Jack},
			},
		},
		{
			name:    "invalid rank",
			input:   "XsKs",
			wantErr: true,
		},
		{
			name:    "invalid suit",
			input:   "AsKx",
			wantErr: true,
		},
		{
			name:    "odd length",
			input:   "AsK",
			wantErr: true,
		},
		{
			name:     "empty string",
			input:    "",
			expected: []Card{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCards(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseCards() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !cardsEqual(got, tt.expected) {
				t.Errorf("ParseCards() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustParseCards(t *testing.T) {
	cards := MustParseCards("AsKs")
	expected := []Card{
		{Suit: Spades, Rank: Ace},
		{Suit: Spades, Rank: King},
	}
	if !cardsEqual(cards, expected) {
		t.Errorf("MustParseCards() = %v, want %v", cards, expected)
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("MustParseCards() should panic on invalid input")
		}
	}()
	MustParseCards("invalid")
}

func TestCardString(t *testing.T) {
	tests := []struct {
		card     Card
		display  string
		notation string
	}{
		{Card{Suit: Spades, Rank: Ace}, "A♠", "As"},
		{Card{Suit: Hearts, Rank: Ten}, "T♥", "Th"},
		{Card{Suit: Diamonds, Rank: Two}, "2♦", "2d"},
		{Card{Suit: Clubs, Rank: Queen}, "Q♣", "Qc"},
	}

	for _, tt := range tests {
		if got := tt.card.String(); got != tt.display {
			t.Errorf("String() = %q, want %q", got, tt.display)
		}
		if got := tt.card.Notation(); got != tt.notation {
			t.Errorf("Notation() = %q, want %q", got, tt.notation)
		}
	}
}

func TestCardIsRed(t *testing.T) {
	if !(Card{Suit: Hearts, Rank: Ace}).IsRed() {
		t.Error("hearts should be red")
	}
	if !(Card{Suit: Diamonds, Rank: Ace}).IsRed() {
		t.Error("diamonds should be red")
	}
	if (Card{Suit: Spades, Rank: Ace}).IsRed() {
		t.Error("spades should not be red")
	}
	if (Card{Suit: Clubs, Rank: Ace}).IsRed() {
		t.Error("clubs should not be red")
	}
}

func TestCardJSON(t *testing.T) {
	card := Card{Suit: Diamonds, Rank: King}

	data, err := json.Marshal(card)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"Kd"` {
		t.Errorf("Marshal() = %s, want %q", data, "Kd")
	}

	var decoded Card
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded != card {
		t.Errorf("round trip = %v, want %v", decoded, card)
	}

	if err := json.Unmarshal([]byte(`"Zz"`), &decoded); err == nil {
		t.Error("Unmarshal() should fail on invalid notation")
	}
}

func cardsEqual(a, b []Card) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Rank != b[i].Rank || a[i].Suit != b[i].Suit {
			return false
		}
	}
	return true
}
