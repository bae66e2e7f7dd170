package game

import (
	"encoding/json"

	"github.com/lox/holdem-rooms/internal/deck"
)

// Snapshot is a per-recipient view of a room, pushed to every seated
// participant after each state change. Hole cards belonging to anyone
// other than the recipient are masked.
type Snapshot struct {
	RoomID     string       `json:"roomId"`
	Phase      string       `json:"phase"`
	Pot        int          `json:"pot"`
	CurrentBet int          `json:"currentBet"`
	Community  []deck.Card  `json:"communityCards"`
	Players    []PlayerView `json:"players"`
	IsYourTurn bool         `json:"isYourTurn"`
}

// PlayerView is one seat as seen by the snapshot recipient
type PlayerView struct {
	UserID    string       `json:"userId"`
	Chips     int          `json:"chips"`
	Bet       int          `json:"bet"`
	Folded    bool         `json:"folded"`
	AllIn     bool         `json:"allIn"`
	HoleCards HoleCardView `json:"holeCards"`
}

// HoleCardView serializes either the recipient's own cards or the
// opaque "hidden" marker for everyone else's.
type HoleCardView struct {
	Cards  []deck.Card
	Hidden bool
}

// MarshalJSON emits a card array for visible hands and the string
// "hidden" for masked ones.
func (h HoleCardView) MarshalJSON() ([]byte, error) {
	if h.Hidden {
		return []byte(`"hidden"`), nil
	}
	if h.Cards == nil {
		return []byte(`[]`), nil
	}
	return json.Marshal(h.Cards)
}

// UnmarshalJSON accepts either a card array or the "hidden" marker.
func (h *HoleCardView) UnmarshalJSON(data []byte) error {
	if string(data) == `"hidden"` {
		*h = HoleCardView{Hidden: true}
		return nil
	}
	var cards []deck.Card
	if err := json.Unmarshal(data, &cards); err != nil {
		return err
	}
	*h = HoleCardView{Cards: cards}
	return nil
}

// Snapshot builds the recipient's view of the room. Hole cards of other
// players are masked whenever they hold any; empty hands serialize as
// an empty array rather than the marker.
func (r *Room) Snapshot(recipientID string) *Snapshot {
	players := make([]PlayerView, len(r.Players))
	for i, p := range r.Players {
		view := PlayerView{
			UserID: p.ID,
			Chips:  p.Chips,
			Bet:    p.Bet,
			Folded: p.Folded,
			AllIn:  p.AllIn,
		}
		if p.ID == recipientID {
			view.HoleCards = HoleCardView{Cards: append([]deck.Card(nil), p.HoleCards...)}
		} else {
			view.HoleCards = HoleCardView{Hidden: len(p.HoleCards) > 0}
		}
		players[i] = view
	}

	community := make([]deck.Card, 0, len(r.Community))
	community = append(community, r.Community...)

	return &Snapshot{
		RoomID:     r.ID,
		Phase:      r.Phase.String(),
		Pot:        r.Pot,
		CurrentBet: r.CurrentBet,
		Community:  community,
		Players:    players,
		IsYourTurn: r.CurrentPlayerID() == recipientID && recipientID != "",
	}
}
