package game

import (
	"time"

	"github.com/lox/holdem-rooms/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

const (
	EventTypePlayerJoined EventType = "player_joined"
	EventTypePlayerLeft   EventType = "player_left"
	EventTypeHandStart    EventType = "hand_start"
	EventTypeBlindPosted  EventType = "blind_posted"
	EventTypePlayerAction EventType = "player_action"
	EventTypePhaseChange  EventType = "phase_change"
	EventTypeHandEnd      EventType = "hand_end"
	EventTypeHandAborted  EventType = "hand_aborted"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event represents something that happened inside a room
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// Subscriber receives events from a room. Events are delivered
// synchronously while the room is being mutated, so implementations
// must not block.
type Subscriber interface {
	OnEvent(roomID string, event Event)
}

// PlayerJoinedEvent is published when a participant takes a seat
type PlayerJoinedEvent struct {
	PlayerID  string `json:"playerId"`
	Chips     int    `json:"chips"`
	Seat      int    `json:"seat"`
	timestamp time.Time
}

func (e PlayerJoinedEvent) EventType() EventType { return EventTypePlayerJoined }
func (e PlayerJoinedEvent) Timestamp() time.Time { return e.timestamp }

// PlayerLeftEvent is published when a participant gives up a seat
type PlayerLeftEvent struct {
	PlayerID  string `json:"playerId"`
	timestamp time.Time
}

func (e PlayerLeftEvent) EventType() EventType { return EventTypePlayerLeft }
func (e PlayerLeftEvent) Timestamp() time.Time { return e.timestamp }

// HandStartEvent is published when a new hand begins
type HandStartEvent struct {
	HandID     string   `json:"handId"`
	PlayerIDs  []string `json:"players"`
	DealerID   string   `json:"dealer"`
	SmallBlind int      `json:"smallBlind"`
	BigBlind   int      `json:"bigBlind"`
	timestamp  time.Time
}

func (e HandStartEvent) EventType() EventType { return EventTypeHandStart }
func (e HandStartEvent) Timestamp() time.Time { return e.timestamp }

// BlindPostedEvent is published for each blind posted at hand start
type BlindPostedEvent struct {
	PlayerID  string `json:"playerId"`
	Kind      string `json:"kind"` // "small" or "big"
	Amount    int    `json:"amount"`
	AllIn     bool   `json:"allIn,omitempty"`
	timestamp time.Time
}

func (e BlindPostedEvent) EventType() EventType { return EventTypeBlindPosted }
func (e BlindPostedEvent) Timestamp() time.Time { return e.timestamp }

// PlayerActionEvent is published when a player takes an action. The
// action is the effective one: a check facing a bet is reported as the
// call it became.
type PlayerActionEvent struct {
	PlayerID  string `json:"playerId"`
	Action    Action `json:"action"`
	Amount    int    `json:"amount"` // player's total bet this round, 0 for a fold
	Pot       int    `json:"pot"`    // pot after the action
	AllIn     bool   `json:"allIn,omitempty"`
	timestamp time.Time
}

func (e PlayerActionEvent) EventType() EventType { return EventTypePlayerAction }
func (e PlayerActionEvent) Timestamp() time.Time { return e.timestamp }

// PhaseChangeEvent is published when the room advances to a new street
type PhaseChangeEvent struct {
	Phase     Phase       `json:"phase"`
	Community []deck.Card `json:"communityCards"`
	timestamp time.Time
}

func (e PhaseChangeEvent) EventType() EventType { return EventTypePhaseChange }
func (e PhaseChangeEvent) Timestamp() time.Time { return e.timestamp }

// HandEndEvent is published when a hand settles
type HandEndEvent struct {
	HandID    string `json:"handId"`
	WinnerID  string `json:"winner"`
	Pot       int    `json:"pot"`
	Showdown  bool   `json:"showdown"` // true when the winner was drawn among multiple contenders
	timestamp time.Time
}

func (e HandEndEvent) EventType() EventType { return EventTypeHandEnd }
func (e HandEndEvent) Timestamp() time.Time { return e.timestamp }

// HandAbortedEvent is published when a hand is torn down without a
// winner, e.g. on deck exhaustion
type HandAbortedEvent struct {
	HandID    string `json:"handId"`
	Reason    string `json:"reason"`
	timestamp time.Time
}

func (e HandAbortedEvent) EventType() EventType { return EventTypeHandAborted }
func (e HandAbortedEvent) Timestamp() time.Time { return e.timestamp }
