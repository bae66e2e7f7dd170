package server

import (
	"fmt"

	"github.com/lox/holdem-rooms/internal/deck"
	"github.com/lox/holdem-rooms/internal/game"
)

// Wire payloads for room events. Each carries the room id so clients
// can route without tracking request context.

type PlayerJoinedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Chips    int    `json:"chips"`
	Seat     int    `json:"seat"`
}

type PlayerLeftData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type HandStartData struct {
	RoomID     string   `json:"roomId"`
	HandID     string   `json:"handId"`
	Players    []string `json:"players"`
	Dealer     string   `json:"dealer"`
	SmallBlind int      `json:"smallBlind"`
	BigBlind   int      `json:"bigBlind"`
}

type BlindPostedData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Kind     string `json:"kind"`
	Amount   int    `json:"amount"`
	AllIn    bool   `json:"allIn,omitempty"`
}

type PlayerActionData struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
	Action   string `json:"action"`
	Amount   int    `json:"amount"`
	Pot      int    `json:"pot"`
	AllIn    bool   `json:"allIn,omitempty"`
}

type PhaseChangeData struct {
	RoomID         string      `json:"roomId"`
	Phase          string      `json:"phase"`
	CommunityCards []deck.Card `json:"communityCards"`
}

type HandEndData struct {
	RoomID   string `json:"roomId"`
	HandID   string `json:"handId"`
	Winner   string `json:"winner"`
	Pot      int    `json:"pot"`
	Showdown bool   `json:"showdown"`
}

type HandAbortedData struct {
	RoomID string `json:"roomId"`
	HandID string `json:"handId"`
	Reason string `json:"reason"`
}

// EventMessage converts a room event into its wire message. The message
// timestamp is the event's, not the conversion time.
func EventMessage(roomID string, event game.Event) (*Message, error) {
	var (
		messageType MessageType
		payload     interface{}
	)

	switch ev := event.(type) {
	case game.PlayerJoinedEvent:
		messageType = MessageTypePlayerJoined
		payload = PlayerJoinedData{
			RoomID:   roomID,
			PlayerID: ev.PlayerID,
			Chips:    ev.Chips,
			Seat:     ev.Seat,
		}

	case game.PlayerLeftEvent:
		messageType = MessageTypePlayerLeft
		payload = PlayerLeftData{
			RoomID:   roomID,
			PlayerID: ev.PlayerID,
		}

	case game.HandStartEvent:
		messageType = MessageTypeHandStart
		payload = HandStartData{
			RoomID:     roomID,
			HandID:     ev.HandID,
			Players:    ev.PlayerIDs,
			Dealer:     ev.DealerID,
			SmallBlind: ev.SmallBlind,
			BigBlind:   ev.BigBlind,
		}

	case game.BlindPostedEvent:
		messageType = MessageTypeBlindPosted
		payload = BlindPostedData{
			RoomID:   roomID,
			PlayerID: ev.PlayerID,
			Kind:     ev.Kind,
			Amount:   ev.Amount,
			AllIn:    ev.AllIn,
		}

	case game.PlayerActionEvent:
		messageType = MessageTypePlayerAction
		payload = PlayerActionData{
			RoomID:   roomID,
			PlayerID: ev.PlayerID,
			Action:   ev.Action.String(),
			Amount:   ev.Amount,
			Pot:      ev.Pot,
			AllIn:    ev.AllIn,
		}

	case game.PhaseChangeEvent:
		messageType = MessageTypePhaseChange
		payload = PhaseChangeData{
			RoomID:         roomID,
			Phase:          ev.Phase.String(),
			CommunityCards: ev.Community,
		}

	case game.HandEndEvent:
		messageType = MessageTypeHandEnd
		payload = HandEndData{
			RoomID:   roomID,
			HandID:   ev.HandID,
			Winner:   ev.WinnerID,
			Pot:      ev.Pot,
			Showdown: ev.Showdown,
		}

	case game.HandAbortedEvent:
		messageType = MessageTypeHandAborted
		payload = HandAbortedData{
			RoomID: roomID,
			HandID: ev.HandID,
			Reason: ev.Reason,
		}

	default:
		return nil, fmt.Errorf("server: no wire mapping for event %s", event.EventType())
	}

	msg, err := NewMessage(messageType, payload)
	if err != nil {
		return nil, err
	}
	msg.Timestamp = event.Timestamp()
	return msg, nil
}
