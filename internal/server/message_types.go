package server

// Note: room events (hand_start, hand_end, etc.) originate in
// internal/game and are forwarded to clients as WebSocket messages

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeAuth      MessageType = "auth"
	MessageTypeJoinRoom  MessageType = "join_room"
	MessageTypeLeaveRoom MessageType = "leave_room"
	MessageTypeListRooms MessageType = "list_rooms"
	MessageTypeAction    MessageType = "action"

	// Server to client messages
	MessageTypeError        MessageType = "error"
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeRoomJoined   MessageType = "room_joined"
	MessageTypeRoomLeft     MessageType = "room_left"
	MessageTypeRoomList     MessageType = "room_list"
	MessageTypeRoomState    MessageType = "room_state"
	MessageTypeLobbyUpdate  MessageType = "lobby_update"
	MessageTypePlayerJoined MessageType = "player_joined"
	MessageTypePlayerLeft   MessageType = "player_left"
	MessageTypeHandStart    MessageType = "hand_start"
	MessageTypeBlindPosted  MessageType = "blind_posted"
	MessageTypePlayerAction MessageType = "player_action"
	MessageTypePhaseChange  MessageType = "phase_change"
	MessageTypeHandEnd      MessageType = "hand_end"
	MessageTypeHandAborted  MessageType = "hand_aborted"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
