package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-rooms/internal/auth"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/rooms"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	roomID    string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	server    *Server
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
		server: server,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, this is expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// GetRoom returns the associated room ID
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeLeaveRoom:
		var data LeaveRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse leave room data")
			return
		}
		c.handleLeaveRoom(data)

	case MessageTypeListRooms:
		c.handleListRooms()

	case MessageTypeAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse action data")
			return
		}
		c.handleAction(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "playerName", data.PlayerName)

	if c.GetPlayer() != "" {
		c.sendError("already_authenticated", "Connection is already authenticated")
		return
	}

	identity, err := c.server.validator.Validate(c.ctx, data.PlayerName, data.Token)
	if err != nil {
		reason := "Authentication failed"
		if errors.Is(err, auth.ErrInvalidToken) {
			reason = "Invalid credentials"
		} else if errors.Is(err, auth.ErrUnavailable) {
			reason = "Authentication service unavailable"
		}
		c.logger.Warn("Auth rejected", "playerName", data.PlayerName, "error", err)
		response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
			Success: false,
			Error:   reason,
		})
		_ = c.SendMessage(response) // Ignore send errors
		return
	}

	c.SetPlayer(identity.PlayerID)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: identity.PlayerID,
		Name:     identity.Name,
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	c.logger.Info("Join room request", "roomId", data.RoomID, "player", c.GetPlayer())

	if c.server.service == nil {
		c.sendError("service_unavailable", "Room service not available")
		return
	}

	playerID, ok := c.requireAuth()
	if !ok {
		return
	}
	if data.RoomID == "" {
		c.sendError("invalid_message", "Room id required")
		return
	}
	if current := c.GetRoom(); current != "" && current != data.RoomID {
		c.sendError("already_in_room", "Leave the current room before joining another")
		return
	}

	err := c.server.service.Join(data.RoomID, playerID)
	if err != nil {
		switch {
		case errors.Is(err, game.ErrRoomFull):
			c.sendError("room_full", err.Error())
		case errors.Is(err, game.ErrAlreadySeated):
			c.sendError("already_seated", err.Error())
		case errors.Is(err, game.ErrInsufficientChips):
			c.sendError("insufficient_chips", err.Error())
		default:
			c.sendError("join_failed", err.Error())
		}
		return
	}

	// Set room association
	c.SetRoom(data.RoomID)

	// Include the joiner's initial view in the response
	snapshot, err := c.server.service.RoomSnapshot(data.RoomID, playerID)
	if err != nil {
		c.logger.Error("Failed to snapshot room after join", "roomId", data.RoomID, "error", err)
	}

	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{
		RoomID: data.RoomID,
		State:  snapshot,
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleLeaveRoom(data LeaveRoomData) {
	c.logger.Info("Leave room request", "roomId", data.RoomID, "player", c.GetPlayer())

	if c.server.service == nil {
		c.sendError("service_unavailable", "Room service not available")
		return
	}

	playerID, ok := c.requireAuth()
	if !ok {
		return
	}

	err := c.server.service.Leave(data.RoomID, playerID)
	if err != nil {
		switch {
		case errors.Is(err, rooms.ErrRoomNotFound):
			c.sendError("room_not_found", err.Error())
		case errors.Is(err, rooms.ErrNotInRoom):
			c.sendError("not_in_room", err.Error())
		default:
			c.sendError("leave_failed", err.Error())
		}
		return
	}

	// Clear room association
	c.SetRoom("")

	response, _ := NewMessage(MessageTypeRoomLeft, RoomLeftData{RoomID: data.RoomID})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleListRooms() {
	c.logger.Debug("List rooms request", "player", c.GetPlayer())

	if c.server.service == nil {
		c.sendError("service_unavailable", "Room service not available")
		return
	}

	response, _ := NewMessage(MessageTypeRoomList, RoomListData{
		Rooms: c.server.service.ListRooms(),
	})
	_ = c.SendMessage(response) // Ignore send errors
}

func (c *Connection) handleAction(data ActionData) {
	c.logger.Debug("Action", "player", c.GetPlayer(), "action", data.Action, "amount", data.Amount)

	if c.server.service == nil {
		c.sendError("service_unavailable", "Room service not available")
		return
	}

	playerID, ok := c.requireAuth()
	if !ok {
		return
	}

	action, err := game.ParseAction(data.Action)
	if err != nil {
		// Malformed actions are dropped like out-of-turn ones; the next
		// snapshot corrects the client's view.
		c.logger.Debug("Dropping unparseable action", "player", playerID, "action", data.Action)
		return
	}

	err = c.server.service.Act(data.RoomID, playerID, action, data.Amount)
	if err != nil {
		switch {
		case errors.Is(err, rooms.ErrRoomNotFound):
			c.sendError("room_not_found", err.Error())
		case errors.Is(err, rooms.ErrNotInRoom):
			c.sendError("not_in_room", err.Error())
		default:
			c.sendError("action_failed", err.Error())
		}
		return
	}

	// No response needed - the room publishes events and snapshots
}

func (c *Connection) requireAuth() (string, bool) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return "", false
	}
	return playerID, true
}
