package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-rooms/internal/auth"
	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/rooms"
)

// Server represents the WebSocket server. It owns the connection
// registry and acts as the push sink for the room service.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	httpServer  *http.Server
	validator   auth.Validator
	service     *rooms.Service
}

var _ rooms.Sink = (*Server)(nil)

// NewServer creates a new WebSocket server. The room service is wired
// afterwards via SetService because it needs the server as its sink.
func NewServer(addr string, validator auth.Validator, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				// In production, implement proper origin checking
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		validator:   validator,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/rooms", s.handleRooms)
	s.httpServer = &http.Server{Addr: addr, Handler: mux}

	return s
}

// SetService sets the room service for the server
func (s *Server) SetService(service *rooms.Service) {
	s.service = service
}

// Start starts the WebSocket server
func (s *Server) Start() error {
	go s.run()

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop stops the WebSocket server
func (s *Server) Stop() error {
	s.cancel()
	_ = s.httpServer.Close() // Ignore close errors during shutdown

	// Close all connections
	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	s.mu.Unlock()

	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			var playerID, roomID string
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)
				playerID = conn.GetPlayer()
				roomID = conn.GetRoom()
				_ = conn.Close() // Ignore close errors during unregistration
			}
			total := len(s.connections)
			s.mu.Unlock()

			// Leave pushes back through the sink, so it must run after
			// the registry lock is released.
			if playerID != "" && roomID != "" && s.service != nil {
				s.logger.Info("Cleaning up disconnected player", "player", playerID, "room", roomID)
				_ = s.service.Leave(roomID, playerID) // Ignore errors during cleanup
			}
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	s.register <- client
	client.Start()

	// Connection cleanup is handled by the connection itself
	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// handleRooms serves the lobby listing over plain HTTP
func (s *Server) handleRooms(w http.ResponseWriter, r *http.Request) {
	if s.service == nil {
		http.Error(w, "room service not available", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.service.ListRooms()); err != nil {
		s.logger.Error("Failed to encode room list", "error", err)
	}
}

// SendSnapshot implements rooms.Sink. Snapshots for players without a
// live connection are dropped; they catch up when they reconnect.
func (s *Server) SendSnapshot(playerID string, snapshot *game.Snapshot) {
	msg, err := NewMessage(MessageTypeRoomState, snapshot)
	if err != nil {
		s.logger.Error("Failed to encode snapshot", "player", playerID, "error", err)
		return
	}
	if err := s.SendToPlayer(playerID, msg); err != nil {
		s.logger.Debug("Dropping snapshot for offline player", "player", playerID)
	}
}

// SendEvent implements rooms.Sink
func (s *Server) SendEvent(playerID string, roomID string, event game.Event) {
	msg, err := EventMessage(roomID, event)
	if err != nil {
		s.logger.Error("Failed to encode event", "roomId", roomID, "error", err)
		return
	}
	if err := s.SendToPlayer(playerID, msg); err != nil {
		s.logger.Debug("Dropping event for offline player", "player", playerID, "type", msg.Type)
	}
}

// LobbyUpdate implements rooms.Sink. Lobby changes go to every
// connected client, seated or not.
func (s *Server) LobbyUpdate(info rooms.RoomInfo) {
	msg, err := NewMessage(MessageTypeLobbyUpdate, info)
	if err != nil {
		s.logger.Error("Failed to encode lobby update", "roomId", info.RoomID, "error", err)
		return
	}
	s.broadcast(msg)
}

// broadcast sends a message to every connected client
func (s *Server) broadcast(msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send message to client", "error", err, "player", conn.GetPlayer())
		} else {
			count++
		}
	}

	s.logger.Debug("Broadcasted message", "type", msg.Type, "recipients", count)
}

// SendToPlayer sends a message to a specific player
func (s *Server) SendToPlayer(playerID string, msg *Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.GetPlayer() == playerID {
			return conn.SendMessage(msg)
		}
	}

	return fmt.Errorf("player not found: %s", playerID)
}

// GetConnectedPlayers returns a list of connected player IDs
func (s *Server) GetConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for conn := range s.connections {
		if playerID := conn.GetPlayer(); playerID != "" {
			players = append(players, playerID)
		}
	}

	return players
}
