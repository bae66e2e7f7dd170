package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/holdem-rooms/internal/auth"
	"github.com/lox/holdem-rooms/internal/identity"
	"github.com/lox/holdem-rooms/internal/rooms"
)

// testLogger creates a logger that discards output for tests
func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// newTestServer wires a server, a room service with fast timers, and an
// httptest endpoint serving the WebSocket handler.
func newTestServer(t *testing.T) (*Server, *rooms.Service, *httptest.Server) {
	t.Helper()
	logger := testLogger()

	srv := NewServer("localhost:0", auth.NewNoopValidator(), logger)
	svc := rooms.NewService(rooms.Config{
		AutoStartDelay: 50 * time.Millisecond,
		RestartDelay:   50 * time.Millisecond,
	}, identity.NewMemStore(), srv, logger, quartz.NewReal())
	srv.SetService(svc)

	go srv.run()

	ts := httptest.NewServer(http.HandlerFunc(srv.handleWebSocket))
	t.Cleanup(func() {
		svc.Close()
		_ = srv.Stop()
		ts.Close()
	})
	return srv, svc, ts
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", wsURL, err)
	}
	return ws
}

func sendMessage(t *testing.T, ws *websocket.Conn, msgType MessageType, data interface{}) {
	t.Helper()

	msg, err := NewMessage(msgType, data)
	if err != nil {
		t.Fatalf("failed to build %s message: %v", msgType, err)
	}
	if err := ws.WriteJSON(msg); err != nil {
		t.Fatalf("failed to send %s message: %v", msgType, err)
	}
}

// readUntil reads messages until one of the wanted type arrives,
// skipping unrelated pushes.
func readUntil(t *testing.T, ws *websocket.Conn, want MessageType) *Message {
	t.Helper()

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			t.Fatalf("reading while waiting for %s: %v", want, err)
		}
		if msg.Type == want {
			return &msg
		}
	}
}

func decodeData(t *testing.T, msg *Message, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(msg.Data, v); err != nil {
		t.Fatalf("decoding %s payload: %v", msg.Type, err)
	}
}

// authenticate completes the auth handshake and returns the player id
func authenticate(t *testing.T, ws *websocket.Conn, name string) string {
	t.Helper()

	sendMessage(t, ws, MessageTypeAuth, AuthData{PlayerName: name})
	msg := readUntil(t, ws, MessageTypeAuthResponse)

	var data AuthResponseData
	decodeData(t, msg, &data)
	if !data.Success {
		t.Fatalf("auth failed: %s", data.Error)
	}
	return data.PlayerID
}

// joinRoom sends a join request and returns the room_joined payload
func joinRoom(t *testing.T, ws *websocket.Conn, roomID string) RoomJoinedData {
	t.Helper()

	sendMessage(t, ws, MessageTypeJoinRoom, JoinRoomData{RoomID: roomID})
	msg := readUntil(t, ws, MessageTypeRoomJoined)

	var data RoomJoinedData
	decodeData(t, msg, &data)
	return data
}
