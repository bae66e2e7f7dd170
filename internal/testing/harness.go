// Package testing hosts end-to-end tests that run a real server on a
// loopback port and drive it through real WebSocket clients wired to
// headless TUI models. The harness here owns process lifecycle and
// event synchronization; the scenario files script actual play.
package testing

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-rooms/internal/auth"
	"github.com/lox/holdem-rooms/internal/client"
	"github.com/lox/holdem-rooms/internal/identity"
	"github.com/lox/holdem-rooms/internal/rooms"
	"github.com/lox/holdem-rooms/internal/server"
	"github.com/lox/holdem-rooms/internal/tui"
)

const (
	// eventTimeout bounds every wait for a server message. Loopback
	// traffic lands in microseconds; the slack is for loaded CI hosts.
	eventTimeout = 5 * time.Second

	// quietWindow is how long ExpectQuiet listens before declaring
	// that a message is not coming.
	quietWindow = 250 * time.Millisecond

	// actionDelay gives the command loop a moment to drain the
	// previous injection before the next one lands.
	actionDelay = 20 * time.Millisecond

	// disconnectDelay lets handler goroutines finish logging before
	// the test that owns the model returns.
	disconnectDelay = 100 * time.Millisecond

	serverReadyTimeout = 5 * time.Second
)

// fastConfig returns a room configuration tuned for tests: hands start
// almost immediately after the second join, and the next hand is far
// enough away that single-hand scenarios never see it.
func fastConfig() rooms.Config {
	return rooms.Config{
		BigBlind:       10,
		StartingChips:  1000,
		AutoStartDelay: 50 * time.Millisecond,
		RestartDelay:   10 * time.Minute,
	}
}

// TestServer is a live server instance bound to a free loopback port.
type TestServer struct {
	URL     string
	Store   identity.Store
	Service *rooms.Service

	t  *testing.T
	ws *server.Server
}

func startTestServer(t *testing.T, cfg rooms.Config) *TestServer {
	t.Helper()

	port := findFreePort(t)
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	logger := quietLogger()

	store := identity.NewMemStore()
	wsServer := server.NewServer(addr, auth.NewNoopValidator(), logger)
	service := rooms.NewService(cfg, store, wsServer, logger, quartz.NewReal())
	wsServer.SetService(service)

	go func() {
		if err := wsServer.Start(); err != nil {
			t.Logf("server exited: %v", err)
		}
	}()
	waitForServerReady(t, addr)

	ts := &TestServer{
		URL:     "ws://" + addr,
		Store:   store,
		Service: service,
		t:       t,
		ws:      wsServer,
	}
	t.Cleanup(ts.Stop)
	return ts
}

func (ts *TestServer) Stop() {
	ts.Service.Close()
	_ = ts.ws.Stop()
}

// Balance reads a player's banked chips straight from the store.
func (ts *TestServer) Balance(playerID string) int {
	ts.t.Helper()
	chips, err := ts.Store.GetBalance(playerID)
	require.NoError(ts.t, err)
	return chips
}

// TestClient couples a WebSocket client with a headless TUI model. The
// model runs in test mode, so log lines are captured instead of
// rendered and every handled message is mirrored onto msgs.
type TestClient struct {
	WS    *client.Client
	Model *tui.Model

	t         *testing.T
	msgs      chan server.MessageType
	closeOnce sync.Once
}

func connectTestClient(t *testing.T, ts *TestServer, name string) *TestClient {
	t.Helper()

	logger := quietLogger()
	model := tui.NewModelWithOptions(logger, true)
	wsClient := client.NewClient(ts.URL, logger)
	require.NoError(t, wsClient.Connect(), "connect %s", name)

	tui.SetupNetworkHandlers(wsClient, model)
	tui.StartCommandHandler(wsClient, model)

	c := &TestClient{
		WS:    wsClient,
		Model: model,
		t:     t,
		msgs:  make(chan server.MessageType, 256),
	}
	model.SetMessageCallback(func(messageType server.MessageType) {
		select {
		case c.msgs <- messageType:
		default:
		}
	})

	require.NoError(t, wsClient.Auth(name, ""), "auth %s", name)
	require.True(t, c.WaitFor(server.MessageTypeAuthResponse), "no auth response for %s", name)

	t.Cleanup(c.Disconnect)
	return c
}

func (c *TestClient) Disconnect() {
	c.closeOnce.Do(func() {
		c.Model.SetMessageCallback(nil)
		_ = c.WS.Disconnect()
		time.Sleep(disconnectDelay)
	})
}

// JoinRoom joins and blocks until the server confirms the seat.
func (c *TestClient) JoinRoom(roomID string) {
	c.t.Helper()
	require.NoError(c.t, c.WS.JoinRoom(roomID))
	require.True(c.t, c.WaitFor(server.MessageTypeRoomJoined), "no room_joined for %s", roomID)
}

// WaitFor consumes messages until the wanted type arrives. Other
// traffic is discarded, so sequence waits in the order the server
// sends them.
func (c *TestClient) WaitFor(messageType server.MessageType) bool {
	c.t.Helper()
	deadline := time.After(eventTimeout)
	for {
		select {
		case mt := <-c.msgs:
			if mt == messageType {
				return true
			}
		case <-deadline:
			c.t.Logf("timed out waiting for %s", messageType)
			return false
		}
	}
}

// WaitForTurn blocks until the latest snapshot hands this client the
// turn. The check runs against the model rather than the message
// stream, so a snapshot that already arrived still counts.
func (c *TestClient) WaitForTurn() bool {
	c.t.Helper()
	if c.Model.IsYourTurn() {
		return true
	}
	deadline := time.After(eventTimeout)
	for {
		select {
		case mt := <-c.msgs:
			if mt == server.MessageTypeRoomState && c.Model.IsYourTurn() {
				return true
			}
		case <-deadline:
			c.t.Logf("timed out waiting for turn")
			return false
		}
	}
}

// ExpectQuiet reports whether none of the given message types arrive
// within the quiet window. Unrelated traffic is consumed and ignored.
func (c *TestClient) ExpectQuiet(types ...server.MessageType) bool {
	c.t.Helper()
	deadline := time.After(quietWindow)
	for {
		select {
		case mt := <-c.msgs:
			for _, unwanted := range types {
				if mt == unwanted {
					c.t.Logf("unexpected %s", mt)
					return false
				}
			}
		case <-deadline:
			return true
		}
	}
}

// Act injects a game action through the TUI input path, exactly as a
// keystroke sequence would.
func (c *TestClient) Act(action string, args ...string) {
	c.t.Helper()
	time.Sleep(actionDelay)
	require.NoError(c.t, c.Model.InjectAction(action, args))
}

// Command injects a slash command through the TUI input path.
func (c *TestClient) Command(command string, args ...string) {
	c.t.Helper()
	time.Sleep(actionDelay)
	require.NoError(c.t, c.Model.InjectAction(command, args))
}

// Log returns everything the TUI has logged so far as one string.
func (c *TestClient) Log() string {
	return strings.Join(c.Model.GetCapturedLog(), "\n")
}

// AssertLogContains fails the test for each expected entry missing
// from the captured log.
func (c *TestClient) AssertLogContains(expected ...string) {
	c.t.Helper()
	logText := c.Log()
	for _, want := range expected {
		require.Contains(c.t, logText, want, "missing log entry\ncaptured log:\n%s", logText)
	}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func findFreePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()
	return port
}

func waitForServerReady(t *testing.T, addr string) {
	t.Helper()
	healthURL := "http://" + addr + "/health"
	deadline := time.Now().Add(serverReadyTimeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(healthURL)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server at %s did not become ready within %v", addr, serverReadyTimeout)
}
