// Package rooms coordinates the lifecycle of hold'em rooms: creation on
// first join, scheduling of hand starts, relaying engine events to the
// participants, and teardown once the last seat empties.
//
// All engine access is serialized per room. Distinct rooms never block
// each other.
package rooms

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/holdem-rooms/internal/game"
	"github.com/lox/holdem-rooms/internal/identity"
)

const (
	// DefaultBigBlind is the big blind of rooms created without explicit
	// configuration.
	DefaultBigBlind = 10

	// DefaultStartingChips is the balance granted to an identity seen
	// for the first time.
	DefaultStartingChips = 1000

	// DefaultAutoStartDelay is how long a room waits after gaining
	// enough players before dealing the first hand.
	DefaultAutoStartDelay = 3 * time.Second

	// DefaultRestartDelay is how long a room waits after a hand settles
	// before dealing the next one.
	DefaultRestartDelay = 5 * time.Second
)

var (
	// ErrRoomNotFound is returned for operations on a room id with no
	// live room behind it.
	ErrRoomNotFound = errors.New("rooms: room not found")

	// ErrNotInRoom is returned for operations by a player who holds no
	// seat in the room.
	ErrNotInRoom = errors.New("rooms: player not in room")
)

// Sink receives pushes destined for connected participants. Calls
// arrive while a room's lock is held, so implementations must not block
// and must not call back into the service.
type Sink interface {
	// SendSnapshot delivers a participant's view of their room.
	SendSnapshot(playerID string, snapshot *game.Snapshot)

	// SendEvent delivers a room event to a participant.
	SendEvent(playerID string, roomID string, event game.Event)

	// LobbyUpdate announces a membership change to the lobby.
	LobbyUpdate(info RoomInfo)
}

// RoomInfo is the lobby's view of one room
type RoomInfo struct {
	RoomID      string `json:"roomId"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	BigBlind    int    `json:"bigBlind"`
}

// Recorder observes every room event exactly once, independent of who
// is connected. Like the sink, it is called under the room lock and
// must not block.
type Recorder interface {
	RecordEvent(roomID string, event game.Event)
}

// Option configures optional service collaborators
type Option func(*Service)

// WithRecorder attaches a recorder to every room the service creates
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// Config carries the knobs for rooms the service creates. Zero values
// fall back to the package defaults.
type Config struct {
	BigBlind       int
	MaxPlayers     int
	StartingChips  int
	AutoStartDelay time.Duration
	RestartDelay   time.Duration

	// RoomBlinds overrides the big blind for named rooms. The override
	// applies every time the named room materializes, including after a
	// teardown.
	RoomBlinds map[string]int
}

func (c *Config) normalize() {
	if c.BigBlind <= 0 {
		c.BigBlind = DefaultBigBlind
	}
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = game.DefaultMaxPlayers
	}
	if c.StartingChips <= 0 {
		c.StartingChips = DefaultStartingChips
	}
	if c.AutoStartDelay <= 0 {
		c.AutoStartDelay = DefaultAutoStartDelay
	}
	if c.RestartDelay <= 0 {
		c.RestartDelay = DefaultRestartDelay
	}
}

// Service owns every live room and the timers that drive hand starts.
type Service struct {
	cfg      Config
	logger   *log.Logger
	clock    quartz.Clock
	store    identity.Store
	sink     Sink
	recorder Recorder

	mu    sync.Mutex
	rooms map[string]*roomEntry
}

// roomEntry pairs a room with its lock and pending-start timer. The
// entry mutex serializes every engine call for the room; startGen
// invalidates timer fires that lost a race with cancellation.
type roomEntry struct {
	id string

	mu       sync.Mutex
	room     *game.Room
	pending  *quartz.Timer
	startGen uint64
	closed   bool
}

// NewService creates a room coordination service. The sink receives
// snapshots, events, and lobby updates for connected participants.
func NewService(cfg Config, store identity.Store, sink Sink, logger *log.Logger, clock quartz.Clock, opts ...Option) *Service {
	cfg.normalize()
	s := &Service{
		cfg:    cfg,
		logger: logger.WithPrefix("rooms"),
		clock:  clock,
		store:  store,
		sink:   sink,
		rooms:  make(map[string]*roomEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Join seats the player in the room, creating the room if this is its
// first join. New identities are granted the starting balance; the
// buy-in check runs against the balance on record.
func (s *Service) Join(roomID, playerID string) error {
	balance, err := s.store.EnsureBalance(playerID, s.cfg.StartingChips)
	if err != nil {
		return fmt.Errorf("looking up balance for %s: %w", playerID, err)
	}

	for {
		e := s.entry(roomID)
		e.mu.Lock()
		if e.closed {
			// Lost a race with teardown; the registry will hand out a
			// fresh entry once the removal completes.
			e.mu.Unlock()
			continue
		}

		if err := e.room.Seat(playerID, balance); err != nil {
			empty := e.room.Empty()
			e.mu.Unlock()
			if empty {
				s.remove(e)
			}
			return err
		}
		s.logger.Info("Player joined room", "room", roomID, "player", playerID, "chips", balance)

		s.scheduleStartLocked(e, s.cfg.AutoStartDelay)
		s.pushSnapshotsLocked(e)
		info := s.lobbyInfoLocked(e)
		e.mu.Unlock()

		s.sink.LobbyUpdate(info)
		return nil
	}
}

// Leave removes the player's seat. An empty room is torn down; a
// departure that settles the running hand arms the restart timer.
func (s *Service) Leave(roomID, playerID string) error {
	e := s.lookup(roomID)
	if e == nil {
		return ErrRoomNotFound
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrRoomNotFound
	}

	wasActive := e.room.Phase.Active()
	if !e.room.Unseat(playerID) {
		e.mu.Unlock()
		return ErrNotInRoom
	}
	s.logger.Info("Player left room", "room", roomID, "player", playerID)

	if e.room.Empty() {
		e.closed = true
		s.cancelPendingLocked(e)
		info := RoomInfo{RoomID: e.id, PlayerCount: 0, MaxPlayers: e.room.MaxPlayers, BigBlind: e.room.BigBlind}
		e.mu.Unlock()

		s.remove(e)
		s.sink.LobbyUpdate(info)
		return nil
	}

	if e.room.SeatedCount() < 2 {
		s.cancelPendingLocked(e)
	}
	if wasActive && !e.room.Phase.Active() {
		// The departure settled the hand.
		s.scheduleStartLocked(e, s.cfg.RestartDelay)
	}
	s.pushSnapshotsLocked(e)
	info := s.lobbyInfoLocked(e)
	e.mu.Unlock()

	s.sink.LobbyUpdate(info)
	return nil
}

// Act forwards a betting action to the room's engine. Out-of-turn and
// malformed actions are dropped without reply; the next snapshot
// corrects the client's view.
func (s *Service) Act(roomID, playerID string, action game.Action, amount int) error {
	e := s.lookup(roomID)
	if e == nil {
		return ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrRoomNotFound
	}
	if !e.room.IsSeated(playerID) {
		return ErrNotInRoom
	}

	wasActive := e.room.Phase.Active()
	if !e.room.Apply(playerID, action, amount) {
		return nil
	}
	if wasActive && !e.room.Phase.Active() {
		s.scheduleStartLocked(e, s.cfg.RestartDelay)
	}
	s.pushSnapshotsLocked(e)
	return nil
}

// RoomSnapshot returns the player's current view of the room.
func (s *Service) RoomSnapshot(roomID, playerID string) (*game.Snapshot, error) {
	e := s.lookup(roomID)
	if e == nil {
		return nil, ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrRoomNotFound
	}
	if !e.room.IsSeated(playerID) {
		return nil, ErrNotInRoom
	}
	return e.room.Snapshot(playerID), nil
}

// ListRooms returns the lobby view of every live room, sorted by id
func (s *Service) ListRooms() []RoomInfo {
	s.mu.Lock()
	entries := make([]*roomEntry, 0, len(s.rooms))
	for _, e := range s.rooms {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	infos := make([]RoomInfo, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.closed {
			infos = append(infos, s.lobbyInfoLocked(e))
		}
		e.mu.Unlock()
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].RoomID < infos[j].RoomID })
	return infos
}

// Close disarms every pending timer. Fires already in flight become
// no-ops.
func (s *Service) Close() {
	s.mu.Lock()
	entries := make([]*roomEntry, 0, len(s.rooms))
	for _, e := range s.rooms {
		entries = append(entries, e)
	}
	s.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		s.cancelPendingLocked(e)
		e.mu.Unlock()
	}
}

// entry returns the live entry for the room id, creating one on first
// use.
func (s *Service) entry(roomID string) *roomEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.rooms[roomID]; ok {
		return e
	}

	bigBlind := s.cfg.BigBlind
	if bb, ok := s.cfg.RoomBlinds[roomID]; ok && bb > 0 {
		bigBlind = bb
	}

	e := &roomEntry{id: roomID}
	e.room = game.NewRoom(roomID, bigBlind,
		game.WithMaxPlayers(s.cfg.MaxPlayers),
		game.WithBalanceSync(&balanceMirror{store: s.store, logger: s.logger}),
	)
	e.room.Subscribe(&roomRelay{svc: s, entry: e})
	s.rooms[roomID] = e
	s.logger.Info("Room created", "room", roomID, "bigBlind", bigBlind)
	return e
}

func (s *Service) lookup(roomID string) *roomEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[roomID]
}

func (s *Service) remove(e *roomEntry) {
	s.mu.Lock()
	if cur, ok := s.rooms[e.id]; ok && cur == e {
		delete(s.rooms, e.id)
	}
	s.mu.Unlock()
	s.logger.Info("Room removed", "room", e.id)
}

// scheduleStartLocked arms the pending-start timer unless one is
// already armed or the room cannot start a hand. Callers hold e.mu.
func (s *Service) scheduleStartLocked(e *roomEntry, delay time.Duration) {
	if e.pending != nil || !e.room.CanStartHand() {
		return
	}
	e.startGen++
	gen := e.startGen
	e.pending = s.clock.AfterFunc(delay, func() {
		s.startPending(e, gen)
	})
	s.logger.Debug("Scheduled hand start", "room", e.id, "delay", delay)
}

// cancelPendingLocked disarms the pending start, if any. A fire already
// in flight sees the bumped generation and becomes a no-op. Callers
// hold e.mu.
func (s *Service) cancelPendingLocked(e *roomEntry) {
	e.startGen++
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

// startPending runs when a pending-start timer fires. The conditions
// that justified arming it may have changed while it was counting down,
// so everything is revalidated under the room lock.
func (s *Service) startPending(e *roomEntry, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.startGen != gen {
		return
	}
	e.pending = nil

	if !e.room.CanStartHand() {
		return
	}
	if err := e.room.StartHand(); err != nil {
		s.logger.Error("Failed to start hand", "room", e.id, "error", err)
		return
	}
	s.logger.Info("Hand started", "room", e.id, "handId", e.room.HandID, "players", e.room.SeatedCount())
	s.pushSnapshotsLocked(e)
}

func (s *Service) pushSnapshotsLocked(e *roomEntry) {
	for _, p := range e.room.Players {
		s.sink.SendSnapshot(p.ID, e.room.Snapshot(p.ID))
	}
}

func (s *Service) lobbyInfoLocked(e *roomEntry) RoomInfo {
	return RoomInfo{
		RoomID:      e.id,
		PlayerCount: e.room.SeatedCount(),
		MaxPlayers:  e.room.MaxPlayers,
		BigBlind:    e.room.BigBlind,
	}
}

// roomRelay fans engine events out to the seated participants. OnEvent
// runs inside engine calls while the room lock is held.
type roomRelay struct {
	svc   *Service
	entry *roomEntry
}

func (rr *roomRelay) OnEvent(roomID string, event game.Event) {
	if rr.svc.recorder != nil {
		rr.svc.recorder.RecordEvent(roomID, event)
	}
	for _, p := range rr.entry.room.Players {
		rr.svc.sink.SendEvent(p.ID, roomID, event)
	}
}

// balanceMirror adapts the identity store to the engine's synchronous
// balance sink. A failed write is logged and play continues; the
// engine's stacks stay authoritative until the next successful write.
type balanceMirror struct {
	store  identity.Store
	logger *log.Logger
}

func (bm *balanceMirror) SetBalance(playerID string, chips int) {
	if err := bm.store.SetBalance(playerID, chips); err != nil {
		bm.logger.Error("Failed to sync balance", "player", playerID, "error", err)
	}
}
