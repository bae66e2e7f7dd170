// Package history records room events to append-only JSONL files, one
// file per room. Events buffer in memory and flush on a timer, when a
// room's buffer fills, or at shutdown. An index.json alongside the logs
// tracks per-room file names and flushed event counts.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-rooms/internal/fileutil"
	"github.com/lox/holdem-rooms/internal/game"
)

const (
	defaultFlushInterval = 10 * time.Second
	defaultFlushEvents   = 100

	// A room's log is disabled after this many consecutive flush
	// failures; buffered events are dropped.
	maxFlushFailures = 3
)

// Config tunes recording. Zero values fall back to the defaults.
type Config struct {
	Dir           string
	FlushInterval time.Duration
	FlushEvents   int
}

// Recorder buffers room events and flushes them to per-room JSONL
// files. RecordEvent is called while room locks are held and never
// touches the filesystem; writes happen on the recorder's goroutine.
type Recorder struct {
	cfg    Config
	logger *log.Logger

	mu   sync.Mutex
	logs map[string]*roomLog

	flushMu  sync.Mutex
	flushReq chan struct{}
	stop     chan struct{}
	wg       sync.WaitGroup
}

type roomLog struct {
	path     string
	buffer   [][]byte
	written  int
	failures int
	disabled bool
}

// record is one line of a room's JSONL file
type record struct {
	Timestamp time.Time  `json:"ts"`
	RoomID    string     `json:"roomId"`
	Type      string     `json:"type"`
	Event     game.Event `json:"event"`
}

// indexFile summarizes every room log in the directory. It is replaced
// atomically after flushes so external readers always see a complete
// document.
type indexFile struct {
	UpdatedAt time.Time             `json:"updatedAt"`
	Rooms     map[string]indexEntry `json:"rooms"`
}

type indexEntry struct {
	File     string `json:"file"`
	Events   int    `json:"events"`
	Disabled bool   `json:"disabled,omitempty"`
}

// NewRecorder creates and starts a recorder writing under cfg.Dir.
func NewRecorder(cfg Config, logger *log.Logger) (*Recorder, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("history: dir is required")
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.FlushEvents <= 0 {
		cfg.FlushEvents = defaultFlushEvents
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	r := &Recorder{
		cfg:      cfg,
		logger:   logger.WithPrefix("history"),
		logs:     make(map[string]*roomLog),
		flushReq: make(chan struct{}, 1),
		stop:     make(chan struct{}),
	}
	r.wg.Add(1)
	go r.run()
	return r, nil
}

// RecordEvent buffers one event for the room's log
func (r *Recorder) RecordEvent(roomID string, event game.Event) {
	line, err := json.Marshal(record{
		Timestamp: event.Timestamp(),
		RoomID:    roomID,
		Type:      event.EventType().String(),
		Event:     event,
	})
	if err != nil {
		r.logger.Error("Failed to encode event", "room", roomID, "type", event.EventType(), "error", err)
		return
	}

	r.mu.Lock()
	l, ok := r.logs[roomID]
	if !ok {
		l = &roomLog{path: filepath.Join(r.cfg.Dir, "room-"+sanitizeRoomID(roomID)+".jsonl")}
		r.logs[roomID] = l
	}
	if l.disabled {
		r.mu.Unlock()
		return
	}
	l.buffer = append(l.buffer, line)
	full := len(l.buffer) >= r.cfg.FlushEvents
	r.mu.Unlock()

	if full {
		r.requestFlush()
	}
}

// Flush writes every buffered event to disk
func (r *Recorder) Flush() {
	r.flushAll()
}

// Shutdown stops the flush ticker and drains remaining buffers
func (r *Recorder) Shutdown() {
	close(r.stop)
	r.wg.Wait()
	r.flushAll()
}

func (r *Recorder) run() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.flushAll()
		case <-r.flushReq:
			r.flushAll()
		case <-r.stop:
			return
		}
	}
}

func (r *Recorder) requestFlush() {
	select {
	case r.flushReq <- struct{}{}:
	default:
	}
}

func (r *Recorder) flushAll() {
	r.flushMu.Lock()
	defer r.flushMu.Unlock()

	r.mu.Lock()
	snapshot := make(map[string]*roomLog, len(r.logs))
	for id, l := range r.logs {
		snapshot[id] = l
	}
	r.mu.Unlock()

	changed := false
	for roomID, l := range snapshot {
		wrote, err := r.flushLog(l)
		if err != nil {
			r.logger.Error("Failed to flush room log", "room", roomID, "error", err)
			changed = true
		}
		if wrote > 0 {
			changed = true
		}
	}

	if changed {
		if err := r.writeIndex(); err != nil {
			r.logger.Error("Failed to write history index", "error", err)
		}
	}
}

// flushLog appends a room's buffered lines to its file. The buffer is
// only trimmed after a successful write; repeated failures disable the
// log and drop its buffer.
func (r *Recorder) flushLog(l *roomLog) (int, error) {
	r.mu.Lock()
	if l.disabled || len(l.buffer) == 0 {
		r.mu.Unlock()
		return 0, nil
	}
	lines := l.buffer[:len(l.buffer):len(l.buffer)]
	r.mu.Unlock()

	err := appendLines(l.path, lines)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		l.failures++
		if l.failures >= maxFlushFailures {
			dropped := len(l.buffer)
			l.buffer = nil
			l.disabled = true
			r.logger.Error("Recording disabled after repeated failures", "path", l.path, "dropped", dropped)
		}
		return 0, err
	}

	l.failures = 0
	l.written += len(lines)
	if len(lines) >= len(l.buffer) {
		l.buffer = l.buffer[:0]
	} else {
		l.buffer = append(l.buffer[:0], l.buffer[len(lines):]...)
	}
	return len(lines), nil
}

// writeIndex rewrites index.json from the current log map
func (r *Recorder) writeIndex() error {
	r.mu.Lock()
	idx := indexFile{
		UpdatedAt: time.Now(),
		Rooms:     make(map[string]indexEntry, len(r.logs)),
	}
	for id, l := range r.logs {
		idx.Rooms[id] = indexEntry{
			File:     filepath.Base(l.path),
			Events:   l.written,
			Disabled: l.disabled,
		}
	}
	r.mu.Unlock()

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(filepath.Join(r.cfg.Dir, "index.json"), data, 0o644)
}

func appendLines(path string, lines [][]byte) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, line := range lines {
		if _, err := file.Write(line); err != nil {
			return err
		}
		if _, err := file.Write([]byte{'\n'}); err != nil {
			return err
		}
	}
	return file.Sync()
}

// sanitizeRoomID maps a client-chosen room id onto a safe filename
func sanitizeRoomID(roomID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, roomID)
}
