package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lox/holdem-rooms/internal/auth"
)

func TestLoadServerConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadServerConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	if err != nil {
		t.Fatalf("expected defaults for a missing file, got %v", err)
	}
	if cfg.GetServerAddress() != "localhost:8080" {
		t.Errorf("expected localhost:8080, got %s", cfg.GetServerAddress())
	}
	if cfg.Game.BigBlind != 10 {
		t.Errorf("expected big blind 10, got %d", cfg.Game.BigBlind)
	}
	if cfg.Game.StartingChips != 1000 {
		t.Errorf("expected starting chips 1000, got %d", cfg.Game.StartingChips)
	}

	rc := cfg.RoomsConfig()
	if rc.AutoStartDelay != 3*time.Second {
		t.Errorf("expected auto start delay 3s, got %s", rc.AutoStartDelay)
	}
	if rc.RestartDelay != 5*time.Second {
		t.Errorf("expected restart delay 5s, got %s", rc.RestartDelay)
	}

	if _, ok := cfg.Validator().(*auth.NoopValidator); !ok {
		t.Errorf("expected noop validator without an auth endpoint, got %T", cfg.Validator())
	}
	if cfg.HistoryEnabled() {
		t.Error("expected history recording off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}

func TestLoadServerConfigFromFile(t *testing.T) {
	t.Parallel()

	content := `
server {
  address   = "0.0.0.0"
  port      = 9090
  log_level = "debug"
}

game {
  big_blind        = 20
  max_players      = 8
  starting_chips   = 2000
  auto_start_delay = "1s"
  restart_delay    = "2s"
}

database {
  path = "/var/lib/holdem/test.db"
}

auth {
  endpoint = "http://auth.internal/validate"
  secret   = "s3cret"
  timeout  = "2s"
}

history {
  dir            = "/var/lib/holdem/history"
  flush_interval = "1s"
  flush_events   = 10
}

room "high-stakes" {
  big_blind = 100
}

room "penny" {
  big_blind = 2
}
`
	path := filepath.Join(t.TempDir(), "server.hcl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.GetServerAddress() != "0.0.0.0:9090" {
		t.Errorf("expected 0.0.0.0:9090, got %s", cfg.GetServerAddress())
	}
	if cfg.Server.LogLevel != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Server.LogLevel)
	}
	if cfg.Database.Path != "/var/lib/holdem/test.db" {
		t.Errorf("unexpected database path %s", cfg.Database.Path)
	}

	rc := cfg.RoomsConfig()
	if rc.BigBlind != 20 || rc.MaxPlayers != 8 || rc.StartingChips != 2000 {
		t.Errorf("unexpected rooms config %+v", rc)
	}
	if rc.AutoStartDelay != time.Second {
		t.Errorf("expected auto start delay 1s, got %s", rc.AutoStartDelay)
	}
	if rc.RestartDelay != 2*time.Second {
		t.Errorf("expected restart delay 2s, got %s", rc.RestartDelay)
	}
	if rc.RoomBlinds["high-stakes"] != 100 {
		t.Errorf("expected high-stakes blind override 100, got %d", rc.RoomBlinds["high-stakes"])
	}
	if rc.RoomBlinds["penny"] != 2 {
		t.Errorf("expected penny blind override 2, got %d", rc.RoomBlinds["penny"])
	}

	if _, ok := cfg.Validator().(*auth.HTTPValidator); !ok {
		t.Errorf("expected HTTP validator for a configured endpoint, got %T", cfg.Validator())
	}
	if !cfg.HistoryEnabled() {
		t.Error("expected history recording enabled")
	}
	if cfg.HistoryFlushInterval() != time.Second {
		t.Errorf("expected flush interval 1s, got %s", cfg.HistoryFlushInterval())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected config to validate, got %v", err)
	}
}

func TestLoadServerConfigPartialFile(t *testing.T) {
	t.Parallel()

	content := `
server {
  port = 7070
}
`
	path := filepath.Join(t.TempDir(), "server.hcl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadServerConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.GetServerAddress() != "localhost:7070" {
		t.Errorf("expected localhost:7070, got %s", cfg.GetServerAddress())
	}
	if cfg.Game == nil || cfg.Game.BigBlind != 10 {
		t.Error("expected default game settings to be filled in")
	}
	if cfg.Database == nil || cfg.Database.Path != "holdem.db" {
		t.Error("expected default database path to be filled in")
	}
}

func TestLoadServerConfigBadDuration(t *testing.T) {
	t.Parallel()

	content := `
server {
  port = 8080
}

game {
  auto_start_delay = "soon"
}
`
	path := filepath.Join(t.TempDir(), "server.hcl")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadServerConfig(path); err == nil {
		t.Fatal("expected an error for an unparseable duration")
	}
}

func TestServerConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr bool
	}{
		{"defaults", func(c *ServerConfig) {}, false},
		{"bad port", func(c *ServerConfig) { c.Server.Port = 0 }, true},
		{"zero big blind", func(c *ServerConfig) { c.Game.BigBlind = 0 }, true},
		{"one seat", func(c *ServerConfig) { c.Game.MaxPlayers = 1 }, true},
		{"too many seats", func(c *ServerConfig) { c.Game.MaxPlayers = 11 }, true},
		{"chips below buy-in", func(c *ServerConfig) { c.Game.StartingChips = 99 }, true},
		{"chips exactly buy-in", func(c *ServerConfig) { c.Game.StartingChips = 100 }, false},
		{"room override", func(c *ServerConfig) {
			c.Rooms = []RoomSettings{{Name: "vip", BigBlind: 50}}
		}, false},
		{"duplicate room blocks", func(c *ServerConfig) {
			c.Rooms = []RoomSettings{{Name: "vip", BigBlind: 50}, {Name: "vip", BigBlind: 100}}
		}, true},
		{"negative room blind", func(c *ServerConfig) {
			c.Rooms = []RoomSettings{{Name: "vip", BigBlind: -5}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultServerConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected a validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}
