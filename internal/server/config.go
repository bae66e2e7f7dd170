package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/holdem-rooms/internal/auth"
	"github.com/lox/holdem-rooms/internal/rooms"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server   ServerSettings    `hcl:"server,block"`
	Game     *GameSettings     `hcl:"game,block"`
	Database *DatabaseSettings `hcl:"database,block"`
	Auth     *AuthSettings     `hcl:"auth,block"`
	History  *HistorySettings  `hcl:"history,block"`
	Rooms    []RoomSettings    `hcl:"room,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// GameSettings configures the rooms the service creates
type GameSettings struct {
	BigBlind       int    `hcl:"big_blind,optional"`
	MaxPlayers     int    `hcl:"max_players,optional"`
	StartingChips  int    `hcl:"starting_chips,optional"`
	AutoStartDelay string `hcl:"auto_start_delay,optional"`
	RestartDelay   string `hcl:"restart_delay,optional"`

	autoStartDelay time.Duration
	restartDelay   time.Duration
}

// DatabaseSettings configures the identity store
type DatabaseSettings struct {
	Path string `hcl:"path,optional"`
}

// AuthSettings configures token validation. An empty endpoint disables
// external validation and every name is accepted as-is.
type AuthSettings struct {
	Endpoint string `hcl:"endpoint,optional"`
	Secret   string `hcl:"secret,optional"`
	Timeout  string `hcl:"timeout,optional"`

	timeout time.Duration
}

// HistorySettings configures event recording. Recording is off unless a
// directory is set.
type HistorySettings struct {
	Dir           string `hcl:"dir,optional"`
	FlushInterval string `hcl:"flush_interval,optional"`
	FlushEvents   int    `hcl:"flush_events,optional"`

	flushInterval time.Duration
}

// RoomSettings names a room and overrides its stakes. The override
// applies whenever the named room is created, including re-creation
// after an empty-room teardown.
type RoomSettings struct {
	Name     string `hcl:"name,label"`
	BigBlind int    `hcl:"big_blind,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: &GameSettings{
			BigBlind:       rooms.DefaultBigBlind,
			MaxPlayers:     6,
			StartingChips:  rooms.DefaultStartingChips,
			AutoStartDelay: "3s",
			RestartDelay:   "5s",
		},
		Database: &DatabaseSettings{
			Path: "holdem.db",
		},
		Auth:    &AuthSettings{},
		History: &HistorySettings{},
	}
	if err := cfg.applyDefaults(); err != nil {
		// The built-in defaults always parse
		panic(err)
	}
	return cfg
}

// LoadServerConfig loads server configuration from an HCL file. A
// missing file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing values and parses duration fields
func (c *ServerConfig) applyDefaults() error {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	if c.Game.BigBlind == 0 {
		c.Game.BigBlind = rooms.DefaultBigBlind
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = 6
	}
	if c.Game.StartingChips == 0 {
		c.Game.StartingChips = rooms.DefaultStartingChips
	}
	if c.Game.AutoStartDelay == "" {
		c.Game.AutoStartDelay = "3s"
	}
	if c.Game.RestartDelay == "" {
		c.Game.RestartDelay = "5s"
	}

	var err error
	if c.Game.autoStartDelay, err = time.ParseDuration(c.Game.AutoStartDelay); err != nil {
		return fmt.Errorf("invalid auto_start_delay: %w", err)
	}
	if c.Game.restartDelay, err = time.ParseDuration(c.Game.RestartDelay); err != nil {
		return fmt.Errorf("invalid restart_delay: %w", err)
	}

	if c.Database == nil {
		c.Database = &DatabaseSettings{}
	}
	if c.Database.Path == "" {
		c.Database.Path = "holdem.db"
	}

	if c.Auth == nil {
		c.Auth = &AuthSettings{}
	}
	if c.Auth.Timeout == "" {
		c.Auth.Timeout = "5s"
	}
	if c.Auth.timeout, err = time.ParseDuration(c.Auth.Timeout); err != nil {
		return fmt.Errorf("invalid auth timeout: %w", err)
	}

	if c.History == nil {
		c.History = &HistorySettings{}
	}
	if c.History.FlushInterval == "" {
		c.History.FlushInterval = "10s"
	}
	if c.History.FlushEvents == 0 {
		c.History.FlushEvents = 100
	}
	if c.History.flushInterval, err = time.ParseDuration(c.History.FlushInterval); err != nil {
		return fmt.Errorf("invalid history flush_interval: %w", err)
	}

	return nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.BigBlind <= 0 {
		return fmt.Errorf("big blind must be positive, got %d", c.Game.BigBlind)
	}
	if c.Game.MaxPlayers < 2 || c.Game.MaxPlayers > 10 {
		return fmt.Errorf("max players must be between 2 and 10, got %d", c.Game.MaxPlayers)
	}
	if c.Game.StartingChips < c.Game.BigBlind*10 {
		return fmt.Errorf("starting chips %d cannot cover the minimum buy-in of %d",
			c.Game.StartingChips, c.Game.BigBlind*10)
	}
	if c.Game.autoStartDelay <= 0 {
		return fmt.Errorf("auto_start_delay must be positive")
	}
	if c.Game.restartDelay <= 0 {
		return fmt.Errorf("restart_delay must be positive")
	}

	seen := make(map[string]bool, len(c.Rooms))
	for _, room := range c.Rooms {
		if room.Name == "" {
			return fmt.Errorf("room block requires a name label")
		}
		if seen[room.Name] {
			return fmt.Errorf("duplicate room block: %q", room.Name)
		}
		seen[room.Name] = true
		if room.BigBlind < 0 {
			return fmt.Errorf("room %q: big blind cannot be negative", room.Name)
		}
	}
	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// RoomsConfig maps the game settings onto the room service configuration
func (c *ServerConfig) RoomsConfig() rooms.Config {
	var roomBlinds map[string]int
	if len(c.Rooms) > 0 {
		roomBlinds = make(map[string]int, len(c.Rooms))
		for _, room := range c.Rooms {
			if room.BigBlind > 0 {
				roomBlinds[room.Name] = room.BigBlind
			}
		}
	}

	return rooms.Config{
		BigBlind:       c.Game.BigBlind,
		MaxPlayers:     c.Game.MaxPlayers,
		StartingChips:  c.Game.StartingChips,
		AutoStartDelay: c.Game.autoStartDelay,
		RestartDelay:   c.Game.restartDelay,
		RoomBlinds:     roomBlinds,
	}
}

// Validator builds the auth validator the config describes
func (c *ServerConfig) Validator() auth.Validator {
	if c.Auth.Endpoint == "" {
		return auth.NewNoopValidator()
	}
	return auth.NewHTTPValidator(c.Auth.Endpoint, c.Auth.Secret, c.Auth.timeout)
}

// HistoryEnabled reports whether event recording is configured
func (c *ServerConfig) HistoryEnabled() bool {
	return c.History != nil && c.History.Dir != ""
}

// HistoryFlushInterval returns the parsed history flush interval
func (c *ServerConfig) HistoryFlushInterval() time.Duration {
	return c.History.flushInterval
}
