// Package commands holds the holdem-client subcommands and their shared
// connection setup.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/lox/holdem-rooms/internal/client"
	"github.com/lox/holdem-rooms/internal/logging"
)

// GlobalFlags holds common configuration for all commands
type GlobalFlags struct {
	Config   string `short:"c" long:"config" default:"holdem-client.hcl" help:"Path to HCL configuration file"`
	Server   string `short:"s" long:"server" help:"Server URL to connect to (overrides config)"`
	Player   string `short:"p" long:"player" help:"Player name, blank for a guest seat (overrides config)"`
	Token    string `short:"t" long:"token" help:"Auth token (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	LogFile  string `long:"log-file" help:"Log file path (overrides config)"`
}

// SetupClient creates and connects a client logging to stderr, for
// headless commands.
func SetupClient(flags *GlobalFlags) (*client.Client, *client.ClientConfig, *log.Logger, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, nil, err
	}
	return setupClientConfigured(cfg, os.Stderr)
}

// SetupClientWithFileLogging creates and connects a client that logs to
// the configured file, keeping the terminal free for the TUI. The
// returned cleanup disconnects and closes the log file.
func SetupClientWithFileLogging(flags *GlobalFlags) (*client.Client, *client.ClientConfig, *log.Logger, func(), error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	// Truncate the log each run so it only covers the current session
	logFile, err := os.OpenFile(cfg.UI.LogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	wsClient, finalCfg, logger, err := setupClientConfigured(cfg, logFile)
	if err != nil {
		_ = logFile.Close()
		return nil, nil, nil, nil, err
	}

	cleanup := func() {
		_ = wsClient.Disconnect()
		_ = logFile.Close()
	}

	return wsClient, finalCfg, logger, cleanup, nil
}

// loadConfig loads the HCL config and applies command line overrides
func loadConfig(flags *GlobalFlags) (*client.ClientConfig, error) {
	cfg, err := client.LoadClientConfig(flags.Config)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if flags.Server != "" {
		cfg.Server.URL = flags.Server
	}
	if flags.Player != "" {
		cfg.Player.Name = flags.Player
	}
	if flags.Token != "" {
		cfg.Player.Token = flags.Token
	}
	if flags.LogLevel != "" {
		cfg.UI.LogLevel = flags.LogLevel
	}
	if flags.LogFile != "" {
		cfg.UI.LogFile = flags.LogFile
	}

	return cfg, nil
}

// setupClientConfigured connects and authenticates a client with an
// already loaded config and log writer
func setupClientConfigured(cfg *client.ClientConfig, logWriter io.Writer) (*client.Client, *client.ClientConfig, *log.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(logWriter, cfg.UI.LogLevel)

	wsClient := client.NewClient(cfg.Server.URL, logger)
	wsClient.SetHandshakeTimeout(cfg.GetConnectTimeout())

	if err := wsClient.Connect(); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to server: %w", err)
	}

	if err := wsClient.Auth(cfg.Player.Name, cfg.Player.Token); err != nil {
		_ = wsClient.Disconnect()
		return nil, nil, nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	return wsClient, cfg, logger, nil
}
