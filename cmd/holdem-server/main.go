package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdem-rooms/internal/history"
	"github.com/lox/holdem-rooms/internal/identity"
	"github.com/lox/holdem-rooms/internal/logging"
	"github.com/lox/holdem-rooms/internal/rooms"
	"github.com/lox/holdem-rooms/internal/server"
)

var CLI struct {
	Config   string `short:"c" long:"config" default:"holdem-server.hcl" help:"Path to HCL configuration file"`
	Addr     string `short:"a" long:"addr" help:"Server address to bind to (overrides config)"`
	LogLevel string `short:"l" long:"log-level" help:"Log level (overrides config)"`
	Database string `short:"d" long:"database" help:"Path to the balance database (overrides config)"`
}

func main() {
	ctx := kong.Parse(&CLI)

	cfg, err := server.LoadServerConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		ctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.Addr != "" {
		cfg.Server.Address = CLI.Addr
	}
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Database != "" {
		cfg.Database.Path = CLI.Database
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		ctx.Exit(1)
	}

	var logOutput io.Writer = os.Stderr
	if cfg.Server.LogFile != "" {
		logFile, err := os.OpenFile(cfg.Server.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			fmt.Printf("Failed to open log file: %v\n", err)
			ctx.Exit(1)
		}
		defer func() { _ = logFile.Close() }()
		logOutput = logFile
	}
	logger := logging.New(logOutput, cfg.Server.LogLevel)

	logger.Info("Starting Holdem Server",
		"addr", cfg.GetServerAddress(),
		"bigBlind", cfg.Game.BigBlind,
		"maxPlayers", cfg.Game.MaxPlayers,
		"database", cfg.Database.Path)

	store, err := identity.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		logger.Error("Failed to open balance database", "error", err, "path", cfg.Database.Path)
		ctx.Exit(1)
	}
	defer func() { _ = store.Close() }()

	var opts []rooms.Option
	var recorder *history.Recorder
	if cfg.HistoryEnabled() {
		recorder, err = history.NewRecorder(history.Config{
			Dir:           cfg.History.Dir,
			FlushInterval: cfg.HistoryFlushInterval(),
			FlushEvents:   cfg.History.FlushEvents,
		}, logger)
		if err != nil {
			logger.Error("Failed to start event recorder", "error", err, "dir", cfg.History.Dir)
			ctx.Exit(1)
		}
		opts = append(opts, rooms.WithRecorder(recorder))
		logger.Info("Recording room events", "dir", cfg.History.Dir)
	}

	wsServer := server.NewServer(cfg.GetServerAddress(), cfg.Validator(), logger)
	service := rooms.NewService(cfg.RoomsConfig(), store, wsServer, logger, quartz.NewReal(), opts...)
	wsServer.SetService(service)

	g, gctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return wsServer.Start()
	})

	g.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sig)

		select {
		case s := <-sig:
			logger.Info("Shutting down", "signal", s)
		case <-gctx.Done():
			// Server failed on its own; still run the shutdown path
		}

		service.Close()
		if recorder != nil {
			recorder.Shutdown()
		}
		return wsServer.Stop()
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", "error", err)
		ctx.Exit(1)
	}
}
