// Package logging builds the loggers shared by the server and client
// binaries: charmbracelet/log with a common level palette and timestamp
// format, so package output looks the same everywhere.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// New constructs a logger writing to w at the given level string.
// Unknown level strings fall back to info.
func New(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           ParseLevel(level),
	})
	logger.SetStyles(styles())
	return logger
}

// ParseLevel maps a config string onto a log level. Unknown strings map
// to info rather than erroring; a bad log level should never stop a
// server from booting.
func ParseLevel(s string) log.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DebugLevel
	case "info", "":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// styles returns the shared level palette, matching the table colors in
// internal/tui.
func styles() *log.Styles {
	s := log.DefaultStyles()
	s.Levels[log.DebugLevel] = levelStyle("DEBU", "#626262")
	s.Levels[log.InfoLevel] = levelStyle("INFO", "#04B575")
	s.Levels[log.WarnLevel] = levelStyle("WARN", "#FFD700")
	s.Levels[log.ErrorLevel] = levelStyle("ERRO", "#FF6B6B")
	s.Levels[log.FatalLevel] = levelStyle("FATL", "#FF6B6B")
	return s
}

func levelStyle(label, color string) lipgloss.Style {
	return lipgloss.NewStyle().
		SetString(label).
		Bold(true).
		MaxWidth(4).
		Foreground(lipgloss.Color(color))
}
