package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger returns the ox logger writing to w at level.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "ox",
		Level:           level,
		ReportTimestamp: level == log.DebugLevel,
	})
}

// NewLoggerFromGlobal returns a stderr logger at the level chosen by the
// global flags.
func NewLoggerFromGlobal() *log.Logger {
	return NewLogger(os.Stderr, GetGlobal().LogLevel())
}
