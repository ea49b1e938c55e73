package ui

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

var terminalInitialized bool

// InitTerminal configures the terminal to prevent escape sequence pollution.
// This MUST be called before any lipgloss rendering.
//
// muesli/termenv (used by lipgloss) queries the terminal background color
// via OSC 11, and the terminal response (\033]11;rgb:...\033\\) gets mixed
// into stdout. Setting COLORFGBG tells termenv the background color, skipping
// the query.
func InitTerminal() {
	if terminalInitialized {
		return
	}
	terminalInitialized = true

	// Format: "foreground;background" where values indicate color indices
	if os.Getenv("COLORFGBG") == "" {
		os.Setenv("COLORFGBG", "0;15")
	}

	// Terminals can send focus in/out events (^[[I/^[[O) which pollute
	// the output stream
	if term.IsTerminal(int(os.Stdout.Fd())) {
		// Disable focus reporting (CSI ? 1004 l)
		fmt.Fprint(os.Stdout, "\033[?1004l")
		time.Sleep(20 * time.Millisecond)
		FlushStdinWithTimeout(150 * time.Millisecond)
	}
}

// FlushStdinWithTimeout reads and discards stdin for the specified duration.
// This catches asynchronous terminal responses (cursor position reports,
// OSC responses, focus events) that arrive after queries are sent.
// Only flushes if stdin is a terminal. It never reads from pipes or /dev/null
// to avoid consuming piped input.
func FlushStdinWithTimeout(timeout time.Duration) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	drainStdin(fd, timeout)
}
