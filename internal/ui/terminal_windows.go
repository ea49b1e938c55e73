//go:build windows

package ui

import "time"

// Console input on Windows does not receive focus or OSC replies.
func drainStdin(int, time.Duration) {}
