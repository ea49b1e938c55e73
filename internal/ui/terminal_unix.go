//go:build !windows

package ui

import (
	"os"
	"syscall"
	"time"
)

func drainStdin(fd int, timeout time.Duration) {
	if err := syscall.SetNonblock(fd, true); err != nil {
		return
	}
	defer syscall.SetNonblock(fd, false)

	buf := make([]byte, 256)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		n, _ := os.Stdin.Read(buf)
		if n <= 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}
