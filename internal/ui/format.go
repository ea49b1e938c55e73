package ui

import "fmt"

// FormatBytes renders n with a binary unit suffix.
// Example: 1536 -> "1.5KB"
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 4; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(n)/float64(div), "KMGTP"[exp])
}

// FormatSpeed renders a bytes-per-second rate.
func FormatSpeed(bytesPerSec float64) string {
	if bytesPerSec <= 0 {
		return "--/s"
	}
	return FormatBytes(int64(bytesPerSec)) + "/s"
}
