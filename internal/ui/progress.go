package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/term"
)

// ProgressBar renders download progress. On a TTY it redraws a single
// line with a bubbles progress bar; otherwise it prints at 10% steps.
type ProgressBar struct {
	mu         sync.Mutex
	out        io.Writer
	label      string
	total      int64
	current    int64
	startTime  time.Time
	lastUpdate time.Time
	isTTY      bool
	lastPct    float64 // for non-TTY threshold updates
	colors     *ColorConfig
	bar        progress.Model
	indent     string
	done       bool
}

// NewProgressBar creates a progress bar writing to out. A nil out means
// stdout.
func NewProgressBar(out io.Writer, label string) *ProgressBar {
	if out == nil {
		out = os.Stdout
	}

	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}

	if isTTY {
		// Disable focus reporting (CSI ? 1004 l)
		fmt.Fprint(out, "\033[?1004l")
		FlushStdinWithTimeout(30 * time.Millisecond)
	}

	return &ProgressBar{
		out:       out,
		label:     label,
		startTime: time.Now(),
		isTTY:     isTTY,
		lastPct:   -1,
		colors:    NewColorConfigFromGlobal(),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		indent:    "  ",
	}
}

// SetIndent sets the indentation prefix for the progress bar output.
func (p *ProgressBar) SetIndent(indent string) {
	p.indent = indent
}

// Update records current of total bytes. total <= 0 means unknown. It has
// the shape of a download progress callback.
func (p *ProgressBar) Update(current, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.total = total

	// Rate limit updates to avoid flicker (max 10/sec for TTY)
	now := time.Now()
	if p.isTTY && now.Sub(p.lastUpdate) < 100*time.Millisecond {
		return
	}
	p.lastUpdate = now

	if p.total <= 0 {
		if p.isTTY {
			fmt.Fprintf(p.out, "\r%s%s... %s\033[K", p.indent, p.label, FormatBytes(current))
		}
		return
	}

	pct := float64(current) / float64(p.total) * 100
	if p.isTTY {
		p.renderTTY(pct)
		return
	}

	// Non-TTY: print at 10% intervals
	threshold := float64(int(pct/10) * 10)
	if threshold > p.lastPct {
		p.lastPct = threshold
		fmt.Fprintf(p.out, "%s%s... %.0f%%\n", p.indent, p.label, threshold)
	}
}

func (p *ProgressBar) renderTTY(pct float64) {
	elapsed := time.Since(p.startTime).Seconds()
	var speed float64
	if elapsed > 0 {
		speed = float64(p.current) / elapsed
	}

	eta := "--"
	if p.current >= p.total {
		eta = "0s"
	} else if speed > 0 {
		eta = formatDuration(float64(p.total-p.current) / speed)
	}

	width := 80
	if f, ok := p.out.(*os.File); ok {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	// Format: "<indent>[bar] 100.0%  999.9MB/999.9MB  999.9MB/s  ETA 99m59s"
	p.bar.Width = min(max(width-56-len(p.indent), 10), 40)

	fmt.Fprintf(p.out, "\r%s%s %5.1f%%   %s/%s   %s   ETA %s\033[K",
		p.indent,
		p.renderBar(pct/100),
		pct,
		FormatBytes(p.current),
		FormatBytes(p.total),
		FormatSpeed(speed),
		eta,
	)
}

func (p *ProgressBar) renderBar(ratio float64) string {
	ratio = min(max(ratio, 0), 1)
	if p.colors.Enabled {
		return p.bar.ViewAs(ratio)
	}
	filled := int(ratio * float64(p.bar.Width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", p.bar.Width-filled) + "]"
}

// formatDuration formats seconds into a human-readable duration string.
func formatDuration(seconds float64) string {
	if seconds < 0 {
		return "--"
	}
	if seconds < 60 {
		return fmt.Sprintf("%.0fs", seconds)
	}
	if seconds < 3600 {
		mins := int(seconds) / 60
		secs := int(seconds) % 60
		return fmt.Sprintf("%dm%ds", mins, secs)
	}
	hours := int(seconds) / 3600
	mins := (int(seconds) % 3600) / 60
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// Finish completes the progress bar and moves to the next line. It is
// safe to call more than once.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return
	}
	p.done = true

	if p.isTTY {
		if p.total > 0 {
			p.current = p.total
			p.renderTTY(100)
		}
		fmt.Fprintln(p.out)
		FlushStdinWithTimeout(30 * time.Millisecond)
	} else if p.total > 0 && p.lastPct < 100 {
		fmt.Fprintf(p.out, "%s%s... 100%%\n", p.indent, p.label)
	}
}
