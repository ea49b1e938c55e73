package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the styles for different UI elements
type Theme struct {
	// Status indicators
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// UI elements
	Header      lipgloss.Style
	SubHeader   lipgloss.Style
	Label       lipgloss.Style
	Value       lipgloss.Style
	Command     lipgloss.Style
	Description lipgloss.Style
	Separator   lipgloss.Style

	// Progress indicators
	Pending lipgloss.Style
}

// DefaultTheme returns the default color theme
func DefaultTheme() *Theme {
	return &Theme{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),

		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		SubHeader: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		// Terminal default foreground keeps labels readable on any background
		Label:       lipgloss.NewStyle().Bold(true),
		Value:       lipgloss.NewStyle(),
		Command:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Description: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Separator:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),

		Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// ColorConfig manages color output settings
type ColorConfig struct {
	Enabled      bool
	EmojiEnabled bool
	Theme        *Theme
}

// NewColorConfig creates a new color configuration with default settings
func NewColorConfig() *ColorConfig {
	noColor := os.Getenv("NO_COLOR") != ""
	term := os.Getenv("TERM")

	// Disable colors if NO_COLOR is set or TERM is dumb
	enabled := !noColor && term != "dumb" && term != ""

	return &ColorConfig{
		Enabled:      enabled,
		EmojiEnabled: true,
		Theme:        DefaultTheme(),
	}
}

// Apply renders text with style if colors are enabled
func (c *ColorConfig) Apply(style lipgloss.Style, text string) string {
	if !c.Enabled {
		return text
	}
	return style.Render(text)
}

func (c *ColorConfig) Success(text string) string { return c.Apply(c.Theme.Success, text) }

func (c *ColorConfig) Warning(text string) string { return c.Apply(c.Theme.Warning, text) }

func (c *ColorConfig) Error(text string) string { return c.Apply(c.Theme.Error, text) }

func (c *ColorConfig) Info(text string) string { return c.Apply(c.Theme.Info, text) }

func (c *ColorConfig) Header(text string) string { return c.Apply(c.Theme.Header, text) }

func (c *ColorConfig) SubHeader(text string) string { return c.Apply(c.Theme.SubHeader, text) }

func (c *ColorConfig) Label(text string) string { return c.Apply(c.Theme.Label, text) }

func (c *ColorConfig) Value(text string) string { return c.Apply(c.Theme.Value, text) }

func (c *ColorConfig) Command(text string) string { return c.Apply(c.Theme.Command, text) }

func (c *ColorConfig) Description(text string) string { return c.Apply(c.Theme.Description, text) }

// FormatKeyValue formats a key-value pair with proper colors
func (c *ColorConfig) FormatKeyValue(key, value string) string {
	return fmt.Sprintf("%s: %s", c.Label(key), c.Value(value))
}

// FormatCommand formats a command with its description
func (c *ColorConfig) FormatCommand(cmd, desc string) string {
	return fmt.Sprintf("  %s  %s", c.Command(cmd), c.Description(desc))
}

// Separator returns a colored separator line
func (c *ColorConfig) Separator(width int) string {
	return c.Apply(c.Theme.Separator, strings.Repeat("─", width))
}

// StatusIcon returns a colored status icon (respects emoji settings)
func (c *ColorConfig) StatusIcon(status string) string {
	if !c.EmojiEnabled {
		switch strings.ToLower(status) {
		case "success", "up-to-date":
			return c.Success("[OK]")
		case "warning", "downgrade":
			return c.Warning("[WARN]")
		case "error", "failed":
			return c.Error("[ERR]")
		case "info", "update available":
			return c.Info("[INFO]")
		default:
			return c.Apply(c.Theme.Pending, "[ ]")
		}
	}

	switch strings.ToLower(status) {
	case "success", "up-to-date":
		return c.Success("✓")
	case "warning", "downgrade":
		return c.Warning("⚠")
	case "error", "failed":
		return c.Error("✗")
	case "info":
		return c.Info("ℹ")
	case "update available":
		return c.Info("⬆")
	default:
		return c.Apply(c.Theme.Pending, "○")
	}
}
