package main

import "github.com/ishibashi-futos/oxide-sub000/internal/ui"

func main() {
	// Initialize terminal FIRST, before any lipgloss rendering, so OSC 11
	// background queries and focus events stay out of the output stream.
	ui.InitTerminal()

	Execute()
}
