// Command quill runs the writing assistant server and the terminal editor.
package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

func main() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot race the input loop.
	_ = lipgloss.HasDarkBackground()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
