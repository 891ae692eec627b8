package editor

import "github.com/iw2rmb/quill/protocol"

// Config configures the editor Model.
type Config struct {
	// Rendering options.
	ShowLineNums bool
	TabWidth     int
	Style        Style

	KeyMap KeyMap

	// Incoming, when set, is read for server messages. Hosts that forward
	// messages themselves send MessageMsg instead.
	Incoming <-chan protocol.Message
}

func DefaultConfig() Config {
	return Config{
		TabWidth: 4,
		Style:    DefaultStyle(),
		KeyMap:   DefaultKeyMap(),
	}
}
