// Package editor is the Bubble Tea view binder for the engine.
//
// The Model renders the engine's document with the live prediction as ghost
// text, misspelled words underlined and per-paragraph error badges, and
// translates key presses into engine operations. Engine tasks are driven by
// tea.Tick at the scheduler's next deadline; incoming transport messages
// are read from Config.Incoming or delivered by the host as MessageMsg.
package editor
