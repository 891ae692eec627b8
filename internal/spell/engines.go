package spell

import (
	"errors"
	"fmt"

	"github.com/iw2rmb/quill/protocol"
)

// Auto selects the default engine.
const Auto = "auto"

// ErrUnknownEngine is returned for an unregistered engine name.
var ErrUnknownEngine = errors.New("spell: unknown engine")

// Engine checks lines of text and keeps a user dictionary.
type Engine interface {
	Name() string
	Languages() []string
	Check(lines []string, language string) (map[int][]protocol.SpellError, error)
	Known(w string) bool
	SetUserWords(words []string)
	AddWord(w string)
	RemoveWord(w string)
}

// Info describes a registered engine for the settings API.
type Info struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Languages   []string `json:"languages"`
	Available   bool     `json:"available"`
}

var registry = []Info{
	{
		Name:        EngineName,
		Type:        "dictionary",
		Description: "embedded word list with edit-distance suggestions",
		Languages:   []string{"en"},
		Available:   true,
	},
}

// Engines lists the registered engine names, the default first.
func Engines() []string {
	out := make([]string, len(registry))
	for i, info := range registry {
		out[i] = info.Name
	}
	return out
}

// Resolve maps a settings value to a registered engine name. The empty
// name and Auto resolve to the default engine.
func Resolve(name string) (string, error) {
	if name == "" || name == Auto {
		return registry[0].Name, nil
	}
	for _, info := range registry {
		if info.Name == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Describe returns the registry entry of name.
func Describe(name string) (Info, error) {
	resolved, err := Resolve(name)
	if err != nil {
		return Info{}, err
	}
	for _, info := range registry {
		if info.Name == resolved {
			info.Languages = append([]string(nil), info.Languages...)
			return info, nil
		}
	}
	return Info{}, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// Available describes every registered engine keyed by name.
func Available() map[string]Info {
	out := make(map[string]Info, len(registry))
	for _, name := range Engines() {
		info, _ := Describe(name)
		out[name] = info
	}
	return out
}

// NewEngine returns a fresh engine registered under name.
func NewEngine(name string, opts Options) (Engine, error) {
	resolved, err := Resolve(name)
	if err != nil {
		return nil, err
	}
	switch resolved {
	case EngineName:
		return New(opts), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}
