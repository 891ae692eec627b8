package engine

import (
	"time"

	"github.com/iw2rmb/quill/overlay"
)

// Config holds the debounce windows and thresholds of the engine.
type Config struct {
	SaveDelay            time.Duration `mapstructure:"save_delay"`
	PredictIdleDelay     time.Duration `mapstructure:"predict_idle_delay"`
	PredictTypingDelay   time.Duration `mapstructure:"predict_typing_delay"`
	SpellCheckDelay      time.Duration `mapstructure:"spellcheck_delay"`
	NormalizeIdleDelay   time.Duration `mapstructure:"normalize_idle_delay"`
	NormalizeTypingDelay time.Duration `mapstructure:"normalize_typing_delay"`
	TypingQuiet          time.Duration `mapstructure:"typing_quiet"`

	// StaleTolerance is the largest cursor drift, in runes, for which an
	// asynchronous prediction is still applied. Zero selects the default; a
	// negative value demands an exact match.
	StaleTolerance int `mapstructure:"stale_tolerance"`
	// MinRemainder is the shortest prediction remainder kept on screen
	// after a partial accept.
	MinRemainder int `mapstructure:"min_remainder"`
	HistoryLimit int `mapstructure:"history_limit"`
}

func DefaultConfig() Config {
	return Config{
		SaveDelay:            time.Second,
		PredictIdleDelay:     300 * time.Millisecond,
		PredictTypingDelay:   700 * time.Millisecond,
		SpellCheckDelay:      800 * time.Millisecond,
		NormalizeIdleDelay:   150 * time.Millisecond,
		NormalizeTypingDelay: 500 * time.Millisecond,
		TypingQuiet:          400 * time.Millisecond,
		StaleTolerance:       10,
		MinRemainder:         overlay.DefaultMinRemainder,
		HistoryLimit:         1000,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SaveDelay <= 0 {
		c.SaveDelay = d.SaveDelay
	}
	if c.PredictIdleDelay <= 0 {
		c.PredictIdleDelay = d.PredictIdleDelay
	}
	if c.PredictTypingDelay <= 0 {
		c.PredictTypingDelay = d.PredictTypingDelay
	}
	if c.SpellCheckDelay <= 0 {
		c.SpellCheckDelay = d.SpellCheckDelay
	}
	if c.NormalizeIdleDelay <= 0 {
		c.NormalizeIdleDelay = d.NormalizeIdleDelay
	}
	if c.NormalizeTypingDelay <= 0 {
		c.NormalizeTypingDelay = d.NormalizeTypingDelay
	}
	if c.TypingQuiet <= 0 {
		c.TypingQuiet = d.TypingQuiet
	}
	switch {
	case c.StaleTolerance == 0:
		c.StaleTolerance = d.StaleTolerance
	case c.StaleTolerance < 0:
		c.StaleTolerance = 0
	}
	if c.MinRemainder <= 0 {
		c.MinRemainder = d.MinRemainder
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = d.HistoryLimit
	}
	return c
}

// Settings are the user preferences the engine consults when a task fires.
type Settings struct {
	SpellCheckEnabled       bool
	Language                string
	SpellEngine             string
	PredictionsEnabled      bool
	PredictionEngine        string
	PredictionTriggerLength int
}

func DefaultSettings() Settings {
	return Settings{
		SpellCheckEnabled:       true,
		Language:                "en",
		SpellEngine:             "dictionary",
		PredictionsEnabled:      true,
		PredictionEngine:        "frequency_based",
		PredictionTriggerLength: 3,
	}
}
