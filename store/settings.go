package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/iw2rmb/quill/internal/spell"
)

// ErrInvalidSettings wraps every settings validation failure.
var ErrInvalidSettings = errors.New("store: invalid settings")

var (
	SpellEngines      = append([]string{spell.Auto}, spell.Engines()...)
	PredictionEngines = []string{"frequency_based", "statistical"}
	Themes            = []string{"light", "dark", "auto"}
	Languages         = []string{"en", "es", "fr", "de", "it", "pt", "ru", "pl", "nl"}
)

// Settings are the user preferences served at /api/settings.
type Settings struct {
	SpellCheckEnabled     bool   `yaml:"spell_check_enabled" json:"spell_check_enabled"`
	SpellCheckEngine      string `yaml:"spell_check_engine" json:"spell_check_engine"`
	SpellCheckLanguage    string `yaml:"spell_check_language" json:"spell_check_language"`
	SpellCheckAutoCorrect bool   `yaml:"spell_check_auto_correct" json:"spell_check_auto_correct"`

	PredictionsEnabled      bool   `yaml:"predictions_enabled" json:"predictions_enabled"`
	PredictionEngine        string `yaml:"prediction_engine" json:"prediction_engine"`
	MaxPredictions          int    `yaml:"max_predictions" json:"max_predictions"`
	PredictionTriggerLength int    `yaml:"prediction_trigger_length" json:"prediction_trigger_length"`

	Theme            string `yaml:"theme" json:"theme"`
	FontSize         int    `yaml:"font_size" json:"font_size"`
	LineNumbers      bool   `yaml:"line_numbers" json:"line_numbers"`
	WordWrap         bool   `yaml:"word_wrap" json:"word_wrap"`
	AutoSave         bool   `yaml:"auto_save" json:"auto_save"`
	AutoSaveInterval int    `yaml:"auto_save_interval" json:"auto_save_interval"`

	DebugMode bool `yaml:"debug_mode" json:"debug_mode"`
}

func DefaultSettings() Settings {
	return Settings{
		SpellCheckEnabled:       true,
		SpellCheckEngine:        "auto",
		SpellCheckLanguage:      "en",
		PredictionsEnabled:      true,
		PredictionEngine:        "frequency_based",
		MaxPredictions:          5,
		PredictionTriggerLength: 3,
		Theme:                   "light",
		FontSize:                14,
		LineNumbers:             true,
		WordWrap:                true,
		AutoSave:                true,
		AutoSaveInterval:        30,
	}
}

// Validate reports every invalid field at once.
func (s Settings) Validate() error {
	var problems []string
	oneOf := func(field, v string, allowed []string) {
		if !slices.Contains(allowed, v) {
			problems = append(problems, fmt.Sprintf("%s must be one of %v", field, allowed))
		}
	}
	between := func(field string, v, lo, hi int) {
		if v < lo || v > hi {
			problems = append(problems, fmt.Sprintf("%s must be between %d and %d", field, lo, hi))
		}
	}
	oneOf("spell_check_engine", s.SpellCheckEngine, SpellEngines)
	oneOf("spell_check_language", s.SpellCheckLanguage, Languages)
	oneOf("prediction_engine", s.PredictionEngine, PredictionEngines)
	oneOf("theme", s.Theme, Themes)
	between("max_predictions", s.MaxPredictions, 1, 20)
	between("prediction_trigger_length", s.PredictionTriggerLength, 1, 10)
	between("font_size", s.FontSize, 8, 32)
	between("auto_save_interval", s.AutoSaveInterval, 5, 300)
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSettings, strings.Join(problems, "; "))
	}
	return nil
}

// SettingsFile persists Settings as YAML.
type SettingsFile struct {
	path string

	mu  sync.RWMutex
	cur Settings
}

// OpenSettings reads path, falling back to defaults when it is missing.
func OpenSettings(path string) (*SettingsFile, error) {
	sf := &SettingsFile{path: path, cur: DefaultSettings()}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return sf, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	s := DefaultSettings()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	sf.cur = s
	return sf, nil
}

func (sf *SettingsFile) Get() Settings {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.cur
}

// Put validates and stores s.
func (sf *SettingsFile) Put(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if err := sf.write(s); err != nil {
		return err
	}
	sf.cur = s
	return nil
}

// Patch merges YAML or JSON fields in data over the current settings.
func (sf *SettingsFile) Patch(data []byte) (Settings, error) {
	sf.mu.RLock()
	s := sf.cur
	sf.mu.RUnlock()
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := sf.Put(s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Reset restores the defaults.
func (sf *SettingsFile) Reset() (Settings, error) {
	d := DefaultSettings()
	return d, sf.Put(d)
}

func (sf *SettingsFile) write(s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(sf.path), 0o755); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	tmp := sf.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, sf.path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
