package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/iw2rmb/quill/engine"
	"github.com/iw2rmb/quill/internal/logging"
	"github.com/iw2rmb/quill/store"
)

// Config holds all configuration options for quill.
type Config struct {
	Server ServerConfig  `mapstructure:"server"`
	Editor EditorConfig  `mapstructure:"editor"`
	Log    LogConfig     `mapstructure:"log"`
	Engine engine.Config `mapstructure:"engine"`
}

type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	DataDir       string        `mapstructure:"data_dir"`
	WatchDebounce time.Duration `mapstructure:"watch_debounce"`
}

type EditorConfig struct {
	// Server is the base URL of the assistant server.
	Server      string `mapstructure:"server"`
	LineNumbers bool   `mapstructure:"line_numbers"`
	TabWidth    int    `mapstructure:"tab_width"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File receives log output. The editor logs nowhere without it.
	File string `mapstructure:"file"`
}

func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{
		Server: ServerConfig{
			Addr:          "localhost:8000",
			DataDir:       filepath.Join(home, ".local", "share", "quill"),
			WatchDebounce: 300 * time.Millisecond,
		},
		Editor: EditorConfig{
			Server:   "http://localhost:8000",
			TabWidth: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Engine: engine.DefaultConfig(),
	}
}

func setDefaults(v *viper.Viper, d Config) {
	defaults := map[string]any{
		"server.addr":           d.Server.Addr,
		"server.data_dir":       d.Server.DataDir,
		"server.watch_debounce": d.Server.WatchDebounce,

		"editor.server":       d.Editor.Server,
		"editor.line_numbers": d.Editor.LineNumbers,
		"editor.tab_width":    d.Editor.TabWidth,

		"log.level":  d.Log.Level,
		"log.format": d.Log.Format,
		"log.file":   d.Log.File,

		"engine.save_delay":             d.Engine.SaveDelay,
		"engine.predict_idle_delay":     d.Engine.PredictIdleDelay,
		"engine.predict_typing_delay":   d.Engine.PredictTypingDelay,
		"engine.spellcheck_delay":       d.Engine.SpellCheckDelay,
		"engine.normalize_idle_delay":   d.Engine.NormalizeIdleDelay,
		"engine.normalize_typing_delay": d.Engine.NormalizeTypingDelay,
		"engine.typing_quiet":           d.Engine.TypingQuiet,
		"engine.stale_tolerance":        d.Engine.StaleTolerance,
		"engine.min_remainder":          d.Engine.MinRemainder,
		"engine.history_limit":          d.Engine.HistoryLimit,
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
}

// loadConfig reads file, or ~/.config/quill/config.yaml when file is empty,
// over the defaults. QUILL_* environment variables override both, e.g.
// QUILL_SERVER_ADDR or QUILL_ENGINE_SAVE_DELAY=2s. A missing default file
// is not an error; a missing explicit one is.
func loadConfig(v *viper.Viper, file string) (Config, error) {
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix("QUILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		home, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(home, ".config", "quill"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. Output goes to the configured log
// file, else to fallback; a nil fallback discards.
func newLogger(cfg LogConfig, fallback io.Writer) (*slog.Logger, func(), error) {
	closeFn := func() {}
	w := fallback
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, closeFn, fmt.Errorf("open log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	if w == nil {
		return logging.Discard(), closeFn, nil
	}
	log, err := logging.Init(w, cfg.Level, cfg.Format)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return log, closeFn, nil
}

// engineSettings maps the server's settings onto what the engine consults.
func engineSettings(s store.Settings) engine.Settings {
	return engine.Settings{
		SpellCheckEnabled:       s.SpellCheckEnabled,
		Language:                s.SpellCheckLanguage,
		SpellEngine:             s.SpellCheckEngine,
		PredictionsEnabled:      s.PredictionsEnabled,
		PredictionEngine:        s.PredictionEngine,
		PredictionTriggerLength: s.PredictionTriggerLength,
	}
}
