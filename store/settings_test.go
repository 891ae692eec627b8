package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsValid(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
}

func TestSettings_ValidateReportsEveryProblem(t *testing.T) {
	s := DefaultSettings()
	s.Theme = "neon"
	s.PredictionTriggerLength = 0
	s.FontSize = 99

	err := s.Validate()
	require.ErrorIs(t, err, ErrInvalidSettings)
	assert.Contains(t, err.Error(), "theme")
	assert.Contains(t, err.Error(), "prediction_trigger_length")
	assert.Contains(t, err.Error(), "font_size")
}

func TestSettingsFile_MissingUsesDefaults(t *testing.T) {
	sf, err := OpenSettings(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), sf.Get())
}

func TestSettingsFile_PutPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "settings.yaml")
	sf, err := OpenSettings(path)
	require.NoError(t, err)

	s := DefaultSettings()
	s.Theme = "dark"
	s.PredictionsEnabled = false
	require.NoError(t, sf.Put(s))

	again, err := OpenSettings(path)
	require.NoError(t, err)
	assert.Equal(t, s, again.Get())
}

func TestSettingsFile_PatchMergesAndValidates(t *testing.T) {
	sf, err := OpenSettings(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)

	got, err := sf.Patch([]byte(`{"theme": "dark", "font_size": 16}`))
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, 16, got.FontSize)
	assert.True(t, got.SpellCheckEnabled)

	_, err = sf.Patch([]byte(`{"font_size": 2}`))
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Equal(t, 16, sf.Get().FontSize)

	d, err := sf.Reset()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), d)
}

func TestOpenSettings_RejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: neon\n"), 0o644))
	_, err := OpenSettings(path)
	assert.ErrorIs(t, err, ErrInvalidSettings)
}
