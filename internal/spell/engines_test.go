package spell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	for _, name := range []string{"", Auto, EngineName} {
		got, err := Resolve(name)
		require.NoError(t, err, name)
		assert.Equal(t, EngineName, got, name)
	}

	_, err := Resolve("hunspell")
	require.ErrorIs(t, err, ErrUnknownEngine)
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(Auto, Options{})
	require.NoError(t, err)
	assert.Equal(t, EngineName, e.Name())

	errs, err := e.Check([]string{"I teh cat"}, "en")
	require.NoError(t, err)
	require.Len(t, errs[0], 1)

	_, err = NewEngine("neuspell", Options{})
	require.ErrorIs(t, err, ErrUnknownEngine)
}

func TestAvailable(t *testing.T) {
	all := Available()
	require.Len(t, all, len(Engines()))
	info := all[EngineName]
	assert.True(t, info.Available)
	assert.Equal(t, []string{"en"}, info.Languages)
	assert.Equal(t, Engines()[0], EngineName)
}
