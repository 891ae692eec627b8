package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iw2rmb/quill/protocol"
)

func TestFiles_SaveLoadListDelete(t *testing.T) {
	ctx := context.Background()
	f, err := NewFiles(filepath.Join(t.TempDir(), "docs"))
	require.NoError(t, err)

	_, err = f.Save(ctx, "b.txt", "second")
	require.NoError(t, err)
	info, err := f.Save(ctx, "a.txt", "first\n\nline")
	require.NoError(t, err)
	assert.Equal(t, int64(11), info.Size)

	got, err := f.Load(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "first\n\nline", got)

	require.NoError(t, os.WriteFile(filepath.Join(f.Dir(), "notes.md"), []byte("x"), 0o644))
	names, err := f.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)

	require.NoError(t, f.Delete(ctx, "b.txt"))
	_, err = f.Load(ctx, "b.txt")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.Delete(ctx, "b.txt"), ErrNotFound)
}

func TestFiles_RejectsBadNames(t *testing.T) {
	ctx := context.Background()
	f, err := NewFiles(t.TempDir())
	require.NoError(t, err)
	for _, name := range []string{"", "../x.txt", "a/b.txt", ".hidden.txt", "notes.md"} {
		_, err := f.Save(ctx, name, "x")
		assert.ErrorIs(t, err, protocol.ErrInvalidMessage, name)
	}
}

func TestTextStats(t *testing.T) {
	st := TextStats("one two\n\nthree ")
	assert.Equal(t, 3, st.Lines)
	assert.Equal(t, 3, st.Words)
	assert.Equal(t, 15, st.Characters)
	assert.Equal(t, 13, st.CharactersNoSpaces)
	assert.Equal(t, 2, st.Paragraphs)
	assert.Equal(t, 1, st.EmptyLines)
}

func TestFiles_Stats(t *testing.T) {
	ctx := context.Background()
	f, err := NewFiles(t.TempDir())
	require.NoError(t, err)
	_, err = f.Save(ctx, "a.txt", "hello world")
	require.NoError(t, err)

	st, err := f.Stats(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a.txt", st.Filename)
	assert.Equal(t, 2, st.Words)
	assert.Equal(t, int64(11), st.Size)
}

func TestFiles_WatchDebouncesChanges(t *testing.T) {
	f, err := NewFiles(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu    sync.Mutex
		calls [][]string
	)
	done := make(chan error, 1)
	go func() {
		done <- f.Watch(ctx, 50*time.Millisecond, nil, func(names []string) {
			mu.Lock()
			calls = append(calls, names)
			mu.Unlock()
		})
	}()
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		_, err := f.Save(context.Background(), "a.txt", "v")
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"a.txt"}, calls[len(calls)-1])
	mu.Unlock()

	cancel()
	require.NoError(t, <-done)
}
