// Package store holds the assistant server's persistence: a directory of
// text files, the YAML settings file and the SQLite user dictionary. An
// HTTP client for the server's REST API is provided for remote editors.
package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iw2rmb/quill/protocol"
)

// ErrNotFound is returned for a file that does not exist.
var ErrNotFound = errors.New("store: not found")

// FileInfo describes one stored file.
type FileInfo struct {
	Filename string    `json:"filename"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// FileStats are text statistics of one file.
type FileStats struct {
	FileInfo
	Lines              int `json:"lines"`
	Words              int `json:"words"`
	Characters         int `json:"characters"`
	CharactersNoSpaces int `json:"characters_no_spaces"`
	Paragraphs         int `json:"paragraphs"`
	EmptyLines         int `json:"empty_lines"`
}

// Files stores .txt files flat in one directory.
type Files struct {
	dir string
}

// NewFiles returns a store rooted at dir, creating it when missing.
func NewFiles(dir string) (*Files, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create files dir: %w", err)
	}
	return &Files{dir: dir}, nil
}

func (f *Files) Dir() string { return f.dir }

func (f *Files) path(name string) (string, error) {
	if err := protocol.ValidFilename(name); err != nil {
		return "", err
	}
	return filepath.Join(f.dir, name), nil
}

// List returns the stored files sorted by name.
func (f *Files) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	var out []FileInfo
	for _, e := range entries {
		if e.IsDir() || protocol.ValidFilename(e.Name()) != nil {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, FileInfo{Filename: e.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Filename < out[j].Filename })
	return out, ctx.Err()
}

// Names returns the stored file names sorted.
func (f *Files) Names(ctx context.Context) ([]string, error) {
	infos, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(infos))
	for i, fi := range infos {
		names[i] = fi.Filename
	}
	return names, nil
}

func (f *Files) Load(ctx context.Context, name string) (string, error) {
	p, err := f.path(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

// Save writes content atomically through a temporary file.
func (f *Files) Save(ctx context.Context, name, content string) (FileInfo, error) {
	p, err := f.path(name)
	if err != nil {
		return FileInfo{}, err
	}
	tmp, err := os.CreateTemp(f.dir, ".quill-*")
	if err != nil {
		return FileInfo{}, fmt.Errorf("save %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return FileInfo{}, fmt.Errorf("save %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return FileInfo{}, fmt.Errorf("save %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return FileInfo{}, fmt.Errorf("save %s: %w", name, err)
	}
	info, err := os.Stat(p)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", name, err)
	}
	return FileInfo{Filename: name, Size: info.Size(), Modified: info.ModTime()}, nil
}

func (f *Files) Delete(ctx context.Context, name string) error {
	p, err := f.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func (f *Files) Stats(ctx context.Context, name string) (FileStats, error) {
	content, err := f.Load(ctx, name)
	if err != nil {
		return FileStats{}, err
	}
	p, _ := f.path(name)
	info, err := os.Stat(p)
	if err != nil {
		return FileStats{}, fmt.Errorf("stat %s: %w", name, err)
	}
	st := TextStats(content)
	st.FileInfo = FileInfo{Filename: name, Size: info.Size(), Modified: info.ModTime()}
	return st, nil
}

// TextStats counts lines, words and characters of content. A paragraph is
// a non-blank line.
func TextStats(content string) FileStats {
	lines := strings.Split(content, "\n")
	st := FileStats{
		Lines:              len(lines),
		Words:              len(strings.Fields(content)),
		Characters:         utf8.RuneCountInString(content),
		CharactersNoSpaces: utf8.RuneCountInString(strings.ReplaceAll(content, " ", "")),
	}
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			st.EmptyLines++
		} else {
			st.Paragraphs++
		}
	}
	return st
}
