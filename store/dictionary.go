package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/iw2rmb/quill/protocol"
)

const dictionarySchema = `
CREATE TABLE IF NOT EXISTS words (
	word     TEXT PRIMARY KEY,
	added_at INTEGER NOT NULL
)`

// Dictionary is the user dictionary, one lowercase word per row.
type Dictionary struct {
	db *sql.DB
}

// OpenDictionary opens or creates the SQLite database at path. Use
// ":memory:" for a throwaway dictionary.
func OpenDictionary(ctx context.Context, path string) (*Dictionary, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, dictionarySchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create dictionary schema: %w", err)
	}
	return &Dictionary{db: db}, nil
}

func (d *Dictionary) Close() error { return d.db.Close() }

// Add stores w and reports whether it was new.
func (d *Dictionary) Add(ctx context.Context, w string) (bool, error) {
	if err := protocol.ValidWord(w); err != nil {
		return false, err
	}
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO words (word, added_at) VALUES (?, ?) ON CONFLICT(word) DO NOTHING`,
		strings.ToLower(w), time.Now().Unix())
	if err != nil {
		return false, fmt.Errorf("add word %q: %w", w, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Remove deletes w. Removing an unknown word returns ErrNotFound.
func (d *Dictionary) Remove(ctx context.Context, w string) error {
	if err := protocol.ValidWord(w); err != nil {
		return err
	}
	res, err := d.db.ExecContext(ctx, `DELETE FROM words WHERE word = ?`, strings.ToLower(w))
	if err != nil {
		return fmt.Errorf("remove word %q: %w", w, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, w)
	}
	return nil
}

// Words lists the dictionary in alphabetical order.
func (d *Dictionary) Words(ctx context.Context) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT word FROM words ORDER BY word`)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("list words: %w", err)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
