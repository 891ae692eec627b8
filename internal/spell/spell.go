// Package spell is the assistant server's dictionary spell checker.
//
// Words are checked against an embedded English word list plus a user
// dictionary. Suggestions are the closest known words by
// Damerau-Levenshtein distance. Results are cached per line until the user
// dictionary changes.
package spell

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	gocache "github.com/patrickmn/go-cache"

	"github.com/iw2rmb/quill/protocol"
)

// EngineName identifies this checker in responses and settings.
const EngineName = "dictionary"

const (
	// MaxDistance is the largest edit distance of a suggestion.
	MaxDistance = 2
	// MaxSuggestions bounds the suggestion list of one error.
	MaxSuggestions = 5
)

// ErrUnsupportedLanguage is returned for languages without a word list.
var ErrUnsupportedLanguage = errors.New("spell: unsupported language")

//go:embed words_en.txt
var wordsEN string

var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]+(?:'\p{L}+)*`)

type Options struct {
	// Words extends the embedded list.
	Words    []string
	CacheTTL time.Duration // default: 10m
}

type Checker struct {
	rank map[string]int // known base word -> frequency rank

	mu   sync.RWMutex
	user map[string]struct{}

	cache *gocache.Cache
}

func New(opts Options) *Checker {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	c := &Checker{
		rank:  make(map[string]int),
		user:  make(map[string]struct{}),
		cache: gocache.New(ttl, 2*ttl),
	}
	for _, w := range strings.Fields(wordsEN) {
		c.addBase(w)
	}
	for _, w := range opts.Words {
		c.addBase(w)
	}
	return c
}

func (c *Checker) addBase(w string) {
	w = strings.ToLower(w)
	if _, ok := c.rank[w]; !ok {
		c.rank[w] = len(c.rank)
	}
}

func (c *Checker) Name() string { return EngineName }

// Languages lists the languages with a word list.
func (c *Checker) Languages() []string { return []string{"en"} }

// SetUserWords replaces the user dictionary.
func (c *Checker) SetUserWords(words []string) {
	c.mu.Lock()
	c.user = make(map[string]struct{}, len(words))
	for _, w := range words {
		c.user[strings.ToLower(w)] = struct{}{}
	}
	c.mu.Unlock()
	c.cache.Flush()
}

func (c *Checker) AddWord(w string) {
	c.mu.Lock()
	c.user[strings.ToLower(w)] = struct{}{}
	c.mu.Unlock()
	c.cache.Flush()
}

func (c *Checker) RemoveWord(w string) {
	c.mu.Lock()
	delete(c.user, strings.ToLower(w))
	c.mu.Unlock()
	c.cache.Flush()
}

// Known reports whether w, compared case-insensitively, is spelled
// correctly.
func (c *Checker) Known(w string) bool {
	lw := strings.ToLower(w)
	if _, ok := c.rank[lw]; ok {
		return true
	}
	c.mu.RLock()
	_, ok := c.user[lw]
	c.mu.RUnlock()
	return ok
}

// Check returns the errors of every line that has any, keyed by line index.
func (c *Checker) Check(lines []string, language string) (map[int][]protocol.SpellError, error) {
	if !c.supports(language) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}
	out := make(map[int][]protocol.SpellError)
	for i, line := range lines {
		if errs := c.CheckLine(line); len(errs) > 0 {
			out[i] = errs
		}
	}
	return out, nil
}

func (c *Checker) supports(language string) bool {
	lang := strings.ToLower(strings.TrimSpace(language))
	return lang == "en" || strings.HasPrefix(lang, "en-") || strings.HasPrefix(lang, "en_")
}

// CheckLine returns the misspelled words of one line in order of
// appearance. Position is the rune offset of the word in the line.
func (c *Checker) CheckLine(line string) []protocol.SpellError {
	if v, ok := c.cache.Get(line); ok {
		if errs, ok := v.([]protocol.SpellError); ok {
			return errs
		}
	}

	var errs []protocol.SpellError
	for _, loc := range wordRE.FindAllStringIndex(line, -1) {
		w := line[loc[0]:loc[1]]
		if skip(w) || c.Known(w) {
			continue
		}
		errs = append(errs, protocol.SpellError{
			Word:        w,
			Position:    utf8.RuneCountInString(line[:loc[0]]),
			Suggestions: c.Suggest(w),
		})
	}
	c.cache.Set(line, errs, gocache.DefaultExpiration)
	return errs
}

// skip reports words that are never checked: single letters and tokens
// containing digits or underscores.
func skip(w string) bool {
	if utf8.RuneCountInString(w) < 2 {
		return true
	}
	for _, r := range w {
		if unicode.IsDigit(r) || r == '_' {
			return true
		}
	}
	return false
}

// Suggest returns up to MaxSuggestions known words within MaxDistance of w,
// closest first, then by frequency.
func (c *Checker) Suggest(w string) []string {
	lw := []rune(strings.ToLower(w))

	type cand struct {
		word string
		dist int
		rank int
	}
	var cands []cand
	consider := func(word string, rank int) {
		rw := []rune(word)
		if abs(len(rw)-len(lw)) > MaxDistance {
			return
		}
		if d := Distance(lw, rw); d <= MaxDistance && d > 0 {
			cands = append(cands, cand{word: word, dist: d, rank: rank})
		}
	}
	for word, rank := range c.rank {
		consider(word, rank)
	}
	c.mu.RLock()
	for word := range c.user {
		if _, ok := c.rank[word]; !ok {
			consider(word, len(c.rank))
		}
	}
	c.mu.RUnlock()

	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.dist != b.dist {
			return a.dist < b.dist
		}
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.word < b.word
	})
	if len(cands) > MaxSuggestions {
		cands = cands[:MaxSuggestions]
	}
	out := make([]string, len(cands))
	for i, cd := range cands {
		out[i] = cd.word
	}
	return out
}

// Distance is the optimal string alignment distance between a and b:
// insertions, deletions, substitutions and adjacent transpositions each
// cost one.
func Distance(a, b []rune) int {
	prev2 := make([]int, len(b)+1)
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if i > 1 && j > 1 && a[i-1] == b[j-2] && a[i-2] == b[j-1] {
				cur[j] = min(cur[j], prev2[j-2]+1)
			}
		}
		prev2, prev, cur = prev, cur, prev2
	}
	return prev[len(b)]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
