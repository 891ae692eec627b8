// Package grapheme classifies user-perceived characters for tokenization,
// word-boundary detection and rendering.
package grapheme

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Split returns grapheme clusters for text in visual order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, utf8.RuneCountInString(text))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Count returns the number of grapheme clusters in text.
func Count(text string) int {
	if text == "" {
		return 0
	}
	return uniseg.GraphemeClusterCount(text)
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// IsPunct reports whether all runes in cluster are Unicode punctuation.
func IsPunct(cluster string) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !unicode.IsPunct(r) {
			return false
		}
	}
	return true
}

// IsWord reports whether cluster belongs to the word class: its base rune is
// a letter, a digit or an underscore. Combining marks ride on their base.
func IsWord(cluster string) bool {
	r, _ := utf8.DecodeRuneInString(cluster)
	if r == utf8.RuneError {
		return false
	}
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsWordBoundary reports whether the rune offset off in text sits at a word
// boundary: the start or end of text, or next to a non-word cluster
// (whitespace, punctuation). Offsets inside a cluster are never boundaries.
func IsWordBoundary(text string, off int) bool {
	if off <= 0 {
		return true
	}
	total := utf8.RuneCountInString(text)
	if off >= total {
		return true
	}

	g := uniseg.NewGraphemes(text)
	pos := 0
	prev := ""
	for g.Next() {
		cluster := g.Str()
		if pos == off {
			return !IsWord(prev) || !IsWord(cluster)
		}
		next := pos + utf8.RuneCountInString(cluster)
		if off < next {
			return false
		}
		pos = next
		prev = cluster
	}
	return true
}

// PrevBoundary returns the rune offset of the grapheme cluster boundary
// before off. It returns 0 when off is at or before the start.
func PrevBoundary(text string, off int) int {
	if off <= 0 {
		return 0
	}
	g := uniseg.NewGraphemes(text)
	pos := 0
	for g.Next() {
		next := pos + utf8.RuneCountInString(g.Str())
		if next >= off {
			return pos
		}
		pos = next
	}
	return pos
}

// NextBoundary returns the rune offset of the grapheme cluster boundary
// after off, or the rune length of text.
func NextBoundary(text string, off int) int {
	if off < 0 {
		off = 0
	}
	g := uniseg.NewGraphemes(text)
	pos := 0
	for g.Next() {
		pos += utf8.RuneCountInString(g.Str())
		if pos > off {
			return pos
		}
	}
	return pos
}
