package protocol

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrInvalidWord reports a dictionary word that fails local validation.
var ErrInvalidWord = errors.New("protocol: invalid dictionary word")

// MaxWordLen bounds dictionary words, in runes.
const MaxWordLen = 64

var wordRE = regexp.MustCompile(`^\p{L}[\p{L}'\-]*$`)

// ValidWord checks a dictionary word: a letter followed by letters,
// apostrophes or hyphens.
func ValidWord(w string) error {
	if w == "" || utf8.RuneCountInString(w) > MaxWordLen || !wordRE.MatchString(w) {
		return fmt.Errorf("%w: %q", ErrInvalidWord, w)
	}
	return nil
}

// ValidFilename checks a file store name: a plain .txt base name.
func ValidFilename(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty filename", ErrInvalidMessage)
	case strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: filename %q is not a plain name", ErrInvalidMessage, name)
	case !strings.HasSuffix(name, ".txt"):
		return fmt.Errorf("%w: only .txt files are supported", ErrInvalidMessage)
	}
	return nil
}

// Validate rejects malformed outgoing messages before they are sent.
func Validate(m Message) error {
	switch v := m.(type) {
	case PredictionRequest:
		md := v.Metadata
		switch {
		case v.Cursor < 0:
			return fmt.Errorf("%w: negative cursor %d", ErrInvalidMessage, v.Cursor)
		case md.OriginalCursorPosition < 0:
			return fmt.Errorf("%w: negative original cursor %d", ErrInvalidMessage, md.OriginalCursorPosition)
		case md.TotalParagraphs < 1 || md.ParagraphIndex < 0 || md.ParagraphIndex >= md.TotalParagraphs:
			return fmt.Errorf("%w: paragraph %d of %d", ErrInvalidMessage, md.ParagraphIndex, md.TotalParagraphs)
		case v.Cursor > utf8.RuneCountInString(v.CurrentText):
			return fmt.Errorf("%w: cursor %d beyond paragraph", ErrInvalidMessage, v.Cursor)
		}
	case SpellCheckRequest:
		if strings.TrimSpace(v.Language) == "" {
			return fmt.Errorf("%w: empty language", ErrInvalidMessage)
		}
	case Edit:
		if err := ValidFilename(v.Filename); err != nil {
			return err
		}
		if v.CursorPosition < 0 {
			return fmt.Errorf("%w: negative cursor %d", ErrInvalidMessage, v.CursorPosition)
		}
	case AddWord:
		return ValidWord(v.Word)
	case RemoveWord:
		return ValidWord(v.Word)
	case nil:
		return fmt.Errorf("%w: nil message", ErrInvalidMessage)
	}
	return nil
}
