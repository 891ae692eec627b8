package document

import (
	"strings"
	"unicode"
)

const (
	// ParagraphSeparator is the blank-line boundary between paragraphs.
	ParagraphSeparator = "\n\n"
	// LineSeparator splits paragraphs in fallback mode.
	LineSeparator = "\n"

	// fallbackAvgLineLen is the average line length (in runes) above which
	// text without blank lines is split on single newlines.
	fallbackAvgLineLen = 40
)

// WordNode returns a word token for text.
func WordNode(text string) Node {
	return Node{Kind: KindWord, Text: text, Key: strings.ToLower(text)}
}

// TokenizeParagraph splits one paragraph's text into word, whitespace and
// line-break tokens. Whitespace runs are kept verbatim. Text without tokens
// yields the empty-line placeholder.
func TokenizeParagraph(text string) []Node {
	if text == "" {
		return []Node{{Kind: KindEmpty}}
	}

	var (
		out   []Node
		run   strings.Builder
		space bool
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		if space {
			out = append(out, Node{Kind: KindSpace, Text: run.String()})
		} else {
			out = append(out, WordNode(run.String()))
		}
		run.Reset()
	}

	for _, r := range text {
		if r == '\n' {
			flush()
			out = append(out, Node{Kind: KindBreak, Text: "\n"})
			continue
		}
		isSpace := unicode.IsSpace(r)
		if run.Len() > 0 && isSpace != space {
			flush()
		}
		space = isSpace
		run.WriteRune(r)
	}
	flush()
	return out
}

// SplitParagraphs splits canonical text into paragraph texts and reports the
// separator used. Blank lines separate paragraphs; text without blank lines
// whose average line length exceeds 40 runes is split on every newline.
func SplitParagraphs(text string) ([]string, string) {
	if strings.Contains(text, ParagraphSeparator) {
		return strings.Split(text, ParagraphSeparator), ParagraphSeparator
	}
	lines := strings.Split(text, LineSeparator)
	if len(lines) > 1 && averageLineLen(lines) > fallbackAvgLineLen {
		return lines, LineSeparator
	}
	return []string{text}, ParagraphSeparator
}

func averageLineLen(lines []string) float64 {
	if len(lines) == 0 {
		return 0
	}
	total := 0
	for _, l := range lines {
		total += runeLen(l)
	}
	return float64(total) / float64(len(lines))
}

func isWhitespaceOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
