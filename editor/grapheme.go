package editor

import (
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	graphemeutil "github.com/iw2rmb/quill/internal/grapheme"
)

// cluster is one grapheme of canonical text at rune offset Offset.
type cluster struct {
	Text   string
	Offset int
	Runes  int
}

func (c cluster) newline() bool { return strings.ContainsRune(c.Text, '\n') }

func splitClusters(text string, base int) []cluster {
	parts := graphemeutil.Split(text)
	out := make([]cluster, 0, len(parts))
	off := base
	for _, p := range parts {
		n := utf8.RuneCountInString(p)
		out = append(out, cluster{Text: p, Offset: off, Runes: n})
		off += n
	}
	return out
}

func graphemeCellWidth(text string, visualCol, tabWidth int) int {
	if text == "\t" {
		return tabAdvance(visualCol, tabWidth)
	}

	w := runewidth.StringWidth(text)
	if w < 0 {
		w = 0
	}
	if w == 0 {
		fallback := uniseg.StringWidth(text)
		if fallback > w {
			w = fallback
		}
	}
	return w
}

func tabAdvance(visualCol, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	return tabWidth - visualCol%tabWidth
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
