// Package overlay owns the single inline prediction shown after the cursor
// and its accept/dismiss state machine.
//
// The prediction lives in the document as one ephemeral node: it never
// contributes to canonical text or offsets, and it is removed in one step.
package overlay

import (
	"errors"
	"strings"
	"unicode"

	"github.com/iw2rmb/quill/document"
)

var (
	ErrEmptyPrediction = errors.New("overlay: empty prediction")
	ErrNotShown        = errors.New("overlay: no prediction shown")
)

// DefaultMinRemainder is the shortest remainder (in runes) kept on screen
// after a partial accept.
const DefaultMinRemainder = 5

type State int

const (
	Hidden State = iota
	Shown
)

func (s State) String() string {
	if s == Shown {
		return "shown"
	}
	return "hidden"
}

// Prediction is the live suggestion.
type Prediction struct {
	Text string
	// Origin is the canonical cursor offset the prediction belongs to.
	Origin   int
	Metadata map[string]any
}

type Overlay struct {
	minRemainder int
	state        State
	pred         Prediction
}

// New returns a hidden overlay. minRemainder <= 0 selects
// DefaultMinRemainder.
func New(minRemainder int) *Overlay {
	if minRemainder <= 0 {
		minRemainder = DefaultMinRemainder
	}
	return &Overlay{minRemainder: minRemainder}
}

func (o *Overlay) State() State { return o.state }

// Prediction returns the shown prediction.
func (o *Overlay) Prediction() (Prediction, bool) {
	if o.state != Shown {
		return Prediction{}, false
	}
	return o.pred, true
}

// Show inserts text at the cursor as the overlay node, replacing any
// previous one. The origin is the cursor offset at the time of the call.
func (o *Overlay) Show(doc *document.Document, text string, meta map[string]any) error {
	text = sanitize(text)
	if text == "" {
		return ErrEmptyPrediction
	}
	err := doc.Mutate(func() error {
		doc.RemoveKind(document.KindOverlay)
		cursor := doc.CursorOffset()
		doc.InsertNode(doc.Cursor(), overlayNode(text))
		o.state = Shown
		o.pred = Prediction{Text: text, Origin: cursor, Metadata: meta}
		return nil
	})
	if err != nil {
		o.reset()
	}
	return err
}

// AcceptFull inserts the whole prediction as canonical text at the overlay
// position and hides the overlay.
func (o *Overlay) AcceptFull(doc *document.Document) error {
	if o.state != Shown {
		return ErrNotShown
	}
	text := o.pred.Text
	err := doc.Mutate(func() error {
		at := o.take(doc)
		doc.Replace(at, at, text)
		return nil
	})
	o.reset()
	return err
}

// AcceptPartial inserts the leading word of the prediction, with the
// whitespace around it, as canonical text. A remainder of at least the
// minimum length stays shown. A shorter one is discarded, the overlay hides
// and more reports that a new prediction should be requested.
func (o *Overlay) AcceptPartial(doc *document.Document) (more bool, err error) {
	if o.state != Shown {
		return false, ErrNotShown
	}
	head, rest := SplitLeadingWord(o.pred.Text)
	keep := len([]rune(rest)) >= o.minRemainder

	err = doc.Mutate(func() error {
		at := o.take(doc)
		doc.Replace(at, at, head)
		if keep {
			doc.InsertNode(doc.Cursor(), overlayNode(rest))
			o.pred.Text = rest
			o.pred.Origin = doc.CursorOffset()
		}
		return nil
	})
	if err != nil || !keep {
		o.reset()
		return err == nil, err
	}
	return false, nil
}

// Dismiss removes the overlay node, if any, and hides the overlay. It
// reports whether a prediction was shown.
func (o *Overlay) Dismiss(doc *document.Document) bool {
	was := o.state == Shown
	doc.RemoveKind(document.KindOverlay)
	o.reset()
	return was
}

// Sync hides the overlay when its node vanished from doc, for example after
// an undo rebuilt the tree.
func (o *Overlay) Sync(doc *document.Document) {
	if o.state == Shown && !doc.HasKind(document.KindOverlay) {
		o.reset()
	}
}

// take removes the overlay node and returns its canonical offset. With no
// node present it falls back to the cursor.
func (o *Overlay) take(doc *document.Document) int {
	at := doc.CursorOffset()
	if p, ok := doc.FindKind(document.KindOverlay); ok {
		at = doc.Offset(p)
	}
	doc.RemoveKind(document.KindOverlay)
	return at
}

func (o *Overlay) reset() {
	o.state = Hidden
	o.pred = Prediction{}
}

func overlayNode(text string) document.Node {
	return document.Node{Kind: document.KindOverlay, Text: text}
}

// SplitLeadingWord splits text after its first word: head is any leading
// whitespace, the word and the whitespace run that follows it; rest is
// everything after.
//
//	"hello world today" -> "hello ", "world today"
//	" and then"         -> " and ", "then"
func SplitLeadingWord(text string) (head, rest string) {
	rs := []rune(text)
	i := 0
	for i < len(rs) && unicode.IsSpace(rs[i]) {
		i++
	}
	for i < len(rs) && !unicode.IsSpace(rs[i]) {
		i++
	}
	for i < len(rs) && unicode.IsSpace(rs[i]) {
		i++
	}
	return string(rs[:i]), string(rs[i:])
}

// sanitize flattens text onto one line.
func sanitize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, text)
}
