// Package engine orchestrates the editor: it routes input into the
// document, debounces predict, spell-check, save and normalize tasks,
// sends requests through the transport and applies responses after
// checking that they still match the document.
//
// An Engine is owned by one goroutine. The Bubble Tea binder drives it from
// its Update loop; Loop drives it headlessly. Nothing inside the engine
// blocks or spawns goroutines.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/iw2rmb/quill/document"
	"github.com/iw2rmb/quill/internal/grapheme"
	"github.com/iw2rmb/quill/normalize"
	"github.com/iw2rmb/quill/overlay"
	"github.com/iw2rmb/quill/protocol"
	"github.com/iw2rmb/quill/reconcile"
	"github.com/iw2rmb/quill/schedule"
)

var (
	// ErrNoDocument is returned by operations that need an open document.
	ErrNoDocument = errors.New("engine: no document open")
	// ErrNotConnected is returned when no sender is configured.
	ErrNotConnected = errors.New("engine: not connected")
)

// Sender is the outgoing half of the transport.
type Sender interface {
	Send(protocol.Message) error
	Connected() bool
}

// FileStore loads documents by name.
type FileStore interface {
	Load(ctx context.Context, name string) (string, error)
	List(ctx context.Context) ([]string, error)
}

type Deps struct {
	Sender   Sender
	Files    FileStore
	Settings func() Settings
	Clock    schedule.Clock
	Logger   *slog.Logger
}

type Engine struct {
	cfg      Config
	log      *slog.Logger
	sched    *schedule.Scheduler
	send     Sender
	files    FileStore
	settings func() Settings

	doc      *document.Document
	filename string
	ov       *overlay.Overlay
	state    State
	hit      reconcile.Hit

	// spellStructure is the document structure the outstanding spell
	// request was built against; its line indices are paragraph ordinals
	// of that structure only.
	spellStructure uint64

	savedDigest   [32]byte
	pendingDigest [32]byte
	savePending   bool

	notice string
	known  []string
	health protocol.HealthResponse
}

func New(cfg Config, deps Deps) *Engine {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	settings := deps.Settings
	if settings == nil {
		settings = DefaultSettings
	}
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:      cfg,
		log:      log.With("component", "engine"),
		sched:    schedule.New(deps.Clock),
		send:     deps.Sender,
		files:    deps.Files,
		settings: settings,
		ov:       overlay.New(cfg.MinRemainder),
	}
}

func (e *Engine) Config() Config                    { return e.cfg }
func (e *Engine) State() State                      { return e.state }
func (e *Engine) Document() *document.Document      { return e.doc }
func (e *Engine) Filename() string                  { return e.filename }
func (e *Engine) Overlay() *overlay.Overlay         { return e.ov }
func (e *Engine) Scheduler() *schedule.Scheduler    { return e.sched }
func (e *Engine) KnownFiles() []string              { return append([]string(nil), e.known...) }
func (e *Engine) ActionsHit() (reconcile.Hit, bool) { return e.hit, e.state == Actions }

// Notice returns the latest user-facing message and clears it.
func (e *Engine) Notice() string {
	n := e.notice
	e.notice = ""
	return n
}

// Connected reports whether the transport is up.
func (e *Engine) Connected() bool {
	return e.send != nil && e.send.Connected()
}

// Open installs text as the current document under filename. The text is
// treated as already saved.
func (e *Engine) Open(filename, text string) {
	e.doc = document.New(text, document.Options{HistoryLimit: e.cfg.HistoryLimit})
	e.filename = filename
	e.ov = overlay.New(e.cfg.MinRemainder)
	e.state = Idle
	e.hit = reconcile.Hit{}
	e.spellStructure = e.doc.StructureVersion()
	e.savedDigest = digest(text)
	e.savePending = false
	for _, k := range []schedule.Kind{schedule.Save, schedule.Predict, schedule.Normalize, schedule.TypingIdle} {
		e.sched.Cancel(k)
	}
	e.sched.Arm(schedule.SpellCheck, e.cfg.SpellCheckDelay)
}

// Load opens a document from the file store.
func (e *Engine) Load(ctx context.Context, name string) error {
	if e.files == nil {
		return fmt.Errorf("load %s: no file store", name)
	}
	if err := protocol.ValidFilename(name); err != nil {
		return err
	}
	text, err := e.files.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	e.Open(name, text)
	e.log.Info("document opened", "file", name, "paragraphs", e.doc.ParagraphCount())
	return nil
}

// RefreshFiles reloads the file list from the store.
func (e *Engine) RefreshFiles(ctx context.Context) ([]string, error) {
	if e.files == nil {
		return nil, nil
	}
	names, err := e.files.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	e.known = names
	return names, nil
}

// NextDeadline returns when the next debounced task is due.
func (e *Engine) NextDeadline() (time.Time, bool) { return e.sched.Next() }

// Tick runs every task due at now.
func (e *Engine) Tick(now time.Time) {
	for _, t := range e.sched.RunDue(now) {
		e.run(t.Kind)
	}
}

func (e *Engine) run(k schedule.Kind) {
	switch k {
	case schedule.TypingIdle:
		e.fire(EvTypingIdle)
	case schedule.Save:
		e.save()
	case schedule.Predict:
		e.predict()
	case schedule.SpellCheck:
		e.spellCheck()
	case schedule.Normalize:
		e.normalize()
	}
}

func (e *Engine) fire(ev Event) {
	next, ok := Next(e.state, ev)
	if !ok {
		e.log.Debug("event ignored", "state", e.state, "event", ev)
		return
	}
	if next != e.state {
		e.log.Debug("state changed", "from", e.state, "to", next, "event", ev)
	}
	e.state = next
}

// typing reports whether a typing burst is in progress.
func (e *Engine) typing() bool { return e.sched.Armed(schedule.TypingIdle) }

// edit runs one user edit. A shown prediction is dismissed first; the edit
// runs under Mutate so a failure leaves the document untouched.
func (e *Engine) edit(op string, fn func(d *document.Document) bool) bool {
	if e.doc == nil {
		return false
	}
	e.dismissOverlay()

	changed := false
	err := e.doc.Mutate(func() error {
		changed = fn(e.doc)
		return nil
	})
	if err != nil {
		e.log.Error("edit failed", "op", op, "error", err)
		return false
	}
	if changed {
		e.afterEdit()
	}
	return changed
}

// afterEdit re-arms every debounced task. The delays depend on whether a
// typing burst was already in progress.
func (e *Engine) afterEdit() {
	inBurst := e.typing()
	if e.state == Actions {
		e.fire(EvCloseActions)
	}
	e.fire(EvEdit)
	e.sched.Arm(schedule.TypingIdle, e.cfg.TypingQuiet)
	e.sched.Arm(schedule.Save, e.cfg.SaveDelay)
	e.sched.Arm(schedule.SpellCheck, e.cfg.SpellCheckDelay)

	if inBurst {
		e.sched.Arm(schedule.Normalize, e.cfg.NormalizeTypingDelay)
	} else {
		e.sched.Arm(schedule.Normalize, e.cfg.NormalizeIdleDelay)
	}
	e.armPredict(inBurst)
}

func (e *Engine) armPredict(inBurst bool) {
	if !e.atWordBoundary() {
		e.sched.Cancel(schedule.Predict)
		return
	}
	if inBurst {
		e.sched.Arm(schedule.Predict, e.cfg.PredictTypingDelay)
	} else {
		e.sched.Arm(schedule.Predict, e.cfg.PredictIdleDelay)
	}
}

func (e *Engine) atWordBoundary() bool {
	return grapheme.IsWordBoundary(e.doc.Text(), e.doc.CursorOffset())
}

func (e *Engine) dismissOverlay() {
	if e.ov.Dismiss(e.doc) {
		e.fire(EvHide)
	}
}

func (e *Engine) InsertText(s string) bool {
	return e.edit("insert", func(d *document.Document) bool { return d.Insert(s) })
}

func (e *Engine) InsertParagraph() bool {
	return e.edit("paragraph", func(d *document.Document) bool { return d.InsertParagraph() })
}

func (e *Engine) InsertLineBreak() bool {
	return e.edit("linebreak", func(d *document.Document) bool { return d.InsertLineBreak() })
}

func (e *Engine) DeleteBackward() bool {
	return e.edit("backspace", func(d *document.Document) bool { return d.DeleteBackward() })
}

func (e *Engine) DeleteForward() bool {
	return e.edit("delete", func(d *document.Document) bool { return d.DeleteForward() })
}

func (e *Engine) Undo() bool {
	return e.edit("undo", func(d *document.Document) bool { return d.Undo() })
}

func (e *Engine) Redo() bool {
	return e.edit("redo", func(d *document.Document) bool { return d.Redo() })
}

// Move navigates. Navigation dismisses a shown prediction and closes the
// actions menu.
func (e *Engine) Move(m document.Move) {
	if e.doc == nil {
		return
	}
	e.dismissOverlay()
	if e.state == Actions {
		e.fire(EvCloseActions)
	}
	e.doc.Move(m)
	if e.doc.HasSelection() {
		e.sched.Cancel(schedule.Predict)
	}
}

// Select sets a selection; a non-empty selection dismisses the prediction.
func (e *Engine) Select(anchor, focus int) {
	if e.doc == nil {
		return
	}
	e.dismissOverlay()
	e.doc.Select(anchor, focus)
	if e.doc.HasSelection() {
		e.sched.Cancel(schedule.Predict)
	}
}

// Dismiss hides the shown prediction.
func (e *Engine) Dismiss() bool {
	if e.doc == nil {
		return false
	}
	was := e.ov.Dismiss(e.doc)
	if was {
		e.fire(EvHide)
	}
	return was
}

// AcceptFull inserts the whole shown prediction.
func (e *Engine) AcceptFull() error {
	if e.doc == nil {
		return ErrNoDocument
	}
	if err := e.ov.AcceptFull(e.doc); err != nil {
		return err
	}
	e.fire(EvHide)
	e.afterAccept()
	e.armPredict(false)
	return nil
}

// AcceptPartial inserts the next word of the shown prediction. When the
// remainder is too short a fresh prediction is scheduled.
func (e *Engine) AcceptPartial() error {
	if e.doc == nil {
		return ErrNoDocument
	}
	more, err := e.ov.AcceptPartial(e.doc)
	if err != nil {
		return err
	}
	e.afterAccept()
	if e.ov.State() == overlay.Hidden {
		e.fire(EvHide)
	}
	if more {
		e.armPredict(false)
	}
	return nil
}

// afterAccept arms the tasks that follow a canonical change made by an
// accept. Typing state is not entered.
func (e *Engine) afterAccept() {
	e.sched.Arm(schedule.Save, e.cfg.SaveDelay)
	e.sched.Arm(schedule.SpellCheck, e.cfg.SpellCheckDelay)
	e.sched.Arm(schedule.Normalize, e.cfg.NormalizeIdleDelay)
}

// OpenActions opens the spell actions menu for the mark under the cursor.
func (e *Engine) OpenActions() (reconcile.Hit, bool) {
	if e.doc == nil {
		return reconcile.Hit{}, false
	}
	hit, ok := reconcile.MarkAt(e.doc, e.doc.CursorOffset())
	if !ok {
		return reconcile.Hit{}, false
	}
	e.dismissOverlay()
	e.hit = hit
	e.fire(EvOpenActions)
	return hit, true
}

func (e *Engine) CloseActions() {
	e.hit = reconcile.Hit{}
	e.fire(EvCloseActions)
}

// ApplySuggestion replaces the word under the open actions menu with s.
func (e *Engine) ApplySuggestion(s string) bool {
	if e.state != Actions || e.doc == nil {
		return false
	}
	hit := e.hit
	e.CloseActions()
	return e.edit("suggestion", func(d *document.Document) bool {
		return d.Replace(hit.Start, hit.End, s)
	})
}

// AddMarkedWord adds the word under the open actions menu to the
// dictionary.
func (e *Engine) AddMarkedWord() error {
	if e.state != Actions {
		return nil
	}
	word := e.hit.Mark.Word
	e.CloseActions()
	return e.AddWord(word)
}

// AddWord validates w locally and sends add_word. Invalid words never
// leave the editor.
func (e *Engine) AddWord(w string) error {
	return e.sendWord(protocol.AddWord{Word: w}, w)
}

func (e *Engine) RemoveWord(w string) error {
	return e.sendWord(protocol.RemoveWord{Word: w}, w)
}

func (e *Engine) sendWord(m protocol.Message, w string) error {
	if err := protocol.ValidWord(w); err != nil {
		e.notice = fmt.Sprintf("%q is not a valid dictionary word", w)
		e.log.Warn("dictionary word rejected", "word", w)
		return err
	}
	return e.transmit(m)
}

// SaveNow saves immediately instead of waiting for the debounce.
func (e *Engine) SaveNow() {
	e.sched.Cancel(schedule.Save)
	e.save()
}

// Dirty reports whether the document differs from the last acknowledged
// save.
func (e *Engine) Dirty() bool {
	return e.doc != nil && digest(e.doc.Text()) != e.savedDigest
}

func (e *Engine) save() {
	if e.doc == nil || e.filename == "" {
		return
	}
	content := e.doc.Text()
	sum := digest(content)
	if sum == e.savedDigest {
		e.log.Debug("save skipped, content unchanged", "file", e.filename)
		return
	}
	err := e.transmit(protocol.Edit{
		Filename:       e.filename,
		Content:        content,
		CursorPosition: e.doc.CursorOffset(),
	})
	if err != nil {
		return
	}
	e.pendingDigest = sum
	e.savePending = true
}

func (e *Engine) predict() {
	if e.doc == nil || !e.Connected() {
		return
	}
	st := e.settings()
	if !st.PredictionsEnabled || e.doc.HasSelection() || e.state == Actions {
		return
	}
	if e.ov.State() == overlay.Shown {
		return
	}
	if !e.atWordBoundary() {
		e.dismissOverlay()
		return
	}

	text := e.doc.Text()
	cursor := e.doc.CursorOffset()
	if st.PredictionTriggerLength > 0 {
		before := strings.TrimSpace(string([]rune(text)[:cursor]))
		if len([]rune(before)) < st.PredictionTriggerLength {
			return
		}
	}

	ctx := document.ParagraphContext(text, e.doc.Separator(), cursor)
	_ = e.transmit(protocol.PredictionRequest{
		PrevContext:  ctx.PrevContext,
		CurrentText:  ctx.CurrentText,
		AfterContext: ctx.AfterContext,
		Cursor:       ctx.RelativeCursor,
		Metadata: protocol.PredictionMetadata{
			ParagraphIndex:         ctx.ParagraphIndex,
			TotalParagraphs:        ctx.TotalParagraphs,
			OriginalCursorPosition: cursor,
		},
	})
}

func (e *Engine) spellCheck() {
	if e.doc == nil || !e.Connected() {
		return
	}
	st := e.settings()
	if !st.SpellCheckEnabled {
		return
	}
	if e.ov.State() == overlay.Shown {
		e.sched.Arm(schedule.SpellCheck, e.cfg.SpellCheckDelay)
		return
	}
	if e.transmit(protocol.SpellCheckRequest{
		Lines:    SpellLines(e.doc),
		Language: st.Language,
	}) == nil {
		e.spellStructure = e.doc.StructureVersion()
	}
}

// SpellLines returns one line per paragraph with internal line breaks
// flattened to spaces, so that line indices equal paragraph indices.
func SpellLines(d *document.Document) []string {
	lines := make([]string, d.ParagraphCount())
	for i := range lines {
		lines[i] = strings.ReplaceAll(d.ParagraphText(i), "\n", " ")
	}
	return lines
}

func (e *Engine) normalize() {
	if e.doc == nil {
		return
	}
	if e.typing() || e.ov.State() == overlay.Shown {
		e.sched.Arm(schedule.Normalize, e.cfg.NormalizeTypingDelay)
		return
	}
	res, err := normalize.Normalize(e.doc)
	if err != nil {
		e.log.Error("normalize failed", "error", err)
		return
	}
	if res.Changed() {
		e.log.Debug("paragraphs normalized", "paragraphs", res.Paragraphs)
	}
}

// transmit sends m, logging failures by kind.
func (e *Engine) transmit(m protocol.Message) error {
	if e.send == nil {
		return ErrNotConnected
	}
	err := e.send.Send(m)
	switch {
	case err == nil:
	case errors.Is(err, protocol.ErrInvalidMessage), errors.Is(err, protocol.ErrInvalidWord):
		e.log.Warn("outgoing message rejected", "type", m.MessageType(), "error", err)
	default:
		e.log.Debug("send failed", "type", m.MessageType(), "error", err)
	}
	return err
}

func digest(s string) [32]byte { return blake3.Sum256([]byte(s)) }
