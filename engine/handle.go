package engine

import (
	"fmt"

	"github.com/iw2rmb/quill/overlay"
	"github.com/iw2rmb/quill/protocol"
	"github.com/iw2rmb/quill/reconcile"
	"github.com/iw2rmb/quill/schedule"
)

// Handle applies one message received from the server.
func (e *Engine) Handle(m protocol.Message) {
	switch m := m.(type) {
	case protocol.PredictionResponse:
		e.onPrediction(m)
	case protocol.SpellCheckResponse:
		e.onSpellCheck(m)
	case protocol.EditResponse:
		e.onSaved(m)
	case protocol.DictionaryUpdated:
		e.onDictionary(m)
	case protocol.ConnectionStatus:
		e.onConnection(m)
	case protocol.FilesChanged:
		e.known = append([]string(nil), m.Files...)
	case protocol.HealthResponse:
		e.health = m
	case protocol.Error:
		e.log.Warn("server error", "message", m.Message, "error", m.Error)
		e.notice = m.Message
	default:
		e.log.Debug("message ignored", "type", m.MessageType())
	}
}

// Health returns the last health report received.
func (e *Engine) Health() protocol.HealthResponse { return e.health }

// Stale reports whether a response computed at cursor ref no longer fits
// the current cursor cur.
func Stale(ref, cur, tolerance int) bool {
	d := cur - ref
	if d < 0 {
		d = -d
	}
	return d > tolerance
}

func (e *Engine) onPrediction(m protocol.PredictionResponse) {
	if e.doc == nil || m.Prediction == "" {
		return
	}
	ref := m.Metadata.OriginalCursorPosition
	cur := e.doc.CursorOffset()
	if Stale(ref, cur, e.cfg.StaleTolerance) {
		e.log.Debug("stale prediction discarded", "ref", ref, "cursor", cur, "tolerance", e.cfg.StaleTolerance)
		return
	}
	if e.state == Actions || e.doc.HasSelection() || !e.settings().PredictionsEnabled {
		return
	}
	if !e.atWordBoundary() {
		e.dismissOverlay()
		return
	}

	meta := map[string]any{
		"paragraph_index":          m.Metadata.ParagraphIndex,
		"total_paragraphs":         m.Metadata.TotalParagraphs,
		"original_cursor_position": ref,
	}
	if err := e.ov.Show(e.doc, m.Prediction, meta); err != nil {
		e.log.Debug("prediction not shown", "error", err)
		return
	}
	e.fire(EvShow)
}

func (e *Engine) onSpellCheck(m protocol.SpellCheckResponse) {
	if e.doc == nil {
		return
	}
	if !m.Success {
		e.log.Warn("spell check failed", "error", m.Error)
		return
	}
	if sv := e.doc.StructureVersion(); sv != e.spellStructure {
		e.log.Debug("discarding spell check for an older paragraph structure",
			"requested", e.spellStructure, "current", sv)
		e.sched.Arm(schedule.SpellCheck, e.cfg.SpellCheckDelay)
		return
	}
	if e.typing() || e.ov.State() == overlay.Shown {
		e.sched.Arm(schedule.SpellCheck, e.cfg.SpellCheckDelay)
		return
	}

	errs := make(map[int][]reconcile.SpellError, len(m.Errors))
	for i, list := range m.Errors {
		for _, se := range list {
			errs[i] = append(errs[i], reconcile.SpellError{Word: se.Word, Suggestions: se.Suggestions})
		}
	}
	res, err := reconcile.Apply(e.doc, errs, reconcile.Options{Logger: e.log})
	if err != nil {
		e.log.Error("spell highlights not applied", "error", err)
		return
	}
	e.log.Debug("spell highlights applied", "highlighted", res.Highlighted, "total", res.Total, "missing", res.Missing)
}

func (e *Engine) onSaved(m protocol.EditResponse) {
	if !m.Success {
		e.savePending = false
		e.notice = fmt.Sprintf("save failed: %s", m.Error)
		e.log.Warn("save failed", "file", m.Filename, "error", m.Error)
		e.sched.Arm(schedule.Save, e.cfg.SaveDelay)
		return
	}
	if e.savePending {
		e.savedDigest = e.pendingDigest
		e.savePending = false
	}
	e.log.Debug("document saved", "file", m.Filename)
}

func (e *Engine) onDictionary(m protocol.DictionaryUpdated) {
	if !m.Success {
		e.notice = fmt.Sprintf("dictionary: %s", m.Error)
		return
	}
	e.notice = fmt.Sprintf("%q %s", m.Word, m.Action)
	e.sched.Arm(schedule.SpellCheck, e.cfg.SpellCheckDelay)
}

func (e *Engine) onConnection(m protocol.ConnectionStatus) {
	e.log.Info("connection status", "status", m.Status)
	if m.Status != "connected" {
		e.savePending = false
		return
	}
	e.sched.Arm(schedule.SpellCheck, e.cfg.SpellCheckDelay)
	if e.Dirty() {
		e.sched.Arm(schedule.Save, e.cfg.SaveDelay)
	}
}
