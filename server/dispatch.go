package server

import (
	"context"
	"errors"

	"github.com/iw2rmb/quill/internal/predict"
	"github.com/iw2rmb/quill/internal/spell"
	"github.com/iw2rmb/quill/protocol"
)

// learner is implemented by predictors that train on saved documents.
type learner interface {
	Learn(text string)
}

// dispatch decodes one envelope and returns the replies to send.
func (s *Server) dispatch(ctx context.Context, data []byte) []protocol.Message {
	m, err := protocol.Decode(data)
	if err != nil {
		s.log.Warn("undecodable message", "error", err)
		msg := "Invalid message"
		if errors.Is(err, protocol.ErrUnknownType) {
			msg = "Unknown message format"
		}
		return []protocol.Message{protocol.Error{Message: msg, Error: err.Error()}}
	}
	out := s.Handle(ctx, m)
	if out == nil {
		return nil
	}
	return []protocol.Message{out}
}

// Handle answers one request message. Messages that expect no reply return
// nil.
func (s *Server) Handle(ctx context.Context, m protocol.Message) protocol.Message {
	switch m := m.(type) {
	case protocol.PredictionRequest:
		return s.onPrediction(ctx, m)
	case protocol.SpellCheckRequest:
		return s.onSpellCheck(m)
	case protocol.Edit:
		return s.onEdit(ctx, m)
	case protocol.AddWord:
		return s.onAddWord(ctx, m.Word)
	case protocol.RemoveWord:
		return s.onRemoveWord(ctx, m.Word)
	case protocol.HealthRequest:
		return s.health()
	default:
		return protocol.Error{Message: "Unsupported message", Error: m.MessageType()}
	}
}

func (s *Server) onPrediction(ctx context.Context, req protocol.PredictionRequest) protocol.Message {
	resp := protocol.PredictionResponse{
		CursorPosition: req.Metadata.OriginalCursorPosition,
		Metadata:       req.Metadata,
	}
	st := s.settings.Get()
	if !st.PredictionsEnabled {
		return resp
	}
	if err := protocol.Validate(req); err != nil {
		return protocol.Error{Message: "Invalid prediction request", Error: err.Error()}
	}
	p, ok := s.predict[st.PredictionEngine]
	if !ok {
		p = s.predict[predict.FrequencyBased]
	}
	text, err := p.Predict(ctx, req)
	if err != nil {
		s.log.Warn("prediction failed", "engine", p.Name(), "error", err)
		return protocol.Error{Message: "Prediction failed", Error: err.Error()}
	}
	resp.Prediction = text
	return resp
}

func (s *Server) onSpellCheck(req protocol.SpellCheckRequest) protocol.Message {
	lang := req.Language
	if lang == "" {
		lang = s.settings.Get().SpellCheckLanguage
	}
	checker := s.speller()
	resp := protocol.SpellCheckResponse{Language: lang, Engine: checker.Name()}
	if !s.settings.Get().SpellCheckEnabled {
		resp.Success = true
		resp.Errors = map[int][]protocol.SpellError{}
		return resp
	}
	errs, err := checker.Check(req.Lines, lang)
	if err != nil {
		resp.Error = err.Error()
		return resp
	}
	resp.Success = true
	resp.Errors = errs
	return resp
}

func (s *Server) onEdit(ctx context.Context, m protocol.Edit) protocol.Message {
	if _, err := s.files.Save(ctx, m.Filename, m.Content); err != nil {
		s.log.Warn("save failed", "file", m.Filename, "error", err)
		return protocol.EditResponse{Filename: m.Filename, Error: err.Error()}
	}
	for _, p := range s.predict {
		if l, ok := p.(learner); ok {
			l.Learn(m.Content)
		}
	}
	return protocol.EditResponse{Success: true, Filename: m.Filename}
}

func (s *Server) onAddWord(ctx context.Context, w string) protocol.Message {
	if _, err := s.dict.Add(ctx, w); err != nil {
		return protocol.DictionaryUpdated{Word: w, Action: "added", Error: err.Error()}
	}
	for _, e := range s.spellers {
		e.AddWord(w)
	}
	return protocol.DictionaryUpdated{Success: true, Word: w, Action: "added"}
}

func (s *Server) onRemoveWord(ctx context.Context, w string) protocol.Message {
	if err := s.dict.Remove(ctx, w); err != nil {
		return protocol.DictionaryUpdated{Word: w, Action: "removed", Error: err.Error()}
	}
	for _, e := range s.spellers {
		e.RemoveWord(w)
	}
	return protocol.DictionaryUpdated{Success: true, Word: w, Action: "removed"}
}

// speller returns the engine selected in the settings, or the default
// engine when the setting names none that is registered.
func (s *Server) speller() spell.Engine {
	name, err := spell.Resolve(s.settings.Get().SpellCheckEngine)
	if err != nil {
		s.log.Warn("unknown spell engine, using default", "error", err)
		name = spell.Engines()[0]
	}
	return s.spellers[name]
}

func (s *Server) health() protocol.HealthResponse {
	return protocol.HealthResponse{
		Status:           "healthy",
		SpellEngine:      s.speller().Name(),
		PredictionEngine: s.settings.Get().PredictionEngine,
		Clients:          s.hub.Count(),
	}
}
