package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/iw2rmb/quill/internal/predict"
	"github.com/iw2rmb/quill/internal/spell"
	"github.com/iw2rmb/quill/protocol"
	"github.com/iw2rmb/quill/store"
)

const maxBodySize = 4 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// statusFor maps store and protocol errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, protocol.ErrInvalidMessage),
		errors.Is(err, protocol.ErrInvalidWord),
		errors.Is(err, store.ErrInvalidSettings):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.health())
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.files.List(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if files == nil {
		files = []store.FileInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files, "total": len(files)})
}

type fileBody struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	content, err := s.files.Load(r.Context(), name)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, fileBody{Filename: name, Content: content})
}

func (s *Server) handlePutFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var body fileBody
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Filename != "" && body.Filename != name {
		writeError(w, http.StatusBadRequest, "Filename mismatch")
		return
	}
	info, err := s.files.Save(r.Context(), name, body.Content)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "File saved successfully",
		"filename": info.Filename,
		"size":     info.Size,
		"modified": info.Modified,
	})
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.files.Delete(r.Context(), name); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "filename": name})
}

func (s *Server) handleFileStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.files.Stats(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type settingsResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Settings store.Settings `json:"settings"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, settingsResponse{Success: true, Settings: s.settings.Get()})
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	st := store.DefaultSettings()
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&st); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.settings.Put(st); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Success: true, Message: "Settings saved successfully", Settings: st})
}

func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	st, err := s.settings.Patch(data)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Success: true, Message: "Settings updated successfully", Settings: st})
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.settings.Reset()
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, settingsResponse{Success: true, Message: "Settings reset to defaults", Settings: st})
}

func (s *Server) handleSettingsOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"spell_check_engines": store.SpellEngines,
		"prediction_engines":  predict.Engines(),
		"themes":              store.Themes,
		"languages":           store.Languages,
	})
}

func (s *Server) handleSpellEngines(w http.ResponseWriter, r *http.Request) {
	current, err := spell.Resolve(s.settings.Get().SpellCheckEngine)
	if err != nil {
		current = spell.Engines()[0]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"engines": spell.Available(),
		"current": current,
	})
}

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	words, err := s.dict.Words(r.Context())
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	if words == nil {
		words = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"words": words, "total": len(words)})
}

func (s *Server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Word string `json:"word"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	resp := s.onAddWord(r.Context(), body.Word).(protocol.DictionaryUpdated)
	if !resp.Success {
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveWord(w http.ResponseWriter, r *http.Request) {
	word := r.PathValue("word")
	if err := s.dict.Remove(r.Context(), word); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	for _, e := range s.spellers {
		e.RemoveWord(word)
	}
	writeJSON(w, http.StatusOK, protocol.DictionaryUpdated{Success: true, Word: word, Action: "removed"})
}
