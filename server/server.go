// Package server is the writing assistant backend: a websocket endpoint
// answering prediction, spell-check, save and dictionary requests, plus a
// REST API for files, settings and the user dictionary.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/iw2rmb/quill/internal/logging"
	"github.com/iw2rmb/quill/internal/predict"
	"github.com/iw2rmb/quill/internal/spell"
	"github.com/iw2rmb/quill/protocol"
	"github.com/iw2rmb/quill/store"
)

type Config struct {
	Files      *store.Files
	Settings   *store.SettingsFile
	Dictionary *store.Dictionary
	Logger     *slog.Logger

	// WatchDebounce is the quiet period before files_changed is broadcast.
	// Zero disables watching.
	WatchDebounce time.Duration
}

type Server struct {
	files    *store.Files
	settings *store.SettingsFile
	dict     *store.Dictionary
	spellers map[string]spell.Engine
	predict  map[string]predict.Predictor
	hub      *Hub
	log      *slog.Logger
	debounce time.Duration
}

// New wires the server. Every spell engine starts from the words already in
// the dictionary.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.Files == nil || cfg.Settings == nil || cfg.Dictionary == nil {
		return nil, errors.New("server: files, settings and dictionary are required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	words, err := cfg.Dictionary.Words(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dictionary: %w", err)
	}
	spellers := make(map[string]spell.Engine)
	for _, name := range spell.Engines() {
		e, err := spell.NewEngine(name, spell.Options{})
		if err != nil {
			return nil, err
		}
		e.SetUserWords(words)
		spellers[name] = e
	}

	predictors := make(map[string]predict.Predictor)
	for _, name := range predict.Engines() {
		p, err := predict.New(name)
		if err != nil {
			return nil, err
		}
		predictors[name] = p
	}

	return &Server{
		files:    cfg.Files,
		settings: cfg.Settings,
		dict:     cfg.Dictionary,
		spellers: spellers,
		predict:  predictors,
		hub:      NewHub(log),
		log:      log,
		debounce: cfg.WatchDebounce,
	}, nil
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("GET /api/files", s.handleListFiles)
	mux.HandleFunc("GET /api/files/{name}", s.handleGetFile)
	mux.HandleFunc("POST /api/files/{name}", s.handlePutFile)
	mux.HandleFunc("DELETE /api/files/{name}", s.handleDeleteFile)
	mux.HandleFunc("GET /api/files/{name}/stats", s.handleFileStats)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handlePutSettings)
	mux.HandleFunc("PATCH /api/settings", s.handlePatchSettings)
	mux.HandleFunc("DELETE /api/settings", s.handleResetSettings)
	mux.HandleFunc("GET /api/settings/available-options", s.handleSettingsOptions)
	mux.HandleFunc("GET /api/spell/engines", s.handleSpellEngines)

	mux.HandleFunc("GET /api/dictionary", s.handleListWords)
	mux.HandleFunc("POST /api/dictionary", s.handleAddWord)
	mux.HandleFunc("DELETE /api/dictionary/{word}", s.handleRemoveWord)

	return logging.Middleware(s.log, mux)
}

// Run drives the hub and the file watcher until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	go s.hub.Run(ctx)
	if s.debounce <= 0 {
		<-ctx.Done()
		return nil
	}
	return s.files.Watch(ctx, s.debounce, s.log, func(names []string) {
		s.hub.Broadcast(protocol.FilesChanged{Files: names})
	})
}

// ListenAndServe serves addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 2)
	go func() { errc <- s.Run(ctx) }()
	go func() {
		s.log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
		<-ctx.Done()
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}
