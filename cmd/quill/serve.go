package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iw2rmb/quill/server"
	"github.com/iw2rmb/quill/store"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the writing assistant server",
		Long: `Run the assistant server: a websocket endpoint at /ws answering
prediction, spell-check, save and dictionary requests, and a REST API for
files, settings and the user dictionary.

Files, settings.yaml and dictionary.db live under server.data_dir.

Example:
  quill serve                      # listen on localhost:8000
  quill serve --addr :9000         # listen on all interfaces, port 9000`,
		Args: cobra.NoArgs,
		RunE: c.runServe,
	}
	cmd.Flags().String("addr", "", "address to listen on (overrides config)")
	cmd.Flags().String("data-dir", "", "data directory (overrides config)")
	_ = c.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = c.v.BindPFlag("server.data_dir", cmd.Flags().Lookup("data-dir"))
	return cmd
}

func (c *cli) runServe(cmd *cobra.Command, _ []string) error {
	log, closeLog, err := newLogger(c.cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dir := c.cfg.Server.DataDir
	files, err := store.NewFiles(filepath.Join(dir, "files"))
	if err != nil {
		return err
	}
	settings, err := store.OpenSettings(filepath.Join(dir, "settings.yaml"))
	if err != nil {
		return err
	}
	dict, err := store.OpenDictionary(ctx, filepath.Join(dir, "dictionary.db"))
	if err != nil {
		return err
	}
	defer dict.Close()

	srv, err := server.New(ctx, server.Config{
		Files:         files,
		Settings:      settings,
		Dictionary:    dict,
		Logger:        log,
		WatchDebounce: c.cfg.Server.WatchDebounce,
	})
	if err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	log.Info("quill server starting", "addr", c.cfg.Server.Addr, "data_dir", dir)
	return srv.ListenAndServe(ctx, c.cfg.Server.Addr)
}
