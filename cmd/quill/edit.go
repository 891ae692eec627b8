package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/iw2rmb/quill"
	"github.com/iw2rmb/quill/editor"
	"github.com/iw2rmb/quill/engine"
	"github.com/iw2rmb/quill/protocol"
	"github.com/iw2rmb/quill/store"
	"github.com/iw2rmb/quill/transport"
)

const defaultFilename = "untitled.txt"

func (c *cli) editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [file]",
		Short: "Edit a file stored on the quill server",
		Long: `Open a .txt file from the server's file store in the terminal editor.
A file that does not exist yet is created on the first save.

Keys:
  tab          accept the whole prediction
  ctrl+right   accept the next word of the prediction
  esc          dismiss the prediction or close the spelling menu
  ctrl+k       spelling actions for the word under the cursor
  ctrl+s       save now
  ctrl+q       save and quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: c.runEdit,
	}
	cmd.Flags().String("server", "", "assistant server base URL (overrides config)")
	cmd.Flags().Bool("line-numbers", false, "show line numbers")
	_ = c.v.BindPFlag("editor.server", cmd.Flags().Lookup("server"))
	_ = c.v.BindPFlag("editor.line_numbers", cmd.Flags().Lookup("line-numbers"))
	return cmd
}

// model adapts the editor component to tea.Model.
type model struct {
	editor editor.Model
}

func (m model) Init() tea.Cmd { return m.editor.Init() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m model) View() string { return m.editor.View() }

func (c *cli) runEdit(cmd *cobra.Command, args []string) error {
	name := defaultFilename
	if len(args) == 1 {
		name = args[0]
	}
	if err := protocol.ValidFilename(name); err != nil {
		return err
	}

	// The terminal belongs to the editor; logs go to log.file or nowhere.
	log, closeLog, err := newLogger(c.cfg.Log, nil)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	base := c.cfg.Editor.Server
	rest := store.NewClient(base, nil)

	settings := engine.DefaultSettings()
	if st, err := rest.Settings(ctx); err != nil {
		log.Warn("using default settings", "error", err)
	} else {
		settings = engineSettings(st)
	}

	tc := transport.New(transport.Config{
		URL:    websocketURL(base),
		Header: http.Header{"User-Agent": []string{quill.UserAgent("editor")}},
		Logger: log,
	})
	eng := engine.New(c.cfg.Engine, engine.Deps{
		Sender:   tc,
		Files:    rest,
		Settings: func() engine.Settings { return settings },
		Logger:   log,
	})

	loadCtx, loadCancel := context.WithTimeout(ctx, 10*time.Second)
	err = eng.Load(loadCtx, name)
	loadCancel()
	switch {
	case errors.Is(err, store.ErrNotFound):
		eng.Open(name, "")
	case err != nil:
		return fmt.Errorf("loading %s from %s (is 'quill serve' running?): %w", name, base, err)
	}

	go func() { _ = tc.Run(ctx) }()

	ecfg := editor.DefaultConfig()
	ecfg.ShowLineNums = c.cfg.Editor.LineNumbers
	ecfg.TabWidth = c.cfg.Editor.TabWidth
	ecfg.Incoming = tc.Incoming()

	p := tea.NewProgram(model{editor: editor.New(eng, ecfg)}, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}

// websocketURL turns the server base URL into its /ws endpoint.
func websocketURL(base string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	case !strings.HasPrefix(base, "ws://") && !strings.HasPrefix(base, "wss://"):
		base = "ws://" + base
	}
	return base + "/ws"
}
