package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iw2rmb/quill/internal/spell"
	"github.com/iw2rmb/quill/store"
)

var errMisspelled = errors.New("misspellings found")

func (c *cli) checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Spell-check files and report misspellings",
		Long: `Spell-check local text files with the built-in dictionary plus the
user dictionary under server.data_dir. Each misspelling is reported as

  path:line:column: word (suggestion, ...)

The command fails when anything is misspelled.`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.runCheck,
	}
	cmd.Flags().String("language", "en", "spell check language")
	return cmd
}

func (c *cli) runCheck(cmd *cobra.Command, args []string) error {
	lang, _ := cmd.Flags().GetString("language")

	checker := spell.New(spell.Options{})
	dictPath := filepath.Join(c.cfg.Server.DataDir, "dictionary.db")
	if _, err := os.Stat(dictPath); err == nil {
		dict, err := store.OpenDictionary(cmd.Context(), dictPath)
		if err != nil {
			return err
		}
		words, err := dict.Words(cmd.Context())
		dict.Close()
		if err != nil {
			return err
		}
		checker.SetUserWords(words)
	}

	out := cmd.OutOrStdout()
	found := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		errs, err := checker.Check(strings.Split(string(data), "\n"), lang)
		if err != nil {
			return err
		}
		lines := make([]int, 0, len(errs))
		for i := range errs {
			lines = append(lines, i)
		}
		sort.Ints(lines)
		for _, i := range lines {
			for _, e := range errs[i] {
				found++
				fmt.Fprintf(out, "%s:%d:%d: %s", path, i+1, e.Position+1, e.Word)
				if len(e.Suggestions) > 0 {
					fmt.Fprintf(out, " (%s)", strings.Join(e.Suggestions, ", "))
				}
				fmt.Fprintln(out)
			}
		}
	}
	if found > 0 {
		return fmt.Errorf("%w: %d", errMisspelled, found)
	}
	return nil
}
