package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/iw2rmb/inkwell/internal/config"
	"github.com/iw2rmb/inkwell/internal/logging"
	"github.com/iw2rmb/inkwell/internal/tui"
	"github.com/iw2rmb/inkwell/prompt"
)

func newEditCmd(d deps, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [file]",
		Short: "Open a file in the editor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(d)
			if err != nil {
				return err
			}
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return runEditor(cmd.Context(), d, cfg, path, opts.diagnostic)
		},
	}
}

func runEditor(ctx context.Context, d deps, cfg config.Config, path string, diagnostic bool) error {
	text, err := readDocument(path)
	if err != nil {
		return err
	}

	logger, closer, err := editorLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	// The watcher must not block on a busy UI; one queued change is enough
	// to reload the picker.
	changes := make(chan string, 1)
	store := newStore(cfg, logger, prompt.WithOnChange(func(name string) {
		select {
		case changes <- name:
		default:
		}
	}))
	defer store.Close()
	if cfg.Prompts.Watch {
		if err := store.Watch(ctx); err != nil {
			logger.Warn("prompt watch disabled", "dir", store.Dir(), "error", err)
		}
	}

	gen, err := newGenerator(d, cfg, logger)
	if err != nil {
		return err
	}

	m, err := tui.New(tui.Options{
		Path:            path,
		Text:            text,
		Templates:       store,
		Generator:       gen,
		TemplateChanges: changes,
		Temperature:     cfg.Generation.Temperature,
		Diagnostic:      diagnostic,
		LineNumbers:     cfg.Editor.LineNumbers,
		HistoryLimit:    cfg.Editor.HistoryLimit,
		Timeout:         time.Duration(cfg.Generation.Timeout),
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	logger.Info("editor started", "file", path, "provider", cfg.Generation.Provider, "prompts", store.Dir())
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}

// readDocument loads path. A missing file starts an empty document that
// is created on save.
func readDocument(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		return string(data), nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("open %s: %w", path, err)
	}
}

// editorLogger logs to the configured file; the terminal is taken.
func editorLogger(cfg config.Config) (*slog.Logger, io.Closer, error) {
	if cfg.Logging.File == "" {
		return logging.NewNop(), io.NopCloser(nil), nil
	}
	return logging.OpenFile(cfg.Logging.File, levelOf(cfg))
}
