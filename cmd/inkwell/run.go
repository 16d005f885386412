package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iw2rmb/inkwell/copilot"
	"github.com/iw2rmb/inkwell/internal/logging"
	"github.com/iw2rmb/inkwell/prompt"
)

type runOptions struct {
	text    string
	suggest bool
	raw     bool
}

func newRunCmd(d deps, root *rootOptions) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run <template> [file]",
		Short: "Run a prompt template on text from stdin",
		Long: `Run composes the template with the selection read from stdin (or --text)
and prints the answer. Frontmatter tags of file, when given, prefix the
prompt. With --suggest the template runs as a menu action and the answer
is printed as a suggestion list.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(d)
			if err != nil {
				return err
			}
			logger := logging.NewStderr(levelOf(cfg))

			selection := opts.text
			if selection == "" {
				data, err := io.ReadAll(d.stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				selection = strings.TrimRight(string(data), "\n")
			}
			if strings.TrimSpace(selection) == "" {
				return errors.New("run: empty selection")
			}

			var tags prompt.Tags
			if len(args) > 1 {
				doc, err := os.ReadFile(args[1])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[1], err)
				}
				if tags, err = prompt.ParseTags(string(doc)); err != nil {
					logger.Warn("document tags ignored", "file", args[1], "error", err)
					tags = nil
				}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(cfg.Generation.Timeout))
			defer cancel()

			store := newStore(cfg, logger)
			defer store.Close()
			tpl, err := store.Template(ctx, args[0])
			if err != nil {
				return err
			}

			base := prompt.DefaultParameters(cfg.Generation.Temperature)
			if opts.suggest {
				base, tags = prompt.MenuParameters(), nil
			}
			params, err := tpl.Parameters(base)
			if err != nil {
				return err
			}

			gen, err := newGenerator(d, cfg, logger)
			if err != nil {
				return err
			}
			logger.Debug("run", "template", tpl.Name, "tags", len(tags), "suggest", opts.suggest)
			answer, err := gen.Generate(ctx, prompt.Compose(tpl.Body, selection, tags), params)
			if err != nil {
				return errors.New(copilot.FailureMessage(err))
			}

			out := cmd.OutOrStdout()
			if opts.suggest {
				answer = suggestionList(copilot.ParseSuggestions(answer))
			}
			if !opts.raw && d.isTerminal(out) {
				rendered, err := renderMarkdown(answer, terminalWidth(out))
				if err != nil {
					logger.Debug("markdown rendering skipped", "error", err)
				} else {
					answer = rendered
				}
			}
			_, err = fmt.Fprintln(out, answer)
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.text, "text", "", "selection text instead of stdin")
	f.BoolVar(&opts.suggest, "suggest", false, "run as a menu action and list suggestions")
	f.BoolVar(&opts.raw, "raw", false, "print the answer without markdown rendering")
	return cmd
}

func suggestionList(set copilot.SuggestionSet) string {
	var sb strings.Builder
	for i, s := range set {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("- ")
		sb.WriteString(s.Text)
	}
	return sb.String()
}
