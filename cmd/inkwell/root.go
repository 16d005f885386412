package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	inkwell "github.com/iw2rmb/inkwell"
	"github.com/iw2rmb/inkwell/generate"
	"github.com/iw2rmb/inkwell/internal/config"
	"github.com/iw2rmb/inkwell/internal/logging"
	"github.com/iw2rmb/inkwell/prompt"
)

// deps are the process-level collaborators swapped out in tests.
type deps struct {
	stdin        io.Reader
	newGenerator func(generate.Config) (generate.Generator, error)
	lookupEnv    config.LookupFunc
	isTerminal   func(w io.Writer) bool
}

func defaultDeps() deps {
	return deps{
		stdin:        os.Stdin,
		newGenerator: generate.New,
		lookupEnv:    os.LookupEnv,
		isTerminal:   isTerminal,
	}
}

// rootOptions are the persistent flags.
type rootOptions struct {
	configPath string
	promptsDir string
	provider   string
	model      string
	logLevel   string
	diagnostic bool
}

func newRootCmd(d deps) *cobra.Command {
	opts := &rootOptions{}
	edit := newEditCmd(d, opts)

	root := &cobra.Command{
		Use:           "inkwell [file]",
		Short:         "Terminal text editor with an AI writing copilot",
		Long:          "inkwell edits plain text and markdown. Selecting text opens a copilot menu of prompt templates whose suggestions can be appended or swapped in.",
		Version:       inkwell.Version(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          edit.RunE,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", config.DefaultPath(), "config file")
	pf.StringVar(&opts.promptsDir, "prompts", "", "directory with prompt templates")
	pf.StringVar(&opts.provider, "provider", "", "generation backend (openai, anthropic)")
	pf.StringVar(&opts.model, "model", "", "model name")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.diagnostic, "diagnostic", false, "echo toggled suggestions as notifications")

	root.AddCommand(edit, newRunCmd(d, opts), newTemplatesCmd(d, opts), newVersionCmd())
	return root
}

// loadConfig reads the config file, then applies flag overrides.
func (o *rootOptions) loadConfig(d deps) (config.Config, error) {
	cfg, err := config.LoadWithEnv(o.configPath, d.lookupEnv)
	if err != nil {
		return config.Config{}, err
	}
	if o.promptsDir != "" {
		cfg.Prompts.Directory = o.promptsDir
	}
	if o.provider != "" {
		cfg.Generation.Provider = strings.ToLower(o.provider)
	}
	if o.model != "" {
		cfg.Generation.Model = o.model
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func newStore(cfg config.Config, logger *slog.Logger, opts ...prompt.StoreOption) *prompt.Store {
	opts = append([]prompt.StoreOption{
		prompt.WithLogger(logger),
		prompt.WithFallback(prompt.Builtin()),
	}, opts...)
	return prompt.NewStore(cfg.Prompts.Directory, opts...)
}

func newGenerator(d deps, cfg config.Config, logger *slog.Logger) (generate.Generator, error) {
	gc := cfg.GeneratorConfig()
	gc.UserAgent = inkwell.UserAgent()
	gc.Logger = logger
	g, err := d.newGenerator(gc)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}
	return generate.Logged(g, gc.Provider, logger), nil
}

func levelOf(cfg config.Config) slog.Level {
	// Validate has already accepted the level.
	lvl, _ := logging.ParseLevel(cfg.Logging.Level)
	return lvl
}
