package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iw2rmb/inkwell/internal/logging"
	"github.com/iw2rmb/inkwell/prompt"
)

func newTemplatesCmd(d deps, root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List prompt templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(d)
			if err != nil {
				return err
			}
			store := newStore(cfg, logging.NewStderr(levelOf(cfg)))
			defer store.Close()
			names, err := store.List()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Print a template with its frontmatter parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(d)
			if err != nil {
				return err
			}
			store := newStore(cfg, logging.NewStderr(levelOf(cfg)))
			defer store.Close()
			tpl, err := store.Template(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			params, err := tpl.Parameters(prompt.DefaultParameters(cfg.Generation.Temperature))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s (temperature %.2g, max_tokens %d)\n\n", tpl.Name, params.Temperature, params.MaxTokens)
			fmt.Fprint(out, tpl.Body)
			return nil
		},
	})
	return cmd
}
