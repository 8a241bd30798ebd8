package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/intentgraph/internal/repl"
)

func newAskCmd(f *rootFlags) *cobra.Command {
	var (
		mode    string
		details bool
	)

	cmd := &cobra.Command{
		Use:   "ask [--mode summary|math|fallback|explain] <text>",
		Short: "Answer a single request",
		Long: `Runs one request through the graph and prints the answer.

With --mode the menu option's marker is prepended, so
  intentgraph ask --mode summary "the text"
is the same as
  intentgraph ask "summarize: the text"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			if mode != "" {
				opt, ok := repl.Lookup(mode)
				if !ok {
					return fmt.Errorf("unknown mode %q (want summary, math, fallback or explain)", mode)
				}
				input = opt.Compose(input)
			}

			a, err := newApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			res, err := a.agent.RunOnce(cmd.Context(), input)
			if err != nil {
				return err
			}
			if err := a.out.Answer(res.Text); err != nil {
				return err
			}
			if details {
				fmt.Fprintf(cmd.ErrOrStderr(), "intent=%s path=%s run_id=%s duration=%s\n",
					res.Intent, strings.Join(res.Path, ">"), res.RunID, res.Duration.Round(time.Millisecond))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Menu option to apply: summary, math, fallback, explain")
	cmd.Flags().BoolVar(&details, "details", false, "Print intent, path and run ID to stderr")
	return cmd
}
