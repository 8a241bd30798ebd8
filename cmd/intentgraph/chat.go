package main

import (
	"github.com/spf13/cobra"

	"github.com/randalmurphal/intentgraph/internal/repl"
)

func newChatCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive menu",
		Long: `Shows a menu (Summary, Math, Fallback, Explain Concept), reads your
input, prints the answer and asks whether to continue. Enter q at the
menu or end input (Ctrl-D) to leave.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, f)
			if err != nil {
				return err
			}
			defer a.close(cmd.Context())

			return repl.New(a.agent, cmd.InOrStdin(), a.out).Run(cmd.Context())
		},
	}
}
