package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/intentgraph/pkg/agent"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/checkpoint"
)

func newJournalCmd(f *rootFlags) *cobra.Command {
	journalCmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect the run journal",
	}
	journalCmd.AddCommand(newJournalShowCmd(f))
	return journalCmd
}

func newJournalShowCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print the recorded steps of one run",
		Long: `Prints every step the journal recorded for a run: the node, the node
that followed it and the result at that point. Use ask --details to see a
run's ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			if s.Journal.Path == "" {
				return errors.New("no journal configured (use --journal or journal.path)")
			}

			store, err := checkpoint.NewSQLiteStore(s.Journal.Path)
			if err != nil {
				return fmt.Errorf("opening journal: %w", err)
			}
			defer store.Close()

			history, err := checkpoint.History(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}
			if len(history) == 0 {
				return fmt.Errorf("run %s not found in %s", args[0], s.Journal.Path)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SEQ\tNODE\tNEXT\tRESULT")
			for _, cp := range history {
				var st agent.State
				if err := cp.DecodeState(&st); err != nil {
					return fmt.Errorf("decoding step %d: %w", cp.Sequence, err)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", cp.Sequence, cp.NodeID, cp.NextNode, truncate(st.Result, 60))
			}
			return w.Flush()
		},
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
