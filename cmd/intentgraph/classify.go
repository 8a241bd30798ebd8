package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/intentgraph/pkg/agent"
)

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Print the intent a request routes to, without calling a backend",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			intent := agent.Classify(strings.Join(args, " "))
			_, err := fmt.Fprintln(cmd.OutOrStdout(), intent)
			return err
		},
	}
}
