package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/intentgraph/pkg/agent"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/llm"
)

func newGraphCmd(f *rootFlags) *cobra.Command {
	graphCmd := &cobra.Command{
		Use:   "graph",
		Short: "Intent graph operations",
	}
	graphCmd.AddCommand(newGraphExportCmd(f))
	return graphCmd
}

func newGraphExportCmd(f *rootFlags) *cobra.Command {
	var (
		format    string
		output    string
		highlight string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the intent graph to Mermaid, JSON or YAML",
		Long: `Export the compiled intent graph.

Examples:
  intentgraph graph export
  intentgraph graph export --format json
  intentgraph graph export --highlight "2 + 2" --output graph.mmd`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			templates, err := agent.ParseTemplates(s.Templates)
			if err != nil {
				return fmt.Errorf("templates: %w", err)
			}

			// The topology does not depend on the backend.
			offline := llm.GeneratorFunc(func(context.Context, string) (string, error) {
				return "", nil
			})
			a, err := agent.New(offline, agent.WithTemplates(templates))
			if err != nil {
				return err
			}

			data, err := exportGraph(a.Graph().Topology(agent.GraphName), format, highlight)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Graph exported to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "mermaid", "Output format: mermaid, json, yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&highlight, "highlight", "", "Highlight the path this request takes (mermaid only)")
	return cmd
}

// exportGraph renders topo in format. highlight, when set, marks the
// nodes the given request would visit.
func exportGraph(topo flowgraph.Topology, format, highlight string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "mermaid":
		var overlay *flowgraph.Overlay
		if highlight != "" {
			overlay = &flowgraph.Overlay{Visited: []string{
				agent.NodeRouter,
				agent.Classify(highlight).String(),
				agent.NodeTerminal,
			}}
		}
		return []byte(topo.Mermaid(overlay)), nil
	case "json":
		data, err := topo.JSON()
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml":
		return topo.YAML()
	default:
		return nil, fmt.Errorf("unsupported format: %s (use mermaid, json or yaml)", format)
	}
}
