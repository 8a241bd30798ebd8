package flowgraph

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Node kinds reported by Topology.
const (
	KindEntry    = "entry"
	KindRouter   = "router"
	KindNode     = "node"
	KindTerminal = "terminal"
	KindEnd      = "end"
)

// Topology is a serializable description of a compiled graph.
type Topology struct {
	Name     string         `json:"name" yaml:"name"`
	Entry    string         `json:"entry" yaml:"entry"`
	Terminal string         `json:"terminal,omitempty" yaml:"terminal,omitempty"`
	Acyclic  bool           `json:"acyclic" yaml:"acyclic"`
	Nodes    []TopologyNode `json:"nodes" yaml:"nodes"`
	Edges    []TopologyEdge `json:"edges" yaml:"edges"`
}

// TopologyNode describes one node.
type TopologyNode struct {
	ID   string `json:"id" yaml:"id"`
	Kind string `json:"kind" yaml:"kind"`
}

// TopologyEdge describes one edge. Key is set for conditional branches.
type TopologyEdge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	Key  string `json:"key,omitempty" yaml:"key,omitempty"`
}

// Topology describes the graph's nodes and edges in registration order.
// END appears as a node of kind "end" when some edge leads to it.
// Open routers contribute no edges since their targets are unknown.
func (cg *CompiledGraph[S]) Topology(name string) Topology {
	t := Topology{
		Name:     name,
		Entry:    cg.entryPoint,
		Terminal: cg.terminal,
		Acyclic:  cg.acyclic,
	}

	reachesEnd := false
	for _, id := range cg.order {
		t.Nodes = append(t.Nodes, TopologyNode{ID: id, Kind: cg.nodeKind(id)})

		switch {
		case id == cg.terminal:
			t.Edges = append(t.Edges, TopologyEdge{From: id, To: END})
			reachesEnd = true
		case cg.IsConditional(id):
			for _, r := range cg.conditionalEdges[id].routes {
				t.Edges = append(t.Edges, TopologyEdge{From: id, To: r.Target, Key: r.Key})
				reachesEnd = reachesEnd || r.Target == END
			}
		default:
			if to, ok := cg.edges[id]; ok {
				t.Edges = append(t.Edges, TopologyEdge{From: id, To: to})
				reachesEnd = reachesEnd || to == END
			}
		}
	}

	if reachesEnd {
		t.Nodes = append(t.Nodes, TopologyNode{ID: END, Kind: KindEnd})
	}
	return t
}

func (cg *CompiledGraph[S]) nodeKind(id string) string {
	switch {
	case id == cg.entryPoint:
		return KindEntry
	case id == cg.terminal:
		return KindTerminal
	case cg.IsConditional(id):
		return KindRouter
	default:
		return KindNode
	}
}

// JSON returns the topology as indented JSON.
func (t Topology) JSON() ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// YAML returns the topology as YAML.
func (t Topology) YAML() ([]byte, error) {
	return yaml.Marshal(t)
}

// Overlay highlights a run on a Mermaid diagram.
type Overlay struct {
	// Visited lists the nodes a run executed.
	Visited []string
}

// Mermaid renders the topology as a Mermaid flowchart.
//
// Shapes follow the node kind: entry ((circle)), router {rhombus},
// terminal ([stadium]) and END (((double circle))). Conditional edges
// are labelled with their key. A non-nil overlay marks visited nodes.
func (t Topology) Mermaid(overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, n := range t.Nodes {
		opener, closer := "[", "]"
		label := n.ID
		switch n.Kind {
		case KindEntry:
			opener, closer = "((", "))"
		case KindRouter:
			opener, closer = "{", "}"
		case KindTerminal:
			opener, closer = "([", "])"
		case KindEnd:
			opener, closer = "(((", ")))"
			label = "END"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", mermaidID(n.ID), opener, label, closer)
	}

	for _, e := range t.Edges {
		arrow := "-->"
		if e.Key != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", strings.ReplaceAll(e.Key, "\"", "'"))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", mermaidID(e.From), arrow, mermaidID(e.To))
	}

	if overlay != nil && len(overlay.Visited) > 0 {
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		seen := make(map[string]bool)
		for _, id := range overlay.Visited {
			safe := mermaidID(id)
			if !seen[safe] {
				seen[safe] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safe)
			}
		}
	}

	return sb.String()
}

// mermaidID makes a node ID safe to use as a Mermaid identifier.
func mermaidID(id string) string {
	if id == END {
		return "END"
	}
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
