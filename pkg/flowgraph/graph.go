package flowgraph

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a mutable builder for creating execution graphs.
// Use NewGraph to create a new graph, then chain AddNode, AddEdge,
// AddConditionalEdge and SetEntry calls to define the workflow.
//
// Graph is NOT thread-safe during building. Use a single goroutine
// to construct the graph, then call Compile() to create an immutable
// CompiledGraph that can be safely shared.
//
// Example:
//
//	graph := flowgraph.NewGraph[Request]().
//	    AddNode("classify", classify).
//	    AddNode("answer", answer).
//	    AddNode("emit", emit).
//	    AddEdge("classify", "answer").
//	    AddEdge("answer", "emit").
//	    SetEntry("classify").
//	    SetTerminal("emit")
//
//	compiled, err := graph.Compile()
type Graph[S any] struct {
	mu               sync.RWMutex
	nodes            map[string]NodeFunc[S]
	order            []string
	edges            map[string][]string
	conditionalEdges map[string]*conditionalEdge[S]
	entryPoint       string
	terminal         string

	// buildErrs collects problems found while registering edges.
	// They are reported by Compile so that chaining stays fluent.
	buildErrs []error
}

// conditionalEdge is a runtime-resolved edge.
// routes is the declared set of possible targets; it is empty for
// open routers that may return any node.
type conditionalEdge[S any] struct {
	resolve resolveFunc[S]
	routes  []Route
}

// resolveFunc picks the branch for a conditional edge. key is the label
// reported in errors and events; target is the next node ID.
type resolveFunc[S any] func(ctx Context, state S) (key, target string, err error)

// Route is one declared branch of a conditional edge.
// Key is the label of the branch (the dispatch key for dispatch tables).
type Route struct {
	Key    string `json:"key"`
	Target string `json:"target"`
}

// NewGraph creates a new graph builder for state type S.
// The type parameter S defines the state that flows through the graph.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:            make(map[string]NodeFunc[S]),
		edges:            make(map[string][]string),
		conditionalEdges: make(map[string]*conditionalEdge[S]),
	}
}

// AddNode adds a named node to the graph.
// Returns the graph for method chaining.
//
// Panics if:
//   - id is empty
//   - id is the reserved word "END" or "__end__" (case-insensitive)
//   - id contains whitespace (space, tab, newline)
//   - fn is nil
//   - id already exists in the graph
func (g *Graph[S]) AddNode(id string, fn NodeFunc[S]) *Graph[S] {
	if id == "" {
		panic("flowgraph: node ID cannot be empty")
	}

	idLower := strings.ToLower(id)
	if idLower == "end" || idLower == END {
		panic("flowgraph: node ID cannot be reserved word 'END'")
	}

	if strings.ContainsAny(id, " \t\n\r") {
		panic("flowgraph: node ID cannot contain whitespace")
	}

	if fn == nil {
		panic("flowgraph: node function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		panic(fmt.Sprintf("flowgraph: duplicate node ID: %s", id))
	}

	g.nodes[id] = fn
	g.order = append(g.order, id)
	return g
}

// AddEdge adds a fixed edge from one node to another.
// The target can be a node ID or flowgraph.END.
// Returns the graph for method chaining.
//
// A node has at most one fixed edge. Edge validation happens at
// Compile() time, not here, so edges can be added in any order.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge adds a conditional edge where a RouterFunc
// determines the next node at runtime based on state.
// Returns the graph for method chaining.
//
// targets optionally declares the nodes the router may return. Declared
// targets are validated at Compile() time and used for reachability and
// export; a router without declared targets may return any node.
//
// A node can have either a fixed edge or a conditional edge, not both.
func (g *Graph[S]) AddConditionalEdge(from string, router RouterFunc[S], targets ...string) *Graph[S] {
	if router == nil {
		panic("flowgraph: router function cannot be nil")
	}

	routes := make([]Route, 0, len(targets))
	for _, t := range targets {
		routes = append(routes, Route{Key: t, Target: t})
	}

	resolve := func(ctx Context, state S) (string, string, error) {
		next := router(ctx, state)
		if next == "" {
			return next, next, ErrInvalidRouterResult
		}
		return next, next, nil
	}

	return g.addConditional(from, &conditionalEdge[S]{resolve: resolve, routes: routes})
}

func (g *Graph[S]) addConditional(from string, edge *conditionalEdge[S]) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.conditionalEdges[from]; exists {
		g.buildErrs = append(g.buildErrs, fmt.Errorf("%w: %s", ErrDuplicateConditional, from))
		return g
	}
	g.conditionalEdges[from] = edge
	return g
}

// SetEntry designates the entry point node.
// This must be called before Compile().
// Returns the graph for method chaining.
//
// Entry point validation happens at Compile() time.
func (g *Graph[S]) SetEntry(id string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entryPoint = id
	return g
}

// SetTerminal designates the terminal node.
// The terminal node is the last node of every successful run: it has no
// outgoing edge, and the run ends once it has executed.
// Returns the graph for method chaining.
func (g *Graph[S]) SetTerminal(id string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.terminal = id
	return g
}
