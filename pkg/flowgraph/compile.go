package flowgraph

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// Compile validates the graph and creates an executable CompiledGraph.
// Returns an error if validation fails. Multiple errors are joined together.
//
// Validation checks (in order):
//  1. Problems recorded while building (duplicate conditionals, incomplete
//     or over-full dispatch tables)
//  2. Entry point must be set and reference an existing node
//  3. Terminal, if set, must exist and have no outgoing edge
//  4. Edge sources and targets must reference existing nodes (or END)
//  5. A node has at most one fixed edge, and not both a fixed and a
//     conditional edge
//  6. Every non-terminal node has an outgoing edge
//  7. A path to END exists from the entry
//
// Unreachable nodes (not reachable from entry) are logged as warnings
// but do not cause compilation to fail.
func (g *Graph[S]) Compile() (*CompiledGraph[S], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	errs := append([]error(nil), g.buildErrs...)

	if g.entryPoint == "" {
		errs = append(errs, ErrNoEntryPoint)
	} else if _, exists := g.nodes[g.entryPoint]; !exists {
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, g.entryPoint))
	}

	if g.terminal != "" {
		if _, exists := g.nodes[g.terminal]; !exists {
			errs = append(errs, fmt.Errorf("%w: %s", ErrTerminalNotFound, g.terminal))
		}
		if len(g.edges[g.terminal]) > 0 || g.conditionalEdges[g.terminal] != nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrTerminalHasEdge, g.terminal))
		}
	}

	for _, from := range sortedKeys(g.edges) {
		targets := g.edges[from]
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: edge source '%s' does not exist", ErrNodeNotFound, from))
		}
		if len(targets) > 1 {
			errs = append(errs, fmt.Errorf("%w: %s -> %v", ErrMultipleEdges, from, targets))
		}
		if _, hasConditional := g.conditionalEdges[from]; hasConditional {
			errs = append(errs, fmt.Errorf("%w: %s", ErrConflictingEdges, from))
		}
		for _, to := range targets {
			if to != END {
				if _, exists := g.nodes[to]; !exists {
					errs = append(errs, fmt.Errorf("%w: edge target '%s' does not exist", ErrNodeNotFound, to))
				}
			}
		}
	}

	for _, from := range sortedKeys(g.conditionalEdges) {
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: conditional edge source '%s' does not exist", ErrNodeNotFound, from))
		}
		for _, r := range g.conditionalEdges[from].routes {
			if r.Target == END {
				continue
			}
			if _, exists := g.nodes[r.Target]; !exists {
				errs = append(errs, fmt.Errorf("%w: route %s[%s] target '%s' does not exist", ErrNodeNotFound, from, r.Key, r.Target))
			}
		}
	}

	for _, id := range g.order {
		if id == g.terminal {
			continue
		}
		_, hasConditional := g.conditionalEdges[id]
		if len(g.edges[id]) == 0 && !hasConditional {
			errs = append(errs, fmt.Errorf("%w: %s", ErrNoOutgoingEdge, id))
		}
	}

	if g.entryPoint != "" {
		if _, exists := g.nodes[g.entryPoint]; exists {
			if !g.hasPathToEnd() {
				errs = append(errs, ErrNoPathToEnd)
			}
		}
	}

	g.warnUnreachableNodes()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return g.buildCompiledGraph(), nil
}

// hasPathToEnd checks if there's a path from entry to END.
// The terminal node reaches END by definition. Conditional edges with
// declared routes reach END if any route does; open routers are assumed
// to be able to reach END.
func (g *Graph[S]) hasPathToEnd() bool {
	canReachEnd := map[string]bool{END: true}
	if g.terminal != "" {
		canReachEnd[g.terminal] = true
	}

	changed := true
	for changed {
		changed = false

		for from, targets := range g.edges {
			if canReachEnd[from] {
				continue
			}
			for _, to := range targets {
				if canReachEnd[to] {
					canReachEnd[from] = true
					changed = true
					break
				}
			}
		}

		for from, edge := range g.conditionalEdges {
			if canReachEnd[from] {
				continue
			}
			if len(edge.routes) == 0 {
				canReachEnd[from] = true
				changed = true
				continue
			}
			for _, r := range edge.routes {
				if canReachEnd[r.Target] {
					canReachEnd[from] = true
					changed = true
					break
				}
			}
		}
	}

	return canReachEnd[g.entryPoint]
}

// warnUnreachableNodes logs warnings for nodes not reachable from entry.
func (g *Graph[S]) warnUnreachableNodes() {
	if g.entryPoint == "" {
		return
	}

	reachable := g.findReachableNodes()

	for _, nodeID := range g.order {
		if !reachable[nodeID] {
			slog.Warn("node is unreachable from entry", "node_id", nodeID)
		}
	}
}

// findReachableNodes returns the set of nodes reachable from the entry point.
func (g *Graph[S]) findReachableNodes() map[string]bool {
	reachable := make(map[string]bool)

	if g.entryPoint == "" {
		return reachable
	}

	queue := []string{g.entryPoint}
	reachable[g.entryPoint] = true

	visit := func(target string) {
		if target != END && !reachable[target] {
			reachable[target] = true
			queue = append(queue, target)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, target := range g.edges[current] {
			visit(target)
		}

		edge, hasConditional := g.conditionalEdges[current]
		if !hasConditional {
			continue
		}
		if len(edge.routes) > 0 {
			for _, r := range edge.routes {
				visit(r.Target)
			}
			continue
		}
		// An open router could return any node ID.
		for nodeID := range g.nodes {
			visit(nodeID)
		}
	}

	return reachable
}

// buildCompiledGraph creates the immutable CompiledGraph from the builder state.
func (g *Graph[S]) buildCompiledGraph() *CompiledGraph[S] {
	nodes := make(map[string]NodeFunc[S], len(g.nodes))
	for id, fn := range g.nodes {
		nodes[id] = fn
	}

	order := make([]string, len(g.order))
	copy(order, g.order)

	// Fixed edges: validation guarantees at most one target per source.
	edges := make(map[string]string, len(g.edges))
	for from, targets := range g.edges {
		if len(targets) > 0 {
			edges[from] = targets[0]
		}
	}

	conditionalEdges := make(map[string]*conditionalEdge[S], len(g.conditionalEdges))
	for from, edge := range g.conditionalEdges {
		routes := make([]Route, len(edge.routes))
		copy(routes, edge.routes)
		conditionalEdges[from] = &conditionalEdge[S]{resolve: edge.resolve, routes: routes}
	}

	successors := make(map[string][]string)
	for from, to := range edges {
		successors[from] = []string{to}
	}
	for from, edge := range conditionalEdges {
		for _, r := range edge.routes {
			successors[from] = append(successors[from], r.Target)
		}
	}

	predecessors := make(map[string][]string)
	for _, from := range order {
		for _, to := range successors[from] {
			if to != END {
				predecessors[to] = append(predecessors[to], from)
			}
		}
	}

	cg := &CompiledGraph[S]{
		nodes:            nodes,
		order:            order,
		edges:            edges,
		conditionalEdges: conditionalEdges,
		entryPoint:       g.entryPoint,
		terminal:         g.terminal,
		successors:       successors,
		predecessors:     predecessors,
	}
	cg.acyclic = detectAcyclic(cg)
	return cg
}

// detectAcyclic reports whether every path through the graph is finite.
// Graphs with open routers are treated as possibly cyclic because their
// targets are unknown until runtime.
func detectAcyclic[S any](cg *CompiledGraph[S]) bool {
	for _, edge := range cg.conditionalEdges {
		if len(edge.routes) == 0 {
			return false
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(cg.nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		switch state[id] {
		case visiting:
			return false
		case done:
			return true
		}
		state[id] = visiting
		for _, next := range cg.successors[id] {
			if next == END {
				continue
			}
			if !visit(next) {
				return false
			}
		}
		state[id] = done
		return true
	}

	for _, id := range cg.order {
		if !visit(id) {
			return false
		}
	}
	return true
}

// sortedKeys returns map keys in a stable order so that compile errors
// are reported deterministically.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
