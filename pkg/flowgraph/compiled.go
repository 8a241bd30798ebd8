package flowgraph

// CompiledGraph is an immutable, executable graph.
// It is created by calling Compile() on a Graph builder.
//
// CompiledGraph is thread-safe and can be used concurrently for multiple
// Run() calls. The graph structure cannot be modified after compilation.
//
// Use the introspection methods (NodeIDs, Successors, Routes, etc.) to
// examine the graph structure for debugging or visualization.
type CompiledGraph[S any] struct {
	nodes            map[string]NodeFunc[S]
	order            []string
	edges            map[string]string
	conditionalEdges map[string]*conditionalEdge[S]
	entryPoint       string
	terminal         string

	// Pre-computed for efficient lookup
	successors   map[string][]string
	predecessors map[string][]string
	acyclic      bool
}

// EntryPoint returns the entry node ID.
func (cg *CompiledGraph[S]) EntryPoint() string {
	return cg.entryPoint
}

// Terminal returns the terminal node ID, or "" if none was set.
func (cg *CompiledGraph[S]) Terminal() string {
	return cg.terminal
}

// NodeIDs returns all node identifiers in registration order.
func (cg *CompiledGraph[S]) NodeIDs() []string {
	ids := make([]string, len(cg.order))
	copy(ids, cg.order)
	return ids
}

// HasNode checks if a node exists in the graph.
func (cg *CompiledGraph[S]) HasNode(id string) bool {
	_, exists := cg.nodes[id]
	return exists
}

// Successors returns the node IDs that can follow the given node:
// the fixed edge target, or the declared targets of its conditional edge.
// Returns nil for END, the terminal node, unknown nodes and open routers.
func (cg *CompiledGraph[S]) Successors(id string) []string {
	if id == END {
		return nil
	}
	return cg.successors[id]
}

// Predecessors returns the node IDs that have edges to the given node.
// Returns nil for the entry node or unknown nodes.
func (cg *CompiledGraph[S]) Predecessors(id string) []string {
	return cg.predecessors[id]
}

// IsConditional returns true if the node has a conditional edge.
func (cg *CompiledGraph[S]) IsConditional(id string) bool {
	_, ok := cg.conditionalEdges[id]
	return ok
}

// Routes returns the declared branches of a node's conditional edge,
// in declaration order. Returns nil for nodes without one.
func (cg *CompiledGraph[S]) Routes(id string) []Route {
	edge, ok := cg.conditionalEdges[id]
	if !ok {
		return nil
	}
	routes := make([]Route, len(edge.routes))
	copy(routes, edge.routes)
	return routes
}

// IsAcyclic reports whether every run is guaranteed to terminate without
// revisiting a node. Graphs with open routers report false.
func (cg *CompiledGraph[S]) IsAcyclic() bool {
	return cg.acyclic
}

// getNode returns the node function for the given ID.
// Used internally by the executor.
func (cg *CompiledGraph[S]) getNode(id string) (NodeFunc[S], bool) {
	fn, exists := cg.nodes[id]
	return fn, exists
}

// getConditional returns the conditional edge for the given node.
// Used internally by the executor.
func (cg *CompiledGraph[S]) getConditional(id string) (*conditionalEdge[S], bool) {
	edge, exists := cg.conditionalEdges[id]
	return edge, exists
}

// getEdge returns the fixed edge target for the given node.
// Used internally by the executor.
func (cg *CompiledGraph[S]) getEdge(id string) (string, bool) {
	to, exists := cg.edges[id]
	return to, exists
}
