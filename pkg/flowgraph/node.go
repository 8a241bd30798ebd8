package flowgraph

// END is the reserved exit identifier.
// Use it as an edge target to finish a run after the source node.
// A node registered with SetTerminal implicitly routes to END.
const END = "__end__"

// NodeFunc is the signature for all node functions.
// Nodes receive the execution context and current state,
// and return the updated state (or the same state) and any error.
//
// The state parameter is passed by value. Nodes should modify and return
// a new state value, not rely on pointer mutation.
//
// Example:
//
//	func classify(ctx flowgraph.Context, s Request) (Request, error) {
//	    s.Kind = detectKind(s.Text)
//	    return s, nil
//	}
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc determines the next node based on state.
// It is used for conditional edges where the next node depends on runtime state.
//
// The router should return a valid node ID or flowgraph.END.
// Returning an empty string or an unknown node ID fails the run with a
// RoutingError.
type RouterFunc[S any] func(ctx Context, state S) string
