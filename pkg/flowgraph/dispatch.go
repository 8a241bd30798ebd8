package flowgraph

import (
	"fmt"
	"sort"
)

// AddDispatch adds a conditional edge driven by a dispatch table.
//
// selector extracts a key of a closed type K from state; table maps every
// key to its target node. keys declares the full key set of K: Compile
// fails with ErrIncompleteDispatch if the table misses one of them and with
// ErrUnknownDispatchKey if the table holds a key outside the set. When keys
// is empty the table's own key set is taken as complete.
//
// At runtime a key absent from the table fails the run with a RoutingError
// wrapping ErrRouteNotFound. With a checked key set that can only happen if
// the selector produces a value outside the declared set.
//
// AddDispatch is a function rather than a method because Go methods cannot
// introduce the extra type parameter K.
//
// Example:
//
//	flowgraph.AddDispatch(graph, "router",
//	    func(s State) Kind { return s.Kind },
//	    map[Kind]string{KindA: "a", KindB: "b"},
//	    KindA, KindB)
func AddDispatch[S any, K comparable](g *Graph[S], from string, selector func(S) K, table map[K]string, keys ...K) *Graph[S] {
	if selector == nil {
		panic("flowgraph: dispatch selector cannot be nil")
	}

	// Snapshot the table; the caller's map must not change the compiled graph.
	tbl := make(map[K]string, len(table))
	for k, v := range table {
		tbl[k] = v
	}

	var errs []error
	if len(keys) > 0 {
		declared := make(map[K]bool, len(keys))
		for _, k := range keys {
			declared[k] = true
			if _, ok := tbl[k]; !ok {
				errs = append(errs, fmt.Errorf("%w: %s has no route for key %v", ErrIncompleteDispatch, from, k))
			}
		}
		for k := range tbl {
			if !declared[k] {
				errs = append(errs, fmt.Errorf("%w: %s routes undeclared key %v", ErrUnknownDispatchKey, from, k))
			}
		}
	} else {
		for k := range tbl {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
		})
	}

	routes := make([]Route, 0, len(keys))
	for _, k := range keys {
		if target, ok := tbl[k]; ok {
			routes = append(routes, Route{Key: fmt.Sprint(k), Target: target})
		}
	}

	resolve := func(_ Context, state S) (string, string, error) {
		key := selector(state)
		target, ok := tbl[key]
		if !ok {
			return fmt.Sprint(key), "", ErrRouteNotFound
		}
		return fmt.Sprint(key), target, nil
	}

	g.addConditional(from, &conditionalEdge[S]{resolve: resolve, routes: routes})

	if len(errs) > 0 {
		g.mu.Lock()
		g.buildErrs = append(g.buildErrs, errs...)
		g.mu.Unlock()
	}
	return g
}
