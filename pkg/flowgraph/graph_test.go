package flowgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewGraph(t *testing.T) {
	g := NewGraph[ticket]()
	assert.Empty(t, g.nodes)
	assert.Empty(t, g.edges)
	assert.Empty(t, g.conditionalEdges)
	assert.Empty(t, g.entryPoint)
	assert.Empty(t, g.terminal)
}

func TestGraph_Chaining(t *testing.T) {
	g := NewGraph[ticket]()
	assert.Same(t, g, g.AddNode("a", visit("a")))
	assert.Same(t, g, g.AddEdge("a", END))
	assert.Same(t, g, g.AddConditionalEdge("b", func(Context, ticket) string { return END }))
	assert.Same(t, g, g.SetEntry("a"))
	assert.Same(t, g, g.SetTerminal("a"))
	assert.Same(t, g, AddDispatch(g, "c", func(ticket) kind { return kindOther }, map[kind]string{}))
}

func TestGraph_AddNode_KeepsOrder(t *testing.T) {
	g := NewGraph[ticket]().
		AddNode("reply", visit("reply")).
		AddNode("classify", classifyTicket).
		AddNode("other", visit("other"))

	assert.Equal(t, []string{"reply", "classify", "other"}, g.order)
}

func TestGraph_AddNode_Panics(t *testing.T) {
	tests := []struct {
		name string
		id   string
		fn   NodeFunc[ticket]
		msg  string
	}{
		{"empty id", "", visit("x"), "flowgraph: node ID cannot be empty"},
		{"END", "END", visit("x"), "flowgraph: node ID cannot be reserved word 'END'"},
		{"end lowercase", "end", visit("x"), "flowgraph: node ID cannot be reserved word 'END'"},
		{"__end__", END, visit("x"), "flowgraph: node ID cannot be reserved word 'END'"},
		{"space", "node a", visit("x"), "flowgraph: node ID cannot contain whitespace"},
		{"tab", "node\ta", visit("x"), "flowgraph: node ID cannot contain whitespace"},
		{"nil func", "a", nil, "flowgraph: node function cannot be nil"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.PanicsWithValue(t, tt.msg, func() {
				NewGraph[ticket]().AddNode(tt.id, tt.fn)
			})
		})
	}
}

func TestGraph_AddNode_Duplicate_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "flowgraph: duplicate node ID: reply", func() {
		NewGraph[ticket]().
			AddNode("reply", visit("reply")).
			AddNode("reply", visit("reply"))
	})
}

func TestGraph_AddEdge_RecordsEveryTarget(t *testing.T) {
	g := NewGraph[ticket]().
		AddEdge("a", "b").
		AddEdge("a", "c")

	// Compile rejects this; the builder only records it.
	assert.Equal(t, []string{"b", "c"}, g.edges["a"])
}

func TestGraph_AddConditionalEdge(t *testing.T) {
	router := func(_ Context, tk ticket) string {
		if tk.Answer != "" {
			return END
		}
		return "retry"
	}

	g := NewGraph[ticket]().AddConditionalEdge("check", router, "retry", END)

	edge := g.conditionalEdges["check"]
	if assert.NotNil(t, edge) {
		assert.Equal(t, []Route{{Key: "retry", Target: "retry"}, {Key: END, Target: END}}, edge.routes)
	}
}

func TestGraph_AddConditionalEdge_NilRouter_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "flowgraph: router function cannot be nil", func() {
		NewGraph[ticket]().AddConditionalEdge("check", nil)
	})
}

func TestGraph_AddConditionalEdge_Twice(t *testing.T) {
	router := func(Context, ticket) string { return END }
	g := NewGraph[ticket]().
		AddConditionalEdge("check", router).
		AddConditionalEdge("check", router)

	assert.Len(t, g.buildErrs, 1)
	assert.ErrorIs(t, g.buildErrs[0], ErrDuplicateConditional)
}

func TestGraph_SetEntry_Overwrites(t *testing.T) {
	g := NewGraph[ticket]().SetEntry("first").SetEntry("second")
	assert.Equal(t, "second", g.entryPoint)
}
