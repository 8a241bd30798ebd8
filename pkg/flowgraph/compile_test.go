package flowgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_RoutingGraph(t *testing.T) {
	compiled, err := routingGraph().Compile()
	require.NoError(t, err)

	assert.Equal(t, "classify", compiled.EntryPoint())
	assert.Equal(t, "reply", compiled.Terminal())
	assert.Equal(t, []string{"classify", "question", "command", "other", "reply"}, compiled.NodeIDs())
	assert.True(t, compiled.IsAcyclic())
	assert.True(t, compiled.IsConditional("classify"))
	assert.False(t, compiled.IsConditional("question"))
	assert.True(t, compiled.HasNode("reply"))
	assert.False(t, compiled.HasNode("missing"))

	assert.Equal(t, []string{"question", "command", "other"}, compiled.Successors("classify"))
	assert.Equal(t, []string{"reply"}, compiled.Successors("question"))
	assert.Nil(t, compiled.Successors("reply"))
	assert.Nil(t, compiled.Successors(END))
	assert.Equal(t, []string{"question", "command", "other"}, compiled.Predecessors("reply"))
	assert.Nil(t, compiled.Predecessors("classify"))
	assert.Nil(t, compiled.Routes("question"))
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Graph[ticket]
		wantErr error
	}{
		{
			name:    "no entry",
			build:   func() *Graph[ticket] { return NewGraph[ticket]().AddNode("a", visit("a")).AddEdge("a", END) },
			wantErr: ErrNoEntryPoint,
		},
		{
			name: "entry missing",
			build: func() *Graph[ticket] {
				return NewGraph[ticket]().AddNode("a", visit("a")).AddEdge("a", END).SetEntry("b")
			},
			wantErr: ErrEntryNotFound,
		},
		{
			name: "terminal missing",
			build: func() *Graph[ticket] {
				return NewGraph[ticket]().AddNode("a", visit("a")).AddEdge("a", END).SetEntry("a").SetTerminal("z")
			},
			wantErr: ErrTerminalNotFound,
		},
		{
			name: "terminal with edge",
			build: func() *Graph[ticket] {
				return NewGraph[ticket]().AddNode("a", visit("a")).AddEdge("a", END).SetEntry("a").SetTerminal("a")
			},
			wantErr: ErrTerminalHasEdge,
		},
		{
			name: "edge target missing",
			build: func() *Graph[ticket] {
				return NewGraph[ticket]().AddNode("a", visit("a")).AddEdge("a", "ghost").SetEntry("a")
			},
			wantErr: ErrNodeNotFound,
		},
		{
			name: "edge source missing",
			build: func() *Graph[ticket] {
				return NewGraph[ticket]().AddNode("a", visit("a")).AddEdge("a", END).AddEdge("ghost", "a").SetEntry("a")
			},
			wantErr: ErrNodeNotFound,
		},
		{
			name: "two fixed edges",
			build: func() *Graph[ticket] {
				return NewGraph[ticket]().
					AddNode("a", visit("a")).AddNode("b", visit("b")).
					AddEdge("a", "b").AddEdge("a", END).AddEdge("b", END).SetEntry("a")
			},
			wantErr: ErrMultipleEdges,
		},
		{
			name: "fixed and conditional",
			build: func() *Graph[ticket] {
				return NewGraph[ticket]().
					AddNode("a", visit("a")).
					AddEdge("a", END).
					AddConditionalEdge("a", func(Context, ticket) string { return END }).
					SetEntry("a")
			},
			wantErr: ErrConflictingEdges,
		},
		{
			name: "declared route target missing",
			build: func() *Graph[ticket] {
				return NewGraph[ticket]().
					AddNode("a", visit("a")).
					AddConditionalEdge("a", func(Context, ticket) string { return "ghost" }, "ghost", END).
					SetEntry("a")
			},
			wantErr: ErrNodeNotFound,
		},
		{
			name: "dead end",
			build: func() *Graph[ticket] {
				return NewGraph[ticket]().
					AddNode("a", visit("a")).AddNode("b", visit("b")).
					AddEdge("a", "b").SetEntry("a")
			},
			wantErr: ErrNoOutgoingEdge,
		},
		{
			name: "no path to end",
			build: func() *Graph[ticket] {
				return NewGraph[ticket]().
					AddNode("a", visit("a")).AddNode("b", visit("b")).
					AddEdge("a", "b").AddEdge("b", "a").SetEntry("a")
			},
			wantErr: ErrNoPathToEnd,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := tt.build().Compile()
			assert.Nil(t, compiled)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompile_JoinsErrors(t *testing.T) {
	g := NewGraph[ticket]().
		AddNode("a", visit("a")).
		AddNode("b", visit("b")).
		AddEdge("a", "ghost")

	_, err := g.Compile()

	assert.ErrorIs(t, err, ErrNoEntryPoint)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.ErrorIs(t, err, ErrNoOutgoingEdge)
}

func TestCompile_UnreachableNodeIsAllowed(t *testing.T) {
	g := NewGraph[ticket]().
		AddNode("a", visit("a")).
		AddNode("orphan", visit("orphan")).
		AddEdge("a", END).
		AddEdge("orphan", END).
		SetEntry("a")

	compiled, err := g.Compile()
	require.NoError(t, err)
	assert.True(t, compiled.HasNode("orphan"))
}

func TestCompile_Cycles(t *testing.T) {
	loop := NewGraph[ticket]().
		AddNode("work", visit("work")).
		AddConditionalEdge("work", func(_ Context, tk ticket) string {
			if len(tk.Trail) >= 3 {
				return END
			}
			return "work"
		}, "work", END).
		SetEntry("work")

	compiled, err := loop.Compile()
	require.NoError(t, err)
	assert.False(t, compiled.IsAcyclic())

	open := NewGraph[ticket]().
		AddNode("a", visit("a")).
		AddConditionalEdge("a", func(Context, ticket) string { return END }).
		SetEntry("a")
	compiled, err = open.Compile()
	require.NoError(t, err)
	assert.False(t, compiled.IsAcyclic(), "open routers may loop")
}

func TestCompile_IsImmutable(t *testing.T) {
	g := routingGraph()
	compiled, err := g.Compile()
	require.NoError(t, err)

	g.AddNode("late", visit("late"))

	assert.False(t, compiled.HasNode("late"))
	ids := compiled.NodeIDs()
	ids[0] = "mutated"
	assert.Equal(t, "classify", compiled.NodeIDs()[0])
	routes := compiled.Routes("classify")
	routes[0].Target = "mutated"
	assert.Equal(t, "question", compiled.Routes("classify")[0].Target)
}
