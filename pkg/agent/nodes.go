package agent

import (
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/llm"
	"github.com/randalmurphal/intentgraph/pkg/flowgraph/observability"
)

// Node IDs of the intent graph.
const (
	NodeRouter     = "router"
	NodeMath       = "math"
	NodeSummarizer = "summarizer"
	NodeFallback   = "fallback"
	NodeExplain    = "explain"
	NodeTerminal   = "terminal"
)

// ErrNoResult indicates the terminal node was reached without a result.
var ErrNoResult = errors.New("terminal reached without a result")

// nodeFunc is a node expressed as a partial update.
type nodeFunc func(ctx flowgraph.Context, s State) (Update, error)

// applying adapts fn to a flowgraph node that merges its update into state.
func applying(fn nodeFunc) flowgraph.NodeFunc[State] {
	return func(ctx flowgraph.Context, s State) (State, error) {
		u, err := fn(ctx, s)
		if err != nil {
			return s, err
		}
		return s.Apply(u)
	}
}

// routerNode classifies the request.
func routerNode(_ flowgraph.Context, s State) (Update, error) {
	return Update{Next: Classify(s.InputText).Route()}, nil
}

// handlerNode calls the backend once with the intent's composed prompt.
func handlerNode(intent Intent, gen llm.Generator, templates Templates) nodeFunc {
	return func(ctx flowgraph.Context, s State) (Update, error) {
		prompt, err := templates.Compose(intent, s.InputText)
		if err != nil {
			return Update{}, fmt.Errorf("compose %s prompt: %w", intent, err)
		}

		elapsed := observability.TimedOperation()
		out, err := gen.Generate(ctx, prompt)
		ms := elapsed()
		ctx.Logger().Debug("backend call",
			"intent", intent.String(),
			"duration_ms", ms,
			"ok", err == nil,
		)
		observability.AddSpanEvent(ctx, "backend.call",
			attribute.String("intent", intent.String()),
			attribute.Float64("duration_ms", ms),
			attribute.Bool("ok", err == nil),
		)
		if err != nil {
			return Update{}, llm.AsBackendError("generate", err)
		}
		if strings.TrimSpace(out) == "" {
			return Update{}, llm.NewError("generate", llm.ErrEmptyResponse, false)
		}

		return Update{Result: out, Next: RouteTerminal}, nil
	}
}

// terminalNode exposes the result to the observer, if any.
func terminalNode(observe Observer) nodeFunc {
	return func(_ flowgraph.Context, s State) (Update, error) {
		if s.Result == "" {
			return Update{}, ErrNoResult
		}
		if observe != nil {
			observe(s)
		}
		return Update{}, nil
	}
}

// buildGraph wires the intent graph.
func buildGraph(gen llm.Generator, templates Templates, observe Observer) *flowgraph.Graph[State] {
	g := flowgraph.NewGraph[State]().
		AddNode(NodeRouter, applying(routerNode)).
		AddNode(NodeMath, applying(handlerNode(IntentMath, gen, templates))).
		AddNode(NodeSummarizer, applying(handlerNode(IntentSummarizer, gen, templates))).
		AddNode(NodeFallback, applying(handlerNode(IntentFallback, gen, templates))).
		AddNode(NodeExplain, applying(handlerNode(IntentExplain, gen, templates))).
		AddNode(NodeTerminal, applying(terminalNode(observe)))

	flowgraph.AddDispatch(g, NodeRouter,
		func(s State) Route { return s.Next },
		map[Route]string{
			RouteMath:       NodeMath,
			RouteSummarizer: NodeSummarizer,
			RouteFallback:   NodeFallback,
			RouteExplain:    NodeExplain,
		},
		IntentRoutes()...)

	return g.
		AddEdge(NodeMath, NodeTerminal).
		AddEdge(NodeSummarizer, NodeTerminal).
		AddEdge(NodeFallback, NodeTerminal).
		AddEdge(NodeExplain, NodeTerminal).
		SetEntry(NodeRouter).
		SetTerminal(NodeTerminal)
}
