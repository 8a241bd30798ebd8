/*
Package flowgraph builds and runs directed graphs of typed nodes.

# Overview

A graph threads one state value of type S through a sequence of nodes.
Each node is a function from state to state; edges decide which node runs
next. Graphs are built with a chaining builder, validated once by Compile
and then run any number of times, concurrently if the nodes allow it.

	type State struct {
	    Input  string
	    Output string
	}

	func process(ctx flowgraph.Context, s State) (State, error) {
	    s.Output = "Processed: " + s.Input
	    return s, nil
	}

	compiled, err := flowgraph.NewGraph[State]().
	    AddNode("process", process).
	    SetEntry("process").
	    SetTerminal("process").
	    Compile()
	if err != nil {
	    log.Fatal(err)
	}

	result, err := compiled.Run(flowgraph.NewContext(context.Background()), State{Input: "hello"})

# Terminal node

SetTerminal marks the node after which a run stops. The terminal may not
have outgoing edges. Graphs without a terminal end on an edge to END.

# Dispatch

AddDispatch routes on a key of a closed type. The table maps each key to
a target and the declared key set lets Compile check the table is
complete:

	flowgraph.AddDispatch(graph, "router",
	    func(s State) Kind { return s.Kind },
	    map[Kind]string{KindMath: "math", KindOther: "fallback"},
	    KindMath, KindOther)

A key missing from the table at runtime fails the run with a RoutingError.
AddConditionalEdge takes a plain router function for open-ended routing;
its declared targets, if given, are checked by Compile too.

# Cycles

A conditional edge may lead back to an earlier node. Runs are capped at
1000 node executions by default (WithMaxIterations); exceeding the cap
returns a MaxIterationsError.

# Run journal

WithCheckpointing records the state after every node in a checkpoint.Store,
keyed by run ID:

	store, _ := checkpoint.NewSQLiteStore("./runs.db")
	defer store.Close()

	result, err := compiled.Run(ctx, state,
	    flowgraph.WithCheckpointing(store),
	    flowgraph.WithRunID("run-123"))

	history, _ := checkpoint.History(ctx, store, "run-123")

Journal write failures are logged unless WithCheckpointFailureFatal is set.

# Observability

	result, err := compiled.Run(ctx, state,
	    flowgraph.WithObservabilityLogger(logger),
	    flowgraph.WithMetrics(true),
	    flowgraph.WithTracing(true))

Logs carry run_id and node_id. Metrics: flowgraph.node.executions,
flowgraph.node.latency_ms, flowgraph.node.errors, flowgraph.graph.runs,
flowgraph.graph.latency_ms, flowgraph.route.decisions and
flowgraph.checkpoint.size_bytes. Spans: flowgraph.run > flowgraph.node.{id}.
WithMetricsRecorder and WithSpanManager record to explicit providers
instead of the global ones.

# Errors

	var nodeErr *flowgraph.NodeError
	if errors.As(err, &nodeErr) {
	    log.Printf("node %s failed: %v", nodeErr.NodeID, nodeErr.Err)
	}

Panics in nodes are recovered into PanicError with the stack. Routing
failures are RoutingError, cancellation is CancellationError.

# Thread Safety

  - Graph[S] is NOT safe for concurrent use during construction
  - CompiledGraph[S] IS safe for concurrent use (immutable)
  - checkpoint.Store implementations are safe for concurrent use

# Subpackages

  - checkpoint: run journal storage (memory, SQLite)
  - config: map-backed configuration with YAML/JSON loading
  - errors: error categories and retry with backoff
  - llm: text-generation clients (Ollama, claude CLI, mock)
  - observability: logging, metrics and tracing helpers
  - registry: generic keyed registry
  - template: ${var} prompt templates
*/
package flowgraph
