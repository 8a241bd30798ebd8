// Package agent routes free-text requests through the intent graph.
//
// A request is classified into one of four intents, handled by the matching
// handler node (one backend call each), and finished by the terminal node:
//
//	router ──┬── math ───────┐
//	         ├── summarizer ─┤
//	         ├── fallback ───┼── terminal
//	         └── explain ────┘
//
// The graph is compiled once per Agent and is safe for concurrent RunOnce
// calls, each with its own State.
//
// # Basic Usage
//
//	gen := llm.NewGenerator(llm.NewOllama())
//	a, err := agent.New(gen)
//	if err != nil {
//	    return err
//	}
//	res, err := a.RunOnce(ctx, "2 + 2")
//	if err != nil {
//	    var runErr *agent.RunError
//	    errors.As(err, &runErr) // runErr.Kind says what went wrong
//	}
//	fmt.Println(res.Text)
//
// # Classification
//
// Classify is a pure function of the lower-cased input. The first matching
// rule wins:
//
//  1. contains "summarize"           → IntentSummarizer
//  2. contains any of + - * /        → IntentMath
//  3. contains "explain"             → IntentExplain
//  4. otherwise                      → IntentFallback
package agent
