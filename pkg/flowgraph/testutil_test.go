package flowgraph

import (
	"context"
	"errors"
)

// ticket is the request state used across engine tests.
type ticket struct {
	Text   string   `json:"text"`
	Kind   kind     `json:"kind"`
	Answer string   `json:"answer"`
	Trail  []string `json:"trail"`
	Hops   int      `json:"hops"`
}

// kind is a closed dispatch key.
type kind int

const (
	kindQuestion kind = iota
	kindCommand
	kindOther
)

func (k kind) String() string {
	switch k {
	case kindQuestion:
		return "question"
	case kindCommand:
		return "command"
	case kindOther:
		return "other"
	}
	return "kind?"
}

var allKinds = []kind{kindQuestion, kindCommand, kindOther}

// visit returns a node that appends its name to the trail.
func visit(name string) NodeFunc[ticket] {
	return func(_ Context, t ticket) (ticket, error) {
		t.Trail = append(t.Trail, name)
		return t, nil
	}
}

// answer returns a node that sets the answer and records its visit.
func answer(name, text string) NodeFunc[ticket] {
	return func(_ Context, t ticket) (ticket, error) {
		t.Trail = append(t.Trail, name)
		t.Answer = text
		return t, nil
	}
}

// classifyTicket sets Kind from the text.
func classifyTicket(_ Context, t ticket) (ticket, error) {
	t.Trail = append(t.Trail, "classify")
	switch {
	case len(t.Text) > 0 && t.Text[len(t.Text)-1] == '?':
		t.Kind = kindQuestion
	case len(t.Text) > 0 && t.Text[0] == '/':
		t.Kind = kindCommand
	default:
		t.Kind = kindOther
	}
	return t, nil
}

func failing(err error) NodeFunc[ticket] {
	return func(_ Context, t ticket) (ticket, error) {
		return t, err
	}
}

func panicking(value any) NodeFunc[ticket] {
	return func(_ Context, t ticket) (ticket, error) {
		panic(value)
	}
}

var errBackend = errors.New("backend unavailable")

// routingGraph is the classify → {question, command, other} → reply graph.
func routingGraph() *Graph[ticket] {
	g := NewGraph[ticket]().
		AddNode("classify", classifyTicket).
		AddNode("question", answer("question", "an answer")).
		AddNode("command", answer("command", "done")).
		AddNode("other", answer("other", "noted")).
		AddNode("reply", visit("reply")).
		AddEdge("question", "reply").
		AddEdge("command", "reply").
		AddEdge("other", "reply").
		SetEntry("classify").
		SetTerminal("reply")

	AddDispatch(g, "classify",
		func(t ticket) kind { return t.Kind },
		map[kind]string{kindQuestion: "question", kindCommand: "command", kindOther: "other"},
		allKinds...)
	return g
}

func testCtx() Context {
	return NewContext(context.Background())
}
