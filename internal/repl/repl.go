// Package repl runs the interactive menu session.
//
// Each round shows a fixed menu, reads one line of input, prefixes it
// with the chosen option's marker and hands it to the agent. The session
// ends when the user declines to continue, quits at the menu, or input
// runs out.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/randalmurphal/intentgraph/internal/render"
	"github.com/randalmurphal/intentgraph/pkg/agent"
)

// Runner answers one request.
type Runner interface {
	RunOnce(ctx context.Context, input string) (agent.Result, error)
}

// Option is one entry of the menu.
type Option struct {
	Key    string
	Name   string
	Label  string
	Prefix string
}

// Options is the fixed menu, in display order.
var Options = []Option{
	{Key: "1", Name: "summary", Label: "Summary", Prefix: agent.SummarizeMarker + " "},
	{Key: "2", Name: "math", Label: "Math", Prefix: ""},
	{Key: "3", Name: "fallback", Label: "Fallback", Prefix: ""},
	{Key: "4", Name: "explain", Label: "Explain Concept", Prefix: agent.ExplainMarker + " "},
}

// Lookup finds an option by menu key or name, case-insensitively.
func Lookup(choice string) (Option, bool) {
	choice = strings.TrimSpace(choice)
	for _, opt := range Options {
		if choice == opt.Key || strings.EqualFold(choice, opt.Name) {
			return opt, true
		}
	}
	return Option{}, false
}

// Compose applies an option's prefix to the user's text.
func (o Option) Compose(text string) string {
	return o.Prefix + strings.TrimSpace(text)
}

// Session is one interactive session.
type Session struct {
	runner Runner
	in     *bufio.Reader
	out    *render.Renderer
	err    error // first read failure other than end of input
}

// New creates a session reading from in and writing through out.
// Input lines may be of any length.
func New(runner Runner, in io.Reader, out *render.Renderer) *Session {
	return &Session{
		runner: runner,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

// Run drives the session until it ends. End of input is a normal exit;
// a cancelled ctx returns its error.
func (s *Session) Run(ctx context.Context) error {
	s.out.Printf("\n%s\n", s.out.Heading("Welcome to the intentgraph assistant!"))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		opt, ok, err := s.chooseOption()
		if err != nil || !ok {
			return s.finish(err)
		}

		text, ok := s.ask("Enter your input: ")
		if !ok {
			return s.finish(s.err)
		}

		result, err := s.runner.RunOnce(ctx, opt.Compose(text))
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.out.Error(err)
		} else if err := s.out.Answer(result.Text); err != nil {
			return err
		}

		answer, ok := s.ask("\nDo you want to continue? (yes/no): ")
		if !ok || !isYes(answer) {
			return s.finish(s.err)
		}
	}
}

// chooseOption shows the menu until a valid choice is read.
// ok is false when the user quits or input ends.
func (s *Session) chooseOption() (Option, bool, error) {
	for {
		s.out.Printf("\n%s\n", s.out.Heading("Choose an option:"))
		for _, opt := range Options {
			s.out.Printf("%s. %s\n", opt.Key, opt.Label)
		}

		choice, ok := s.ask("Enter your choice (1-4, q to quit): ")
		if !ok {
			return Option{}, false, s.err
		}
		if isQuit(choice) {
			return Option{}, false, nil
		}
		if opt, found := Lookup(choice); found {
			return opt, true, nil
		}
		s.out.Printf("Invalid choice. Try again.\n")
	}
}

// ask prints prompt and reads one trimmed line. A last line without a
// newline still counts.
func (s *Session) ask(prompt string) (string, bool) {
	s.out.Printf("%s", s.out.Prompt(prompt))
	line, err := s.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
			return "", false
		}
		if line == "" {
			return "", false
		}
	}
	return strings.TrimSpace(line), true
}

func (s *Session) finish(err error) error {
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	s.out.Printf("\nExiting. Thank you!\n")
	return nil
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "yes", "y":
		return true
	}
	return false
}

func isQuit(s string) bool {
	switch strings.ToLower(s) {
	case "q", "quit", "exit":
		return true
	}
	return false
}
