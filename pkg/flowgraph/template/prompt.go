package template

import (
	"fmt"
	"slices"
)

// Prompt is a validated prompt template.
//
// Prompts use brace style only, so text substituted for ${prompt} is
// inserted literally: a user typing "$prompt" or "${x}" gets exactly that.
type Prompt struct {
	text string
	vars []string
	exp  *Expander
}

// promptExpander is shared by all prompts.
var promptExpander = NewExpander(
	WithBraceStyle(true),
	WithDollarStyle(false),
	WithMissingAction(MissingError),
)

// NewPrompt validates text and returns a Prompt.
//
// allowed lists the variable names the template may reference; every name
// in allowed must appear at least once. An empty allowed list accepts any
// variables.
func NewPrompt(text string, allowed ...string) (*Prompt, error) {
	vars := promptExpander.Variables(text)

	if len(allowed) > 0 {
		for _, v := range vars {
			if !slices.Contains(allowed, v) {
				return nil, fmt.Errorf("prompt template %q: unknown variable %q", text, v)
			}
		}
		for _, want := range allowed {
			if !slices.Contains(vars, want) {
				return nil, fmt.Errorf("prompt template %q: missing ${%s}", text, want)
			}
		}
	}

	return &Prompt{text: text, vars: vars, exp: promptExpander}, nil
}

// MustPrompt is like NewPrompt but panics on error.
// Use it for templates compiled into the program.
func MustPrompt(text string, allowed ...string) *Prompt {
	p, err := NewPrompt(text, allowed...)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return p
}

// Render substitutes vars into the template.
// Returns *UndefinedVariableError if a referenced variable is missing.
func (p *Prompt) Render(vars map[string]any) (string, error) {
	return p.exp.Expand(p.text, vars)
}

// Variables returns the names the template references.
func (p *Prompt) Variables() []string {
	return slices.Clone(p.vars)
}

// String returns the raw template text.
func (p *Prompt) String() string {
	return p.text
}
