package agent

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/intentgraph/pkg/flowgraph/template"
)

// PromptVar is the placeholder every handler template must contain.
const PromptVar = "prompt"

// Default handler templates.
const (
	DefaultMathTemplate       = "Solve this: ${prompt}"
	DefaultSummarizerTemplate = "Summarize this in simple terms: ${prompt}"
	DefaultFallbackTemplate   = "Respond helpfully to this query: ${prompt}"
	DefaultExplainTemplate    = "Explain this in a simple and child-friendly way (age under 18): ${prompt}"
)

// Templates holds the instruction template of each handler.
type Templates struct {
	byIntent map[Intent]*template.Prompt
}

// DefaultTemplates returns the built-in handler templates.
func DefaultTemplates() Templates {
	return Templates{byIntent: map[Intent]*template.Prompt{
		IntentMath:       template.MustPrompt(DefaultMathTemplate, PromptVar),
		IntentSummarizer: template.MustPrompt(DefaultSummarizerTemplate, PromptVar),
		IntentFallback:   template.MustPrompt(DefaultFallbackTemplate, PromptVar),
		IntentExplain:    template.MustPrompt(DefaultExplainTemplate, PromptVar),
	}}
}

// ParseTemplates returns the default templates with overrides applied.
// Keys are intent names ("math", "summarizer", "fallback", "explain");
// each override must reference ${prompt} and nothing else.
func ParseTemplates(overrides map[string]string) (Templates, error) {
	t := DefaultTemplates()
	for name, text := range overrides {
		intent, err := ParseIntent(name)
		if err != nil {
			return Templates{}, fmt.Errorf("template override: %w", err)
		}
		p, err := template.NewPrompt(text, PromptVar)
		if err != nil {
			return Templates{}, fmt.Errorf("template override for %s: %w", intent, err)
		}
		t.byIntent[intent] = p
	}
	return t, nil
}

// Template returns the template for intent.
func (t Templates) Template(intent Intent) *template.Prompt {
	if p, ok := t.byIntent[intent]; ok {
		return p
	}
	return DefaultTemplates().byIntent[intent]
}

// Compose derives the prompt for intent from inputText and wraps it in
// the intent's template.
func (t Templates) Compose(intent Intent, inputText string) (string, error) {
	return t.Template(intent).Render(map[string]any{PromptVar: DerivePrompt(intent, inputText)})
}

// Leading markers stripped from the input by the summarizer and explain handlers.
const (
	SummarizeMarker = "summarize:"
	ExplainMarker   = "explain:"
)

// DerivePrompt extracts the handler prompt from the raw request.
// Math and fallback use the input verbatim. Summarizer and explain trim
// it, strip a leading marker case-insensitively, and trim again.
func DerivePrompt(intent Intent, inputText string) string {
	switch intent {
	case IntentSummarizer:
		return stripMarker(inputText, SummarizeMarker)
	case IntentExplain:
		return stripMarker(inputText, ExplainMarker)
	default:
		return inputText
	}
}

func stripMarker(text, marker string) string {
	text = strings.TrimSpace(text)
	if len(text) >= len(marker) && strings.EqualFold(text[:len(marker)], marker) {
		text = text[len(marker):]
	}
	return strings.TrimSpace(text)
}
