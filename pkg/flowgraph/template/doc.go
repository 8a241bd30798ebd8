/*
Package template expands ${var} and $var placeholders in strings.

# Basic Usage

	result := template.Expand("Hello ${name}", map[string]any{"name": "World"})
	// result: "Hello World"

Dollar style uses word boundaries, so $port won't match inside $portNumber.
Missing variables are kept as-is unless configured otherwise:

	exp := template.NewExpander(template.WithMissingAction(template.MissingError))
	_, err := exp.Expand("Hello ${missing}", nil)
	// err: "undefined variable: missing"

# Prompts

Prompt wraps a template that is validated once and rendered many times.
It only understands brace style, so user-supplied text is never expanded:

	p := template.MustPrompt("Solve this: ${prompt}", "prompt")
	out, _ := p.Render(map[string]any{"prompt": "2 + $x"})
	// out: "Solve this: 2 + $x"

# Thread Safety

Expander and Prompt are safe for concurrent use after construction.
*/
package template
