package template

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// bracePattern matches ${name}.
	bracePattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

	// dollarPattern matches $name followed by a non-word character or end
	// of string, so $port does not match inside $portNumber.
	dollarPattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)(?:\b|$)`)
)

// Expander expands variable patterns in strings.
//
// Create with NewExpander() and configure with Option functions.
// Expander is safe for concurrent use after construction.
type Expander struct {
	missingAction MissingAction
	braceStyle    bool
	dollarStyle   bool
}

// NewExpander creates a new Expander with the given options.
//
// Default configuration:
//   - MissingAction: MissingKeep (keep placeholders as-is)
//   - BraceStyle: enabled (${var})
//   - DollarStyle: enabled ($var)
func NewExpander(opts ...Option) *Expander {
	e := &Expander{
		missingAction: MissingKeep,
		braceStyle:    true,
		dollarStyle:   true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand expands variable patterns in s using the provided vars.
//
// Substituted values are never expanded again within the same pattern
// style. With both styles enabled, a value inserted for ${var} that
// itself contains $name is expanded by the dollar pass; disable dollar
// style when values are untrusted text.
//
// An error is returned only when MissingAction is MissingError and a
// variable is not found.
func (e *Expander) Expand(s string, vars map[string]any) (string, error) {
	if s == "" {
		return "", nil
	}

	result := s
	var missing []string

	replace := func(pattern *regexp.Regexp, name func(match string) string) {
		result = pattern.ReplaceAllStringFunc(result, func(match string) string {
			varName := name(match)
			if val, ok := vars[varName]; ok {
				return fmt.Sprint(val)
			}
			switch e.missingAction {
			case MissingEmpty:
				return ""
			case MissingError:
				missing = append(missing, varName)
			}
			return match
		})
	}

	if e.braceStyle {
		replace(bracePattern, func(m string) string { return m[2 : len(m)-1] })
	}
	if e.dollarStyle {
		replace(dollarPattern, func(m string) string { return m[1:] })
	}

	if len(missing) > 0 {
		return result, &UndefinedVariableError{Names: missing}
	}
	return result, nil
}

// MustExpand expands variable patterns in s and panics on error.
func (e *Expander) MustExpand(s string, vars map[string]any) string {
	result, err := e.Expand(s, vars)
	if err != nil {
		panic(fmt.Sprintf("template: %v", err))
	}
	return result
}

// Variables returns the distinct variable names referenced by s under the
// expander's enabled styles, in order of first appearance.
func (e *Expander) Variables(s string) []string {
	seen := make(map[string]bool)
	var names []string
	collect := func(pattern *regexp.Regexp, text string) {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			if !seen[m[1]] {
				seen[m[1]] = true
				names = append(names, m[1])
			}
		}
	}

	if e.braceStyle {
		collect(bracePattern, s)
		// Braced references must not be matched again as $name.
		s = bracePattern.ReplaceAllString(s, "")
	}
	if e.dollarStyle {
		collect(dollarPattern, s)
	}
	return names
}

// UndefinedVariableError is returned when MissingError is set and
// one or more variables are not found.
type UndefinedVariableError struct {
	// Names is the list of undefined variable names.
	Names []string
}

// Error implements the error interface.
func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return fmt.Sprintf("undefined variable: %s", e.Names[0])
	}
	return fmt.Sprintf("undefined variables: %s", strings.Join(e.Names, ", "))
}

var defaultExpander = NewExpander()

// Expand expands variable patterns in s using the default expander.
// Missing variables stay as-is.
func Expand(s string, vars map[string]any) string {
	result, _ := defaultExpander.Expand(s, vars)
	return result
}
