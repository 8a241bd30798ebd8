package agent

import (
	"fmt"
	"strings"
)

// Intent is the category a request is classified into.
type Intent uint8

// The four intents. The zero value is IntentFallback.
const (
	IntentFallback Intent = iota
	IntentMath
	IntentSummarizer
	IntentExplain
)

// Intents returns every intent in classification order.
func Intents() []Intent {
	return []Intent{IntentSummarizer, IntentMath, IntentExplain, IntentFallback}
}

// String returns the intent's name, which is also its handler node ID.
func (i Intent) String() string {
	switch i {
	case IntentMath:
		return NodeMath
	case IntentSummarizer:
		return NodeSummarizer
	case IntentExplain:
		return NodeExplain
	case IntentFallback:
		return NodeFallback
	default:
		return fmt.Sprintf("intent(%d)", uint8(i))
	}
}

// Route returns the routing decision that selects the intent's handler.
func (i Intent) Route() Route {
	switch i {
	case IntentMath:
		return RouteMath
	case IntentSummarizer:
		return RouteSummarizer
	case IntentExplain:
		return RouteExplain
	default:
		return RouteFallback
	}
}

// ParseIntent returns the intent named s (case-insensitive).
func ParseIntent(s string) (Intent, error) {
	for _, i := range Intents() {
		if strings.EqualFold(s, i.String()) {
			return i, nil
		}
	}
	return IntentFallback, fmt.Errorf("unknown intent %q", s)
}

// mathOperators trigger IntentMath.
var mathOperators = []string{"+", "-", "*", "/"}

// Classify returns the intent for a request. The first matching rule wins:
// "summarize", then any arithmetic operator, then "explain", else fallback.
// Matching is case-insensitive. Classify is total and deterministic.
func Classify(inputText string) Intent {
	text := strings.ToLower(inputText)
	switch {
	case strings.Contains(text, "summarize"):
		return IntentSummarizer
	case containsAny(text, mathOperators):
		return IntentMath
	case strings.Contains(text, "explain"):
		return IntentExplain
	default:
		return IntentFallback
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
