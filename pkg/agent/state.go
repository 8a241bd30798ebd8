package agent

import (
	"errors"
	"fmt"
)

// Route is the routing decision carried in State.
// It is a closed set: the router writes one of the four handler routes and
// handlers write RouteTerminal.
type Route uint8

// Routing decisions.
const (
	RouteUnset Route = iota
	RouteMath
	RouteSummarizer
	RouteFallback
	RouteExplain
	RouteTerminal
)

var routeNames = [...]string{
	RouteUnset:      "unset",
	RouteMath:       NodeMath,
	RouteSummarizer: NodeSummarizer,
	RouteFallback:   NodeFallback,
	RouteExplain:    NodeExplain,
	RouteTerminal:   NodeTerminal,
}

// IntentRoutes returns the routes the router may select, which is the
// complete key set of its dispatch table.
func IntentRoutes() []Route {
	return []Route{RouteMath, RouteSummarizer, RouteFallback, RouteExplain}
}

// String returns the route's name.
func (r Route) String() string {
	if int(r) < len(routeNames) {
		return routeNames[r]
	}
	return fmt.Sprintf("route(%d)", uint8(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Route) MarshalText() ([]byte, error) {
	if int(r) >= len(routeNames) {
		return nil, fmt.Errorf("invalid route %d", uint8(r))
	}
	return []byte(routeNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Route) UnmarshalText(text []byte) error {
	for i, name := range routeNames {
		if name == string(text) {
			*r = Route(i)
			return nil
		}
	}
	return fmt.Errorf("unknown route %q", text)
}

// ErrResultAlreadySet indicates an update tried to overwrite State.Result.
var ErrResultAlreadySet = errors.New("result already set")

// State is threaded through one run of the intent graph.
type State struct {
	// InputText is the raw request. Nodes never change it.
	InputText string `json:"input_text"`

	// Result is the generated answer, empty until a handler sets it.
	// Once set it cannot be replaced.
	Result string `json:"result,omitempty"`

	// Next is the latest routing decision.
	Next Route `json:"next"`
}

// Update is a node's partial change to State.
// Zero fields leave the corresponding State field unchanged.
type Update struct {
	Result string
	Next   Route
}

// Apply returns s with u merged in.
// Setting a Result on a State that already has one fails with
// ErrResultAlreadySet and returns s unchanged.
func (s State) Apply(u Update) (State, error) {
	if u.Result != "" {
		if s.Result != "" {
			return s, ErrResultAlreadySet
		}
		s.Result = u.Result
	}
	if u.Next != RouteUnset {
		s.Next = u.Next
	}
	return s, nil
}
