package state

// State is the lifecycle/health state of a single component.
type State string

const (
	Uninitialized State = "UNINITIALIZED"
	Initializing  State = "INITIALIZING"
	OK            State = "OK"
	Degraded      State = "DEGRADED"
	Unavailable   State = "UNAVAILABLE"
	Failed        State = "FAILED"
	ShuttingDown  State = "SHUTTING_DOWN"
	ShutDown      State = "SHUT_DOWN"
)

// All lists every known state in lifecycle order.
var All = []State{
	Uninitialized, Initializing, OK, Degraded,
	Unavailable, Failed, ShuttingDown, ShutDown,
}

// severity orders states from best to worst. It only decides how unhealthy
// children are ranked in a synthesized reason; a healthy parent with any
// non-OK child is DEGRADED whatever the child's rank.
var severity = map[State]int{
	OK:            0,
	Degraded:      1,
	Uninitialized: 2,
	Initializing:  3,
	ShuttingDown:  4,
	ShutDown:      5,
	Unavailable:   6,
	Failed:        7,
}

// String returns the state name.
func (s State) String() string { return string(s) }

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	_, ok := severity[s]
	return ok
}

// Healthy reports whether a component in this state can serve requests.
func (s State) Healthy() bool {
	return s == OK || s == Degraded
}

// Normalize maps unknown states to Unavailable.
func (s State) Normalize() State {
	if !s.Valid() {
		return Unavailable
	}
	return s
}

// Severity returns the rank of s in the total order
// OK < DEGRADED < UNINITIALIZED < INITIALIZING < SHUTTING_DOWN < SHUT_DOWN < UNAVAILABLE < FAILED.
// Unknown states rank as UNAVAILABLE.
func (s State) Severity() int {
	return severity[s.Normalize()]
}

// Parse converts a state name into a State. Unknown names yield false.
func Parse(name string) (State, bool) {
	s := State(name)
	return s, s.Valid()
}
