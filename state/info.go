package state

import "time"

// Info is a point-in-time snapshot of one node in a component tree.
type Info struct {
	Name       string    `json:"name"`
	State      State     `json:"state"`
	Reason     string    `json:"reason,omitempty"`
	UpdatedOn  time.Time `json:"updatedOn"`
	Components []Info    `json:"components,omitempty"`
}

// Healthy reports whether the snapshot's state is OK or DEGRADED.
func (i Info) Healthy() bool {
	return i.State.Healthy()
}

// IsLeaf reports whether the snapshot has no children.
func (i Info) IsLeaf() bool {
	return len(i.Components) == 0
}

// Compact returns the form sent across process boundaries: healthy nodes
// are reduced to their status while unhealthy nodes keep their reason.
func (i Info) Compact() Info {
	out := Info{Name: i.Name, State: i.State, UpdatedOn: i.UpdatedOn}
	if !i.Healthy() {
		out.Reason = i.Reason
	}
	if len(i.Components) > 0 {
		out.Components = make([]Info, len(i.Components))
		for idx, c := range i.Components {
			out.Components[idx] = c.Compact()
		}
	}
	return out
}

// Find returns the first node named name, searching depth-first.
func (i Info) Find(name string) (Info, bool) {
	if i.Name == name {
		return i, true
	}
	for _, c := range i.Components {
		if found, ok := c.Find(name); ok {
			return found, true
		}
	}
	return Info{}, false
}

// Depth returns the number of edges on the longest path from this node to a leaf.
func (i Info) Depth() int {
	depth := 0
	for _, c := range i.Components {
		if d := c.Depth() + 1; d > depth {
			depth = d
		}
	}
	return depth
}

// Walk visits every node depth-first, passing the dot-joined chain of names
// leading to it.
func (i Info) Walk(fn func(path string, node Info)) {
	i.walk("", fn)
}

func (i Info) walk(prefix string, fn func(string, Info)) {
	path := i.Name
	if prefix != "" {
		path = prefix + "." + i.Name
	}
	fn(path, i)
	for _, c := range i.Components {
		c.walk(path, fn)
	}
}

// Change mutates a node's own state record.
type Change func(*Info)

// To sets the state.
func To(s State) Change {
	return func(i *Info) { i.State = s }
}

// Because sets the reason.
func Because(reason string) Change {
	return func(i *Info) { i.Reason = reason }
}

// ClearReason removes the reason.
func ClearReason() Change {
	return func(i *Info) { i.Reason = "" }
}

// Apply applies changes to a copy of i and stamps UpdatedOn with now.
func (i Info) Apply(now time.Time, changes ...Change) Info {
	for _, c := range changes {
		if c != nil {
			c(&i)
		}
	}
	i.UpdatedOn = now
	return i
}
