package component

import (
	"encoding/json"

	"github.com/kbukum/statekit/state"
)

// Diagnostics is the full debug dump of a component and its subtree.
type Diagnostics struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Domain     string     `json:"domain"`
	Options    Options    `json:"options"`
	State      state.Info `json:"state"`
	Aggregate  state.Info `json:"aggregate"`
	Parent     string     `json:"parent,omitempty"`
	Components []any      `json:"components,omitempty"`
}

// Diagnostics returns the debug dump. Subcomponents built on Base contribute
// their own dump, others their latest snapshot.
func (b *Base) Diagnostics() Diagnostics {
	d := Diagnostics{
		ID:        b.id,
		Type:      b.typeName,
		Domain:    b.opts.Domain,
		Options:   b.opts,
		State:     b.OwnState(),
		Aggregate: b.Snapshot(),
	}
	if p := b.Parent(); p != nil {
		d.Parent = p.Name()
	}
	for _, c := range b.Subcomponents() {
		if cb := baseOf(c); cb != nil {
			d.Components = append(d.Components, cb.Diagnostics())
			continue
		}
		d.Components = append(d.Components, c.ComponentState().Latest())
	}
	return d
}

// MarshalJSON encodes the diagnostics dump.
func (b *Base) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Diagnostics())
}
