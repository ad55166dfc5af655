package state

import (
	"fmt"
	"sort"
	"strings"
)

// Aggregator folds a node's own record and its children's latest snapshots
// into the snapshot that node publishes.
type Aggregator func(own Info, children []Info) Info

// Aggregate is the default Aggregator.
//
//   - own FAILED: FAILED, whatever the children report.
//   - own not OK/DEGRADED: own state is mirrored.
//   - otherwise: OK when own is OK and every child is OK, DEGRADED if not.
//
// A failing child therefore degrades its ancestors instead of failing them;
// the failure stays visible in the nested snapshot. Children reporting an
// unknown state count as UNAVAILABLE.
func Aggregate(own Info, children []Info) Info {
	out := Info{
		Name:      own.Name,
		State:     own.State,
		Reason:    own.Reason,
		UpdatedOn: own.UpdatedOn,
	}
	if len(children) == 0 {
		return out
	}

	out.Components = make([]Info, len(children))
	var notOK []Info
	for idx, c := range children {
		c.State = c.State.Normalize()
		out.Components[idx] = c
		if c.UpdatedOn.After(out.UpdatedOn) {
			out.UpdatedOn = c.UpdatedOn
		}
		if c.State != OK {
			notOK = append(notOK, c)
		}
	}

	switch {
	case own.State == Failed:
		return out
	case !own.State.Healthy():
		return out
	case own.State == OK && len(notOK) == 0:
		return out
	}

	out.State = Degraded
	if out.Reason == "" && len(notOK) > 0 {
		out.Reason = describe(notOK)
	}
	return out
}

// describe lists non-OK children worst first.
func describe(children []Info) string {
	sorted := make([]Info, len(children))
	copy(sorted, children)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].State.Severity() > sorted[b].State.Severity()
	})
	parts := make([]string, len(sorted))
	for idx, c := range sorted {
		parts[idx] = fmt.Sprintf("%s=%s", c.Name, c.State)
	}
	return "subcomponents not ok: " + strings.Join(parts, ", ")
}
