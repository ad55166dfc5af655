package observability

import (
	"github.com/kbukum/statekit/state"
)

// HealthStatus is the coarse status used by health probes.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of a component and its subcomponents.
type Health struct {
	Name       string       `json:"name"`
	Status     HealthStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// StatusOf maps a component state to a probe status.
func StatusOf(s state.State) HealthStatus {
	switch s {
	case state.OK:
		return HealthStatusUp
	case state.Degraded:
		return HealthStatusDegraded
	default:
		return HealthStatusDown
	}
}

// HealthFromState converts a state snapshot into a Health tree. Healthy
// nodes carry no message; unhealthy ones carry their reason.
func HealthFromState(info state.Info) Health {
	h := Health{Name: info.Name, Status: StatusOf(info.State)}
	if !info.Healthy() {
		h.Message = info.Reason
		if h.Message == "" {
			h.Message = info.State.String()
		}
	}
	for _, c := range info.Components {
		h.Components = append(h.Components, HealthFromState(c))
	}
	return h
}
