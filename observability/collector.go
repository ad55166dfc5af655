package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kbukum/statekit/state"
)

// StateSource is anything that can report a current state snapshot.
type StateSource interface {
	Snapshot() state.Info
}

// StateCollector exposes a component tree to Prometheus. Each scrape reads
// the latest published snapshot of the source.
type StateCollector struct {
	source  StateSource
	state   *prometheus.Desc
	healthy *prometheus.Desc
}

// NewStateCollector creates a collector for the tree rooted at source.
func NewStateCollector(source StateSource) *StateCollector {
	return &StateCollector{
		source: source,
		state: prometheus.NewDesc(
			"statekit_component_state",
			"Current state of a component; 1 for the active state, 0 otherwise.",
			[]string{"path", "state"}, nil,
		),
		healthy: prometheus.NewDesc(
			"statekit_component_healthy",
			"Whether a component is OK or DEGRADED.",
			[]string{"path"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.state
	ch <- c.healthy
}

// Collect implements prometheus.Collector.
func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	c.source.Snapshot().Walk(func(path string, node state.Info) {
		current := node.State.Normalize()
		for _, s := range state.All {
			v := 0.0
			if s == current {
				v = 1
			}
			ch <- prometheus.MustNewConstMetric(c.state, prometheus.GaugeValue, v, path, s.String())
		}
		healthy := 0.0
		if current.Healthy() {
			healthy = 1
		}
		ch <- prometheus.MustNewConstMetric(c.healthy, prometheus.GaugeValue, healthy, path)
	})
}
