package endpoint

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kbukum/statekit/observability"
)

// Metrics returns a handler exposing the state tree of source, plus Go
// runtime metrics, in the Prometheus text format.
func Metrics(source observability.StateSource) gin.HandlerFunc {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		observability.NewStateCollector(source),
		collectors.NewGoCollector(),
	)
	return gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
