package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/statekit/component"
	"github.com/kbukum/statekit/observability"
	"github.com/kbukum/statekit/state"
)

// DefaultTimeout bounds how long a probe waits for the component tree.
const DefaultTimeout = 5 * time.Second

// Config configures the probe handlers.
type Config struct {
	ServiceName string
	Timeout     time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Health returns a handler that reports the state tree of root. OK and
// DEGRADED roots answer 200, everything else 503. Healthy nodes are reported
// without their reason.
func Health(cfg Config, root component.StatefulComponent) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.timeout())
		defer cancel()

		info, ok := race(ctx, func(ctx context.Context) state.Info {
			return root.GetState(ctx)
		})
		if !ok {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    observability.HealthStatusDown,
				"service":   cfg.ServiceName,
				"reason":    "health check timed out",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		httpStatus := http.StatusOK
		if !info.Healthy() {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     observability.StatusOf(info.State),
			"service":    cfg.ServiceName,
			"state":      info.State,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": []state.Info{info.Compact()},
		})
	}
}

// race runs fn in its own goroutine and gives up when ctx is done.
func race[T any](ctx context.Context, fn func(context.Context) T) (T, bool) {
	done := make(chan T, 1)
	go func() { done <- fn(ctx) }()

	select {
	case v := <-done:
		return v, true
	case <-ctx.Done():
		var zero T
		return zero, false
	}
}

// Register mounts /health, /ready, /live and /metrics for root.
func Register(r gin.IRoutes, cfg Config, root component.Component) {
	r.GET("/health", Health(cfg, root))
	r.GET("/ready", Readiness(cfg, root))
	r.GET("/live", Liveness(cfg.ServiceName))
	if src, ok := root.(observability.StateSource); ok {
		r.GET("/metrics", Metrics(src))
	}
}
