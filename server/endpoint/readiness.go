package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/statekit/component"
)

// Readiness returns a handler for K8s readiness probes. It answers 200 while
// root reports ready and 503 otherwise, including when the check times out.
func Readiness(cfg Config, root component.ManageableComponent) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.timeout())
		defer cancel()

		ready, ok := race(ctx, root.IsReady)

		status := "ready"
		httpStatus := http.StatusOK
		if !ok || !ready {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"service":   cfg.ServiceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
