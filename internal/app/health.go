package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// HealthChecker probes the backing stores the auth flows depend on.
type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{infra: infra}
}

// Handler serves GET /health. Either store failing its ping makes the
// whole service unhealthy, since logins need both Postgres and Redis.
func (h *HealthChecker) Handler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := map[string]error{
		"postgres": h.infra.Postgres().Ping(ctx),
		"redis":    h.infra.Redis().Ping(ctx),
	}

	status := "pass"
	details := make(map[string]string, len(checks))
	for name, err := range checks {
		if err != nil {
			status = "fail"
			details[name] = err.Error()
		} else {
			details[name] = "ok"
		}
	}

	code := http.StatusOK
	if status == "fail" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"checks": details,
	})
}
