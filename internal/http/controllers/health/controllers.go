// Package health holds the liveness and readiness controllers.
package health

import (
	"net/http"

	"github.com/dropDatabas3/rolbazli/internal/http/helpers"
	svc "github.com/dropDatabas3/rolbazli/internal/http/services/health"
)

// Controllers groups the health controllers.
type Controllers struct {
	Health *HealthController
}

// NewControllers builds the health controllers.
func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Health: NewHealthController(s.Health)}
}

// HealthController serves /healthz and /readyz.
type HealthController struct {
	service svc.HealthService
}

// NewHealthController builds a HealthController.
func NewHealthController(service svc.HealthService) *HealthController {
	return &HealthController{service: service}
}

// Live always answers 200 while the process serves.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready answers 503 when the store is unreachable.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	st, ok := c.service.Check(r.Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
	}
	helpers.WriteJSON(w, status, st)
}
