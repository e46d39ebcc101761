// file: internal/handlers/web/health.go
package web

import (
	"net/http"

	"go.uber.org/zap"

	"campusvoice/internal/response"
	"campusvoice/internal/services"
)

// HealthHandler reports the health of the service's dependencies.
type HealthHandler struct {
	collection *services.ServiceCollection
	writer     *response.Writer
	logger     *zap.Logger
}

// NewHealthHandler creates the health endpoint handler.
func NewHealthHandler(collection *services.ServiceCollection, writer *response.Writer, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{collection: collection, writer: writer, logger: logger}
}

// ServeHTTP answers 200 while at least degraded, 503 when unhealthy.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	health := h.collection.HealthCheck(r.Context())

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	h.writer.WriteJSON(w, r, status, health)
}
