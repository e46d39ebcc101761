// file: internal/handlers/web/stats.go
package web

import (
	"net/http"

	"go.uber.org/zap"

	"campusvoice/internal/monitoring"
	"campusvoice/internal/response"
)

// StatsHandler serves the internal monitoring snapshot.
type StatsHandler struct {
	dashboard *monitoring.Dashboard
	writer    *response.Writer
	logger    *zap.Logger
}

// NewStatsHandler creates the internal stats endpoint handler.
func NewStatsHandler(dashboard *monitoring.Dashboard, writer *response.Writer, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{dashboard: dashboard, writer: writer, logger: logger}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.writer.WriteJSON(w, r, http.StatusOK, h.dashboard.Collect(r.Context()))
}
