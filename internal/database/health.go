package database

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Health status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus describes the outcome of a health check.
type HealthStatus struct {
	Status          string        `json:"status"`
	CheckedAt       time.Time     `json:"checked_at"`
	PingLatency     time.Duration `json:"ping_latency"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	WaitCount       int64         `json:"wait_count"`
	Errors          []string      `json:"errors,omitempty"`
}

// HealthChecker runs connectivity and pool checks against the manager.
type HealthChecker struct {
	manager *Manager
	logger  *zap.Logger
}

// NewHealthChecker creates a health checker bound to the manager.
func NewHealthChecker(manager *Manager, logger *zap.Logger) *HealthChecker {
	return &HealthChecker{manager: manager, logger: logger}
}

// Check pings the database and inspects the connection pool.
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    StatusHealthy,
		CheckedAt: time.Now(),
	}

	start := time.Now()
	if err := hc.manager.DB().PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Errors = append(status.Errors, err.Error())
		hc.logger.Error("Database health check failed", zap.Error(err))
		return status
	}
	status.PingLatency = time.Since(start)

	stats := hc.manager.Stats()
	status.OpenConnections = stats.OpenConnections
	status.InUse = stats.InUse
	status.Idle = stats.Idle
	status.WaitCount = stats.WaitCount

	// A saturated pool still serves requests, just slowly.
	if stats.OpenConnections > 0 && stats.InUse == stats.OpenConnections && stats.WaitCount > 0 {
		status.Status = StatusDegraded
		status.Errors = append(status.Errors, "connection pool saturated")
	}

	return status
}

// WaitForHealthy polls until the database reports healthy or the timeout
// elapses.
func (hc *HealthChecker) WaitForHealthy(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		if status := hc.Check(ctx); status.Status != StatusUnhealthy {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
