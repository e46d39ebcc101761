// File: internal/monitoring/dashboard.go
package monitoring

import (
	"context"
	"runtime"
	"time"

	"campusvoice/internal/database"
	"campusvoice/internal/events"

	"go.uber.org/zap"
)

// Dashboard aggregates runtime, database and event bus statistics for
// the internal stats endpoint.
type Dashboard struct {
	db          *database.Manager
	bus         events.EventBus
	logger      *zap.Logger
	startTime   time.Time
	version     string
	environment string
}

// NewDashboard creates a monitoring dashboard.
func NewDashboard(db *database.Manager, bus events.EventBus, logger *zap.Logger, version, environment string) *Dashboard {
	return &Dashboard{
		db:          db,
		bus:         bus,
		logger:      logger,
		startTime:   time.Now(),
		version:     version,
		environment: environment,
	}
}

// Snapshot is a point-in-time view of the process and its dependencies.
type Snapshot struct {
	Timestamp   time.Time `json:"timestamp"`
	Uptime      string    `json:"uptime"`
	Version     string    `json:"version"`
	Environment string    `json:"environment"`

	Runtime  RuntimeStats          `json:"runtime"`
	Database DatabaseStats         `json:"database"`
	Events   *events.EventBusStats `json:"events"`
}

// RuntimeStats reports Go runtime resource usage.
type RuntimeStats struct {
	Goroutines  int    `json:"goroutines"`
	HeapAllocMB uint64 `json:"heap_alloc_mb"`
	HeapSysMB   uint64 `json:"heap_sys_mb"`
	NumGC       uint32 `json:"num_gc"`
	LastGCPause string `json:"last_gc_pause"`
	NumCPU      int    `json:"num_cpu"`
	GoVersion   string `json:"go_version"`
}

// DatabaseStats reports connection pool usage and probe health.
type DatabaseStats struct {
	Status          string        `json:"status"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	WaitCount       int64         `json:"wait_count"`
	WaitDuration    time.Duration `json:"wait_duration"`
}

// Collect gathers a snapshot. The database probe respects ctx.
func (d *Dashboard) Collect(ctx context.Context) *Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	dbStats := d.db.Stats()
	dbHealth := d.db.Health(ctx)

	lastPause := time.Duration(0)
	if mem.NumGC > 0 {
		lastPause = time.Duration(mem.PauseNs[(mem.NumGC+255)%256])
	}

	return &Snapshot{
		Timestamp:   time.Now(),
		Uptime:      time.Since(d.startTime).Round(time.Second).String(),
		Version:     d.version,
		Environment: d.environment,
		Runtime: RuntimeStats{
			Goroutines:  runtime.NumGoroutine(),
			HeapAllocMB: mem.HeapAlloc / 1024 / 1024,
			HeapSysMB:   mem.HeapSys / 1024 / 1024,
			NumGC:       mem.NumGC,
			LastGCPause: lastPause.String(),
			NumCPU:      runtime.NumCPU(),
			GoVersion:   runtime.Version(),
		},
		Database: DatabaseStats{
			Status:          dbHealth.Status,
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
			WaitDuration:    dbStats.WaitDuration,
		},
		Events: d.bus.Stats(),
	}
}
