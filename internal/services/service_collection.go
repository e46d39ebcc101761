// file: internal/services/service_collection.go
package services

import (
	"context"
	"fmt"
	"time"

	"campusvoice/internal/cache"
	"campusvoice/internal/config"
	"campusvoice/internal/database"
	"campusvoice/internal/events"
	"campusvoice/internal/lifecycle"
	"campusvoice/internal/repositories"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.uber.org/zap"
)

// ServiceCollection wires repositories, infrastructure and the business
// services together with dependency injection.
type ServiceCollection struct {
	// Core services
	AuthService       AuthService
	SuggestionService SuggestionService
	ModerationService ModerationService
	SummarizerService SummarizerService
	AttachmentService AttachmentService

	// Repositories
	Suggestions repositories.SuggestionRepository
	Users       repositories.UserRepository

	// Infrastructure
	Cache      cache.Cache
	EventBus   events.EventBus
	Engine     *lifecycle.Engine
	Logger     *zap.Logger
	Config     *config.Config
	DBManager  *database.Manager
	Cloudinary *cloudinary.Cloudinary
}

// NewServiceCollection initializes everything in dependency order.
func NewServiceCollection(
	dbManager *database.Manager,
	cfg *config.Config,
	logger *zap.Logger,
) (*ServiceCollection, error) {
	if dbManager == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	sc := &ServiceCollection{
		DBManager: dbManager,
		Config:    cfg,
		Logger:    logger,
	}

	if err := sc.initializeInfrastructure(); err != nil {
		return nil, fmt.Errorf("failed to initialize infrastructure: %w", err)
	}
	sc.initializeRepositories()
	sc.initializeServices()

	logger.Info("Service collection initialized",
		zap.String("tenant_id", cfg.Store.TenantID),
		zap.Bool("cloudinary_enabled", sc.Cloudinary != nil),
		zap.Bool("summarizer_enabled", cfg.Summarizer.APIKey != ""),
	)
	return sc, nil
}

func (sc *ServiceCollection) initializeInfrastructure() error {
	var err error
	sc.Cache, err = cache.New(&sc.Config.Cache, sc.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	sc.EventBus = events.NewEventBus(events.DefaultEventBusConfig(), sc.Logger)
	sc.Engine = lifecycle.NewEngine(nil)

	if sc.Config.Cloudinary.CloudName != "" {
		cld, err := cloudinary.NewFromParams(
			sc.Config.Cloudinary.CloudName,
			sc.Config.Cloudinary.APIKey,
			sc.Config.Cloudinary.APISecret,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize Cloudinary: %w", err)
		}
		sc.Cloudinary = cld
	}
	return nil
}

func (sc *ServiceCollection) initializeRepositories() {
	sc.Suggestions = repositories.NewSuggestionRepository(sc.DBManager, sc.Logger)
	sc.Users = repositories.NewUserRepository(sc.DBManager, sc.Logger)
}

func (sc *ServiceCollection) initializeServices() {
	tenantID := sc.Config.Store.TenantID

	sc.SummarizerService = NewSummarizerService(&sc.Config.Summarizer, sc.Logger)

	sc.AuthService = NewAuthService(
		sc.Users,
		sc.EventBus,
		&sc.Config.Auth,
		tenantID,
		sc.Logger,
	)

	sc.SuggestionService = NewSuggestionService(
		sc.Suggestions,
		sc.Engine,
		sc.SummarizerService,
		sc.Cache,
		sc.Config.Cache.DefaultTTL,
		sc.EventBus,
		tenantID,
		sc.Logger,
	)

	sc.ModerationService = NewModerationService(
		sc.Suggestions,
		sc.Users,
		sc.Engine,
		sc.Cache,
		sc.EventBus,
		tenantID,
		sc.Logger,
	)

	sc.AttachmentService = NewAttachmentService(
		sc.Cloudinary,
		&sc.Config.Cloudinary,
		sc.Suggestions,
		sc.Cache,
		sc.EventBus,
		tenantID,
		sc.Logger,
	)
}

// Start launches background workers.
func (sc *ServiceCollection) Start(ctx context.Context) error {
	return sc.EventBus.Start(ctx)
}

// HealthStatus summarizes the health of the collection's dependencies.
type HealthStatus struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
}

// HealthCheck probes the database, cache and event bus.
func (sc *ServiceCollection) HealthCheck(ctx context.Context) *HealthStatus {
	health := &HealthStatus{
		Status:       "healthy",
		Timestamp:    time.Now(),
		Dependencies: make(map[string]string),
	}

	dbHealth := sc.DBManager.Health(ctx)
	health.Dependencies["database"] = dbHealth.Status
	switch dbHealth.Status {
	case database.StatusUnhealthy:
		health.Status = "unhealthy"
	case database.StatusDegraded:
		health.Status = "degraded"
	}

	if err := sc.Cache.Health(ctx); err != nil {
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
		health.Dependencies["cache"] = err.Error()
	} else {
		health.Dependencies["cache"] = "healthy"
	}

	if err := sc.EventBus.Health(); err != nil {
		if health.Status == "healthy" {
			health.Status = "degraded"
		}
		health.Dependencies["events"] = err.Error()
	} else {
		health.Dependencies["events"] = "healthy"
	}

	return health
}

// Shutdown stops background workers and closes connections.
func (sc *ServiceCollection) Shutdown(ctx context.Context) error {
	sc.Logger.Info("Shutting down service collection")

	var errs []error
	if err := sc.EventBus.Stop(ctx); err != nil {
		errs = append(errs, fmt.Errorf("event bus stop: %w", err))
	}
	if err := sc.Cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("cache close: %w", err))
	}
	if err := sc.DBManager.Close(); err != nil {
		errs = append(errs, fmt.Errorf("database close: %w", err))
	}

	if len(errs) > 0 {
		for _, err := range errs {
			sc.Logger.Error("Shutdown error", zap.Error(err))
		}
		return fmt.Errorf("shutdown completed with %d errors", len(errs))
	}

	sc.Logger.Info("Service collection shutdown completed")
	return nil
}
