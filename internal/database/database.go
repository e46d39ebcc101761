package database

import (
	"fmt"
	"time"

	"campusvoice/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// Init opens the pool and runs migrations, retrying transient failures
// with exponential backoff. Used at startup where the database container
// may still be coming up.
func Init(cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	var manager *Manager

	connect := func() error {
		var err error
		manager, err = NewManager(&cfg.Database, logger)
		if err != nil {
			logger.Warn("Database connection attempt failed", zap.Error(err))
			return err
		}
		return nil
	}

	policy := backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(backoff.WithInitialInterval(cfg.Database.RetryBackoff)),
		uint64(cfg.Database.MaxRetryAttempts),
	)
	if err := backoff.Retry(connect, policy); err != nil {
		return nil, fmt.Errorf("database unreachable after %d attempts: %w", cfg.Database.MaxRetryAttempts, err)
	}

	if err := runMigrationsWithRetry(manager, cfg.Database.MigrationsPath, logger, cfg.Database.MaxRetryAttempts); err != nil {
		manager.Close()
		return nil, err
	}

	return manager, nil
}

func runMigrationsWithRetry(manager *Manager, migrationsPath string, logger *zap.Logger, maxRetries int) error {
	migrate := func() error {
		if err := manager.Migrate(migrationsPath); err != nil {
			logger.Warn("Migration attempt failed", zap.Error(err))
			return err
		}
		return nil
	}

	policy := backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(backoff.WithInitialInterval(2*time.Second)),
		uint64(maxRetries),
	)
	if err := backoff.Retry(migrate, policy); err != nil {
		return fmt.Errorf("migrations failed after %d attempts: %w", maxRetries, err)
	}
	return nil
}
