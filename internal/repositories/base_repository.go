package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"campusvoice/internal/database"
	"campusvoice/internal/models"

	"go.uber.org/zap"
)

// BaseRepository provides the shared database plumbing the concrete
// repositories embed.
type BaseRepository struct {
	db     *database.Manager
	logger *zap.Logger
}

// NewBaseRepository creates a base repository.
func NewBaseRepository(db *database.Manager, logger *zap.Logger) *BaseRepository {
	return &BaseRepository{db: db, logger: logger}
}

// ===============================
// CORE DATABASE OPERATIONS
// ===============================

// ExecContext executes a statement, logging slow queries.
func (r *BaseRepository) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)

	if duration := time.Since(start); duration > 100*time.Millisecond {
		r.logger.Warn("Slow query detected",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}
	if err != nil {
		r.logger.Error("Query execution failed",
			zap.String("query", truncateQuery(query)),
			zap.Error(err),
		)
	}
	return result, err
}

// QueryContext executes a query that returns rows.
func (r *BaseRepository) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)

	if duration := time.Since(start); duration > 100*time.Millisecond {
		r.logger.Warn("Slow query detected",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}
	if err != nil {
		r.logger.Error("Query execution failed",
			zap.String("query", truncateQuery(query)),
			zap.Error(err),
		)
	}
	return rows, err
}

// QueryRowContext executes a query that returns a single row.
func (r *BaseRepository) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.db.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (r *BaseRepository) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, opts)
}

// WithTransaction runs fn inside a transaction, rolling back on error or
// panic.
func (r *BaseRepository) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("Failed to rollback transaction", zap.NamedError("rollback_error", rbErr), zap.Error(err))
		}
		return err
	}
	return tx.Commit()
}

// ===============================
// PAGINATION HELPERS
// ===============================

var validSortColumns = map[string]bool{
	"created_at": true, "updated_at": true, "title": true,
	"upvotes": true, "category": true, "id": true,
}

// BuildPaginatedQuery appends ordering and limit clauses to baseQuery.
// argOffset is the number of placeholders whereClause already uses, so
// the pagination placeholders continue the numbering.
func (r *BaseRepository) BuildPaginatedQuery(baseQuery, whereClause string, argOffset int, params models.PaginationParams) (string, []interface{}, error) {
	var args []interface{}
	argIndex := argOffset + 1

	query := baseQuery
	if whereClause != "" {
		query += " WHERE " + whereClause
	}

	if params.Sort == "" || !validSortColumns[params.Sort] {
		params.Sort = "created_at"
	}
	if params.Order != "asc" && params.Order != "desc" {
		params.Order = "desc"
	}

	query += fmt.Sprintf(" ORDER BY %s %s, id DESC", params.Sort, strings.ToUpper(params.Order))

	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}

	query += fmt.Sprintf(" LIMIT $%d", argIndex)
	args = append(args, params.Limit)
	argIndex++

	if params.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, params.Offset)
	}

	return query, args, nil
}

// GetTotalCount executes a count query.
func (r *BaseRepository) GetTotalCount(ctx context.Context, countQuery string, args ...interface{}) (int64, error) {
	var total int64
	err := r.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	return total, err
}

// BuildPaginationMeta creates pagination metadata for a page.
func (r *BaseRepository) BuildPaginationMeta(params models.PaginationParams, total int64) models.PaginationMeta {
	if params.Limit <= 0 {
		params.Limit = 20
	}

	currentPage := (params.Offset / params.Limit) + 1
	totalPages := int((total + int64(params.Limit) - 1) / int64(params.Limit))

	return models.PaginationMeta{
		CurrentPage:  currentPage,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: params.Limit,
		HasNext:      int64(params.Offset+params.Limit) < total,
		HasPrev:      params.Offset > 0,
	}
}

// ===============================
// UTILITY METHODS
// ===============================

// IsNotFound reports whether err is the no-rows sentinel.
func (r *BaseRepository) IsNotFound(err error) bool {
	return err == sql.ErrNoRows
}

// GetDB exposes the underlying manager for health checks.
func (r *BaseRepository) GetDB() *database.Manager {
	return r.db
}

// GetLogger exposes the repository logger.
func (r *BaseRepository) GetLogger() *zap.Logger {
	return r.logger
}

func truncateQuery(query string) string {
	const maxLength = 200
	if len(query) <= maxLength {
		return query
	}
	return query[:maxLength] + "..."
}
