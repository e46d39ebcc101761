package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campusvoice/internal/database"
	"campusvoice/internal/models"

	"go.uber.org/zap"
)

type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a Postgres-backed user repository.
func NewUserRepository(db *database.Manager, logger *zap.Logger) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const userColumns = `
	id, institution_id, public_id, password_hash, role, is_banned,
	created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, tenantID string, user *models.UserProfile) error {
	query := `
		INSERT INTO users (tenant_id, institution_id, public_id, password_hash, role, is_banned)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		tenantID, user.InstitutionID, user.PublicID, user.PasswordHash,
		user.Role, user.IsBanned,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	r.GetLogger().Debug("User created",
		zap.String("public_id", user.PublicID),
		zap.String("tenant_id", tenantID),
	)
	return nil
}

func (r *userRepository) GetByInstitutionID(ctx context.Context, tenantID, institutionID string) (*models.UserProfile, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE tenant_id = $1 AND institution_id = $2`
	return scanUser(r.QueryRowContext(ctx, query, tenantID, institutionID))
}

func (r *userRepository) GetByPublicID(ctx context.Context, tenantID, publicID string) (*models.UserProfile, error) {
	query := `SELECT` + userColumns + ` FROM users WHERE tenant_id = $1 AND public_id = $2`
	return scanUser(r.QueryRowContext(ctx, query, tenantID, publicID))
}

func (r *userRepository) SetBanned(ctx context.Context, tenantID, publicID string, banned bool) error {
	result, err := r.ExecContext(ctx,
		`UPDATE users SET is_banned = $3, updated_at = $4 WHERE tenant_id = $1 AND public_id = $2`,
		tenantID, publicID, banned, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to set banned flag: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, tenantID string, params models.PaginationParams) (*models.PaginatedResponse[*models.UserProfile], error) {
	baseQuery := `SELECT` + userColumns + ` FROM users`
	whereClause := `tenant_id = $1`

	query, pageArgs, err := r.BuildPaginatedQuery(baseQuery, whereClause, 1, params)
	if err != nil {
		return nil, err
	}
	args := append([]interface{}{tenantID}, pageArgs...)

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.UserProfile
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM users WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	return &models.PaginatedResponse[*models.UserProfile]{
		Data:       users,
		Pagination: r.BuildPaginationMeta(params, total),
	}, nil
}

func scanUser(row rowScanner) (*models.UserProfile, error) {
	var user models.UserProfile
	err := row.Scan(
		&user.ID, &user.InstitutionID, &user.PublicID, &user.PasswordHash,
		&user.Role, &user.IsBanned, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}
