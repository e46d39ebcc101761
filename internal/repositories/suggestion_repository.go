package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campusvoice/internal/database"
	"campusvoice/internal/models"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type suggestionRepository struct {
	*BaseRepository
}

// NewSuggestionRepository creates a Postgres-backed suggestion repository.
func NewSuggestionRepository(db *database.Manager, logger *zap.Logger) SuggestionRepository {
	return &suggestionRepository{
		BaseRepository: NewBaseRepository(db, logger),
	}
}

const suggestionColumns = `
	id, user_public_id, title, description, summary, tags, category,
	priority, status, solved, resolved_at, comment_count, upvotes,
	downvotes, attachments, is_public, created_at, updated_at`

// ===============================
// SUGGESTIONS
// ===============================

func (r *suggestionRepository) Create(ctx context.Context, tenantID string, s *models.Suggestion) error {
	query := `
		INSERT INTO suggestions (
			tenant_id, user_public_id, title, description, summary, tags,
			category, priority, status, solved, resolved_at, comment_count,
			upvotes, downvotes, attachments, is_public
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		tenantID, s.UserID, s.Title, s.Description, s.Summary, s.Tags,
		s.Category, s.Priority, s.Status, s.Solved, s.ResolvedAt, s.CommentCount,
		s.Upvotes, s.Downvotes, s.Attachments, s.IsPublic,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create suggestion: %w", err)
	}

	r.GetLogger().Debug("Suggestion created",
		zap.Int64("suggestion_id", s.ID),
		zap.String("tenant_id", tenantID),
	)
	return nil
}

func (r *suggestionRepository) GetByID(ctx context.Context, tenantID string, id int64) (*models.Suggestion, error) {
	query := `SELECT` + suggestionColumns + ` FROM suggestions WHERE tenant_id = $1 AND id = $2`

	s, err := scanSuggestion(r.QueryRowContext(ctx, query, tenantID, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to get suggestion %d: %w", id, err)
	}

	if err := r.loadComments(ctx, []*models.Suggestion{s}); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *suggestionRepository) Update(ctx context.Context, tenantID string, s *models.Suggestion) error {
	query := `
		UPDATE suggestions SET
			title = $3, description = $4, summary = $5, tags = $6,
			category = $7, priority = $8, status = $9, solved = $10,
			resolved_at = $11, comment_count = $12, upvotes = $13,
			downvotes = $14, attachments = $15, is_public = $16,
			updated_at = $17
		WHERE tenant_id = $1 AND id = $2`

	result, err := r.ExecContext(ctx, query,
		tenantID, s.ID, s.Title, s.Description, s.Summary, s.Tags,
		s.Category, s.Priority, s.Status, s.Solved, s.ResolvedAt,
		s.CommentCount, s.Upvotes, s.Downvotes, s.Attachments, s.IsPublic,
		s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update suggestion %d: %w", s.ID, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *suggestionRepository) Delete(ctx context.Context, tenantID string, id int64) error {
	result, err := r.ExecContext(ctx, `DELETE FROM suggestions WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete suggestion %d: %w", id, err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *suggestionRepository) ListAll(ctx context.Context, tenantID string) ([]*models.Suggestion, error) {
	query := `SELECT` + suggestionColumns + ` FROM suggestions WHERE tenant_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	suggestions, err := collectSuggestions(rows)
	if err != nil {
		return nil, err
	}
	if err := r.loadComments(ctx, suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

// ===============================
// VOTES
// ===============================

func (r *suggestionRepository) GetVoteLedger(ctx context.Context, userPublicID string) (*models.VoteLedger, error) {
	rows, err := r.QueryContext(ctx,
		`SELECT suggestion_id, direction FROM suggestion_votes WHERE user_public_id = $1`,
		userPublicID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load vote ledger: %w", err)
	}
	defer rows.Close()

	ledger := models.NewVoteLedger()
	for rows.Next() {
		var suggestionID int64
		var direction string
		if err := rows.Scan(&suggestionID, &direction); err != nil {
			return nil, err
		}
		ledger.Record(suggestionID, models.VoteDirection(direction))
	}
	return ledger, rows.Err()
}

func (r *suggestionRepository) GetViewerVote(ctx context.Context, suggestionID int64, userPublicID string) (models.VoteDirection, bool, error) {
	var direction string
	err := r.QueryRowContext(ctx,
		`SELECT direction FROM suggestion_votes WHERE suggestion_id = $1 AND user_public_id = $2`,
		suggestionID, userPublicID,
	).Scan(&direction)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get viewer vote: %w", err)
	}
	return models.VoteDirection(direction), true, nil
}

// SaveVoteState writes the vote counters and the viewer's ledger row in
// one transaction. The vote row, not the counters, is the source of
// truth for who voted which way; the counters are kept in lockstep here
// so concurrent toggles never lose an increment.
func (r *suggestionRepository) SaveVoteState(ctx context.Context, tenantID string, s *models.Suggestion, userPublicID string, ledger *models.VoteLedger) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE suggestions SET upvotes = $3, downvotes = $4, updated_at = $5
			 WHERE tenant_id = $1 AND id = $2`,
			tenantID, s.ID, s.Upvotes, s.Downvotes, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update vote counts: %w", err)
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM suggestion_votes WHERE suggestion_id = $1 AND user_public_id = $2`,
			s.ID, userPublicID,
		); err != nil {
			return fmt.Errorf("failed to clear vote row: %w", err)
		}

		var direction models.VoteDirection
		switch {
		case ledger.Has(s.ID, models.VoteUp):
			direction = models.VoteUp
		case ledger.Has(s.ID, models.VoteDown):
			direction = models.VoteDown
		default:
			return nil
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO suggestion_votes (suggestion_id, user_public_id, direction)
			 VALUES ($1, $2, $3)`,
			s.ID, userPublicID, string(direction),
		); err != nil {
			return fmt.Errorf("failed to record vote: %w", err)
		}
		return nil
	})
}

// ===============================
// COMMENTS
// ===============================

func (r *suggestionRepository) AddComment(ctx context.Context, tenantID string, s *models.Suggestion, comment *models.Comment) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO comments (suggestion_id, user_public_id, text, created_at)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			s.ID, comment.UserID, comment.Text, comment.Timestamp,
		).Scan(&comment.ID)
		if err != nil {
			return fmt.Errorf("failed to insert comment: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE suggestions SET comment_count = $3, updated_at = $4
			 WHERE tenant_id = $1 AND id = $2`,
			tenantID, s.ID, s.CommentCount, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update comment count: %w", err)
		}
		return nil
	})
}

func (r *suggestionRepository) DeleteCommentAt(ctx context.Context, tenantID string, s *models.Suggestion, commentID int64) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`DELETE FROM comments WHERE id = $1 AND suggestion_id = $2`,
			commentID, s.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to delete comment: %w", err)
		}
		if affected, _ := result.RowsAffected(); affected == 0 {
			return sql.ErrNoRows
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE suggestions SET comment_count = $3, updated_at = $4
			 WHERE tenant_id = $1 AND id = $2`,
			tenantID, s.ID, s.CommentCount, s.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update comment count: %w", err)
		}
		return nil
	})
}

// ===============================
// STATUS & ATTACHMENTS
// ===============================

func (r *suggestionRepository) SaveStatus(ctx context.Context, tenantID string, s *models.Suggestion) error {
	result, err := r.ExecContext(ctx,
		`UPDATE suggestions SET status = $3, solved = $4, resolved_at = $5, updated_at = $6
		 WHERE tenant_id = $1 AND id = $2`,
		tenantID, s.ID, s.Status, s.Solved, s.ResolvedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save status: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *suggestionRepository) AppendAttachment(ctx context.Context, tenantID string, suggestionID int64, url string) error {
	result, err := r.ExecContext(ctx,
		`UPDATE suggestions SET attachments = array_append(attachments, $3), updated_at = $4
		 WHERE tenant_id = $1 AND id = $2`,
		tenantID, suggestionID, url, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to append attachment: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ===============================
// SCANNING HELPERS
// ===============================

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSuggestion(row rowScanner) (*models.Suggestion, error) {
	var s models.Suggestion
	err := row.Scan(
		&s.ID, &s.UserID, &s.Title, &s.Description, &s.Summary, &s.Tags,
		&s.Category, &s.Priority, &s.Status, &s.Solved, &s.ResolvedAt,
		&s.CommentCount, &s.Upvotes, &s.Downvotes, &s.Attachments,
		&s.IsPublic, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func collectSuggestions(rows *sql.Rows) ([]*models.Suggestion, error) {
	var suggestions []*models.Suggestion
	for rows.Next() {
		s, err := scanSuggestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, rows.Err()
}

// loadComments attaches comments to every suggestion in one query,
// preserving submission order.
func (r *suggestionRepository) loadComments(ctx context.Context, suggestions []*models.Suggestion) error {
	if len(suggestions) == 0 {
		return nil
	}

	ids := make([]int64, len(suggestions))
	byID := make(map[int64]*models.Suggestion, len(suggestions))
	for i, s := range suggestions {
		ids[i] = s.ID
		byID[s.ID] = s
		s.Comments = []models.Comment{}
	}

	rows, err := r.QueryContext(ctx,
		`SELECT id, suggestion_id, user_public_id, text, created_at
		 FROM comments
		 WHERE suggestion_id = ANY($1)
		 ORDER BY suggestion_id, created_at, id`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("failed to load comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.SuggestionID, &c.UserID, &c.Text, &c.Timestamp); err != nil {
			return fmt.Errorf("failed to scan comment: %w", err)
		}
		if s, ok := byID[c.SuggestionID]; ok {
			s.Comments = append(s.Comments, c)
		}
	}
	return rows.Err()
}
