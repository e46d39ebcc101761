package repositories

import (
	"context"

	"campusvoice/internal/models"
)

// SuggestionRepository persists suggestions, their comments and the
// vote ledger. All queries are scoped by tenant.
type SuggestionRepository interface {
	// Suggestions
	Create(ctx context.Context, tenantID string, suggestion *models.Suggestion) error
	GetByID(ctx context.Context, tenantID string, id int64) (*models.Suggestion, error)
	Update(ctx context.Context, tenantID string, suggestion *models.Suggestion) error
	Delete(ctx context.Context, tenantID string, id int64) error
	ListAll(ctx context.Context, tenantID string) ([]*models.Suggestion, error)

	// Votes
	GetVoteLedger(ctx context.Context, userPublicID string) (*models.VoteLedger, error)
	GetViewerVote(ctx context.Context, suggestionID int64, userPublicID string) (models.VoteDirection, bool, error)
	SaveVoteState(ctx context.Context, tenantID string, suggestion *models.Suggestion, userPublicID string, ledger *models.VoteLedger) error

	// Comments
	AddComment(ctx context.Context, tenantID string, suggestion *models.Suggestion, comment *models.Comment) error
	DeleteCommentAt(ctx context.Context, tenantID string, suggestion *models.Suggestion, commentID int64) error

	// Status and moderation writes
	SaveStatus(ctx context.Context, tenantID string, suggestion *models.Suggestion) error
	AppendAttachment(ctx context.Context, tenantID string, suggestionID int64, url string) error
}

// UserRepository persists user profiles.
type UserRepository interface {
	Create(ctx context.Context, tenantID string, user *models.UserProfile) error
	GetByInstitutionID(ctx context.Context, tenantID, institutionID string) (*models.UserProfile, error)
	GetByPublicID(ctx context.Context, tenantID, publicID string) (*models.UserProfile, error)
	SetBanned(ctx context.Context, tenantID, publicID string, banned bool) error
	List(ctx context.Context, tenantID string, params models.PaginationParams) (*models.PaginatedResponse[*models.UserProfile], error)
}
