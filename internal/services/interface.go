package services

import (
	"context"

	"campusvoice/internal/models"
	"campusvoice/internal/view"
)

// AuthService registers and authenticates users.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	GetProfile(ctx context.Context, publicID string) (*models.UserProfile, error)
	VerifyToken(tokenString string) (*TokenClaims, error)
}

// SuggestionService owns the suggestion lifecycle: submission, edits,
// vote toggles, comments and the filtered public listing.
type SuggestionService interface {
	Create(ctx context.Context, req *CreateSuggestionRequest) (*models.Suggestion, error)
	Get(ctx context.Context, viewer *models.UserProfile, id int64) (*models.Suggestion, error)
	Update(ctx context.Context, req *UpdateSuggestionRequest) (*models.Suggestion, error)
	Delete(ctx context.Context, viewer *models.UserProfile, id int64) error
	ListView(ctx context.Context, viewer *models.UserProfile, criteria view.Criteria) ([]*models.Suggestion, error)
	Vote(ctx context.Context, req *VoteRequest) (*models.Suggestion, error)
	AddComment(ctx context.Context, req *AddCommentRequest) (*models.Suggestion, error)
}

// ModerationService is the moderator-only surface: the grid, status
// changes, comment removal, bulk save and user bans.
type ModerationService interface {
	Grid(ctx context.Context, req *GridRequest) ([]*models.Suggestion, error)
	SetStatus(ctx context.Context, req *SetStatusRequest) (*models.Suggestion, error)
	DeleteComment(ctx context.Context, req *DeleteCommentRequest) (*models.Suggestion, error)
	BulkSave(ctx context.Context, viewer *models.UserProfile, suggestions []*models.Suggestion) (*BulkSaveResult, error)
	SetBanned(ctx context.Context, req *BanRequest) error
	ListUsers(ctx context.Context, viewer *models.UserProfile, params models.PaginationParams) (*models.PaginatedResponse[*models.UserProfile], error)
}

// SummarizerService produces a short summary of a suggestion. It never
// fails: when the AI backend is unreachable the summary degrades to a
// truncation of the description.
type SummarizerService interface {
	Summarize(ctx context.Context, title, description string) string
}

// AttachmentService uploads suggestion attachments to the media store.
type AttachmentService interface {
	Upload(ctx context.Context, req *UploadAttachmentRequest) (*UploadResult, error)
}
