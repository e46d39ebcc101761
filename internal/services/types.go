package services

import (
	"io"
	"time"

	"campusvoice/internal/models"
)

// ===============================
// AUTH TYPES
// ===============================

// RegisterRequest carries a registration attempt. The institution ID is
// the login identifier; the public ID is generated server-side.
type RegisterRequest struct {
	InstitutionID string `json:"institution_id" validate:"required,min=3,max=50"`
	Password      string `json:"password" validate:"required,min=8,max=128"`
}

// LoginRequest carries a login attempt.
type LoginRequest struct {
	InstitutionID string `json:"institution_id" validate:"required"`
	Password      string `json:"password" validate:"required"`
}

// AuthResponse is returned on successful registration or login.
type AuthResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      *models.UserProfile `json:"user"`
}

// ===============================
// SUGGESTION TYPES
// ===============================

// CreateSuggestionRequest carries a new suggestion submission. Viewer is
// resolved server-side by the auth middleware, never from the wire, so
// validation skips it on every request type here.
type CreateSuggestionRequest struct {
	Viewer      *models.UserProfile `json:"-" validate:"-"`
	Title       string              `json:"title" validate:"required,min=5,max=255"`
	Description string              `json:"description" validate:"required,min=10,max=20000"`
	Tags        []string            `json:"tags" validate:"max=10,dive,min=1,max=50"`
	Category    string              `json:"category" validate:"required"`
	IsPublic    *bool               `json:"is_public"`
}

// UpdateSuggestionRequest carries a partial edit of an existing
// suggestion. Nil pointers leave fields unchanged; derived fields are
// never writable here.
type UpdateSuggestionRequest struct {
	Viewer      *models.UserProfile `json:"-" validate:"-"`
	ID          int64               `json:"-"`
	Title       *string             `json:"title" validate:"omitempty,min=5,max=255"`
	Description *string             `json:"description" validate:"omitempty,min=10,max=20000"`
	Tags        []string            `json:"tags" validate:"omitempty,max=10,dive,min=1,max=50"`
	Category    *string             `json:"category"`
	Priority    *string             `json:"priority" validate:"omitempty,max=50"`
	IsPublic    *bool               `json:"is_public"`
}

// VoteRequest carries a vote toggle.
type VoteRequest struct {
	Viewer    *models.UserProfile `json:"-" validate:"-"`
	ID        int64               `json:"-"`
	Direction string              `json:"direction" validate:"required,oneof=up down"`
}

// AddCommentRequest carries a new comment.
type AddCommentRequest struct {
	Viewer *models.UserProfile `json:"-" validate:"-"`
	ID     int64               `json:"-"`
	Text   string              `json:"text" validate:"required,max=5000"`
}

// ===============================
// MODERATION TYPES
// ===============================

// GridRequest asks for the moderation grid, sorted by a column.
type GridRequest struct {
	Viewer    *models.UserProfile
	Column    string
	Direction string
	Params    models.PaginationParams
}

// SetStatusRequest moves a suggestion to a new status.
type SetStatusRequest struct {
	Viewer *models.UserProfile `json:"-" validate:"-"`
	ID     int64               `json:"-"`
	Status string              `json:"status" validate:"required,max=50"`
}

// DeleteCommentRequest removes the comment at a position in the
// suggestion's comment list.
type DeleteCommentRequest struct {
	Viewer *models.UserProfile `json:"-" validate:"-"`
	ID     int64               `json:"-"`
	Index  int                 `json:"index" validate:"min=0"`
}

// BanRequest flips a user's banned flag.
type BanRequest struct {
	Viewer   *models.UserProfile `json:"-" validate:"-"`
	PublicID string              `json:"-"`
	Banned   bool                `json:"banned"`
}

// BulkSaveFailure records one record that failed to persist during a
// bulk save.
type BulkSaveFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

// BulkSaveResult reports the outcome of a bulk save. Failures are
// collected per record; one bad record never aborts the rest.
type BulkSaveResult struct {
	Saved    int               `json:"saved"`
	Failures []BulkSaveFailure `json:"failures,omitempty"`
}

// ===============================
// ATTACHMENT TYPES
// ===============================

// UploadAttachmentRequest carries an attachment upload for a suggestion.
type UploadAttachmentRequest struct {
	Viewer       *models.UserProfile
	SuggestionID int64
	Filename     string
	Size         int64
	Reader       io.Reader
}

// UploadResult describes a stored attachment.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Size     int64  `json:"size"`
}
