package events

import "time"

// Event types for the suggestion domain. The stream handler subscribes
// to "suggestion.*" to know when to push fresh snapshots.
const (
	TypeSuggestionCreated       = "suggestion.created"
	TypeSuggestionUpdated       = "suggestion.updated"
	TypeSuggestionDeleted       = "suggestion.deleted"
	TypeSuggestionVoted         = "suggestion.voted"
	TypeSuggestionStatusChanged = "suggestion.status_changed"
	TypeCommentAdded            = "suggestion.comment_added"
	TypeCommentDeleted          = "suggestion.comment_deleted"
	TypeUserRegistered          = "user.registered"
	TypeUserBanned              = "user.banned"
	TypeAttachmentUploaded      = "attachment.uploaded"
)

// SuggestionCreatedEvent is emitted when a suggestion is saved for the
// first time.
type SuggestionCreatedEvent struct {
	BaseEvent
	SuggestionID int64  `json:"suggestion_id"`
	Title        string `json:"title"`
	Category     string `json:"category"`
}

// SuggestionUpdatedEvent is emitted on any field edit outside the
// specialized vote, comment and status paths.
type SuggestionUpdatedEvent struct {
	BaseEvent
	SuggestionID int64    `json:"suggestion_id"`
	Changes      []string `json:"changes,omitempty"`
}

// SuggestionDeletedEvent is emitted when a suggestion is removed.
type SuggestionDeletedEvent struct {
	BaseEvent
	SuggestionID int64 `json:"suggestion_id"`
}

// SuggestionVotedEvent is emitted after a vote toggle, with the counts
// as they stand after the change.
type SuggestionVotedEvent struct {
	BaseEvent
	SuggestionID int64  `json:"suggestion_id"`
	Direction    string `json:"direction"`
	Upvotes      int    `json:"upvotes"`
	Downvotes    int    `json:"downvotes"`
}

// SuggestionStatusChangedEvent is emitted when a moderator moves a
// suggestion between statuses.
type SuggestionStatusChangedEvent struct {
	BaseEvent
	SuggestionID int64      `json:"suggestion_id"`
	OldStatus    string     `json:"old_status"`
	NewStatus    string     `json:"new_status"`
	ResolvedAt   *time.Time `json:"resolved_at,omitempty"`
}

// CommentAddedEvent is emitted when a comment lands on a suggestion.
type CommentAddedEvent struct {
	BaseEvent
	SuggestionID int64  `json:"suggestion_id"`
	CommentID    int64  `json:"comment_id"`
	Preview      string `json:"preview"`
}

// CommentDeletedEvent is emitted when a moderator removes a comment.
type CommentDeletedEvent struct {
	BaseEvent
	SuggestionID int64 `json:"suggestion_id"`
	CommentID    int64 `json:"comment_id"`
}

// UserRegisteredEvent is emitted when a new profile is created.
type UserRegisteredEvent struct {
	BaseEvent
	PublicID string `json:"public_id"`
}

// UserBannedEvent is emitted when a moderator bans or unbans a user.
type UserBannedEvent struct {
	BaseEvent
	PublicID string `json:"public_id"`
	Banned   bool   `json:"banned"`
}

// AttachmentUploadedEvent is emitted after a successful upload to the
// media store.
type AttachmentUploadedEvent struct {
	BaseEvent
	SuggestionID int64  `json:"suggestion_id"`
	URL          string `json:"url"`
	FileSize     int64  `json:"file_size"`
}

func newBase(eventType, tenantID, actorID string) BaseEvent {
	return BaseEvent{
		EventID:   GenerateEventID(),
		EventType: eventType,
		Timestamp: time.Now(),
		TenantID:  tenantID,
		ActorID:   actorID,
	}
}

// NewSuggestionCreatedEvent builds a suggestion.created event.
func NewSuggestionCreatedEvent(tenantID, actorID string, suggestionID int64, title, category string) *SuggestionCreatedEvent {
	return &SuggestionCreatedEvent{
		BaseEvent:    newBase(TypeSuggestionCreated, tenantID, actorID),
		SuggestionID: suggestionID,
		Title:        title,
		Category:     category,
	}
}

// NewSuggestionUpdatedEvent builds a suggestion.updated event.
func NewSuggestionUpdatedEvent(tenantID, actorID string, suggestionID int64, changes []string) *SuggestionUpdatedEvent {
	return &SuggestionUpdatedEvent{
		BaseEvent:    newBase(TypeSuggestionUpdated, tenantID, actorID),
		SuggestionID: suggestionID,
		Changes:      changes,
	}
}

// NewSuggestionDeletedEvent builds a suggestion.deleted event.
func NewSuggestionDeletedEvent(tenantID, actorID string, suggestionID int64) *SuggestionDeletedEvent {
	return &SuggestionDeletedEvent{
		BaseEvent:    newBase(TypeSuggestionDeleted, tenantID, actorID),
		SuggestionID: suggestionID,
	}
}

// NewSuggestionVotedEvent builds a suggestion.voted event.
func NewSuggestionVotedEvent(tenantID, actorID string, suggestionID int64, direction string, upvotes, downvotes int) *SuggestionVotedEvent {
	return &SuggestionVotedEvent{
		BaseEvent:    newBase(TypeSuggestionVoted, tenantID, actorID),
		SuggestionID: suggestionID,
		Direction:    direction,
		Upvotes:      upvotes,
		Downvotes:    downvotes,
	}
}

// NewSuggestionStatusChangedEvent builds a suggestion.status_changed event.
func NewSuggestionStatusChangedEvent(tenantID, actorID string, suggestionID int64, oldStatus, newStatus string, resolvedAt *time.Time) *SuggestionStatusChangedEvent {
	return &SuggestionStatusChangedEvent{
		BaseEvent:    newBase(TypeSuggestionStatusChanged, tenantID, actorID),
		SuggestionID: suggestionID,
		OldStatus:    oldStatus,
		NewStatus:    newStatus,
		ResolvedAt:   resolvedAt,
	}
}

// NewCommentAddedEvent builds a suggestion.comment_added event. The
// preview is clipped so events stay small.
func NewCommentAddedEvent(tenantID, actorID string, suggestionID, commentID int64, text string) *CommentAddedEvent {
	const previewLen = 80
	if len(text) > previewLen {
		text = text[:previewLen]
	}
	return &CommentAddedEvent{
		BaseEvent:    newBase(TypeCommentAdded, tenantID, actorID),
		SuggestionID: suggestionID,
		CommentID:    commentID,
		Preview:      text,
	}
}

// NewCommentDeletedEvent builds a suggestion.comment_deleted event.
func NewCommentDeletedEvent(tenantID, actorID string, suggestionID, commentID int64) *CommentDeletedEvent {
	return &CommentDeletedEvent{
		BaseEvent:    newBase(TypeCommentDeleted, tenantID, actorID),
		SuggestionID: suggestionID,
		CommentID:    commentID,
	}
}

// NewUserRegisteredEvent builds a user.registered event.
func NewUserRegisteredEvent(tenantID, publicID string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: newBase(TypeUserRegistered, tenantID, publicID),
		PublicID:  publicID,
	}
}

// NewUserBannedEvent builds a user.banned event.
func NewUserBannedEvent(tenantID, actorID, publicID string, banned bool) *UserBannedEvent {
	return &UserBannedEvent{
		BaseEvent: newBase(TypeUserBanned, tenantID, actorID),
		PublicID:  publicID,
		Banned:    banned,
	}
}

// NewAttachmentUploadedEvent builds an attachment.uploaded event.
func NewAttachmentUploadedEvent(tenantID, actorID string, suggestionID int64, url string, fileSize int64) *AttachmentUploadedEvent {
	return &AttachmentUploadedEvent{
		BaseEvent:    newBase(TypeAttachmentUploaded, tenantID, actorID),
		SuggestionID: suggestionID,
		URL:          url,
		FileSize:     fileSize,
	}
}
