// file: internal/models/models.go
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// ===============================
// CORE ENTITIES
// ===============================

// UserProfile represents a registered identity in the system.
// The internal ID never leaves the server; PublicID is the identifier
// exposed on suggestions and comments.
type UserProfile struct {
	ID            int64  `json:"-" db:"id"`
	InstitutionID string `json:"institution_id" db:"institution_id" validate:"required,min=3,max=50"`
	PublicID      string `json:"public_id" db:"public_id"`

	// Authentication
	PasswordHash string `json:"-" db:"password_hash"`

	// Moderation state. IsBanned is the only field mutated after
	// registration; banning blocks future writes only.
	Role     string `json:"role" db:"role" validate:"required,oneof=user moderator"`
	IsBanned bool   `json:"is_banned" db:"is_banned"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Suggestion represents a user-submitted feedback item with voting,
// comments and a moderation status.
type Suggestion struct {
	// Core fields
	ID          int64  `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_public_id"`
	Title       string `json:"title" db:"title" validate:"required,min=5,max=255"`
	Description string `json:"description" db:"description" validate:"required,min=10,max=20000"`
	Summary     string `json:"summary" db:"summary"`

	// Classification
	Tags     StringArray `json:"tags" db:"tags"`
	Category string      `json:"category" db:"category" validate:"required,max=100"`
	Priority string      `json:"priority" db:"priority"`

	// Lifecycle state. Solved and ResolvedAt are derived from Status and
	// must only ever be written by the lifecycle engine.
	Status     string     `json:"status" db:"status"`
	Solved     bool       `json:"solved" db:"solved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`

	// Engagement tracking
	Upvotes      int       `json:"upvotes" db:"upvotes"`
	Downvotes    int       `json:"downvotes" db:"downvotes"`
	Comments     []Comment `json:"comments" db:"-"`
	CommentCount int       `json:"comment_count" db:"comment_count"`

	// Attachments (Cloudinary URLs)
	Attachments StringArray `json:"attachments" db:"attachments"`

	// Visibility in the public listing
	IsPublic bool `json:"is_public" db:"is_public"`

	// Timestamps
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Viewer-specific fields (requires viewer context, not in DB)
	IsOwner      bool    `json:"is_owner" db:"-"`
	ViewerVote   *string `json:"viewer_vote,omitempty" db:"-"` // "up" or "down"
}

// Comment represents a single moderation-visible comment on a suggestion.
// Comments are append-only in submission order; there is no editing.
type Comment struct {
	ID           int64     `json:"id" db:"id"`
	SuggestionID int64     `json:"suggestion_id" db:"suggestion_id"`
	UserID       string    `json:"user_id" db:"user_public_id"`
	Text         string    `json:"text" db:"text" validate:"required,min=1,max=5000"`
	Timestamp    time.Time `json:"timestamp" db:"created_at"`
}

// ===============================
// VOTE LEDGER
// ===============================

// VoteDirection is the direction of a vote.
type VoteDirection string

const (
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

// VoteLedger records which suggestions a single viewer has up/down-voted.
// A suggestion id appears in at most one of the two sets at a time.
type VoteLedger struct {
	Upvoted   map[int64]struct{} `json:"upvoted"`
	Downvoted map[int64]struct{} `json:"downvoted"`
}

// NewVoteLedger creates an empty ledger.
func NewVoteLedger() *VoteLedger {
	return &VoteLedger{
		Upvoted:   make(map[int64]struct{}),
		Downvoted: make(map[int64]struct{}),
	}
}

// Has reports whether the ledger records the given direction for id.
func (l *VoteLedger) Has(id int64, direction VoteDirection) bool {
	if direction == VoteUp {
		_, ok := l.Upvoted[id]
		return ok
	}
	_, ok := l.Downvoted[id]
	return ok
}

// Record adds id to the set for direction.
func (l *VoteLedger) Record(id int64, direction VoteDirection) {
	if direction == VoteUp {
		l.Upvoted[id] = struct{}{}
	} else {
		l.Downvoted[id] = struct{}{}
	}
}

// Remove deletes id from the set for direction.
func (l *VoteLedger) Remove(id int64, direction VoteDirection) {
	if direction == VoteUp {
		delete(l.Upvoted, id)
	} else {
		delete(l.Downvoted, id)
	}
}

// Opposite returns the other vote direction.
func (d VoteDirection) Opposite() VoteDirection {
	if d == VoteUp {
		return VoteDown
	}
	return VoteUp
}

// ===============================
// ENUMERATIONS
// ===============================

// Categories is the fixed category list suggestions may belong to.
var Categories = []string{
	"Academics & Curriculum",
	"Campus Facilities & Maintenance",
	"Technology & IT",
	"Student Support Services",
	"Food & Dining",
	"Safety & Security",
	"Other",
}

// Statuses that mark a suggestion as resolved. Any other status value is
// non-terminal; status itself is free-form.
const (
	StatusPending = "Pending"
	StatusSolved  = "Solved"
	StatusClosed  = "Closed"
)

// DefaultPriority is assigned to new suggestions until triaged.
const DefaultPriority = "Undefined"

// IsTerminalStatus reports whether status implies the suggestion is resolved.
func IsTerminalStatus(status string) bool {
	return status == StatusSolved || status == StatusClosed
}

// ValidateCategory validates a category against the fixed list.
func ValidateCategory(category string) bool {
	for _, valid := range Categories {
		if category == valid {
			return true
		}
	}
	return false
}

// ValidateVoteDirection validates a vote direction value.
func ValidateVoteDirection(direction string) bool {
	return direction == string(VoteUp) || direction == string(VoteDown)
}

// ValidateUserRole validates user role enum
func ValidateUserRole(role string) bool {
	return role == "user" || role == "moderator"
}

// ===============================
// HELPER METHODS
// ===============================

// Score returns the net vote score used by the "votes" sort order.
func (s *Suggestion) Score() int {
	return s.Upvotes - s.Downvotes
}

// IsOwnedBy checks if the given public id owns the suggestion
func (s *Suggestion) IsOwnedBy(publicID string) bool {
	return s.UserID == publicID
}

// IsTerminal reports whether the suggestion's current status is terminal.
func (s *Suggestion) IsTerminal() bool {
	return IsTerminalStatus(s.Status)
}

// CanWrite reports whether the profile may perform write operations.
// Nil means not logged in.
func (p *UserProfile) CanWrite() bool {
	return p != nil && !p.IsBanned
}

// IsModerator checks if the profile has administrative privileges
func (p *UserProfile) IsModerator() bool {
	return p != nil && p.Role == "moderator"
}

// ===============================
// PAGINATION & QUERY HELPERS
// ===============================

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Limit  int    `json:"limit" validate:"min=1,max=100"`
	Offset int    `json:"offset" validate:"min=0"`
	Sort   string `json:"sort,omitempty"`
	Order  string `json:"order,omitempty" validate:"omitempty,oneof=asc desc"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
	Filters    map[string]any `json:"filters,omitempty"`
}

// PaginationMeta contains pagination metadata
type PaginationMeta struct {
	CurrentPage  int   `json:"current_page"`
	TotalPages   int   `json:"total_pages"`
	TotalItems   int64 `json:"total_items"`
	ItemsPerPage int   `json:"items_per_page"`
	HasNext      bool  `json:"has_next"`
	HasPrev      bool  `json:"has_prev"`
}

// ===============================
// CUSTOM TYPES
// ===============================

// StringArray handles PostgreSQL array types
type StringArray []string

// Scan implements sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case string:
		// Handle PostgreSQL array format: {item1,item2,item3}
		v = strings.Trim(v, "{}")
		if v == "" {
			*s = StringArray{}
			return nil
		}
		*s = StringArray(strings.Split(v, ","))
	case []byte:
		return s.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
	return nil
}

// Value implements driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	return "{" + strings.Join(s, ",") + "}", nil
}

// Contains reports whether the array holds the given element.
func (s StringArray) Contains(value string) bool {
	for _, item := range s {
		if item == value {
			return true
		}
	}
	return false
}
