// file: internal/lifecycle/lifecycle.go

// Package lifecycle implements the suggestion lifecycle rules: vote
// toggling, comment bookkeeping and the status/resolution state machine.
// Every mutator here is the single place that recomputes the derived
// fields (solved, resolved_at, comment_count); nothing else may set them.
//
// The package is pure: it mutates in-memory records and never touches
// storage. The service layer applies the same transitions against the
// database inside transactions.
package lifecycle

import (
	"errors"
	"strings"
	"time"

	"campusvoice/internal/models"
)

var (
	// ErrUnauthorized is returned when the acting viewer is not logged in
	// or is banned. No mutation occurs.
	ErrUnauthorized = errors.New("viewer is not allowed to write")

	// ErrEmptyComment is returned when a comment is empty after trimming.
	ErrEmptyComment = errors.New("comment text is empty")

	// ErrIndexOutOfRange is returned for comment indexes outside the
	// current comment list.
	ErrIndexOutOfRange = errors.New("comment index out of range")
)

// Engine applies lifecycle transitions. The clock is injectable so tests
// control every timestamp.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an engine. A nil clock defaults to time.Now.
func NewEngine(clock func() time.Time) *Engine {
	if clock == nil {
		clock = time.Now
	}
	return &Engine{now: clock}
}

// ===============================
// VOTING
// ===============================

// ApplyVote toggles the viewer's vote on a suggestion.
//
// If the ledger already records this direction for the suggestion the vote
// is withdrawn. Otherwise the vote is added and, if the opposite direction
// was recorded, that vote is withdrawn first. A viewer holds at most one
// vote per suggestion at any time.
func (e *Engine) ApplyVote(s *models.Suggestion, ledger *models.VoteLedger, viewer *models.UserProfile, direction models.VoteDirection) error {
	if !viewer.CanWrite() {
		return ErrUnauthorized
	}

	if ledger.Has(s.ID, direction) {
		decrementCounter(s, direction)
		ledger.Remove(s.ID, direction)
		return nil
	}

	if opposite := direction.Opposite(); ledger.Has(s.ID, opposite) {
		decrementCounter(s, opposite)
		ledger.Remove(s.ID, opposite)
	}

	incrementCounter(s, direction)
	ledger.Record(s.ID, direction)
	return nil
}

func incrementCounter(s *models.Suggestion, direction models.VoteDirection) {
	if direction == models.VoteUp {
		s.Upvotes++
	} else {
		s.Downvotes++
	}
}

func decrementCounter(s *models.Suggestion, direction models.VoteDirection) {
	// Counters never go negative even if the ledger and the record have
	// drifted apart.
	if direction == models.VoteUp {
		if s.Upvotes > 0 {
			s.Upvotes--
		}
	} else {
		if s.Downvotes > 0 {
			s.Downvotes--
		}
	}
}

// ===============================
// COMMENTS
// ===============================

// AddComment appends a comment authored by the viewer. Comments are
// append-only in submission order; there is no reordering or editing.
func (e *Engine) AddComment(s *models.Suggestion, viewer *models.UserProfile, text string) (*models.Comment, error) {
	if !viewer.CanWrite() {
		return nil, ErrUnauthorized
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyComment
	}

	comment := models.Comment{
		SuggestionID: s.ID,
		UserID:       viewer.PublicID,
		Text:         trimmed,
		Timestamp:    e.now(),
	}
	s.Comments = append(s.Comments, comment)
	s.CommentCount = len(s.Comments)
	return &s.Comments[len(s.Comments)-1], nil
}

// DeleteComment removes the comment at index, preserving the order of the
// remaining comments. Moderator-only; the caller enforces the role.
func (e *Engine) DeleteComment(s *models.Suggestion, index int) error {
	if index < 0 || index >= len(s.Comments) {
		return ErrIndexOutOfRange
	}
	s.Comments = append(s.Comments[:index], s.Comments[index+1:]...)
	s.CommentCount = len(s.Comments)
	return nil
}

// ===============================
// STATUS TRANSITIONS
// ===============================

// ApplyStatusChange sets the suggestion status and re-derives the coupled
// fields:
//
//   - solved is true iff the new status is terminal (Solved or Closed)
//   - resolved_at is stamped on the first transition into a terminal
//     status, cleared on any transition out, and left untouched on
//     terminal→terminal moves (Solved→Closed is not re-stamped)
//
// Calling it with the current status is idempotent.
func (e *Engine) ApplyStatusChange(s *models.Suggestion, newStatus string) {
	wasTerminal := models.IsTerminalStatus(s.Status)
	isTerminal := models.IsTerminalStatus(newStatus)

	s.Status = newStatus
	s.Solved = isTerminal

	switch {
	case isTerminal && !wasTerminal && s.ResolvedAt == nil:
		now := e.now()
		s.ResolvedAt = &now
	case !isTerminal:
		s.ResolvedAt = nil
	}

	s.UpdatedAt = e.now()
}

// Normalize re-derives every derived field from its source of truth:
// solved/resolved_at from the current status and comment_count from the
// comment list. Bulk save runs it after merging moderator edits onto a
// freshly loaded record.
func (e *Engine) Normalize(s *models.Suggestion) {
	e.ApplyStatusChange(s, s.Status)
	s.CommentCount = len(s.Comments)
}
