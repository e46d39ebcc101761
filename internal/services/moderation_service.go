package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campusvoice/internal/cache"
	"campusvoice/internal/events"
	"campusvoice/internal/lifecycle"
	"campusvoice/internal/models"
	"campusvoice/internal/repositories"
	"campusvoice/internal/view"

	"go.uber.org/zap"
)

type moderationService struct {
	suggestions repositories.SuggestionRepository
	users       repositories.UserRepository
	engine      *lifecycle.Engine
	cache       cache.Cache
	eventBus    events.EventBus
	logger      *zap.Logger
	tenantID    string
}

// NewModerationService creates the moderation service.
func NewModerationService(
	suggestions repositories.SuggestionRepository,
	users repositories.UserRepository,
	engine *lifecycle.Engine,
	c cache.Cache,
	eventBus events.EventBus,
	tenantID string,
	logger *zap.Logger,
) ModerationService {
	return &moderationService{
		suggestions: suggestions,
		users:       users,
		engine:      engine,
		cache:       c,
		eventBus:    eventBus,
		logger:      logger,
		tenantID:    tenantID,
	}
}

// ===============================
// GRID
// ===============================

// Grid returns every suggestion, public or not, sorted by the requested
// column. Unlike the public listing there is no visibility filter.
func (s *moderationService) Grid(ctx context.Context, req *GridRequest) ([]*models.Suggestion, error) {
	if err := s.requireModerator(req.Viewer); err != nil {
		return nil, err
	}

	column := req.Column
	if column == "" {
		column = view.ColumnCreatedAt
	}
	if !view.ValidateColumn(column) {
		return nil, NewValidationError(fmt.Sprintf("unknown grid column %q", column), nil)
	}

	direction := req.Direction
	if direction == "" {
		direction = view.DefaultDirection(column)
	}
	if direction != view.DirectionAsc && direction != view.DirectionDesc {
		return nil, NewValidationError(fmt.Sprintf("unknown sort direction %q", direction), nil)
	}

	all, err := s.suggestions.ListAll(ctx, s.tenantID)
	if err != nil {
		return nil, NewStoreError("failed to load suggestions", err)
	}

	sorted := view.SortGrid(all, column, direction)

	// Paging happens in memory after the sort. A zero limit returns the
	// whole grid.
	if req.Params.Offset > 0 {
		if req.Params.Offset >= len(sorted) {
			return []*models.Suggestion{}, nil
		}
		sorted = sorted[req.Params.Offset:]
	}
	if req.Params.Limit > 0 && req.Params.Limit < len(sorted) {
		sorted = sorted[:req.Params.Limit]
	}
	return sorted, nil
}

// ===============================
// STATUS & COMMENTS
// ===============================

func (s *moderationService) SetStatus(ctx context.Context, req *SetStatusRequest) (*models.Suggestion, error) {
	if err := s.requireModerator(req.Viewer); err != nil {
		return nil, err
	}
	if req.Status == "" {
		return nil, NewValidationError("status must not be empty", nil)
	}

	suggestion, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	oldStatus := suggestion.Status
	s.engine.ApplyStatusChange(suggestion, req.Status)

	if err := s.suggestions.SaveStatus(ctx, s.tenantID, suggestion); err != nil {
		if err == sql.ErrNoRows {
			return nil, EntityNotFoundError("suggestion", req.ID)
		}
		return nil, NewStoreError("failed to save status", err)
	}

	s.invalidateListing(ctx)
	s.publish(ctx, events.NewSuggestionStatusChangedEvent(
		s.tenantID, req.Viewer.PublicID, suggestion.ID,
		oldStatus, suggestion.Status, suggestion.ResolvedAt))

	s.logger.Info("Suggestion status changed",
		zap.Int64("suggestion_id", suggestion.ID),
		zap.String("old_status", oldStatus),
		zap.String("new_status", suggestion.Status),
		zap.String("moderator", req.Viewer.PublicID),
	)
	return suggestion, nil
}

func (s *moderationService) DeleteComment(ctx context.Context, req *DeleteCommentRequest) (*models.Suggestion, error) {
	if err := s.requireModerator(req.Viewer); err != nil {
		return nil, err
	}

	suggestion, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if req.Index < 0 || req.Index >= len(suggestion.Comments) {
		return nil, NewIndexError(fmt.Sprintf(
			"comment index %d out of range (0..%d)", req.Index, len(suggestion.Comments)-1))
	}
	commentID := suggestion.Comments[req.Index].ID

	if err := s.engine.DeleteComment(suggestion, req.Index); err != nil {
		return nil, NewIndexError(err.Error())
	}

	suggestion.UpdatedAt = time.Now()
	if err := s.suggestions.DeleteCommentAt(ctx, s.tenantID, suggestion, commentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, EntityNotFoundError("comment", commentID)
		}
		return nil, NewStoreError("failed to delete comment", err)
	}

	s.invalidateListing(ctx)
	s.publish(ctx, events.NewCommentDeletedEvent(
		s.tenantID, req.Viewer.PublicID, suggestion.ID, commentID))

	return suggestion, nil
}

// ===============================
// BULK SAVE
// ===============================

// BulkSave persists a batch of moderator edits independently. Each
// incoming record is merged onto the freshly loaded stored row: the
// editable fields come from the payload, the status moves through the
// engine so the resolution stamp stays correct, and vote counters plus
// comments always come from the store. Grid rows are snapshots; votes
// and comments that landed after the snapshot must survive the save.
// A record that fails is reported in the result; the remaining records
// are still saved.
func (s *moderationService) BulkSave(ctx context.Context, viewer *models.UserProfile, suggestions []*models.Suggestion) (*BulkSaveResult, error) {
	if err := s.requireModerator(viewer); err != nil {
		return nil, err
	}

	result := &BulkSaveResult{}
	for _, record := range suggestions {
		stored, err := s.suggestions.GetByID(ctx, s.tenantID, record.ID)
		if err != nil {
			message := err.Error()
			if err == sql.ErrNoRows {
				message = "suggestion not found"
			}
			result.Failures = append(result.Failures, BulkSaveFailure{
				ID:    record.ID,
				Error: message,
			})
			s.logger.Warn("Bulk save record failed",
				zap.Int64("suggestion_id", record.ID),
				zap.Error(err),
			)
			continue
		}

		stored.Title = record.Title
		stored.Description = record.Description
		stored.Tags = record.Tags
		stored.Category = record.Category
		stored.Priority = record.Priority
		stored.IsPublic = record.IsPublic

		s.engine.ApplyStatusChange(stored, record.Status)
		s.engine.Normalize(stored)

		if err := s.suggestions.Update(ctx, s.tenantID, stored); err != nil {
			message := err.Error()
			if err == sql.ErrNoRows {
				message = "suggestion not found"
			}
			result.Failures = append(result.Failures, BulkSaveFailure{
				ID:    record.ID,
				Error: message,
			})
			s.logger.Warn("Bulk save record failed",
				zap.Int64("suggestion_id", record.ID),
				zap.Error(err),
			)
			continue
		}
		result.Saved++
	}

	if result.Saved > 0 {
		s.invalidateListing(ctx)
		s.publish(ctx, events.NewSuggestionUpdatedEvent(
			s.tenantID, viewer.PublicID, 0, []string{"bulk_save"}))
	}

	s.logger.Info("Bulk save completed",
		zap.Int("saved", result.Saved),
		zap.Int("failed", len(result.Failures)),
		zap.String("moderator", viewer.PublicID),
	)
	return result, nil
}

// ===============================
// USERS
// ===============================

func (s *moderationService) SetBanned(ctx context.Context, req *BanRequest) error {
	if err := s.requireModerator(req.Viewer); err != nil {
		return err
	}
	if req.Viewer.PublicID == req.PublicID {
		return NewValidationError("moderators cannot ban themselves", nil)
	}

	if err := s.users.SetBanned(ctx, s.tenantID, req.PublicID, req.Banned); err != nil {
		if err == sql.ErrNoRows {
			return EntityNotFoundError("user", req.PublicID)
		}
		return NewStoreError("failed to update ban flag", err)
	}

	s.publish(ctx, events.NewUserBannedEvent(s.tenantID, req.Viewer.PublicID, req.PublicID, req.Banned))

	s.logger.Info("User ban flag updated",
		zap.String("public_id", req.PublicID),
		zap.Bool("banned", req.Banned),
		zap.String("moderator", req.Viewer.PublicID),
	)
	return nil
}

func (s *moderationService) ListUsers(ctx context.Context, viewer *models.UserProfile, params models.PaginationParams) (*models.PaginatedResponse[*models.UserProfile], error) {
	if err := s.requireModerator(viewer); err != nil {
		return nil, err
	}

	page, err := s.users.List(ctx, s.tenantID, params)
	if err != nil {
		return nil, NewStoreError("failed to list users", err)
	}
	return page, nil
}

// ===============================
// HELPERS
// ===============================

func (s *moderationService) requireModerator(viewer *models.UserProfile) error {
	if viewer == nil {
		return NewUnauthorizedError("login required")
	}
	if !viewer.IsModerator() {
		return InsufficientPermissionsError("access", "moderation surface")
	}
	if viewer.IsBanned {
		return NewForbiddenError("account is banned")
	}
	return nil
}

func (s *moderationService) load(ctx context.Context, id int64) (*models.Suggestion, error) {
	suggestion, err := s.suggestions.GetByID(ctx, s.tenantID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, EntityNotFoundError("suggestion", id)
		}
		return nil, NewStoreError("failed to load suggestion", err)
	}
	return suggestion, nil
}

func (s *moderationService) invalidateListing(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "suggestions:"+s.tenantID+":*"); err != nil {
		s.logger.Warn("Failed to invalidate suggestion cache", zap.Error(err))
	}
}

func (s *moderationService) publish(ctx context.Context, event events.Event) {
	if err := s.eventBus.PublishAsync(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}
