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

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type suggestionService struct {
	suggestions repositories.SuggestionRepository
	engine      *lifecycle.Engine
	summarizer  SummarizerService
	cache       cache.Cache
	cacheTTL    time.Duration
	eventBus    events.EventBus
	logger      *zap.Logger
	validate    *validator.Validate
	tenantID    string
}

// NewSuggestionService creates the suggestion service.
func NewSuggestionService(
	suggestions repositories.SuggestionRepository,
	engine *lifecycle.Engine,
	summarizer SummarizerService,
	c cache.Cache,
	cacheTTL time.Duration,
	eventBus events.EventBus,
	tenantID string,
	logger *zap.Logger,
) SuggestionService {
	return &suggestionService{
		suggestions: suggestions,
		engine:      engine,
		summarizer:  summarizer,
		cache:       c,
		cacheTTL:    cacheTTL,
		eventBus:    eventBus,
		logger:      logger,
		validate:    validator.New(),
		tenantID:    tenantID,
	}
}

// ===============================
// CRUD
// ===============================

func (s *suggestionService) Create(ctx context.Context, req *CreateSuggestionRequest) (*models.Suggestion, error) {
	if err := s.requireWriter(req.Viewer); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid suggestion", err)
	}
	if !models.ValidateCategory(req.Category) {
		return nil, NewValidationError(fmt.Sprintf("unknown category %q", req.Category), nil)
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	suggestion := &models.Suggestion{
		UserID:      req.Viewer.PublicID,
		Title:       req.Title,
		Description: req.Description,
		Summary:     s.summarizer.Summarize(ctx, req.Title, req.Description),
		Tags:        models.StringArray(req.Tags),
		Category:    req.Category,
		Priority:    models.DefaultPriority,
		Status:      models.StatusPending,
		Comments:    []models.Comment{},
		IsPublic:    isPublic,
	}
	s.engine.Normalize(suggestion)

	if err := s.suggestions.Create(ctx, s.tenantID, suggestion); err != nil {
		return nil, NewStoreError("failed to save suggestion", err)
	}

	s.invalidateListing(ctx)
	s.publish(ctx, events.NewSuggestionCreatedEvent(
		s.tenantID, req.Viewer.PublicID, suggestion.ID, suggestion.Title, suggestion.Category))

	s.logger.Info("Suggestion created",
		zap.Int64("suggestion_id", suggestion.ID),
		zap.String("author", req.Viewer.PublicID),
		zap.String("category", suggestion.Category),
	)

	suggestion.IsOwner = true
	return suggestion, nil
}

func (s *suggestionService) Get(ctx context.Context, viewer *models.UserProfile, id int64) (*models.Suggestion, error) {
	suggestion, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	// Private suggestions are visible only to their owner and moderators;
	// everyone else sees not-found rather than forbidden.
	if !suggestion.IsPublic && !s.canModify(viewer, suggestion) {
		return nil, EntityNotFoundError("suggestion", id)
	}

	if err := s.annotate(ctx, suggestion, viewer); err != nil {
		return nil, err
	}
	return suggestion, nil
}

func (s *suggestionService) Update(ctx context.Context, req *UpdateSuggestionRequest) (*models.Suggestion, error) {
	if err := s.requireWriter(req.Viewer); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid suggestion update", err)
	}

	suggestion, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if !s.canModify(req.Viewer, suggestion) {
		return nil, InsufficientPermissionsError("update", "suggestion")
	}

	var changes []string
	if req.Title != nil {
		suggestion.Title = *req.Title
		changes = append(changes, "title")
	}
	if req.Description != nil {
		suggestion.Description = *req.Description
		suggestion.Summary = s.summarizer.Summarize(ctx, suggestion.Title, suggestion.Description)
		changes = append(changes, "description")
	}
	if req.Tags != nil {
		suggestion.Tags = models.StringArray(req.Tags)
		changes = append(changes, "tags")
	}
	if req.Category != nil {
		if !models.ValidateCategory(*req.Category) {
			return nil, NewValidationError(fmt.Sprintf("unknown category %q", *req.Category), nil)
		}
		suggestion.Category = *req.Category
		changes = append(changes, "category")
	}
	if req.Priority != nil {
		if !req.Viewer.IsModerator() {
			return nil, InsufficientPermissionsError("set priority on", "suggestion")
		}
		suggestion.Priority = *req.Priority
		changes = append(changes, "priority")
	}
	if req.IsPublic != nil {
		suggestion.IsPublic = *req.IsPublic
		changes = append(changes, "is_public")
	}

	if len(changes) == 0 {
		return suggestion, nil
	}

	suggestion.UpdatedAt = time.Now()
	if err := s.suggestions.Update(ctx, s.tenantID, suggestion); err != nil {
		if err == sql.ErrNoRows {
			return nil, EntityNotFoundError("suggestion", req.ID)
		}
		return nil, NewStoreError("failed to update suggestion", err)
	}

	s.invalidateListing(ctx)
	s.publish(ctx, events.NewSuggestionUpdatedEvent(s.tenantID, req.Viewer.PublicID, suggestion.ID, changes))

	if err := s.annotate(ctx, suggestion, req.Viewer); err != nil {
		return nil, err
	}
	return suggestion, nil
}

func (s *suggestionService) Delete(ctx context.Context, viewer *models.UserProfile, id int64) error {
	if err := s.requireWriter(viewer); err != nil {
		return err
	}

	suggestion, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.canModify(viewer, suggestion) {
		return InsufficientPermissionsError("delete", "suggestion")
	}

	if err := s.suggestions.Delete(ctx, s.tenantID, id); err != nil {
		if err == sql.ErrNoRows {
			return EntityNotFoundError("suggestion", id)
		}
		return NewStoreError("failed to delete suggestion", err)
	}

	s.invalidateListing(ctx)
	s.publish(ctx, events.NewSuggestionDeletedEvent(s.tenantID, viewer.PublicID, id))

	s.logger.Info("Suggestion deleted",
		zap.Int64("suggestion_id", id),
		zap.String("actor", viewer.PublicID),
	)
	return nil
}

// ===============================
// LISTING
// ===============================

// ListView returns the public listing filtered and sorted by criteria.
// The underlying snapshot is cached; viewer annotations are applied per
// request on top of it.
func (s *suggestionService) ListView(ctx context.Context, viewer *models.UserProfile, criteria view.Criteria) ([]*models.Suggestion, error) {
	if criteria.SortOrder != "" && !view.ValidateSortOrder(criteria.SortOrder) {
		return nil, NewValidationError(fmt.Sprintf("unknown sort order %q", criteria.SortOrder), nil)
	}

	all, err := s.loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if viewer != nil {
		ledger, err := s.suggestions.GetVoteLedger(ctx, viewer.PublicID)
		if err != nil {
			return nil, NewStoreError("failed to load vote ledger", err)
		}
		for _, suggestion := range all {
			annotateFromLedger(suggestion, viewer, ledger)
		}
	}

	return view.Project(all, criteria), nil
}

func (s *suggestionService) loadSnapshot(ctx context.Context) ([]*models.Suggestion, error) {
	key := s.listingCacheKey()

	var cached []*models.Suggestion
	if cache.GetJSON(ctx, s.cache, key, &cached) {
		return cached, nil
	}

	all, err := s.suggestions.ListAll(ctx, s.tenantID)
	if err != nil {
		return nil, NewStoreError("failed to load suggestions", err)
	}

	if err := cache.SetJSON(ctx, s.cache, key, all, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache suggestion snapshot", zap.Error(err))
	}
	return all, nil
}

// ===============================
// VOTING & COMMENTS
// ===============================

func (s *suggestionService) Vote(ctx context.Context, req *VoteRequest) (*models.Suggestion, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid vote", err)
	}

	suggestion, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var ledger *models.VoteLedger
	if req.Viewer != nil {
		ledger, err = s.suggestions.GetVoteLedger(ctx, req.Viewer.PublicID)
		if err != nil {
			return nil, NewStoreError("failed to load vote ledger", err)
		}
	} else {
		ledger = models.NewVoteLedger()
	}

	direction := models.VoteDirection(req.Direction)
	if err := s.engine.ApplyVote(suggestion, ledger, req.Viewer, direction); err != nil {
		return nil, s.mapLifecycleError(err)
	}

	suggestion.UpdatedAt = time.Now()
	if err := s.suggestions.SaveVoteState(ctx, s.tenantID, suggestion, req.Viewer.PublicID, ledger); err != nil {
		return nil, NewStoreError("failed to save vote", err)
	}

	s.invalidateListing(ctx)
	s.publish(ctx, events.NewSuggestionVotedEvent(
		s.tenantID, req.Viewer.PublicID, suggestion.ID,
		req.Direction, suggestion.Upvotes, suggestion.Downvotes))

	annotateFromLedger(suggestion, req.Viewer, ledger)
	return suggestion, nil
}

func (s *suggestionService) AddComment(ctx context.Context, req *AddCommentRequest) (*models.Suggestion, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid comment", err)
	}

	suggestion, err := s.load(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	comment, err := s.engine.AddComment(suggestion, req.Viewer, req.Text)
	if err != nil {
		return nil, s.mapLifecycleError(err)
	}

	suggestion.UpdatedAt = time.Now()
	if err := s.suggestions.AddComment(ctx, s.tenantID, suggestion, comment); err != nil {
		return nil, NewStoreError("failed to save comment", err)
	}

	s.invalidateListing(ctx)
	s.publish(ctx, events.NewCommentAddedEvent(
		s.tenantID, req.Viewer.PublicID, suggestion.ID, comment.ID, comment.Text))

	if err := s.annotate(ctx, suggestion, req.Viewer); err != nil {
		return nil, err
	}
	return suggestion, nil
}

// ===============================
// HELPERS
// ===============================

func (s *suggestionService) load(ctx context.Context, id int64) (*models.Suggestion, error) {
	suggestion, err := s.suggestions.GetByID(ctx, s.tenantID, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, EntityNotFoundError("suggestion", id)
		}
		return nil, NewStoreError("failed to load suggestion", err)
	}
	return suggestion, nil
}

func (s *suggestionService) requireWriter(viewer *models.UserProfile) error {
	if viewer == nil {
		return NewUnauthorizedError("login required")
	}
	if viewer.IsBanned {
		return NewForbiddenError("account is banned")
	}
	return nil
}

func (s *suggestionService) canModify(viewer *models.UserProfile, suggestion *models.Suggestion) bool {
	if viewer == nil {
		return false
	}
	return suggestion.IsOwnedBy(viewer.PublicID) || viewer.IsModerator()
}

func (s *suggestionService) annotate(ctx context.Context, suggestion *models.Suggestion, viewer *models.UserProfile) error {
	if viewer == nil {
		return nil
	}
	suggestion.IsOwner = suggestion.IsOwnedBy(viewer.PublicID)

	direction, found, err := s.suggestions.GetViewerVote(ctx, suggestion.ID, viewer.PublicID)
	if err != nil {
		return NewStoreError("failed to load viewer vote", err)
	}
	if found {
		d := string(direction)
		suggestion.ViewerVote = &d
	} else {
		suggestion.ViewerVote = nil
	}
	return nil
}

func annotateFromLedger(suggestion *models.Suggestion, viewer *models.UserProfile, ledger *models.VoteLedger) {
	if viewer == nil {
		return
	}
	suggestion.IsOwner = suggestion.IsOwnedBy(viewer.PublicID)

	switch {
	case ledger.Has(suggestion.ID, models.VoteUp):
		d := string(models.VoteUp)
		suggestion.ViewerVote = &d
	case ledger.Has(suggestion.ID, models.VoteDown):
		d := string(models.VoteDown)
		suggestion.ViewerVote = &d
	default:
		suggestion.ViewerVote = nil
	}
}

func (s *suggestionService) mapLifecycleError(err error) error {
	switch err {
	case lifecycle.ErrUnauthorized:
		return NewUnauthorizedError("login required or account banned")
	case lifecycle.ErrEmptyComment:
		return NewValidationError("comment text is empty", nil)
	case lifecycle.ErrIndexOutOfRange:
		return NewIndexError("comment index out of range")
	default:
		return NewInternalError(err.Error())
	}
}

func (s *suggestionService) listingCacheKey() string {
	return "suggestions:" + s.tenantID + ":all"
}

func (s *suggestionService) invalidateListing(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, "suggestions:"+s.tenantID+":*"); err != nil {
		s.logger.Warn("Failed to invalidate suggestion cache", zap.Error(err))
	}
}

func (s *suggestionService) publish(ctx context.Context, event events.Event) {
	if err := s.eventBus.PublishAsync(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("event_type", event.GetEventType()),
			zap.Error(err),
		)
	}
}
