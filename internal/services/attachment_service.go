package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"

	"campusvoice/internal/cache"
	"campusvoice/internal/config"
	"campusvoice/internal/events"
	"campusvoice/internal/repositories"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

var allowedAttachmentExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".pdf": true,
}

type attachmentService struct {
	cld         *cloudinary.Cloudinary
	cfg         *config.CloudinaryConfig
	suggestions repositories.SuggestionRepository
	cache       cache.Cache
	eventBus    events.EventBus
	logger      *zap.Logger
	tenantID    string
}

// NewAttachmentService creates the Cloudinary-backed attachment service.
func NewAttachmentService(
	cld *cloudinary.Cloudinary,
	cfg *config.CloudinaryConfig,
	suggestions repositories.SuggestionRepository,
	c cache.Cache,
	eventBus events.EventBus,
	tenantID string,
	logger *zap.Logger,
) AttachmentService {
	return &attachmentService{
		cld:         cld,
		cfg:         cfg,
		suggestions: suggestions,
		cache:       c,
		eventBus:    eventBus,
		logger:      logger,
		tenantID:    tenantID,
	}
}

// Upload stores a file in the media store and appends its URL to the
// suggestion's attachment list. Only the owner or a moderator may attach.
func (s *attachmentService) Upload(ctx context.Context, req *UploadAttachmentRequest) (*UploadResult, error) {
	if req.Viewer == nil {
		return nil, NewUnauthorizedError("login required")
	}
	if req.Viewer.IsBanned {
		return nil, NewForbiddenError("account is banned")
	}
	if s.cld == nil {
		return nil, NewServiceUnavailableError("attachment uploads are not configured")
	}

	if req.Size > s.cfg.MaxFileSize {
		return nil, NewValidationError(fmt.Sprintf(
			"file exceeds the %d byte limit", s.cfg.MaxFileSize), nil)
	}
	ext := strings.ToLower(path.Ext(req.Filename))
	if !allowedAttachmentExtensions[ext] {
		return nil, NewValidationError(fmt.Sprintf("file type %q is not allowed", ext), nil)
	}

	suggestion, err := s.suggestions.GetByID(ctx, s.tenantID, req.SuggestionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, EntityNotFoundError("suggestion", req.SuggestionID)
		}
		return nil, NewStoreError("failed to load suggestion", err)
	}
	if !suggestion.IsOwnedBy(req.Viewer.PublicID) && !req.Viewer.IsModerator() {
		return nil, InsufficientPermissionsError("attach files to", "suggestion")
	}

	publicID, err := uuid.NewV4()
	if err != nil {
		return nil, NewInternalError("failed to generate attachment id")
	}

	resp, err := s.cld.Upload.Upload(ctx, req.Reader, uploader.UploadParams{
		Folder:   fmt.Sprintf("%s/%s/%d", s.cfg.UploadFolder, s.tenantID, req.SuggestionID),
		PublicID: publicID.String(),
	})
	if err != nil {
		return nil, NewStoreError("failed to upload attachment", err)
	}

	if err := s.suggestions.AppendAttachment(ctx, s.tenantID, req.SuggestionID, resp.SecureURL); err != nil {
		return nil, NewStoreError("failed to record attachment", err)
	}

	if err := s.cache.DeletePattern(ctx, "suggestions:"+s.tenantID+":*"); err != nil {
		s.logger.Warn("Failed to invalidate suggestion cache", zap.Error(err))
	}
	if err := s.eventBus.PublishAsync(ctx, events.NewAttachmentUploadedEvent(
		s.tenantID, req.Viewer.PublicID, req.SuggestionID, resp.SecureURL, req.Size)); err != nil {
		s.logger.Warn("Failed to publish attachment event", zap.Error(err))
	}

	s.logger.Info("Attachment uploaded",
		zap.Int64("suggestion_id", req.SuggestionID),
		zap.String("url", resp.SecureURL),
		zap.Int64("size", req.Size),
	)

	return &UploadResult{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
		Size:     req.Size,
	}, nil
}
