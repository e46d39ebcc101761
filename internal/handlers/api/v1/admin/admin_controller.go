// ===============================
// FILE: internal/handlers/api/v1/admin/admin_controller.go
// ===============================

package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"campusvoice/internal/contextutils"
	"campusvoice/internal/models"
	"campusvoice/internal/response"
	"campusvoice/internal/services"
	"campusvoice/internal/validation"
)

// AdminController exposes the moderator surface: the sortable grid,
// status changes, comment removal, bulk save and user management.
type AdminController struct {
	moderation services.ModerationService
	writer     *response.Writer
	logger     *zap.Logger
}

// NewAdminController creates the admin API controller.
func NewAdminController(moderation services.ModerationService, writer *response.Writer, logger *zap.Logger) *AdminController {
	return &AdminController{moderation: moderation, writer: writer, logger: logger}
}

// Grid godoc
// @Summary      Moderation grid
// @Description  Returns every suggestion, including private ones, sorted by a column
// @Tags         admin
// @Produce      json
// @Param        column    query string false "title | category | priority | status | is_public | upvotes | created_at"
// @Param        direction query string false "asc | desc"
// @Param        limit     query int    false "Page size"
// @Param        offset    query int    false "Offset into the sorted grid"
// @Success      200 {object} response.Envelope
// @Security     BearerAuth
// @Router       /api/v1/admin/suggestions [get]
func (c *AdminController) Grid(w http.ResponseWriter, r *http.Request) {
	req := &services.GridRequest{
		Viewer:    contextutils.GetViewer(r.Context()),
		Column:    r.URL.Query().Get("column"),
		Direction: r.URL.Query().Get("direction"),
		Params:    parsePagination(r),
	}

	grid, err := c.moderation.Grid(r.Context(), req)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, r, http.StatusOK, grid)
}

// SetStatus godoc
// @Summary      Change a suggestion's status
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Suggestion ID"
// @Param        request body services.SetStatusRequest true "New status"
// @Success      200 {object} response.Envelope
// @Security     BearerAuth
// @Router       /api/v1/admin/suggestions/{id}/status [put]
func (c *AdminController) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	var req services.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.Viewer = contextutils.GetViewer(r.Context())
	req.ID = id

	if err := validation.ValidateStruct(&req); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError(err.Error(), err))
		return
	}

	suggestion, err := c.moderation.SetStatus(r.Context(), &req)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, r, http.StatusOK, suggestion)
}

// DeleteComment godoc
// @Summary      Remove a comment by position
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Suggestion ID"
// @Param        request body services.DeleteCommentRequest true "Comment index"
// @Success      200 {object} response.Envelope
// @Failure      400 {object} response.Envelope
// @Security     BearerAuth
// @Router       /api/v1/admin/suggestions/{id}/comments [delete]
func (c *AdminController) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	var req services.DeleteCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.Viewer = contextutils.GetViewer(r.Context())
	req.ID = id

	suggestion, err := c.moderation.DeleteComment(r.Context(), &req)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, r, http.StatusOK, suggestion)
}

// BulkSave godoc
// @Summary      Persist a batch of edited suggestions
// @Description  Saves each record independently; failures are collected, never aborting the batch
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body []models.Suggestion true "Edited suggestions"
// @Success      200 {object} response.Envelope
// @Security     BearerAuth
// @Router       /api/v1/admin/suggestions/bulk [post]
func (c *AdminController) BulkSave(w http.ResponseWriter, r *http.Request) {
	var batch []*models.Suggestion
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	result, err := c.moderation.BulkSave(r.Context(), contextutils.GetViewer(r.Context()), batch)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, r, http.StatusOK, result)
}

// SetBanned godoc
// @Summary      Ban or unban a user
// @Tags         admin
// @Accept       json
// @Param        publicId path  string                true "User public ID"
// @Param        request  body  services.BanRequest   true "Banned flag"
// @Success      204
// @Security     BearerAuth
// @Router       /api/v1/admin/users/{publicId}/ban [put]
func (c *AdminController) SetBanned(w http.ResponseWriter, r *http.Request) {
	publicID := r.PathValue("publicId")
	if publicID == "" {
		c.writer.WriteError(w, r, services.NewValidationError("user public id is required", nil))
		return
	}

	var req services.BanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.Viewer = contextutils.GetViewer(r.Context())
	req.PublicID = publicID

	if err := c.moderation.SetBanned(r.Context(), &req); err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteNoContent(w)
}

// ListUsers godoc
// @Summary      List users
// @Tags         admin
// @Produce      json
// @Param        limit  query int false "Page size"
// @Param        offset query int false "Offset"
// @Success      200 {object} response.Envelope
// @Security     BearerAuth
// @Router       /api/v1/admin/users [get]
func (c *AdminController) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := c.moderation.ListUsers(r.Context(), contextutils.GetViewer(r.Context()), parsePagination(r))
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, r, http.StatusOK, users)
}

// ===============================
// HELPERS
// ===============================

func parsePagination(r *http.Request) models.PaginationParams {
	params := models.PaginationParams{Limit: 20, Offset: 0}

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= 100 {
			params.Limit = limit
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}
	if sort := r.URL.Query().Get("sort"); sort != "" {
		params.Sort = sort
	}
	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.Order = order
	}
	return params
}

func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError(fmt.Sprintf("invalid suggestion id %q", raw), err)
	}
	return id, nil
}
