// ===============================
// FILE: internal/handlers/api/v1/suggestions/suggestions_controller.go
// ===============================

package suggestions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"campusvoice/internal/contextutils"
	"campusvoice/internal/response"
	"campusvoice/internal/services"
	"campusvoice/internal/validation"
	"campusvoice/internal/view"
)

// SuggestionController handles the public suggestion API: listing,
// submission, edits, vote toggles, comments and attachments.
type SuggestionController struct {
	suggestions services.SuggestionService
	attachments services.AttachmentService
	writer      *response.Writer
	logger      *zap.Logger
}

// NewSuggestionController creates the suggestion API controller.
func NewSuggestionController(
	suggestions services.SuggestionService,
	attachments services.AttachmentService,
	writer *response.Writer,
	logger *zap.Logger,
) *SuggestionController {
	return &SuggestionController{
		suggestions: suggestions,
		attachments: attachments,
		writer:      writer,
		logger:      logger,
	}
}

// ===============================
// LISTING & RETRIEVAL
// ===============================

// List godoc
// @Summary      List suggestions
// @Description  Returns the filtered, sorted suggestion listing visible to the caller
// @Tags         suggestions
// @Produce      json
// @Param        search   query string false "Substring match on title and description"
// @Param        tag      query string false "Tag filter, or All"
// @Param        category query string false "Category filter, or All"
// @Param        sort     query string false "votes | newest | oldest | solved | unsolved"
// @Success      200 {object} response.Envelope
// @Router       /api/v1/suggestions [get]
func (c *SuggestionController) List(w http.ResponseWriter, r *http.Request) {
	criteria := view.Criteria{
		Search:    r.URL.Query().Get("search"),
		Tag:       r.URL.Query().Get("tag"),
		Category:  r.URL.Query().Get("category"),
		SortOrder: r.URL.Query().Get("sort"),
	}

	listing, err := c.suggestions.ListView(r.Context(), contextutils.GetViewer(r.Context()), criteria)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, r, http.StatusOK, listing)
}

// Get godoc
// @Summary      Get one suggestion
// @Tags         suggestions
// @Produce      json
// @Param        id path int true "Suggestion ID"
// @Success      200 {object} response.Envelope
// @Failure      404 {object} response.Envelope
// @Router       /api/v1/suggestions/{id} [get]
func (c *SuggestionController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := c.pathID(r)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	suggestion, err := c.suggestions.Get(r.Context(), contextutils.GetViewer(r.Context()), id)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, r, http.StatusOK, suggestion)
}

// ===============================
// MUTATIONS
// ===============================

// Create godoc
// @Summary      Submit a suggestion
// @Tags         suggestions
// @Accept       json
// @Produce      json
// @Param        request body services.CreateSuggestionRequest true "Suggestion payload"
// @Success      201 {object} response.Envelope
// @Failure      400 {object} response.Envelope
// @Security     BearerAuth
// @Router       /api/v1/suggestions [post]
func (c *SuggestionController) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}
	req.Viewer = contextutils.GetViewer(r.Context())

	if err := validation.ValidateStruct(&req); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError(err.Error(), err))
		return
	}

	suggestion, err := c.suggestions.Create(r.Context(), &req)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteCreated(w, r, suggestion)
}

// Update godoc
// @Summary      Edit a suggestion
// @Tags         suggestions
// @Accept       json
// @Produce      json
// @Param        id path int true "Suggestion ID"
// @Param        request body services.UpdateSuggestionRequest true "Fields to change"
// @Success      200 {object} response.Envelope
// @Security     BearerAuth
// @Router       /api/v1/suggestions/{id} [patch]
func (c *SuggestionController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := c.pathID(r)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	var req services.UpdateSuggestionRequest
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

	suggestion, err := c.suggestions.Update(r.Context(), &req)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, r, http.StatusOK, suggestion)
}

// Delete godoc
// @Summary      Delete a suggestion
// @Tags         suggestions
// @Param        id path int true "Suggestion ID"
// @Success      204
// @Security     BearerAuth
// @Router       /api/v1/suggestions/{id} [delete]
func (c *SuggestionController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := c.pathID(r)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	if err := c.suggestions.Delete(r.Context(), contextutils.GetViewer(r.Context()), id); err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteNoContent(w)
}

// Vote godoc
// @Summary      Toggle a vote
// @Description  Repeating a vote removes it; the opposite vote swaps it
// @Tags         suggestions
// @Accept       json
// @Produce      json
// @Param        id path int true "Suggestion ID"
// @Param        request body services.VoteRequest true "Vote direction"
// @Success      200 {object} response.Envelope
// @Security     BearerAuth
// @Router       /api/v1/suggestions/{id}/votes [post]
func (c *SuggestionController) Vote(w http.ResponseWriter, r *http.Request) {
	id, err := c.pathID(r)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	var req services.VoteRequest
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

	suggestion, err := c.suggestions.Vote(r.Context(), &req)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, r, http.StatusOK, suggestion)
}

// AddComment godoc
// @Summary      Comment on a suggestion
// @Tags         suggestions
// @Accept       json
// @Produce      json
// @Param        id path int true "Suggestion ID"
// @Param        request body services.AddCommentRequest true "Comment text"
// @Success      201 {object} response.Envelope
// @Security     BearerAuth
// @Router       /api/v1/suggestions/{id}/comments [post]
func (c *SuggestionController) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := c.pathID(r)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	var req services.AddCommentRequest
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

	suggestion, err := c.suggestions.AddComment(r.Context(), &req)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteCreated(w, r, suggestion)
}

// maxUploadMemory bounds multipart form parsing, not the file itself.
const maxUploadMemory = 10 << 20

// UploadAttachment godoc
// @Summary      Attach a file to a suggestion
// @Tags         suggestions
// @Accept       multipart/form-data
// @Produce      json
// @Param        id   path     int  true "Suggestion ID"
// @Param        file formData file true "Attachment"
// @Success      201 {object} response.Envelope
// @Security     BearerAuth
// @Router       /api/v1/suggestions/{id}/attachments [post]
func (c *SuggestionController) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := c.pathID(r)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError("invalid multipart form", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		c.writer.WriteError(w, r, services.NewValidationError("file field is required", err))
		return
	}
	defer file.Close()

	result, err := c.attachments.Upload(r.Context(), &services.UploadAttachmentRequest{
		Viewer:       contextutils.GetViewer(r.Context()),
		SuggestionID: id,
		Filename:     header.Filename,
		Size:         header.Size,
		Reader:       file,
	})
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteCreated(w, r, result)
}

// pathID extracts the numeric suggestion ID from the request path.
func (c *SuggestionController) pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		// Fallback for routes registered without a pattern variable.
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		for i, p := range parts {
			if p == "suggestions" && i+1 < len(parts) {
				raw = parts[i+1]
				break
			}
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, services.NewValidationError(fmt.Sprintf("invalid suggestion id %q", raw), err)
	}
	return id, nil
}
