// ===============================
// FILE: internal/handlers/api/v1/auth/auth_controller.go
// ===============================

package auth

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"campusvoice/internal/response"
	"campusvoice/internal/services"
	"campusvoice/internal/validation"
)

// AuthController handles registration and login.
type AuthController struct {
	auth   services.AuthService
	writer *response.Writer
	logger *zap.Logger
}

// NewAuthController creates the auth API controller.
func NewAuthController(auth services.AuthService, writer *response.Writer, logger *zap.Logger) *AuthController {
	return &AuthController{auth: auth, writer: writer, logger: logger}
}

// Register godoc
// @Summary      Register a new account
// @Description  Creates an account keyed by institution ID and returns a signed token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body services.RegisterRequest true "Registration payload"
// @Success      201 {object} response.Envelope
// @Failure      400 {object} response.Envelope
// @Failure      409 {object} response.Envelope
// @Router       /api/v1/auth/register [post]
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError(err.Error(), err))
		return
	}

	resp, err := c.auth.Register(r.Context(), &req)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteCreated(w, r, resp)
}

// Login godoc
// @Summary      Log in
// @Description  Verifies credentials and returns a signed token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body services.LoginRequest true "Login payload"
// @Success      200 {object} response.Envelope
// @Failure      401 {object} response.Envelope
// @Router       /api/v1/auth/login [post]
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError("invalid request body", err))
		return
	}

	if err := validation.ValidateStruct(&req); err != nil {
		c.writer.WriteError(w, r, services.NewValidationError(err.Error(), err))
		return
	}

	resp, err := c.auth.Login(r.Context(), &req)
	if err != nil {
		c.writer.WriteError(w, r, err)
		return
	}

	c.writer.WriteJSON(w, r, http.StatusOK, resp)
}
