package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"campusvoice/internal/models"
	"campusvoice/internal/response"
	"campusvoice/internal/services"
)

type stubAuthService struct {
	registerErr error
	loginErr    error
}

func (s *stubAuthService) Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResponse, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &services.AuthResponse{
		Token:     "signed-token",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      &models.UserProfile{PublicID: "user-1", InstitutionID: req.InstitutionID, Role: "user"},
	}, nil
}

func (s *stubAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResponse, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &services.AuthResponse{
		Token:     "signed-token",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      &models.UserProfile{PublicID: "user-1", InstitutionID: req.InstitutionID, Role: "user"},
	}, nil
}

func (s *stubAuthService) GetProfile(ctx context.Context, publicID string) (*models.UserProfile, error) {
	return nil, services.EntityNotFoundError("user", publicID)
}

func (s *stubAuthService) VerifyToken(tokenString string) (*services.TokenClaims, error) {
	return nil, services.NewUnauthorizedError("invalid or expired token")
}

func newTestController(svc services.AuthService) *AuthController {
	logger := zap.NewNop()
	return NewAuthController(svc, response.NewWriter(logger), logger)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) *response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&envelope))
	return &envelope
}

func TestRegisterReturnsCreatedEnvelope(t *testing.T) {
	controller := newTestController(&stubAuthService{})

	body := `{"institution_id":"S123456","password":"correct horse battery"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	controller.Register(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
	assert.Nil(t, envelope.Error)
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	controller := newTestController(&stubAuthService{})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	controller.Register(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "VALIDATION_ERROR", envelope.Error.Type)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	controller := newTestController(&stubAuthService{})

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"institution_id":"S123456"}`))
	w := httptest.NewRecorder()

	controller.Register(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterPropagatesConflict(t *testing.T) {
	controller := newTestController(&stubAuthService{
		registerErr: services.EntityAlreadyExistsError("user", "institution_id", "S123456"),
	})

	body := `{"institution_id":"S123456","password":"correct horse battery"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	controller.Register(w, r)

	assert.Equal(t, http.StatusConflict, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "CONFLICT", envelope.Error.Type)
}

func TestLoginReturnsToken(t *testing.T) {
	controller := newTestController(&stubAuthService{})

	body := `{"institution_id":"S123456","password":"correct horse battery"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	controller.Login(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.True(t, envelope.Success)
}

func TestLoginPropagatesUnauthorized(t *testing.T) {
	controller := newTestController(&stubAuthService{
		loginErr: services.NewUnauthorizedError("invalid credentials"),
	})

	body := `{"institution_id":"S123456","password":"wrong"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	controller.Login(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "UNAUTHORIZED", envelope.Error.Type)
}
