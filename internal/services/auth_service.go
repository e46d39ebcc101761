package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"campusvoice/internal/config"
	"campusvoice/internal/events"
	"campusvoice/internal/models"
	"campusvoice/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenClaims is the JWT payload issued on login.
type TokenClaims struct {
	PublicID string `json:"public_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	users    repositories.UserRepository
	eventBus events.EventBus
	logger   *zap.Logger
	validate *validator.Validate
	cfg      *config.AuthConfig
	tenantID string
}

// NewAuthService creates the authentication service.
func NewAuthService(
	users repositories.UserRepository,
	eventBus events.EventBus,
	cfg *config.AuthConfig,
	tenantID string,
	logger *zap.Logger,
) AuthService {
	return &authService{
		users:    users,
		eventBus: eventBus,
		logger:   logger,
		validate: validator.New(),
		cfg:      cfg,
		tenantID: tenantID,
	}
}

// Register creates a profile for a new institution ID. Duplicate IDs are
// rejected; the caller learns nothing about the stored hash.
func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid registration request", err)
	}
	if len(req.Password) < s.cfg.MinPasswordLength {
		return nil, NewValidationError(
			fmt.Sprintf("password must be at least %d characters", s.cfg.MinPasswordLength), nil)
	}

	if _, err := s.users.GetByInstitutionID(ctx, s.tenantID, req.InstitutionID); err == nil {
		return nil, EntityAlreadyExistsError("user", "institution_id", req.InstitutionID)
	} else if err != sql.ErrNoRows {
		return nil, NewStoreError("failed to check existing user", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BCryptCost)
	if err != nil {
		return nil, NewInternalError("failed to hash password")
	}

	publicID, err := uuid.NewV4()
	if err != nil {
		return nil, NewInternalError("failed to generate public id")
	}

	user := &models.UserProfile{
		InstitutionID: req.InstitutionID,
		PublicID:      publicID.String(),
		PasswordHash:  string(hash),
		Role:          "user",
	}

	if err := s.users.Create(ctx, s.tenantID, user); err != nil {
		return nil, NewStoreError("failed to create user", err)
	}

	if err := s.eventBus.PublishAsync(ctx, events.NewUserRegisteredEvent(s.tenantID, user.PublicID)); err != nil {
		s.logger.Warn("Failed to publish registration event", zap.Error(err))
	}

	s.logger.Info("User registered",
		zap.String("public_id", user.PublicID),
		zap.String("tenant_id", s.tenantID),
	)

	return s.issueToken(user)
}

// Login verifies credentials and issues a token. Invalid institution IDs
// and wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, NewValidationError("invalid login request", err)
	}

	user, err := s.users.GetByInstitutionID(ctx, s.tenantID, req.InstitutionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewUnauthorizedError("invalid credentials")
		}
		return nil, NewStoreError("failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Failed login attempt", zap.String("institution_id", req.InstitutionID))
		return nil, NewUnauthorizedError("invalid credentials")
	}

	return s.issueToken(user)
}

// GetProfile loads a profile by public id.
func (s *authService) GetProfile(ctx context.Context, publicID string) (*models.UserProfile, error) {
	user, err := s.users.GetByPublicID(ctx, s.tenantID, publicID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, EntityNotFoundError("user", publicID)
		}
		return nil, NewStoreError("failed to load user", err)
	}
	return user, nil
}

// VerifyToken parses and validates a JWT, returning its claims.
func (s *authService) VerifyToken(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, NewUnauthorizedError("invalid or expired token")
	}
	return claims, nil
}

func (s *authService) issueToken(user *models.UserProfile) (*AuthResponse, error) {
	expiresAt := time.Now().Add(s.cfg.JWTExpiry)
	claims := &TokenClaims{
		PublicID: user.PublicID,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.PublicID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "campusvoice",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, NewInternalError("failed to sign token")
	}

	return &AuthResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
