package middleware

import (
	"net/http"
	"strings"

	"campusvoice/internal/contextutils"
	"campusvoice/internal/models"
	"campusvoice/internal/response"
	"campusvoice/internal/services"

	"go.uber.org/zap"
)

// Authenticator resolves bearer tokens into viewer profiles.
type Authenticator struct {
	auth   services.AuthService
	writer *response.Writer
	logger *zap.Logger
}

// NewAuthenticator creates the auth middleware set.
func NewAuthenticator(auth services.AuthService, writer *response.Writer, logger *zap.Logger) *Authenticator {
	return &Authenticator{auth: auth, writer: writer, logger: logger}
}

// Require rejects requests without a valid bearer token.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer, err := a.resolve(r)
		if err != nil {
			a.writer.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextutils.WithViewer(r.Context(), viewer)))
	})
}

// Optional attaches the viewer when a valid token is present and lets
// anonymous requests through untouched. A malformed token is still an
// error rather than silent anonymity.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			next.ServeHTTP(w, r)
			return
		}

		viewer, err := a.resolve(r)
		if err != nil {
			a.writer.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(contextutils.WithViewer(r.Context(), viewer)))
	})
}

// RequireModerator gates a handler behind an authenticated moderator.
func (a *Authenticator) RequireModerator(next http.Handler) http.Handler {
	return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := contextutils.GetViewer(r.Context())
		if viewer == nil || !viewer.IsModerator() {
			a.writer.WriteError(w, r, services.NewForbiddenError("moderator access required"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func (a *Authenticator) resolve(r *http.Request) (*models.UserProfile, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, services.NewUnauthorizedError("authorization required")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return nil, services.NewUnauthorizedError("invalid authorization header")
	}

	claims, err := a.auth.VerifyToken(parts[1])
	if err != nil {
		return nil, err
	}

	viewer, err := a.auth.GetProfile(r.Context(), claims.PublicID)
	if err != nil {
		a.logger.Warn("Token valid but profile lookup failed",
			zap.String("public_id", claims.PublicID),
			zap.Error(err),
		)
		return nil, services.NewUnauthorizedError("account no longer exists")
	}

	return viewer, nil
}
