// Package contextutils carries request-scoped values through context:
// the correlation ID and the authenticated viewer.
package contextutils

import (
	"context"

	"campusvoice/internal/models"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	viewerKey    contextKey = "viewer"
)

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithRequestID adds the request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetViewer retrieves the authenticated viewer profile, or nil for
// anonymous requests.
func GetViewer(ctx context.Context) *models.UserProfile {
	if viewer, ok := ctx.Value(viewerKey).(*models.UserProfile); ok {
		return viewer
	}
	return nil
}

// WithViewer adds the authenticated viewer to the context.
func WithViewer(ctx context.Context, viewer *models.UserProfile) context.Context {
	return context.WithValue(ctx, viewerKey, viewer)
}
