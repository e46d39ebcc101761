package middleware

import (
	"net/http"

	"campusvoice/internal/contextutils"

	"github.com/gofrs/uuid"
)

// RequestIDHeader is the header used to propagate correlation IDs.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns a correlation ID to every request, reusing one
// supplied by the client when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			id, err := uuid.NewV4()
			if err == nil {
				requestID = id.String()
			}
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := contextutils.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
