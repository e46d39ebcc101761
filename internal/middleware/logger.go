package middleware

import (
	"net/http"
	"time"

	"campusvoice/internal/contextutils"

	"go.uber.org/zap"
)

// RequestLogger logs every request with method, path, status, duration
// and client address. Severity follows the response status.
func RequestLogger(logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w}

			next.ServeHTTP(sw, r)

			duration := time.Since(start)
			fields := []zap.Field{
				zap.String("request_id", contextutils.GetRequestID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.Status()),
				zap.Duration("duration", duration),
				zap.Int64("bytes", sw.bytesWritten),
				zap.String("client_ip", getClientIP(r)),
			}

			switch {
			case sw.Status() >= 500:
				logger.Error("Request completed", fields...)
			case sw.Status() >= 400 || duration > 2*time.Second:
				logger.Warn("Request completed", fields...)
			default:
				logger.Info("Request completed", fields...)
			}
		})
	}
}
