// Package response writes the JSON envelope every API handler uses.
package response

import (
	"encoding/json"
	"net/http"
	"time"

	"campusvoice/internal/contextutils"
	"campusvoice/internal/services"

	"go.uber.org/zap"
)

// Envelope is the standard API response shape.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// APIError is the error payload inside an envelope.
type APIError struct {
	Type    string                 `json:"type"`
	Message string                 `json:"message"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Writer renders envelopes and maps service errors to status codes.
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a response writer.
func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

// WriteJSON writes data wrapped in a success envelope.
func (rw *Writer) WriteJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	envelope := Envelope{
		Success:   status < 400,
		Data:      data,
		RequestID: contextutils.GetRequestID(r.Context()),
		Timestamp: time.Now(),
	}
	rw.write(w, status, &envelope)
}

// WriteCreated writes data with 201.
func (rw *Writer) WriteCreated(w http.ResponseWriter, r *http.Request, data interface{}) {
	rw.WriteJSON(w, r, http.StatusCreated, data)
}

// WriteNoContent writes 204 with no body.
func (rw *Writer) WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps err to an HTTP status and writes an error envelope.
// Internal causes are logged, never exposed.
func (rw *Writer) WriteError(w http.ResponseWriter, r *http.Request, err error) {
	serviceErr := services.GetServiceError(err)
	status := serviceErr.GetStatusCode()

	if status >= 500 {
		rw.logger.Error("Request failed",
			zap.String("request_id", contextutils.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	envelope := Envelope{
		Success: false,
		Error: &APIError{
			Type:    serviceErr.Type,
			Message: serviceErr.Message,
			Code:    serviceErr.Code,
			Details: serviceErr.Details,
		},
		RequestID: contextutils.GetRequestID(r.Context()),
		Timestamp: time.Now(),
	}
	rw.write(w, status, &envelope)
}

func (rw *Writer) write(w http.ResponseWriter, status int, envelope *Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		rw.logger.Error("Failed to encode response", zap.Error(err))
	}
}
