package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"campusvoice/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func summarizerConfig(endpoint, apiKey string) *config.SummarizerConfig {
	return &config.SummarizerConfig{
		APIKey:          apiKey,
		Endpoint:        endpoint,
		Model:           "test-model",
		RequestTimeout:  2 * time.Second,
		MaxRetries:      0,
		SummaryMaxChars: 100,
		MinInputChars:   20,
	}
}

func TestTruncateSummary(t *testing.T) {
	assert.Equal(t, "short text", truncateSummary("short text", 100))
	assert.Equal(t, "", truncateSummary("   ", 100))
	assert.Equal(t, "abcde", truncateSummary("abcde", 5))

	long := strings.Repeat("a", 150)
	clipped := truncateSummary(long, 100)
	assert.Equal(t, strings.Repeat("a", 100)+"...", clipped)

	// Rune-safe clipping keeps multibyte characters intact.
	assert.Equal(t, "ééé...", truncateSummary("ééééé", 3))
}

func TestSummarizeWithoutAPIKey(t *testing.T) {
	svc := NewSummarizerService(summarizerConfig("http://unused", ""), zap.NewNop())

	description := strings.Repeat("x", 150)
	got := svc.Summarize(context.Background(), "Title", description)

	assert.Equal(t, strings.Repeat("x", 100)+"...", got)
}

func TestSummarizeSkipsBackendForShortInput(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	svc := NewSummarizerService(summarizerConfig(server.URL, "key"), zap.NewNop())
	got := svc.Summarize(context.Background(), "Title", "too short")

	assert.False(t, called)
	assert.Equal(t, "too short", got)
}

func TestSummarizeUsesBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "test-model:generateContent")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"  Fix the library wifi.  "}]}}]}`))
	}))
	defer server.Close()

	svc := NewSummarizerService(summarizerConfig(server.URL, "key"), zap.NewNop())
	got := svc.Summarize(context.Background(), "Wifi", strings.Repeat("the wifi is broken ", 10))

	assert.Equal(t, "Fix the library wifi.", got)
}

func TestSummarizeFallsBackOnBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewSummarizerService(summarizerConfig(server.URL, "key"), zap.NewNop())

	description := strings.Repeat("y", 120)
	got := svc.Summarize(context.Background(), "Title", description)

	assert.Equal(t, strings.Repeat("y", 100)+"...", got)
}

func TestSummarizeFallsBackOnEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	svc := NewSummarizerService(summarizerConfig(server.URL, "key"), zap.NewNop())

	description := strings.Repeat("z", 40)
	got := svc.Summarize(context.Background(), "Title", description)

	assert.Equal(t, description, got)
}
