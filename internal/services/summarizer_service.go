package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"campusvoice/internal/config"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type summarizerService struct {
	cfg    *config.SummarizerConfig
	client *http.Client
	logger *zap.Logger
}

// NewSummarizerService creates the AI summarizer. With no API key
// configured every summary is a plain truncation.
func NewSummarizerService(cfg *config.SummarizerConfig, logger *zap.Logger) SummarizerService {
	return &summarizerService{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		logger: logger,
	}
}

// Summarize produces a one-line summary of a suggestion. The AI backend
// is best-effort: short descriptions skip it, and any failure falls back
// to truncating the description. The caller always gets a summary.
func (s *summarizerService) Summarize(ctx context.Context, title, description string) string {
	if s.cfg.APIKey == "" || utf8.RuneCountInString(description) < s.cfg.MinInputChars {
		return truncateSummary(description, s.cfg.SummaryMaxChars)
	}

	summary, err := s.generate(ctx, title, description)
	if err != nil {
		s.logger.Warn("Summarizer backend failed, falling back to truncation", zap.Error(err))
		return truncateSummary(description, s.cfg.SummaryMaxChars)
	}
	return truncateSummary(summary, s.cfg.SummaryMaxChars)
}

// geminiRequest is the generateContent request body.
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse is the subset of the generateContent response we read.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (s *summarizerService) generate(ctx context.Context, title, description string) (string, error) {
	prompt := fmt.Sprintf(
		"Summarize the following student suggestion in one sentence of at most %d characters. "+
			"Reply with the sentence only.\n\nTitle: %s\n\n%s",
		s.cfg.SummaryMaxChars, title, description,
	)

	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", s.cfg.Endpoint, s.cfg.Model, s.cfg.APIKey)

	var summary string
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("summarizer returned status %d", resp.StatusCode)
		default:
			// Client errors will not improve on retry.
			return backoff.Permanent(fmt.Errorf("summarizer returned status %d", resp.StatusCode))
		}

		var parsed geminiResponse
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode summarizer response: %w", err))
		}
		if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
			return backoff.Permanent(fmt.Errorf("summarizer returned no candidates"))
		}

		summary = strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
		if summary == "" {
			return backoff.Permanent(fmt.Errorf("summarizer returned an empty summary"))
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(s.cfg.MaxRetries)),
		ctx,
	)
	if err := backoff.Retry(call, policy); err != nil {
		return "", err
	}
	return summary, nil
}

// truncateSummary clips text to max runes, appending an ellipsis when
// anything was cut.
func truncateSummary(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	return strings.TrimSpace(string(runes[:max])) + "..."
}
