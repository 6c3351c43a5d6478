// pkg/aiclient/client.go
package aiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/rowmend/rowmend/pkg/config"
)

// Client wraps the AI service. All retry handling lives here: the
// reconciliation engine downstream operates purely on already-fetched text
// and never touches the network.
type Client struct {
	client *genai.Client
	cfg    *config.AIConfig
	logger *zap.Logger
}

// NewClient creates an AI client.
func NewClient(ctx context.Context, cfg *config.AIConfig, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("AI configuration cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("AI API key is required")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AI client: %w", err)
	}

	return &Client{client: client, cfg: cfg, logger: logger}, nil
}

// generate sends one prompt and returns the response text. Rate-limit
// responses are retried a fixed number of times with a fixed backoff; any
// other failure propagates immediately without retry.
func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	requestID := uuid.New().String()
	log := c.logger.With(zap.String("requestId", requestID))

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			log.Warn("Rate limited, backing off before retry",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", c.cfg.RetryBackoff))
			select {
			case <-time.After(c.cfg.RetryBackoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		result, err := c.client.Models.GenerateContent(ctx, c.cfg.Model, contents, nil)
		if err == nil {
			text := result.Text()
			log.Info("AI request complete",
				zap.Int("promptChars", len(prompt)),
				zap.Int("responseChars", len(text)))
			return text, nil
		}

		if !isRateLimited(err) {
			return "", fmt.Errorf("AI request failed: %w", err)
		}
		lastErr = err
	}

	return "", fmt.Errorf("AI request rate limited after %d retries: %w", c.cfg.RetryAttempts, lastErr)
}

// isRateLimited reports whether an error is a rate-limit response from the
// service, the only class of failure worth retrying.
func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
