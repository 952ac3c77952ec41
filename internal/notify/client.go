// Package notify posts the run summary to a configured webhook when a
// regeneration run finishes. Delivery is best-effort: failures are reported
// but never change the run's exit status.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zinc-sig/fixgen/internal/config"
	"github.com/zinc-sig/fixgen/internal/output"
)

// Config holds webhook endpoint and retry settings.
type Config struct {
	URL          string
	AuthType     string // none, bearer, api-key
	AuthToken    string
	Timeout      time.Duration // overall, including retries
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// FromWebhook converts the validated config-layer webhook section.
func FromWebhook(w *config.Webhook) (*Config, error) {
	cfg := &Config{
		URL:          w.URL,
		AuthType:     w.AuthType,
		AuthToken:    w.AuthToken,
		Timeout:      30 * time.Second,
		MaxRetries:   w.Retries,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if w.Timeout != "" {
		timeout, err := time.ParseDuration(w.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook timeout: %w", err)
		}
		cfg.Timeout = timeout
	}
	if w.RetryDelay != "" {
		delay, err := time.ParseDuration(w.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook retry delay: %w", err)
		}
		cfg.InitialDelay = delay
	}
	return cfg, nil
}

// Client delivers run summaries over HTTP with retry and backoff.
type Client struct {
	httpClient *http.Client
	config     *Config
	verbose    bool
	log        io.Writer
}

// NewClient creates a webhook client. Verbose retry chatter goes to log.
func NewClient(cfg *Config, verbose bool, log io.Writer) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Multiplier == 0 {
		cfg.Multiplier = 2.0
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second, // per-request timeout
		},
		config:  cfg,
		verbose: verbose,
		log:     log,
	}
}

// Send posts the summary as JSON, retrying transient failures with
// exponential backoff until the overall timeout expires.
func (c *Client) Send(ctx context.Context, summary *output.Summary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff(attempt, c.config)
			if c.verbose && c.log != nil {
				fmt.Fprintf(c.log, "[WEBHOOK] Retry %d/%d after %v\n",
					attempt, c.config.MaxRetries, delay)
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return fmt.Errorf("webhook timeout after %d attempts: %w", attempt, ctx.Err())
			}
		}

		statusCode, err := c.post(ctx, payload)
		if err == nil && statusCode >= 200 && statusCode < 300 {
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("webhook returned status %d", statusCode)
			if !retryable(statusCode) {
				return lastErr
			}
		}
	}
	return fmt.Errorf("webhook failed after %d attempts: %w", c.config.MaxRetries+1, lastErr)
}

func (c *Client) post(ctx context.Context, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	switch c.config.AuthType {
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.config.AuthToken)
	case "api-key":
		req.Header.Set("X-API-Key", c.config.AuthToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
