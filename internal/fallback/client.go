// Package fallback delivers leads to a secondary webhook when the primary
// sink rejects them.
package fallback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"naql_backend/internal/leads/domain"
	"naql_backend/platform/config"
	"naql_backend/platform/logger"
)

// DefaultTimeout bounds a single delivery attempt.
const DefaultTimeout = 10 * time.Second

// ErrNotConfigured is returned when no webhook URL is set.
var ErrNotConfigured = errors.New("fallback: webhook not configured")

// Client posts leads to the fallback webhook. A nil *Client is valid and
// reports ErrNotConfigured.
type Client struct {
	url    string
	secret string
	http   *http.Client
	log    *logger.Logger
}

// NewClient returns nil when no webhook URL is configured.
func NewClient(cfg config.FallbackConfig, log *logger.Logger) *Client {
	if strings.TrimSpace(cfg.GetFallbackWebhookURL()) == "" {
		return nil
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		url:    cfg.GetFallbackWebhookURL(),
		secret: cfg.GetFallbackWebhookSecret(),
		http:   &http.Client{Timeout: DefaultTimeout},
		log:    log,
	}
}

// Configured reports whether deliveries can be attempted.
func (c *Client) Configured() bool { return c != nil }

// Deliver makes exactly one attempt. The lead id travels as the idempotency
// key so the receiver can drop replays.
func (c *Client) Deliver(ctx context.Context, lead domain.ServerLead) error {
	if c == nil {
		return ErrNotConfigured
	}

	body, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal fallback payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", lead.LeadID)
	if c.secret != "" {
		req.Header.Set("X-Signature", Sign(c.secret, body))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fallback request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("fallback webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("fallback: lead delivered", "leadId", lead.LeadID)
	return nil
}
