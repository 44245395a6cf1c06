// Package client submits wizard records to the intake API.
package client

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
	"naql_backend/internal/leads/transport"
)

// GenericFailureMessage is shown when the server gave no usable message.
const GenericFailureMessage = "تعذّر الإرسال حاليًا. جرّب مرة أخرى خلال لحظات."

const (
	leadPath       = "/api/v1/lead"
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// SubmitError is a rejected or failed submission. Message is safe to show
// the visitor.
type SubmitError struct {
	Status  int
	Message string
	Fields  map[string]string
	Err     error
}

func (e *SubmitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("submit lead: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("submit lead: status %d: %s", e.Status, e.Message)
}

func (e *SubmitError) Unwrap() error { return e.Err }

// UserMessage returns the text for the error notice.
func (e *SubmitError) UserMessage() string { return e.Message }

// Client talks to POST /api/v1/lead. It never retries on its own.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SubmitLead posts rec and returns the lead id. Every failure is a
// *SubmitError.
func (c *Client) SubmitLead(ctx context.Context, rec domain.LeadRecord) (string, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return "", &SubmitError{Message: GenericFailureMessage, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+leadPath, bytes.NewReader(body))
	if err != nil {
		return "", &SubmitError{Message: GenericFailureMessage, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &SubmitError{Message: GenericFailureMessage, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var out transport.SubmitLeadResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		return "", &SubmitError{Status: resp.StatusCode, Message: GenericFailureMessage, Err: fmt.Errorf("decode response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := out.Message
		if msg == "" {
			msg = GenericFailureMessage
		}
		return "", &SubmitError{Status: resp.StatusCode, Message: msg, Fields: out.Errors}
	}
	if out.LeadID == "" {
		return "", &SubmitError{Status: resp.StatusCode, Message: GenericFailureMessage, Err: errors.New("response carried no lead id")}
	}
	return out.LeadID, nil
}
