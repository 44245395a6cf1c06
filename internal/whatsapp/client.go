// Package whatsapp sends text messages through a go-whatsapp-web gateway.
package whatsapp

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

	"naql_backend/platform/config"
	"naql_backend/platform/logger"
	"naql_backend/platform/phone"
)

const defaultTimeout = 10 * time.Second

// ErrInvalidPhone is returned when the number cannot be turned into E.164.
var ErrInvalidPhone = errors.New("whatsapp: invalid phone number")

type Client struct {
	baseURL  string
	username string
	password string
	deviceID string
	http     *http.Client
	log      *logger.Logger
}

type gowaRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// NewClient returns nil when no gateway URL is configured. A nil client
// silently drops messages.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	if cfg.GetWhatsAppURL() == "" {
		return nil
	}
	if log == nil {
		log = logger.Discard()
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.GetWhatsAppURL(), "/"),
		username: cfg.GetWhatsAppUsername(),
		password: cfg.GetWhatsAppPassword(),
		deviceID: cfg.GetWhatsAppDeviceID(),
		http:     &http.Client{Timeout: defaultTimeout},
		log:      log,
	}
}

func (c *Client) SendMessage(ctx context.Context, phoneNumber string, message string) error {
	if c == nil {
		return nil
	}

	e164 := phone.NormalizeE164(phoneNumber)
	if !strings.HasPrefix(e164, "+") {
		return fmt.Errorf("%w: %q", ErrInvalidPhone, phoneNumber)
	}
	normalized := strings.TrimPrefix(e164, "+")

	body, err := json.Marshal(gowaRequest{Phone: normalized, Message: message})
	if err != nil {
		return fmt.Errorf("marshal whatsapp payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send/message", bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	if c.deviceID != "" {
		req.Header.Set("X-Device-Id", c.deviceID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	c.log.Info("whatsapp sent via gowa", "phone", normalized)
	return nil
}
