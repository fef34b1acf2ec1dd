// Package payment creates payment links through a YooKassa-compatible API.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/binarybrigade/printbot/core/logger"
	"log/slog"
)

// Config carries the provider credentials and endpoint.
type Config struct {
	ShopID    string
	SecretKey string
	APIURL    string
	ReturnURL string
	Currency  string
}

// Link is a created payment with its confirmation URL.
type Link struct {
	PaymentID string
	URL       string
}

// Client talks to the payment provider over HTTP.
type Client struct {
	cfg  Config
	http *http.Client
	// newKey produces the idempotence key for each request.
	newKey func() string
}

// NewClient builds a payment client. A nil httpClient falls back to a client
// with a sane timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient, newKey: uuid.NewString}
}

// Enabled reports whether provider credentials are configured.
func (c *Client) Enabled() bool {
	return c.cfg.ShopID != ""
}

type createRequest struct {
	Amount       amount       `json:"amount"`
	Confirmation confirmation `json:"confirmation"`
	Capture      bool         `json:"capture"`
	Description  string       `json:"description"`
}

type amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type confirmation struct {
	Type      string `json:"type"`
	ReturnURL string `json:"return_url,omitempty"`
}

type createResponse struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Confirmation confirmation `json:"confirmation"`
}

func (c *createResponse) confirmationURL() string {
	return c.Confirmation.ReturnURL
}

// The provider returns the redirect target as confirmation_url; decode it
// separately because the request field is return_url.
func (cf *confirmation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type            string `json:"type"`
		ReturnURL       string `json:"return_url"`
		ConfirmationURL string `json:"confirmation_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	cf.Type = raw.Type
	cf.ReturnURL = raw.ReturnURL
	if raw.ConfirmationURL != "" {
		cf.ReturnURL = raw.ConfirmationURL
	}
	return nil
}

// CreateLink registers a payment for the given amount and returns the URL the
// customer must visit to pay. Each call uses a fresh idempotence key.
func (c *Client) CreateLink(ctx context.Context, value decimal.Decimal, description string) (Link, error) {
	start := time.Now()

	body, err := json.Marshal(createRequest{
		Amount:       amount{Value: value.StringFixed(2), Currency: c.cfg.Currency},
		Confirmation: confirmation{Type: "redirect", ReturnURL: c.cfg.ReturnURL},
		Capture:      true,
		Description:  description,
	})
	if err != nil {
		return Link{}, fmt.Errorf("payment: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(body))
	if err != nil {
		return Link{}, fmt.Errorf("payment: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", c.newKey())
	req.SetBasicAuth(c.cfg.ShopID, c.cfg.SecretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Link{}, fmt.Errorf("payment: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		logger.PAY.Warn("provider rejected payment",
			slog.String("event", "payment.create"),
			slog.String("status", "fail"),
			slog.Int("http_status", resp.StatusCode),
			slog.Duration("duration", logger.RoundMS(time.Since(start))),
		)
		return Link{}, fmt.Errorf("payment: provider returned %d: %s", resp.StatusCode, snippet)
	}

	var out createResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Link{}, fmt.Errorf("payment: decode response: %w", err)
	}
	if out.confirmationURL() == "" {
		return Link{}, fmt.Errorf("payment: response has no confirmation url")
	}

	logger.PAY.Info("payment link created",
		slog.String("event", "payment.create"),
		slog.String("status", "ok"),
		slog.String("payment_id", out.ID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return Link{PaymentID: out.ID, URL: out.confirmationURL()}, nil
}
