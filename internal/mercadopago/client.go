package mercadopago

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrConfigInvalid   = errors.New("mercadopago config invalid")
	ErrUnresolvable    = errors.New("mercadopago payment unresolvable")
	ErrResponseInvalid = errors.New("mercadopago response invalid")
)

const defaultBaseURL = "https://api.mercadopago.com"

// Config client configuration.
// AccessTokens are tried in order; the first credential that resolves
// the payment wins. A deployment typically lists live before sandbox.
type Config struct {
	BaseURL      string        `json:"base_url"`
	AccessTokens []string      `json:"access_tokens"`
	Timeout      time.Duration `json:"timeout"`
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	var tokens []string
	for _, t := range c.AccessTokens {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tokens = append(tokens, trimmed)
		}
	}
	c.AccessTokens = tokens
	if c.Timeout <= 0 {
		c.Timeout = 8 * time.Second
	}
}

// Payment the authoritative payment record returned by the provider
type Payment struct {
	ID                json.Number            `json:"id"`
	Status            string                 `json:"status"`
	StatusDetail      string                 `json:"status_detail"`
	ExternalReference string                 `json:"external_reference"`
	TransactionAmount float64                `json:"transaction_amount"`
	CurrencyID        string                 `json:"currency_id"`
	Raw               map[string]interface{} `json:"-"`
}

// Client Mercado Pago payment lookup client
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a lookup client
func NewClient(cfg Config) (*Client, error) {
	cfg.normalize()
	if len(cfg.AccessTokens) == 0 {
		return nil, fmt.Errorf("%w: no access tokens configured", ErrConfigInvalid)
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// GetPayment fetches the authoritative payment record.
// Every configured credential is tried in order; the returned index
// names the one that resolved the payment, for diagnostics only.
// Any outcome that is not a parsed 2xx response maps to ErrUnresolvable:
// the caller treats timeouts, auth failures and unknown ids alike and
// relies on provider redelivery.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, int, error) {
	paymentID = strings.TrimSpace(paymentID)
	if paymentID == "" {
		return nil, -1, fmt.Errorf("%w: empty payment id", ErrUnresolvable)
	}

	endpoint := fmt.Sprintf("%s/v1/payments/%s", c.cfg.BaseURL, paymentID)

	var lastErr error
	for i, token := range c.cfg.AccessTokens {
		payment, err := c.fetch(ctx, endpoint, token)
		if err == nil {
			return payment, i, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, -1, fmt.Errorf("%w: %v", ErrUnresolvable, lastErr)
}

func (c *Client) fetch(ctx context.Context, endpoint, token string) (*Payment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}

	var payment Payment
	if err := json.Unmarshal(body, &payment); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if payment.Status == "" {
		return nil, fmt.Errorf("%w: missing status", ErrResponseInvalid)
	}
	_ = json.Unmarshal(body, &payment.Raw)

	payment.Status = strings.ToLower(strings.TrimSpace(payment.Status))
	payment.ExternalReference = strings.TrimSpace(payment.ExternalReference)
	return &payment, nil
}
