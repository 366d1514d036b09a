// Package paystack implements ports.PaymentGateway against the Paystack
// REST API. Amounts cross this boundary in kobo (minor units); everything
// above it works in decimal major units.
package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Malcolmik/ambo-backend/internal/api/metrics"
	"github.com/Malcolmik/ambo-backend/internal/core/ports"
)

const defaultTimeout = 15 * time.Second

// SignatureHeader carries the HMAC-SHA512 of the raw webhook body, keyed
// with the account's secret key.
const SignatureHeader = "X-Paystack-Signature"

type Config struct {
	BaseURL string
	Secret  string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	secret  string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: cfg.BaseURL,
		secret:  cfg.Secret,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type initializeRequest struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	Currency    string                 `json:"currency,omitempty"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    ports.CheckoutMetadata `json:"metadata"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitializeTransaction opens a hosted checkout session.
func (c *Client) InitializeTransaction(ctx context.Context, req ports.InitializeTransactionRequest) (*ports.CheckoutSession, error) {
	body := initializeRequest{
		Email:       req.Email,
		Amount:      req.AmountMinor,
		Currency:    req.Currency,
		Reference:   req.Reference,
		CallbackURL: req.CallbackURL,
		Metadata:    req.Metadata,
	}

	var resp initializeResponse
	if err := c.call(ctx, "initialize", http.MethodPost, "/transaction/initialize", body, &resp, nil); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("paystack initialize: %s", resp.Message)
	}

	return &ports.CheckoutSession{
		CheckoutURL: resp.Data.AuthorizationURL,
		AccessCode:  resp.Data.AccessCode,
		Reference:   resp.Data.Reference,
	}, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string                 `json:"status"`
		Reference string                 `json:"reference"`
		Amount    int64                  `json:"amount"`
		Currency  string                 `json:"currency"`
		Channel   string                 `json:"channel"`
		PaidAt    *time.Time             `json:"paid_at"`
		Metadata  ports.CheckoutMetadata `json:"metadata"`
	} `json:"data"`
}

// VerifyTransaction fetches the authoritative status of a reference. This is
// the root of trust for the webhook fallback path.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*ports.VerifiedTransaction, error) {
	var resp verifyResponse
	var raw []byte
	if err := c.call(ctx, "verify", http.MethodGet, "/transaction/verify/"+reference, nil, &resp, &raw); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("paystack verify %s: %s", reference, resp.Message)
	}

	vt := &ports.VerifiedTransaction{
		Reference:   resp.Data.Reference,
		Status:      ports.GatewayTxStatus(resp.Data.Status),
		AmountMinor: resp.Data.Amount,
		Currency:    resp.Data.Currency,
		Channel:     resp.Data.Channel,
		Metadata:    resp.Data.Metadata,
		Raw:         raw,
	}
	if resp.Data.PaidAt != nil {
		vt.PaidAt = resp.Data.PaidAt.UTC()
	}
	return vt, nil
}

// VerifyWebhookSignature checks the HMAC-SHA512 over the exact raw bytes in
// constant time. Any re-serialization of the body before this point breaks
// the check.
func (c *Client) VerifyWebhookSignature(rawBody []byte, signature string) bool {
	mac := hmac.New(sha512.New, []byte(c.secret))
	mac.Write(rawBody)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// call performs one gateway HTTP round-trip, decoding the JSON answer into
// out and optionally capturing the raw response bytes.
func (c *Client) call(ctx context.Context, operation, method, path string, body, out interface{}, raw *[]byte) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("paystack %s: encode request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("paystack %s: build request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	outcome := "ok"
	if err != nil || (resp != nil && resp.StatusCode >= http.StatusInternalServerError) {
		outcome = "error"
	}
	metrics.GatewayRequestDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("paystack %s: %w", operation, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("paystack %s: read response: %w", operation, err)
	}
	if raw != nil {
		*raw = data
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.log.Warn().Int("status", resp.StatusCode).Str("operation", operation).Msg("gateway returned non-2xx")
		return fmt.Errorf("paystack %s: status %d: %s", operation, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("paystack %s: decode response: %w", operation, err)
	}
	return nil
}
