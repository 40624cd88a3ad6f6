package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"roomescape/internal/config"
)

const confirmPath = "/v1/payments/confirm"

// maxBodyBytes caps how much of a gateway response is read.
const maxBodyBytes = 1 << 20

// ErrUnavailable is returned when the gateway could not be reached or answered with garbage.
var ErrUnavailable = errors.New("payment gateway unavailable")

// Request is the confirmation payload sent to the gateway.
type Request struct {
	PaymentKey string `json:"paymentKey"`
	OrderID    string `json:"orderId"`
	Amount     int64  `json:"amount"`
}

// Confirmation is the subset of the gateway's payment object the service uses.
// Raw keeps the full response body as returned by the gateway.
type Confirmation struct {
	PaymentKey  string          `json:"paymentKey"`
	OrderID     string          `json:"orderId"`
	Status      string          `json:"status"`
	TotalAmount int64           `json:"totalAmount"`
	ApprovedAt  string          `json:"approvedAt"`
	Raw         json.RawMessage `json:"-"`
}

// GatewayError is a rejection reported by the gateway. Message is safe to show to users.
type GatewayError struct {
	Status  int
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment rejected (%d %s): %s", e.Status, e.Code, e.Message)
}

// Client confirms payments against the Toss Payments API.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	hc        *http.Client
	baseURL   string
	secretKey string
}

// NewClient builds a client whose HTTP transport is traced with OpenTelemetry.
func NewClient(cfg config.PaymentConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		hc: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		secretKey: cfg.SecretKey,
	}
}

// Confirm submits the order id, amount and payment key for approval.
// It makes exactly one call; there is no retry.
func (c *Client) Confirm(ctx context.Context, req Request) (*Confirmation, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal confirm request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+confirmPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build confirm request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", c.authorization())

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 400 {
		var r struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(body, &r)
		if r.Message == "" {
			r.Message = http.StatusText(resp.StatusCode)
		}
		return nil, &GatewayError{Status: resp.StatusCode, Code: r.Code, Message: r.Message}
	}

	var out Confirmation
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	out.Raw = body
	return &out, nil
}

// authorization encodes the secret key as the Basic username with an empty password.
func (c *Client) authorization() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.secretKey+":"))
}
