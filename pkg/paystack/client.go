package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/adepa-commerce/storefront-backend/pkg/config"
	"github.com/adepa-commerce/storefront-backend/pkg/logger"
)

var (
	errSecretRequired = errors.New("paystack secret key is required")

	// ErrUnavailable marks timeouts and provider-side failures; callers may retry.
	ErrUnavailable = errors.New("paystack unavailable")
	// ErrTransactionNotFound means the provider has no record of the reference.
	ErrTransactionNotFound = errors.New("paystack transaction not found")
)

// Transaction is the subset of the provider's verify payload the bridge needs.
type Transaction struct {
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
}

// Succeeded reports whether the provider settled the charge.
func (t Transaction) Succeeded() bool {
	return strings.EqualFold(t.Status, "success")
}

// Client wraps the Paystack verification API. In trusted-signal mode no
// outbound call is made and the caller's declared transaction is accepted;
// amount checks against the frozen order still apply downstream.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	secretKey   string
	trustClient bool
}

// NewClient initializes the Paystack client with the configured secrets.
func NewClient(ctx context.Context, cfg config.PaystackConfig, logg *logger.Logger) (*Client, error) {
	secret := strings.TrimSpace(cfg.SecretKey)
	if secret == "" && !cfg.TrustClient {
		return nil, errSecretRequired
	}
	if secret != "" && !strings.HasPrefix(secret, "sk_") {
		return nil, fmt.Errorf("paystack secret key must start with sk_")
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.paystack.co"
	}

	if logg != nil {
		mode := "live"
		if cfg.TrustClient {
			mode = "trusted-signal"
		}
		logg.Info(ctx, fmt.Sprintf("paystack client initialized (%s)", mode))
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     base,
		secretKey:   secret,
		trustClient: cfg.TrustClient,
	}, nil
}

// TrustsClient reports whether verification skips the outbound provider call.
func (c *Client) TrustsClient() bool {
	return c != nil && c.trustClient
}

type verifyEnvelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    Transaction `json:"data"`
}

// VerifyTransaction confirms a charge reference against the provider.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("transaction reference is required")
	}

	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrTransactionNotFound
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: provider returned %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("paystack verify returned %d", resp.StatusCode)
	}

	var envelope verifyEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decoding verify response: %w", err)
	}
	if !envelope.Status {
		return nil, fmt.Errorf("paystack verify rejected: %s", envelope.Message)
	}

	tx := envelope.Data
	if tx.Reference == "" {
		tx.Reference = reference
	}
	return &tx, nil
}
