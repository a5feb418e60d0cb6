package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"

	// tokens are refreshed this long before PayPal says they expire
	tokenSlack = time.Minute
)

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

// PayPal talks to the Orders v2 REST API.
type PayPal struct {
	clientID   string
	secret     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
}

func NewPayPal(cfg PayPalConfig, logger *zap.Logger) *PayPal {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = SandboxBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &PayPal{
		clientID:   cfg.ClientID,
		secret:     cfg.ClientSecret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("paypal"),
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type orderRequest struct {
	Intent        string         `json:"intent"`
	PurchaseUnits []purchaseUnit `json:"purchase_units"`
}

type purchaseUnit struct {
	Description string `json:"description,omitempty"`
	Amount      amount `json:"amount"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		PayerID string `json:"payer_id"`
	} `json:"payer"`
}

// Ready fetches an OAuth token. Transport failures are reported as
// ErrNotReady so callers keep polling; rejected credentials are final.
func (p *PayPal) Ready(ctx context.Context) error {
	if p.clientID == "" || p.secret == "" {
		return ErrNotConfigured
	}
	_, err := p.token(ctx)
	return err
}

func (p *PayPal) CreateOrder(ctx context.Context, order Order) (string, error) {
	body := orderRequest{
		Intent: "CAPTURE",
		PurchaseUnits: []purchaseUnit{{
			Description: order.Description,
			Amount:      amount{CurrencyCode: order.Currency, Value: order.Amount},
		}},
	}

	var resp orderResponse
	if err := p.do(ctx, http.MethodPost, "/v2/checkout/orders", body, &resp); err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create order: empty order id")
	}

	p.logger.Info("order created", zap.String("order_id", resp.ID), zap.String("status", resp.Status))
	return resp.ID, nil
}

func (p *PayPal) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	var resp orderResponse
	path := "/v2/checkout/orders/" + url.PathEscape(orderID) + "/capture"
	if err := p.do(ctx, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return nil, fmt.Errorf("capture order %s: %w", orderID, err)
	}

	p.logger.Info("order captured", zap.String("order_id", resp.ID), zap.String("status", resp.Status))
	return &Capture{OrderID: resp.ID, Status: resp.Status, PayerID: resp.Payer.PayerID}, nil
}

func (p *PayPal) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.accessToken != "" && time.Now().Before(p.expiresAt) {
		return p.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotReady, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oauth token: %w", readAPIError(resp))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("oauth token: decode: %w", err)
	}

	p.accessToken = tok.AccessToken
	p.expiresAt = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSlack)
	return p.accessToken, nil
}

func (p *PayPal) do(ctx context.Context, method, path string, in, out any) error {
	token, err := p.token(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PayPal-Request-Id", uuid.NewString())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && (e.Name != "" || e.Message != "") {
		return fmt.Errorf("paypal %d %s: %s", resp.StatusCode, e.Name, e.Message)
	}
	return fmt.Errorf("paypal %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
