package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePayPal struct {
	tokenCalls atomic.Int32
	status     string

	mu        sync.Mutex
	lastOrder orderRequest
}

func (f *fakePayPal) order() orderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOrder
}

func (f *fakePayPal) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "client" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "TOKEN", ExpiresIn: 3600})
	})
	mux.HandleFunc("/v2/checkout/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer TOKEN", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("PayPal-Request-Id"))
		var req orderRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.lastOrder = req
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"5O190127TN364715T","status":"CREATED"}`))
	})
	mux.HandleFunc("/v2/checkout/orders/5O190127TN364715T/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"5O190127TN364715T","status":"` + f.status + `","payer":{"payer_id":"QYR5Z8XDVJNXQ"}}`))
	})
	mux.HandleFunc("/v2/checkout/orders/BAD/capture", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"UNPROCESSABLE_ENTITY","message":"The requested action could not be performed"}`))
	})
	return mux
}

func newTestPayPal(t *testing.T, f *fakePayPal, id, secret string) *PayPal {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	p := NewPayPal(PayPalConfig{ClientID: id, ClientSecret: secret, BaseURL: srv.URL + "/"}, zap.NewNop())
	p.httpClient = srv.Client()
	return p
}

func TestPayPal_Ready(t *testing.T) {
	f := &fakePayPal{}
	p := newTestPayPal(t, f, "client", "secret")

	require.NoError(t, p.Ready(context.Background()))
	require.NoError(t, p.Ready(context.Background()))
	assert.EqualValues(t, 1, f.tokenCalls.Load(), "token is cached")
}

func TestPayPal_Ready_NotConfigured(t *testing.T) {
	p := NewPayPal(PayPalConfig{}, zap.NewNop())
	assert.ErrorIs(t, p.Ready(context.Background()), ErrNotConfigured)
	assert.Equal(t, SandboxBaseURL, p.baseURL)
}

func TestPayPal_Ready_BadCredentialsIsFinal(t *testing.T) {
	p := newTestPayPal(t, &fakePayPal{}, "client", "wrong")

	err := p.Ready(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotReady)
	assert.Contains(t, err.Error(), "401")
}

func TestPayPal_CreateAndCapture(t *testing.T) {
	f := &fakePayPal{status: StatusCompleted}
	p := newTestPayPal(t, f, "client", "secret")
	ctx := context.Background()

	id, err := p.CreateOrder(ctx, testOrder)
	require.NoError(t, err)
	assert.Equal(t, "5O190127TN364715T", id)

	sent := f.order()
	assert.Equal(t, "CAPTURE", sent.Intent)
	require.Len(t, sent.PurchaseUnits, 1)
	assert.Equal(t, amount{CurrencyCode: "USD", Value: "5.00"}, sent.PurchaseUnits[0].Amount)
	assert.Equal(t, testOrder.Description, sent.PurchaseUnits[0].Description)

	c, err := p.CaptureOrder(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, &Capture{OrderID: id, Status: StatusCompleted, PayerID: "QYR5Z8XDVJNXQ"}, c)
}

func TestPayPal_CaptureError(t *testing.T) {
	p := newTestPayPal(t, &fakePayPal{}, "client", "secret")

	_, err := p.CaptureOrder(context.Background(), "BAD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNPROCESSABLE_ENTITY")
	assert.Contains(t, err.Error(), "422")
}

func TestPayPal_WorksBehindGate(t *testing.T) {
	f := &fakePayPal{status: StatusCompleted}
	p := newTestPayPal(t, f, "client", "secret")

	completed := 0
	g := newTestGate(p, func(context.Context) error {
		completed++
		return nil
	})

	ctx := context.Background()
	require.NoError(t, g.WaitReady(ctx))
	id, err := g.CreateOrder(ctx)
	require.NoError(t, err)
	require.NoError(t, g.Approve(ctx, id))
	assert.Equal(t, 1, completed)
}
