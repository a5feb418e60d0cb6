package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultReadyTimeout = 10 * time.Second

	MsgCaptureFailed = "Payment capture failed. Please try again."
	MsgProviderError = "An error occurred with PayPal. Please try again."
	MsgUnavailable   = "Payment service is unavailable. Please try again later."
)

type GateConfig struct {
	Order        Order
	PollInterval time.Duration
	ReadyTimeout time.Duration
}

// Gate guards one checkout attempt. OnComplete runs at most once, after the
// provider reports a completed capture.
type Gate struct {
	provider   Provider
	cfg        GateConfig
	onComplete func(ctx context.Context) error
	logger     *zap.Logger

	// approveMu serializes captures with each other and with Close.
	approveMu sync.Mutex

	mu        sync.Mutex
	completed bool
	closed    bool
	errMsg    string
}

func NewGate(provider Provider, cfg GateConfig, onComplete func(ctx context.Context) error, logger *zap.Logger) *Gate {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	return &Gate{
		provider:   provider,
		cfg:        cfg,
		onComplete: onComplete,
		logger:     logger.Named("gate"),
	}
}

// WaitReady polls the provider until it is ready, fails hard, or the
// configured timeout passes.
func (g *Gate) WaitReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.ReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(g.cfg.PollInterval)
	defer ticker.Stop()

	for {
		err := g.provider.Ready(ctx)
		switch {
		case err == nil:
			return nil
		case !errors.Is(err, ErrNotReady):
			g.setErr(MsgUnavailable)
			return err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				g.setErr(MsgUnavailable)
				return fmt.Errorf("%w after %s", ErrProviderTimeout, g.cfg.ReadyTimeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (g *Gate) CreateOrder(ctx context.Context) (string, error) {
	id, err := g.provider.CreateOrder(ctx, g.cfg.Order)
	if err != nil {
		g.logger.Error("create order failed", zap.Error(err))
		g.setErr(MsgProviderError)
		return "", err
	}
	return id, nil
}

// Approve captures an approved order and, on success, fires the completion
// callback. A failed capture leaves the gate open for another attempt.
func (g *Gate) Approve(ctx context.Context, orderID string) error {
	g.approveMu.Lock()
	defer g.approveMu.Unlock()

	if g.Completed() {
		return ErrAlreadyCompleted
	}
	if g.isClosed() {
		return ErrGateClosed
	}

	capture, err := g.provider.CaptureOrder(ctx, orderID)
	if err == nil && capture.Status != StatusCompleted {
		err = fmt.Errorf("%w: status %q", ErrCaptureIncomplete, capture.Status)
	}
	if err != nil {
		g.logger.Error("capture failed", zap.String("order_id", orderID), zap.Error(err))
		g.setErr(MsgCaptureFailed)
		return err
	}

	g.mu.Lock()
	g.completed = true
	g.errMsg = ""
	g.mu.Unlock()

	g.logger.Info("payment completed", zap.String("order_id", orderID), zap.String("payer_id", capture.PayerID))
	return g.onComplete(ctx)
}

// Close waits for any capture in flight, then runs fn. When fn succeeds the
// gate is closed and later approvals fail with ErrGateClosed, so a session
// that left the Payment screen is never charged.
func (g *Gate) Close(fn func() error) error {
	g.approveMu.Lock()
	defer g.approveMu.Unlock()

	if err := fn(); err != nil {
		return err
	}
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	return nil
}

func (g *Gate) isClosed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Fail records an error reported by the checkout widget. Closing the popup
// is not an error.
func (g *Gate) Fail(err error) {
	if err == nil || IsCancellation(err) {
		return
	}
	g.logger.Warn("checkout widget error", zap.Error(err))
	g.setErr(MsgProviderError)
}

// Err returns the message to show inline, or "".
func (g *Gate) Err() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.errMsg
}

func (g *Gate) Completed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.completed
}

func (g *Gate) Order() Order {
	return g.cfg.Order
}

func (g *Gate) setErr(msg string) {
	g.mu.Lock()
	g.errMsg = msg
	g.mu.Unlock()
}

// IsCancellation reports whether a widget error only means the buyer closed
// the checkout popup.
func IsCancellation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "closed")
}
