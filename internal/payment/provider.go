// Package payment wraps the external checkout provider behind a small
// capability interface and implements the gate that decides when a session
// has paid.
package payment

import (
	"context"
	"errors"
)

var (
	ErrNotReady          = errors.New("payment provider not ready")
	ErrNotConfigured     = errors.New("payment provider not configured")
	ErrProviderTimeout   = errors.New("payment provider did not become ready in time")
	ErrCaptureIncomplete = errors.New("payment capture not completed")
	ErrAlreadyCompleted  = errors.New("payment already completed")
	ErrGateClosed        = errors.New("checkout closed")
)

// StatusCompleted is the capture status that unlocks the analysis.
const StatusCompleted = "COMPLETED"

// Order describes what is being sold. Amount is a decimal string, e.g. "5.00".
type Order struct {
	Amount      string
	Currency    string
	Description string
}

// Capture is the provider's answer to capturing an approved order.
type Capture struct {
	OrderID string
	Status  string
	PayerID string
}

// Provider is the checkout capability handed to a Gate.
type Provider interface {
	// Ready returns nil once the provider can take orders, ErrNotReady
	// while it is still warming up, or any other error for a hard failure.
	Ready(ctx context.Context) error
	CreateOrder(ctx context.Context, order Order) (string, error)
	CaptureOrder(ctx context.Context, orderID string) (*Capture, error)
}
