package payment

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured   = errors.New("checkout provider not configured")
	ErrSessionNotFound = errors.New("checkout session not found")
)

// CreateSessionInput describes a single-listing hosted checkout page.
// Amounts are integer cents; the caller computes them from the server-held
// listing price, never from client input.
type CreateSessionInput struct {
	Title           string
	Description     string
	UnitAmountCents int64
	Quantity        int64
	SuccessURL      string
	CancelURL       string
	Metadata        map[string]string
}

// Session is the provider-neutral view of a hosted checkout session.
type Session struct {
	ID               string
	Paid             bool
	AmountTotalCents int64
	Metadata         map[string]string
}

// CheckoutProvider is the external hosted-checkout dependency. It is handed to
// the payment service at construction so tests can substitute a fake.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*Session, error)
	GetSession(ctx context.Context, id string) (*Session, error)
	PublishableKey() string
}
