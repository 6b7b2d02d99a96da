package gateway

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

/* =========================================================
   Checkout
========================================================= */

type CheckoutRequest struct {
	PaymentRecordID uuid.UUID
	StudentID       uuid.UUID
	Level           int
	Term            int
	TotalHours      int
	Amount          decimal.Decimal
	Description     string
	SuccessURL      string
	CancelURL       string
}

type CheckoutSession struct {
	Provider  string
	SessionID string
	URL       string
}

type CheckoutGateway interface {
	Provider() string
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
}

/* =========================================================
   Webhook
========================================================= */

type EventKind string

const (
	EventCompleted EventKind = "checkout.completed"
	EventExpired   EventKind = "checkout.expired"
	EventFailed    EventKind = "payment.failed"
	EventIgnored   EventKind = "ignored"
)

// NormalizedEvent: bentuk seragam notifikasi dari provider manapun.
type NormalizedEvent struct {
	Provider string
	Kind     EventKind
	RawType  string

	// correlation metadata yang dititipkan saat checkout
	PaymentRecordID string
	StudentID       string

	OrderReference string
	SessionID      string
	SettledAmount  decimal.Decimal
}

// Verifier memeriksa signature body mentah terhadap shared secret.
type Verifier interface {
	Verify(body []byte, signature string, secret string) bool
}

type VerifierFunc func(body []byte, signature string, secret string) bool

func (f VerifierFunc) Verify(body []byte, signature string, secret string) bool {
	return f(body, signature, secret)
}

// WebhookProcessor: verify dulu, baru parse. Error verifikasi harus ErrSignatureInvalid.
type WebhookProcessor interface {
	Provider() string
	VerifyAndParse(body []byte, headers map[string]string) (*NormalizedEvent, error)
}

// SessionLookup dipakai sweeper untuk menanyakan status sesi yang webhook-nya hilang.
type SessionLookup interface {
	Provider() string
	LookupSession(ctx context.Context, sessionID string) (*NormalizedEvent, error)
}
