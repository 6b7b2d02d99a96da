package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"akademiku_backend/internals/features/finance/payments/model"
)

const stripeSignatureHeader = "stripe-signature"

// StripeSignatureVerifier: skema t=...,v1=... dari Stripe (HMAC-SHA256 + toleransi waktu).
var StripeSignatureVerifier Verifier = VerifierFunc(func(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return webhook.ValidatePayload(body, signature, secret) == nil
})

type StripeWebhookProcessor struct {
	secret   string
	verifier Verifier
}

// verifier nil = StripeSignatureVerifier
func NewStripeWebhookProcessor(secret string, verifier Verifier) *StripeWebhookProcessor {
	if verifier == nil {
		verifier = StripeSignatureVerifier
	}
	return &StripeWebhookProcessor{secret: secret, verifier: verifier}
}

func (p *StripeWebhookProcessor) Provider() string { return model.ProviderStripe }

// headers: key lowercase
func (p *StripeWebhookProcessor) VerifyAndParse(body []byte, headers map[string]string) (*NormalizedEvent, error) {
	if !p.verifier.Verify(body, headers[stripeSignatureHeader], p.secret) {
		return nil, model.ErrSignatureInvalid
	}

	var ev stripe.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("parse stripe event: %w", err)
	}

	rawType := string(ev.Type)
	switch rawType {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		s, err := decodeSession(ev)
		if err != nil {
			return nil, err
		}
		kind := EventCompleted
		// metode async (transfer bank dsb): completed datang duluan dengan status unpaid
		if !isSettled(s.PaymentStatus) {
			kind = EventIgnored
		}
		return normalizeStripeSession(s, kind, rawType), nil

	case "checkout.session.expired":
		s, err := decodeSession(ev)
		if err != nil {
			return nil, err
		}
		return normalizeStripeSession(s, EventExpired, rawType), nil

	case "checkout.session.async_payment_failed":
		s, err := decodeSession(ev)
		if err != nil {
			return nil, err
		}
		return normalizeStripeSession(s, EventFailed, rawType), nil
	}

	return &NormalizedEvent{Provider: model.ProviderStripe, Kind: EventIgnored, RawType: rawType}, nil
}

func decodeSession(ev stripe.Event) (*stripe.CheckoutSession, error) {
	if ev.Data == nil {
		return nil, fmt.Errorf("stripe event %s tanpa data", ev.ID)
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return nil, fmt.Errorf("parse checkout session: %w", err)
	}
	return &s, nil
}
