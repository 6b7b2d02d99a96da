package gateway

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"akademiku_backend/internals/features/finance/payments/model"
)

// metadata key yang dititipkan ke Stripe dan dibaca lagi dari webhook
const (
	metaPaymentRecordID = "payment_record_id"
	metaStudentID       = "student_id"
	metaLevel           = "level"
	metaTerm            = "term"
)

type StripeGateway struct {
	sc       *client.API
	currency string
}

// backends nil = endpoint Stripe asli.
func NewStripeGateway(secretKey, currency string, backends *stripe.Backends) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, backends)
	if currency == "" {
		currency = "usd"
	}
	return &StripeGateway{sc: sc, currency: currency}
}

func (g *StripeGateway) Provider() string { return model.ProviderStripe }

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	cents := toMinorUnits(req.Amount, g.currency)
	if cents <= 0 {
		return nil, fmt.Errorf("%w: amount harus positif", model.ErrGatewayUnavailable)
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(req.PaymentRecordID.String()),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Description),
					},
					UnitAmount: stripe.Int64(cents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		PaymentIntentData: &stripe.CheckoutSessionPaymentIntentDataParams{
			Metadata: correlationMetadata(req),
		},
	}
	for k, v := range correlationMetadata(req) {
		params.AddMetadata(k, v)
	}
	params.Context = ctx

	s, err := g.sc.CheckoutSessions.New(params)
	if err != nil {
		return nil, mapStripeError(err)
	}
	return &CheckoutSession{Provider: g.Provider(), SessionID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) LookupSession(ctx context.Context, sessionID string) (*NormalizedEvent, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.sc.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, mapStripeError(err)
	}

	kind := EventIgnored
	switch {
	case s.Status == stripe.CheckoutSessionStatusComplete && isSettled(s.PaymentStatus):
		kind = EventCompleted
	case s.Status == stripe.CheckoutSessionStatusExpired:
		kind = EventExpired
	}
	return normalizeStripeSession(s, kind, "lookup"), nil
}

/* =========================================================
   Utils
========================================================= */

func correlationMetadata(req CheckoutRequest) map[string]string {
	return map[string]string{
		metaPaymentRecordID: req.PaymentRecordID.String(),
		metaStudentID:       req.StudentID.String(),
		metaLevel:           strconv.Itoa(req.Level),
		metaTerm:            strconv.Itoa(req.Term),
	}
}

func isSettled(ps stripe.CheckoutSessionPaymentStatus) bool {
	return ps == stripe.CheckoutSessionPaymentStatusPaid ||
		ps == stripe.CheckoutSessionPaymentStatusNoPaymentRequired
}

func normalizeStripeSession(s *stripe.CheckoutSession, kind EventKind, rawType string) *NormalizedEvent {
	ev := &NormalizedEvent{
		Provider:        model.ProviderStripe,
		Kind:            kind,
		RawType:         rawType,
		PaymentRecordID: s.Metadata[metaPaymentRecordID],
		StudentID:       s.Metadata[metaStudentID],
		SessionID:       s.ID,
		OrderReference:  s.ID,
		SettledAmount:   fromMinorUnits(s.AmountTotal, string(s.Currency)),
	}
	if ev.PaymentRecordID == "" {
		ev.PaymentRecordID = s.ClientReferenceID
	}
	if s.PaymentIntent != nil && s.PaymentIntent.ID != "" {
		ev.OrderReference = s.PaymentIntent.ID
	}
	return ev
}

// Stripe: https://docs.stripe.com/currencies#zero-decimal
var (
	zeroDecimalCurrencies = map[string]bool{
		"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
		"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
		"vuv": true, "xaf": true, "xof": true, "xpf": true,
	}
	threeDecimalCurrencies = map[string]bool{
		"bhd": true, "jod": true, "kwd": true, "omr": true, "tnd": true,
	}
)

// currencyExponent: jumlah digit minor unit; default 2.
func currencyExponent(currency string) int32 {
	c := strings.ToLower(strings.TrimSpace(currency))
	switch {
	case zeroDecimalCurrencies[c]:
		return 0
	case threeDecimalCurrencies[c]:
		return 3
	}
	return 2
}

// amount ledger → minor unit Stripe (cents, atau yen utuh untuk jpy)
func toMinorUnits(amount decimal.Decimal, currency string) int64 {
	return amount.Shift(currencyExponent(currency)).Round(0).IntPart()
}

func fromMinorUnits(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -currencyExponent(currency))
}

func mapStripeError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		log.Printf("[ERROR] stripe: type=%s code=%s status=%d msg=%s", se.Type, se.Code, se.HTTPStatusCode, se.Msg)
		return fmt.Errorf("%w: stripe %s", model.ErrGatewayUnavailable, se.Msg)
	}
	return fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
}
