package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"akademiku_backend/internals/features/finance/payments/model"
)

const testWebhookSecret = "whsec_test_secret"

func stripeBackends(t *testing.T, h http.HandlerFunc) *stripe.Backends {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	b := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return &stripe.Backends{API: b, Connect: b, Uploads: b}
}

func signedStripe(t *testing.T, payload string) (string, map[string]string) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
	})
	return payload, map[string]string{stripeSignatureHeader: sp.Header}
}

func TestStripeCreateCheckoutSession(t *testing.T) {
	recordID := uuid.New()
	studentID := uuid.New()

	var form url.Values
	backends := stripeBackends(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(raw))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_test_123","object":"checkout.session","url":"https://checkout.stripe.test/cs_test_123"}`)
	})

	g := NewStripeGateway("sk_test_x", "usd", backends)
	sess, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{
		PaymentRecordID: recordID,
		StudentID:       studentID,
		Level:           2,
		Term:            1,
		TotalHours:      8,
		Amount:          decimal.RequireFromString("320.00"),
		Description:     "Level 2 term 1 (8 jam)",
		SuccessURL:      "https://app.test/ok",
		CancelURL:       "https://app.test/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "cs_test_123", sess.SessionID)
	assert.Equal(t, "https://checkout.stripe.test/cs_test_123", sess.URL)
	assert.Equal(t, model.ProviderStripe, sess.Provider)

	assert.Equal(t, "32000", form.Get("line_items[0][price_data][unit_amount]"))
	assert.Equal(t, recordID.String(), form.Get("metadata[payment_record_id]"))
	assert.Equal(t, studentID.String(), form.Get("metadata[student_id]"))
	assert.Equal(t, "2", form.Get("metadata[level]"))
	assert.Equal(t, "1", form.Get("metadata[term]"))
	assert.Equal(t, recordID.String(), form.Get("client_reference_id"))
}

func TestStripeCreateCheckoutSessionZeroDecimalCurrency(t *testing.T) {
	var form url.Values
	backends := stripeBackends(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(raw))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"cs_jpy","object":"checkout.session","url":"https://checkout.stripe.test/cs_jpy"}`)
	})

	g := NewStripeGateway("sk_test_x", "jpy", backends)
	_, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{
		PaymentRecordID: uuid.New(),
		StudentID:       uuid.New(),
		Amount:          decimal.RequireFromString("1000.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, "jpy", form.Get("line_items[0][price_data][currency]"))
	assert.Equal(t, "1000", form.Get("line_items[0][price_data][unit_amount]"))
}

func TestStripeCreateCheckoutSessionGatewayError(t *testing.T) {
	backends := stripeBackends(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"type":"invalid_request_error","message":"bad currency"}}`)
	})

	g := NewStripeGateway("sk_test_x", "usd", backends)
	_, err := g.CreateCheckoutSession(context.Background(), CheckoutRequest{
		PaymentRecordID: uuid.New(),
		StudentID:       uuid.New(),
		Amount:          decimal.NewFromInt(10),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrGatewayUnavailable))
}

func TestStripeLookupSession(t *testing.T) {
	recordID := uuid.New()
	backends := stripeBackends(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions/cs_test_9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"cs_test_9","object":"checkout.session","status":"complete","payment_status":"paid",
			"amount_total":32000,"payment_intent":"pi_42","metadata":{"payment_record_id":"%s"}}`, recordID)
	})

	ev, err := NewStripeGateway("sk_test_x", "usd", backends).LookupSession(context.Background(), "cs_test_9")
	require.NoError(t, err)
	assert.Equal(t, EventCompleted, ev.Kind)
	assert.Equal(t, recordID.String(), ev.PaymentRecordID)
	assert.Equal(t, "pi_42", ev.OrderReference)
	assert.True(t, ev.SettledAmount.Equal(decimal.NewFromInt(320)))
}

func TestStripeWebhookCompleted(t *testing.T) {
	recordID := uuid.New().String()
	body, headers := signedStripe(t, fmt.Sprintf(`{
		"id":"evt_1","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_1","object":"checkout.session","payment_status":"paid",
			"amount_total":32000,"payment_intent":"pi_1",
			"metadata":{"payment_record_id":"%s","student_id":"s-1"}}}}`, recordID))

	ev, err := NewStripeWebhookProcessor(testWebhookSecret, nil).VerifyAndParse([]byte(body), headers)
	require.NoError(t, err)
	assert.Equal(t, EventCompleted, ev.Kind)
	assert.Equal(t, recordID, ev.PaymentRecordID)
	assert.Equal(t, "s-1", ev.StudentID)
	assert.Equal(t, "pi_1", ev.OrderReference)
	assert.Equal(t, "cs_1", ev.SessionID)
	assert.True(t, ev.SettledAmount.Equal(decimal.NewFromInt(320)))
}

func TestStripeWebhookUnpaidCompletionIgnored(t *testing.T) {
	body, headers := signedStripe(t, `{"id":"evt_2","object":"event","type":"checkout.session.completed",
		"data":{"object":{"id":"cs_2","object":"checkout.session","payment_status":"unpaid"}}}`)

	ev, err := NewStripeWebhookProcessor(testWebhookSecret, nil).VerifyAndParse([]byte(body), headers)
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, ev.Kind)
}

func TestStripeWebhookExpiredAndOther(t *testing.T) {
	p := NewStripeWebhookProcessor(testWebhookSecret, nil)

	body, headers := signedStripe(t, `{"id":"evt_3","object":"event","type":"checkout.session.expired",
		"data":{"object":{"id":"cs_3","object":"checkout.session","client_reference_id":"rec-3"}}}`)
	ev, err := p.VerifyAndParse([]byte(body), headers)
	require.NoError(t, err)
	assert.Equal(t, EventExpired, ev.Kind)
	assert.Equal(t, "rec-3", ev.PaymentRecordID)

	body, headers = signedStripe(t, `{"id":"evt_4","object":"event","type":"customer.created","data":{"object":{}}}`)
	ev, err = p.VerifyAndParse([]byte(body), headers)
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, ev.Kind)
	assert.Equal(t, "customer.created", ev.RawType)
}

func TestStripeWebhookBadSignature(t *testing.T) {
	body, headers := signedStripe(t, `{"id":"evt_5","object":"event","type":"checkout.session.completed"}`)
	p := NewStripeWebhookProcessor(testWebhookSecret, nil)

	_, err := p.VerifyAndParse([]byte(body+" "), headers)
	assert.ErrorIs(t, err, model.ErrSignatureInvalid)

	_, err = p.VerifyAndParse([]byte(body), map[string]string{})
	assert.ErrorIs(t, err, model.ErrSignatureInvalid)

	_, err = NewStripeWebhookProcessor("whsec_other", nil).VerifyAndParse([]byte(body), headers)
	assert.ErrorIs(t, err, model.ErrSignatureInvalid)
}

func TestStripeWebhookCustomVerifier(t *testing.T) {
	called := false
	p := NewStripeWebhookProcessor("s", VerifierFunc(func(body []byte, sig, secret string) bool {
		called = true
		return sig == "ok" && secret == "s"
	}))
	ev, err := p.VerifyAndParse([]byte(`{"type":"invoice.paid"}`), map[string]string{stripeSignatureHeader: "ok"})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, EventIgnored, ev.Kind)
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(32000), toMinorUnits(decimal.RequireFromString("320"), "usd"))
	assert.Equal(t, int64(1999), toMinorUnits(decimal.RequireFromString("19.99"), "usd"))
	assert.Equal(t, int64(1), toMinorUnits(decimal.RequireFromString("0.005"), "usd"))

	// zero-decimal: 1000 yen dikirim sebagai 1000, bukan 100000
	assert.Equal(t, int64(1000), toMinorUnits(decimal.RequireFromString("1000"), "jpy"))
	assert.Equal(t, int64(1000), toMinorUnits(decimal.RequireFromString("1000.00"), "JPY"))
	assert.Equal(t, int64(50000), toMinorUnits(decimal.RequireFromString("50000"), "krw"))
	// tiga desimal
	assert.Equal(t, int64(12340), toMinorUnits(decimal.RequireFromString("12.34"), "kwd"))
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, fromMinorUnits(32000, "usd").Equal(decimal.NewFromInt(320)))
	assert.True(t, fromMinorUnits(1000, "jpy").Equal(decimal.NewFromInt(1000)))
	assert.True(t, fromMinorUnits(12340, "kwd").Equal(decimal.RequireFromString("12.34")))
	assert.True(t, fromMinorUnits(1999, "").Equal(decimal.RequireFromString("19.99")))
}

func TestNormalizeStripeSessionZeroDecimalAmount(t *testing.T) {
	s := &stripe.CheckoutSession{
		ID:          "cs_jpy",
		AmountTotal: 3200,
		Currency:    stripe.Currency("jpy"),
		Metadata:    map[string]string{metaPaymentRecordID: uuid.NewString()},
	}
	ev := normalizeStripeSession(s, EventCompleted, "lookup")
	assert.True(t, ev.SettledAmount.Equal(decimal.NewFromInt(3200)), ev.SettledAmount.String())
}
