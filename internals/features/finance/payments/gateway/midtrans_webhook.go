package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/bytedance/sonic"

	"akademiku_backend/internals/features/finance/payments/model"
)

/* =======================================================================
   Webhook Midtrans (HTTP notification)
======================================================================= */

type midtransNotification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, failure
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"` // string dari Midtrans
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"` // accept / challenge / deny
	TransactionID     string `json:"transaction_id"`
	CustomField1      string `json:"custom_field1"`
	CustomField2      string `json:"custom_field2"`
	CustomField3      string `json:"custom_field3"`
}

// SHA512(order_id + status_code + gross_amount + ServerKey)
func midtransSignature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

// MidtransSignatureVerifier: signature ada di body (signature_key), bukan header.
var MidtransSignatureVerifier Verifier = VerifierFunc(func(body []byte, signature, secret string) bool {
	if secret == "" || signature == "" {
		return false
	}
	var n midtransNotification
	if err := sonic.Unmarshal(body, &n); err != nil {
		return false
	}
	want := midtransSignature(n.OrderID, n.StatusCode, n.GrossAmount, secret)
	got := strings.ToLower(strings.TrimSpace(signature))
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
})

type MidtransWebhookProcessor struct {
	serverKey string
	verifier  Verifier
}

func NewMidtransWebhookProcessor(serverKey string, verifier Verifier) *MidtransWebhookProcessor {
	if verifier == nil {
		verifier = MidtransSignatureVerifier
	}
	return &MidtransWebhookProcessor{serverKey: serverKey, verifier: verifier}
}

func (p *MidtransWebhookProcessor) Provider() string { return model.ProviderMidtrans }

func (p *MidtransWebhookProcessor) VerifyAndParse(body []byte, _ map[string]string) (*NormalizedEvent, error) {
	var n midtransNotification
	if err := sonic.Unmarshal(body, &n); err != nil {
		// payload rusak tidak bisa diverifikasi
		return nil, model.ErrSignatureInvalid
	}
	if !p.verifier.Verify(body, n.SignatureKey, p.serverKey) {
		return nil, model.ErrSignatureInvalid
	}
	return normalizeMidtrans(n, "midtrans."+strings.ToLower(n.TransactionStatus))
}
