package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/shopspring/decimal"

	"akademiku_backend/internals/features/finance/payments/model"
)

/* =========================================================
   Midtrans Client (Snap + Core API)
========================================================= */

type MidtransGateway struct {
	snap snap.Client
	core coreapi.Client
}

// useProduction=true untuk Production, false untuk Sandbox.
func NewMidtransGateway(serverKey string, useProduction bool) *MidtransGateway {
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	g := &MidtransGateway{}
	g.snap.New(serverKey, env)
	g.core.New(serverKey, env)
	return g
}

func (g *MidtransGateway) Provider() string { return model.ProviderMidtrans }

// order_id Midtrans harus unik per transaksi, jadi tiap checkout ulang dapat suffix baru.
// Prefix-nya selalu payment_record_id supaya bisa dikorelasikan balik.
func midtransOrderID(recordID string, now time.Time) string {
	return fmt.Sprintf("%s-%d", recordID, now.Unix())
}

func (g *MidtransGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
	}
	gross := req.Amount.Round(0).IntPart()
	if gross <= 0 {
		return nil, fmt.Errorf("%w: amount harus positif", model.ErrGatewayUnavailable)
	}

	orderID := midtransOrderID(req.PaymentRecordID.String(), time.Now())
	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderID,
			GrossAmt: gross,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:       req.PaymentRecordID.String(),
				Name:     truncate(req.Description, 50),
				Price:    gross,
				Qty:      1,
				Category: "COURSE",
			},
		},
		CustomField1: req.PaymentRecordID.String(),
		CustomField2: req.StudentID.String(),
		CustomField3: fmt.Sprintf("%d:%d", req.Level, req.Term),
	}
	if req.SuccessURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: req.SuccessURL}
	}

	resp, mErr := g.snap.CreateTransaction(snapReq)
	if mErr != nil {
		log.Printf("[ERROR] midtrans snap: %v", mErr.GetMessage())
		return nil, fmt.Errorf("%w: midtrans %s", model.ErrGatewayUnavailable, mErr.GetMessage())
	}
	return &CheckoutSession{Provider: g.Provider(), SessionID: orderID, URL: resp.RedirectURL}, nil
}

func (g *MidtransGateway) LookupSession(ctx context.Context, sessionID string) (*NormalizedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, mErr := g.core.CheckTransaction(sessionID)
	if mErr != nil {
		return nil, fmt.Errorf("%w: midtrans %s", model.ErrGatewayUnavailable, mErr.GetMessage())
	}
	return normalizeMidtrans(midtransNotification{
		StatusCode:        st.StatusCode,
		TransactionStatus: st.TransactionStatus,
		FraudStatus:       st.FraudStatus,
		OrderID:           st.OrderID,
		GrossAmount:       st.GrossAmount,
		TransactionID:     st.TransactionID,
	}, "lookup")
}

/* =========================================================
   Status mapping
========================================================= */

func midtransKind(transactionStatus, fraudStatus string) EventKind {
	switch strings.ToLower(transactionStatus) {
	case "settlement":
		return EventCompleted
	case "capture":
		// kartu kredit: challenge masih menunggu review
		if fs := strings.ToLower(fraudStatus); fs == "" || fs == "accept" {
			return EventCompleted
		}
		return EventIgnored
	case "expire":
		return EventExpired
	case "deny", "cancel", "failure":
		return EventFailed
	default:
		return EventIgnored
	}
}

// normalizeMidtrans hanya memakai field yang ikut ditandatangani untuk korelasi & status:
// record id dari prefix order_id, completed hanya kalau status_code 200.
// custom_field1 harus sama dengan prefix order_id kalau diisi.
func normalizeMidtrans(n midtransNotification, rawType string) (*NormalizedEvent, error) {
	recordID := ""
	if len(n.OrderID) >= 36 {
		recordID = n.OrderID[:36]
	}
	if cf := strings.TrimSpace(n.CustomField1); cf != "" && !strings.EqualFold(cf, recordID) {
		return nil, fmt.Errorf("%w: custom_field1 tidak cocok dengan order_id", model.ErrSignatureInvalid)
	}

	kind := midtransKind(n.TransactionStatus, n.FraudStatus)
	if kind == EventCompleted && strings.TrimSpace(n.StatusCode) != "200" {
		kind = EventIgnored
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(n.GrossAmount))
	if err != nil {
		amount = decimal.Zero
	}
	return &NormalizedEvent{
		Provider:        model.ProviderMidtrans,
		Kind:            kind,
		RawType:         rawType,
		PaymentRecordID: recordID,
		// tidak ditandatangani; reconciler menolak kalau beda dengan student di ledger
		StudentID:      n.CustomField2,
		OrderReference: n.TransactionID,
		SessionID:      n.OrderID,
		SettledAmount:  amount,
	}, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}
