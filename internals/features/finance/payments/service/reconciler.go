package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"akademiku_backend/internals/features/finance/payments/gateway"
	"akademiku_backend/internals/features/finance/payments/model"
)

type Outcome string

const (
	OutcomePaid        Outcome = "paid"
	OutcomeAlreadyPaid Outcome = "already_paid"
	OutcomeOrphan      Outcome = "orphan"
	OutcomeIgnored     Outcome = "ignored"
)

// Reconciler menerapkan notifikasi gateway ke ledger secara idempotent.
// Dipakai oleh webhook controller dan pending sweeper.
type Reconciler struct {
	ledger          Ledger
	publisher       PaidEventPublisher
	processors      map[string]gateway.WebhookProcessor
	defaultProvider string
}

func NewReconciler(ledger Ledger, publisher PaidEventPublisher, defaultProvider string, processors ...gateway.WebhookProcessor) *Reconciler {
	m := make(map[string]gateway.WebhookProcessor, len(processors))
	for _, p := range processors {
		if p != nil {
			m[p.Provider()] = p
		}
	}
	return &Reconciler{
		ledger:          ledger,
		publisher:       publisher,
		processors:      m,
		defaultProvider: defaultProvider,
	}
}

// HandleWebhook: verify → normalize → apply. provider "" = default provider.
func (r *Reconciler) HandleWebhook(ctx context.Context, provider string, body []byte, headers map[string]string) (Outcome, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = r.defaultProvider
	}
	proc, ok := r.processors[provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", model.ErrUnsupportedProvider, provider)
	}

	ev, err := proc.VerifyAndParse(body, headers)
	if err != nil {
		log.Printf("[WEBHOOK] %s ditolak: %v", provider, err)
		return "", err
	}
	return r.Apply(ctx, ev)
}

// Apply hanya memutasi ledger untuk EventCompleted.
// Error yang dikembalikan selalu transient (DB); orphan bukan error.
func (r *Reconciler) Apply(ctx context.Context, ev *gateway.NormalizedEvent) (Outcome, error) {
	if ev == nil || ev.Kind != gateway.EventCompleted {
		if ev != nil {
			log.Printf("[WEBHOOK] %s %s (%s) record=%s diabaikan", ev.Provider, ev.Kind, ev.RawType, ev.PaymentRecordID)
		}
		return OutcomeIgnored, nil
	}

	id, err := uuid.Parse(strings.TrimSpace(ev.PaymentRecordID))
	if err != nil {
		log.Printf("[WEBHOOK] orphan: correlation id %q tidak valid (provider=%s ref=%s)", ev.PaymentRecordID, ev.Provider, ev.OrderReference)
		return OutcomeOrphan, nil
	}

	rec, err := r.ledger.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[WEBHOOK] orphan: record %s tidak ada (provider=%s ref=%s)", id, ev.Provider, ev.OrderReference)
			return OutcomeOrphan, nil
		}
		return "", fmt.Errorf("load payment record: %w", err)
	}
	if ev.StudentID != "" && ev.StudentID != rec.PaymentRecordStudentID.String() {
		log.Printf("[WEBHOOK] orphan: student metadata %s ≠ record %s milik %s", ev.StudentID, id, rec.PaymentRecordStudentID)
		return OutcomeOrphan, nil
	}
	if rec.IsPaid() {
		return OutcomeAlreadyPaid, nil
	}

	settled := settledAmount(ev, rec)
	transitioned, err := r.ledger.MarkPaid(ctx, id, ev.OrderReference, settled)
	if err != nil {
		if errors.Is(err, model.ErrOrphanNotification) {
			log.Printf("[WEBHOOK] orphan: record %s hilang saat update", id)
			return OutcomeOrphan, nil
		}
		return "", fmt.Errorf("mark paid: %w", err)
	}
	if !transitioned {
		return OutcomeAlreadyPaid, nil
	}

	amount := rec.PaymentRecordTotalAmount
	if settled != nil {
		amount = *settled
	}
	log.Printf("[WEBHOOK] ✅ record=%s lunas via %s ref=%s amount=%s", id, ev.Provider, ev.OrderReference, amount.StringFixed(2))

	r.publish(ctx, model.PaymentPaidEvent{
		PaymentRecordID: rec.PaymentRecordID,
		StudentID:       rec.PaymentRecordStudentID,
		Level:           rec.PaymentRecordLevel,
		Term:            rec.PaymentRecordTerm,
		TotalAmount:     amount,
		Provider:        ev.Provider,
		OrderReference:  ev.OrderReference,
		PaidAt:          time.Now().UTC(),
	})
	return OutcomePaid, nil
}

// settledAmount: amount gateway dipakai hanya kalau positif; selisih dengan quote dicatat.
func settledAmount(ev *gateway.NormalizedEvent, rec *model.PaymentRecordModel) *decimal.Decimal {
	if !ev.SettledAmount.IsPositive() {
		return nil
	}
	s := ev.SettledAmount.Round(2)
	if !s.Equal(rec.PaymentRecordTotalAmount) {
		log.Printf("[WARN] record=%s settled %s ≠ quote %s, pakai amount gateway",
			rec.PaymentRecordID, s.StringFixed(2), rec.PaymentRecordTotalAmount.StringFixed(2))
	}
	return &s
}

func (r *Reconciler) publish(ctx context.Context, ev model.PaymentPaidEvent) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishPaymentPaid(ctx, ev); err != nil {
		// ledger sudah benar; event hilang hanya dicatat
		log.Printf("[ERROR] publish payment.paid record=%s: %v", ev.PaymentRecordID, err)
	}
}
