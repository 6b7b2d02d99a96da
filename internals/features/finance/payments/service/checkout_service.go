package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"akademiku_backend/internals/features/finance/payments/gateway"
	"akademiku_backend/internals/features/finance/payments/model"
	"akademiku_backend/internals/features/finance/payments/repository"
)

const defaultUpsertAttempts = 3

type CheckoutService struct {
	Configs ConfigSource
	Catalog Catalog
	Ledger  Ledger
	Gateway gateway.CheckoutGateway

	SuccessURL string
	CancelURL  string

	// 0 = defaultUpsertAttempts
	MaxAttempts int
}

type CheckoutResult struct {
	Record  *model.PaymentRecordModel
	Session *gateway.CheckoutSession
}

// CreateSession: config → student + course → pricing → upsert ledger → gateway.
// Kalau key sudah lunas, Record terisi dan error = ErrAlreadyPaid (gateway tidak dipanggil).
func (s *CheckoutService) CreateSession(ctx context.Context, p Principal) (*CheckoutResult, error) {
	cfg, err := s.Configs.Current(ctx)
	if err != nil {
		return nil, err
	}

	student, level, err := resolveStudent(ctx, s.Catalog, p)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.Catalog.ListEnrolledCourses(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("load enrolled courses: %w", err)
	}
	hours := make([]CourseHours, 0, len(enrolled))
	for _, c := range enrolled {
		hours = append(hours, CourseHours{CourseID: c.ID, Hours: c.Hours})
	}

	quote, err := Calculate(hours, cfg.BillingConfigHourRate)
	if err != nil {
		return nil, err
	}

	rec, err := s.upsert(ctx, repository.UpsertInput{
		StudentID:   student.ID,
		Level:       level,
		Term:        cfg.BillingConfigTerm,
		Courses:     quote.Courses,
		TotalHours:  quote.TotalHours,
		HourRate:    quote.HourRate,
		TotalAmount: quote.TotalAmount,
	})
	if err != nil {
		if errors.Is(err, model.ErrAlreadyPaid) {
			return &CheckoutResult{Record: rec}, err
		}
		return nil, err
	}

	sess, err := s.Gateway.CreateCheckoutSession(ctx, gateway.CheckoutRequest{
		PaymentRecordID: rec.PaymentRecordID,
		StudentID:       rec.PaymentRecordStudentID,
		Level:           rec.PaymentRecordLevel,
		Term:            rec.PaymentRecordTerm,
		TotalHours:      rec.PaymentRecordTotalHours,
		Amount:          rec.PaymentRecordTotalAmount,
		Description:     fmt.Sprintf("Level %d term %d (%d jam)", rec.PaymentRecordLevel, rec.PaymentRecordTerm, rec.PaymentRecordTotalHours),
		SuccessURL:      s.SuccessURL,
		CancelURL:       s.CancelURL,
	})
	if err != nil {
		// baris tetap unpaid, retry aman
		log.Printf("[ERROR] checkout gateway=%s record=%s: %v", s.Gateway.Provider(), rec.PaymentRecordID, err)
		if !errors.Is(err, model.ErrGatewayUnavailable) {
			err = fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err)
		}
		return nil, err
	}

	if err := s.Ledger.AttachSession(ctx, rec.PaymentRecordID, sess.Provider, sess.SessionID); err != nil {
		// hanya dipakai sweeper; checkout tetap jalan
		log.Printf("[WARN] gagal simpan session %s untuk record %s: %v", sess.SessionID, rec.PaymentRecordID, err)
	} else {
		rec.PaymentRecordProvider = sess.Provider
		rec.PaymentRecordCheckoutSessionID = sess.SessionID
	}

	log.Printf("[INFO] checkout dibuat: record=%s student=%s level=%d term=%d amount=%s provider=%s",
		rec.PaymentRecordID, rec.PaymentRecordStudentID, rec.PaymentRecordLevel, rec.PaymentRecordTerm,
		rec.PaymentRecordTotalAmount.StringFixed(2), sess.Provider)

	return &CheckoutResult{Record: rec, Session: sess}, nil
}

// upsert mengulang hanya untuk ErrLedgerConflict.
func (s *CheckoutService) upsert(ctx context.Context, in repository.UpsertInput) (*model.PaymentRecordModel, error) {
	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = defaultUpsertAttempts
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		rec, err := s.Ledger.UpsertUnpaid(ctx, in)
		if err == nil || !errors.Is(err, model.ErrLedgerConflict) {
			return rec, err
		}
		lastErr = err
		log.Printf("[WARN] ledger conflict student=%s level=%d term=%d (attempt %d/%d)",
			in.StudentID, in.Level, in.Term, i, attempts)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
