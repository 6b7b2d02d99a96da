package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccessStatus struct {
	PaymentRecordID uuid.UUID
	IsPaid          bool
	TotalAmount     decimal.Decimal
	Level           int
	Term            int
}

type AccessGate struct {
	Configs ConfigSource
	Catalog Catalog
	Ledger  Ledger
}

// Status: found=false kalau belum ada record untuk (student, level, term aktif).
// Record unpaid → IsPaid=false dengan TotalAmount berisi tagihan.
func (g *AccessGate) Status(ctx context.Context, studentID uuid.UUID, level int) (*AccessStatus, bool, error) {
	cfg, err := g.Configs.Current(ctx)
	if err != nil {
		return nil, false, err
	}

	st := &AccessStatus{Level: level, Term: cfg.BillingConfigTerm}
	rec, err := g.Ledger.FindByKey(ctx, studentID, level, cfg.BillingConfigTerm)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return st, false, nil
		}
		return nil, false, fmt.Errorf("load payment record: %w", err)
	}

	st.PaymentRecordID = rec.PaymentRecordID
	st.IsPaid = rec.IsPaid()
	st.TotalAmount = rec.PaymentRecordTotalAmount
	return st, true, nil
}

// StatusFor me-resolve level principal (token atau direktori) lalu memanggil Status.
func (g *AccessGate) StatusFor(ctx context.Context, p Principal) (*AccessStatus, bool, error) {
	_, level, err := resolveStudent(ctx, g.Catalog, p)
	if err != nil {
		return nil, false, err
	}
	return g.Status(ctx, p.StudentID, level)
}

func (g *AccessGate) IsPaid(ctx context.Context, p Principal) (bool, error) {
	st, _, err := g.StatusFor(ctx, p)
	if err != nil {
		return false, err
	}
	return st.IsPaid, nil
}
