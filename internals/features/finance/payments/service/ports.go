package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"akademiku_backend/internals/constants"
	billingModel "akademiku_backend/internals/features/finance/billing_configs/model"
	"akademiku_backend/internals/features/finance/payments/model"
	"akademiku_backend/internals/features/finance/payments/repository"
)

/* =========================================================
   Ports (diimplementasi repository / provider / events)
========================================================= */

type ConfigSource interface {
	Current(ctx context.Context) (*billingModel.BillingConfigModel, error)
}

type Ledger interface {
	UpsertUnpaid(ctx context.Context, in repository.UpsertInput) (*model.PaymentRecordModel, error)
	AttachSession(ctx context.Context, id uuid.UUID, provider, sessionID string) error
	MarkPaid(ctx context.Context, id uuid.UUID, orderRef string, settled *decimal.Decimal) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentRecordModel, error)
	FindByKey(ctx context.Context, studentID uuid.UUID, level, term int) (*model.PaymentRecordModel, error)
	ListStaleSessions(ctx context.Context, before time.Time, limit int) ([]model.PaymentRecordModel, error)
	List(ctx context.Context, f repository.ListFilter, offset, limit int) ([]model.PaymentRecordModel, int64, error)
}

type Catalog interface {
	FindStudentByID(ctx context.Context, id uuid.UUID) (*model.StudentRef, error)
	FindStudentByName(ctx context.Context, name string) (*model.StudentRef, error)
	ListEnrolledCourses(ctx context.Context, studentID uuid.UUID) ([]model.CourseDetail, error)
	FindCoursesByIDs(ctx context.Context, ids []uuid.UUID) ([]model.CourseDetail, error)
}

// PaidEventPublisher: boleh nil di semua service.
type PaidEventPublisher interface {
	PublishPaymentPaid(ctx context.Context, ev model.PaymentPaidEvent) error
}

// Principal diisi dari claim JWT.
type Principal struct {
	StudentID uuid.UUID
	Role      string
	Level     int
	HasLevel  bool
}

func (p Principal) IsStudent() bool { return p.Role == constants.RoleStudent }

// resolveStudent: principal harus student yang ada di direktori.
// Level dari token diutamakan; kalau tidak ada pakai level di direktori.
func resolveStudent(ctx context.Context, catalog Catalog, p Principal) (*model.StudentRef, int, error) {
	if !p.IsStudent() || p.StudentID == uuid.Nil {
		return nil, 0, model.ErrStudentNotFound
	}
	st, err := catalog.FindStudentByID(ctx, p.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, model.ErrStudentNotFound
		}
		return nil, 0, fmt.Errorf("load student: %w", err)
	}

	level := st.Level
	if p.HasLevel {
		level = p.Level
	}
	if !constants.IsValidLevel(level) {
		return nil, 0, model.ErrInvalidLevel
	}
	return st, level, nil
}
