package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"akademiku_backend/internals/features/finance/payments/model"
)

type PaymentRecordRepository struct {
	DB *gorm.DB
}

func NewPaymentRecordRepository(db *gorm.DB) *PaymentRecordRepository {
	return &PaymentRecordRepository{DB: db}
}

// UpsertInput: snapshot hasil pricing untuk satu periode tagihan.
type UpsertInput struct {
	StudentID   uuid.UUID
	Level       int
	Term        int
	Courses     []model.CourseSnapshot
	TotalHours  int
	HourRate    decimal.Decimal
	TotalAmount decimal.Decimal
}

// ListFilter: semua field opsional.
type ListFilter struct {
	StudentID *uuid.UUID
	Level     *int
	Term      *int
	IsPaid    *bool
}

/* =========================================================
   WRITE
========================================================= */

// UpsertUnpaid: satu statement INSERT .. ON CONFLICT .. WHERE is_paid = FALSE.
// Baris yang sudah lunas tidak pernah tersentuh; kalau key-nya lunas,
// record lama dikembalikan bersama ErrAlreadyPaid.
func (r *PaymentRecordRepository) UpsertUnpaid(ctx context.Context, in UpsertInput) (*model.PaymentRecordModel, error) {
	courses := in.Courses
	if courses == nil {
		courses = []model.CourseSnapshot{}
	}
	snapshot, err := sonic.Marshal(courses)
	if err != nil {
		return nil, fmt.Errorf("encode course snapshot: %w", err)
	}

	var rows []model.PaymentRecordModel
	res := r.DB.WithContext(ctx).Raw(`
		INSERT INTO payment_records (
			payment_record_student_id, payment_record_level, payment_record_term,
			payment_record_courses, payment_record_total_hours,
			payment_record_hour_rate, payment_record_total_amount,
			payment_record_is_paid, payment_record_created_at, payment_record_updated_at
		) VALUES (?, ?, ?, ?::jsonb, ?, ?, ?, FALSE, NOW(), NOW())
		ON CONFLICT (payment_record_student_id, payment_record_level, payment_record_term) DO UPDATE SET
			payment_record_courses      = EXCLUDED.payment_record_courses,
			payment_record_total_hours  = EXCLUDED.payment_record_total_hours,
			payment_record_hour_rate    = EXCLUDED.payment_record_hour_rate,
			payment_record_total_amount = EXCLUDED.payment_record_total_amount,
			payment_record_updated_at   = NOW()
		WHERE payment_records.payment_record_is_paid = FALSE
		RETURNING *
	`, in.StudentID, in.Level, in.Term, string(snapshot), in.TotalHours, in.HourRate, in.TotalAmount).
		Scan(&rows)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, fmt.Errorf("%w: %v", model.ErrLedgerConflict, res.Error)
		}
		return nil, res.Error
	}
	if len(rows) == 1 {
		return &rows[0], nil
	}

	// tidak ada baris kembali → konflik dengan baris lunas (atau race, re-read yang menentukan)
	existing, err := r.FindByKey(ctx, in.StudentID, in.Level, in.Term)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrLedgerConflict
		}
		return nil, err
	}
	if existing.IsPaid() {
		return existing, model.ErrAlreadyPaid
	}
	return nil, model.ErrLedgerConflict
}

// AttachSession menyimpan handle sesi terakhir. Tidak menyentuh baris lunas.
func (r *PaymentRecordRepository) AttachSession(ctx context.Context, id uuid.UUID, provider, sessionID string) error {
	return r.DB.WithContext(ctx).Exec(`
		UPDATE payment_records
		SET payment_record_provider = ?,
		    payment_record_checkout_session_id = ?,
		    payment_record_session_checked_at = NULL,
		    payment_record_updated_at = NOW()
		WHERE payment_record_id = ? AND payment_record_is_paid = FALSE
	`, provider, sessionID, id).Error
}

// ReleaseSession melepas sesi yang sudah expired/gagal di gateway.
// Hanya kalau sesi itu masih yang terpasang; checkout baru di antaranya tidak tersentuh.
func (r *PaymentRecordRepository) ReleaseSession(ctx context.Context, id uuid.UUID, sessionID string) (bool, error) {
	res := r.DB.WithContext(ctx).Exec(`
		UPDATE payment_records
		SET payment_record_checkout_session_id = '',
		    payment_record_session_checked_at = NOW()
		WHERE payment_record_id = ?
		  AND payment_record_is_paid = FALSE
		  AND payment_record_checkout_session_id = ?
	`, id, sessionID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// MarkSessionChecked memindahkan sesi yang masih open ke belakang antrian sweeper.
func (r *PaymentRecordRepository) MarkSessionChecked(ctx context.Context, id uuid.UUID, sessionID string) error {
	return r.DB.WithContext(ctx).Exec(`
		UPDATE payment_records
		SET payment_record_session_checked_at = NOW()
		WHERE payment_record_id = ?
		  AND payment_record_is_paid = FALSE
		  AND payment_record_checkout_session_id = ?
	`, id, sessionID).Error
}

// MarkPaid: conditional update Unpaid → Paid.
// transitioned=true hanya untuk pemanggil yang benar-benar membalik flag.
// settled nil = amount quote dipertahankan.
func (r *PaymentRecordRepository) MarkPaid(ctx context.Context, id uuid.UUID, orderRef string, settled *decimal.Decimal) (bool, error) {
	var amount any
	if settled != nil {
		amount = settled.StringFixed(2)
	}

	res := r.DB.WithContext(ctx).Exec(`
		UPDATE payment_records
		SET payment_record_is_paid = TRUE,
		    payment_record_order_reference = ?,
		    payment_record_total_amount = COALESCE(?::numeric, payment_record_total_amount),
		    payment_record_paid_at = NOW(),
		    payment_record_updated_at = NOW()
		WHERE payment_record_id = ? AND payment_record_is_paid = FALSE
	`, orderRef, amount, id)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return true, nil
	}

	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&model.PaymentRecordModel{}).
		Where("payment_record_id = ?", id).
		Count(&n).Error; err != nil {
		return false, err
	}
	if n == 0 {
		return false, model.ErrOrphanNotification
	}
	return false, nil
}

/* =========================================================
   READ
========================================================= */

func (r *PaymentRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PaymentRecordModel, error) {
	var m model.PaymentRecordModel
	if err := r.DB.WithContext(ctx).
		Where("payment_record_id = ?", id).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PaymentRecordRepository) FindByKey(ctx context.Context, studentID uuid.UUID, level, term int) (*model.PaymentRecordModel, error) {
	var m model.PaymentRecordModel
	if err := r.DB.WithContext(ctx).
		Where("payment_record_student_id = ? AND payment_record_level = ? AND payment_record_term = ?",
			studentID, level, term).
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListStaleSessions: unpaid + punya sesi + tidak berubah sejak before,
// dan belum dicek sweeper sejak before. Yang belum pernah dicek didahulukan.
func (r *PaymentRecordRepository) ListStaleSessions(ctx context.Context, before time.Time, limit int) ([]model.PaymentRecordModel, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []model.PaymentRecordModel
	err := r.DB.WithContext(ctx).
		Where("payment_record_is_paid = FALSE AND payment_record_checkout_session_id <> '' AND payment_record_updated_at < ?", before).
		Where("(payment_record_session_checked_at IS NULL OR payment_record_session_checked_at < ?)", before).
		Order("payment_record_session_checked_at ASC NULLS FIRST, payment_record_updated_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *PaymentRecordRepository) List(ctx context.Context, f ListFilter, offset, limit int) ([]model.PaymentRecordModel, int64, error) {
	q := r.DB.WithContext(ctx).Model(&model.PaymentRecordModel{})
	if f.StudentID != nil {
		q = q.Where("payment_record_student_id = ?", *f.StudentID)
	}
	if f.Level != nil {
		q = q.Where("payment_record_level = ?", *f.Level)
	}
	if f.Term != nil {
		q = q.Where("payment_record_term = ?", *f.Term)
	}
	if f.IsPaid != nil {
		q = q.Where("payment_record_is_paid = ?", *f.IsPaid)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []model.PaymentRecordModel
	if err := q.
		Order("payment_record_created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

/* =========================================================
   Utils
========================================================= */

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
