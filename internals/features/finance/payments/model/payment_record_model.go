package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	ProviderStripe   = "stripe"
	ProviderMidtrans = "midtrans"
)

// CourseSnapshot: satu course yang ikut dihitung saat checkout (urutan dipertahankan).
type CourseSnapshot struct {
	CourseID uuid.UUID `json:"course_id"`
	Hours    int       `json:"hours"`
}

/* ===================== Model ===================== */

// PaymentRecordModel adalah ledger: satu baris per (student, level, term).
type PaymentRecordModel struct {
	PaymentRecordID uuid.UUID `gorm:"column:payment_record_id;type:uuid;default:gen_random_uuid();primaryKey" json:"payment_record_id"`

	// kunci periode tagihan (unik)
	PaymentRecordStudentID uuid.UUID `gorm:"column:payment_record_student_id;type:uuid;not null;uniqueIndex:uq_payment_records_billing_period,priority:1" json:"payment_record_student_id"`
	PaymentRecordLevel     int       `gorm:"column:payment_record_level;type:smallint;not null;uniqueIndex:uq_payment_records_billing_period,priority:2;check:chk_payment_records_level,payment_record_level BETWEEN 0 AND 5" json:"payment_record_level"`
	PaymentRecordTerm      int       `gorm:"column:payment_record_term;not null;uniqueIndex:uq_payment_records_billing_period,priority:3" json:"payment_record_term"`

	// kosong sampai lunas
	PaymentRecordOrderReference string `gorm:"column:payment_record_order_reference;type:text;not null;default:''" json:"payment_record_order_reference"`

	// snapshot saat checkout
	PaymentRecordCourses     datatypes.JSONSlice[CourseSnapshot] `gorm:"column:payment_record_courses;type:jsonb;not null" json:"payment_record_courses"`
	PaymentRecordTotalHours  int                                 `gorm:"column:payment_record_total_hours;not null;check:chk_payment_records_total_hours,payment_record_total_hours > 0" json:"payment_record_total_hours"`
	PaymentRecordHourRate    decimal.Decimal                     `gorm:"column:payment_record_hour_rate;type:numeric(12,2);not null;check:chk_payment_records_hour_rate,payment_record_hour_rate > 0" json:"payment_record_hour_rate"`
	PaymentRecordTotalAmount decimal.Decimal                     `gorm:"column:payment_record_total_amount;type:numeric(12,2);not null;check:chk_payment_records_total_amount,payment_record_total_amount > 0" json:"payment_record_total_amount"`

	PaymentRecordIsPaid bool       `gorm:"column:payment_record_is_paid;not null;default:false" json:"payment_record_is_paid"`
	PaymentRecordPaidAt *time.Time `gorm:"column:payment_record_paid_at" json:"payment_record_paid_at,omitempty"`

	// sesi checkout terakhir (dipakai sweeper)
	PaymentRecordProvider          string `gorm:"column:payment_record_provider;type:varchar(20);not null;default:''" json:"payment_record_provider"`
	PaymentRecordCheckoutSessionID string `gorm:"column:payment_record_checkout_session_id;type:text;not null;default:''" json:"payment_record_checkout_session_id"`
	// terakhir dicek sweeper; NULL = belum pernah dicek sejak sesi dipasang
	PaymentRecordSessionCheckedAt *time.Time `gorm:"column:payment_record_session_checked_at" json:"payment_record_session_checked_at,omitempty"`

	PaymentRecordCreatedAt time.Time `gorm:"column:payment_record_created_at;not null;autoCreateTime" json:"payment_record_created_at"`
	PaymentRecordUpdatedAt time.Time `gorm:"column:payment_record_updated_at;not null;autoUpdateTime" json:"payment_record_updated_at"`
}

func (PaymentRecordModel) TableName() string { return "payment_records" }

/* ===================== Helpers ===================== */

func (p *PaymentRecordModel) IsPaid() bool { return p != nil && p.PaymentRecordIsPaid }

func (p *PaymentRecordModel) CourseIDs() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(p.PaymentRecordCourses))
	for _, c := range p.PaymentRecordCourses {
		out = append(out, c.CourseID)
	}
	return out
}
