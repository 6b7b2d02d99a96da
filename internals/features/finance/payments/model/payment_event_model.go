package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentPaidEvent dikirim sekali per transisi unpaid → paid.
type PaymentPaidEvent struct {
	PaymentRecordID uuid.UUID       `json:"payment_record_id"`
	StudentID       uuid.UUID       `json:"student_id"`
	Level           int             `json:"level"`
	Term            int             `json:"term"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Provider        string          `json:"provider"`
	OrderReference  string          `json:"order_reference"`
	PaidAt          time.Time       `json:"paid_at"`
}
