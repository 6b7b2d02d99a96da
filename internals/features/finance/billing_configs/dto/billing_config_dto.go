package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"akademiku_backend/internals/features/finance/billing_configs/model"
)

// POST /payment-config
type UpsertBillingConfigRequest struct {
	HourRate decimal.Decimal `json:"hour_rate"`
	Term     int             `json:"term" validate:"required,gte=1"`
}

type BillingConfigResponse struct {
	HourRate  decimal.Decimal `json:"hour_rate"`
	Term      int             `json:"term"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func FromModel(m *model.BillingConfigModel) BillingConfigResponse {
	return BillingConfigResponse{
		HourRate:  m.BillingConfigHourRate,
		Term:      m.BillingConfigTerm,
		UpdatedAt: m.BillingConfigUpdatedAt,
	}
}
