package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingConfigModel: tarif per jam + term aktif. Maksimal satu baris,
// dijamin oleh unique index pada kolom singleton (selalu TRUE).
type BillingConfigModel struct {
	BillingConfigID uuid.UUID `gorm:"column:billing_config_id;type:uuid;default:gen_random_uuid();primaryKey" json:"billing_config_id"`

	BillingConfigSingleton bool `gorm:"column:billing_config_singleton;not null;default:true;uniqueIndex:uq_billing_configs_singleton;check:chk_billing_configs_singleton,billing_config_singleton" json:"-"`

	BillingConfigHourRate decimal.Decimal `gorm:"column:billing_config_hour_rate;type:numeric(12,2);not null;check:chk_billing_configs_hour_rate,billing_config_hour_rate > 0" json:"billing_config_hour_rate"`
	BillingConfigTerm     int             `gorm:"column:billing_config_term;not null;check:chk_billing_configs_term,billing_config_term >= 1" json:"billing_config_term"`

	BillingConfigCreatedAt time.Time `gorm:"column:billing_config_created_at;not null;autoCreateTime" json:"billing_config_created_at"`
	BillingConfigUpdatedAt time.Time `gorm:"column:billing_config_updated_at;not null;autoUpdateTime" json:"billing_config_updated_at"`
}

func (BillingConfigModel) TableName() string { return "billing_configs" }
