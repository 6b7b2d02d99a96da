package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"akademiku_backend/internals/features/finance/billing_configs/model"
)

type BillingConfigRepository struct {
	DB *gorm.DB
}

func NewBillingConfigRepository(db *gorm.DB) *BillingConfigRepository {
	return &BillingConfigRepository{DB: db}
}

// Get mengembalikan gorm.ErrRecordNotFound kalau admin belum pernah set config.
func (r *BillingConfigRepository) Get(ctx context.Context) (*model.BillingConfigModel, error) {
	var m model.BillingConfigModel
	if err := r.DB.WithContext(ctx).
		Where("billing_config_singleton = TRUE").
		Take(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Upsert: satu statement, konflik di kolom singleton → update in place.
func (r *BillingConfigRepository) Upsert(ctx context.Context, hourRate decimal.Decimal, term int) (*model.BillingConfigModel, error) {
	var m model.BillingConfigModel
	res := r.DB.WithContext(ctx).Raw(`
		INSERT INTO billing_configs (
			billing_config_singleton, billing_config_hour_rate, billing_config_term,
			billing_config_created_at, billing_config_updated_at
		) VALUES (TRUE, ?, ?, NOW(), NOW())
		ON CONFLICT (billing_config_singleton) DO UPDATE SET
			billing_config_hour_rate  = EXCLUDED.billing_config_hour_rate,
			billing_config_term       = EXCLUDED.billing_config_term,
			billing_config_updated_at = NOW()
		RETURNING *
	`, hourRate, term).Scan(&m)
	if res.Error != nil {
		return nil, res.Error
	}
	return &m, nil
}
