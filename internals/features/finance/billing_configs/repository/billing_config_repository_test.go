package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestUpsertBillingConfig(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{
		"billing_config_id", "billing_config_singleton", "billing_config_hour_rate",
		"billing_config_term", "billing_config_created_at", "billing_config_updated_at",
	}).AddRow(uuid.New().String(), true, "40.00", 2, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (billing_config_singleton) DO UPDATE")).
		WithArgs(sqlmock.AnyArg(), 2).
		WillReturnRows(rows)

	m, err := NewBillingConfigRepository(db).Upsert(context.Background(), decimal.NewFromInt(40), 2)
	require.NoError(t, err)
	assert.True(t, m.BillingConfigHourRate.Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 2, m.BillingConfigTerm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBillingConfigNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "billing_configs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"billing_config_id"}))

	_, err := NewBillingConfigRepository(db).Get(context.Background())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
