package database

import (
	"log"

	"gorm.io/gorm"

	billingModel "akademiku_backend/internals/features/finance/billing_configs/model"
	paymentModel "akademiku_backend/internals/features/finance/payments/model"
)

// Migrate hanya menyentuh tabel milik service pembayaran.
// users, courses, course_enrollments dikelola service akademik.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&billingModel.BillingConfigModel{},
		&paymentModel.PaymentRecordModel{},
	); err != nil {
		return err
	}

	// index parsial untuk sweeper: sesi unpaid yang masih menggantung
	if err := db.Exec(`DROP INDEX IF EXISTS idx_payment_records_pending_sessions`).Error; err != nil {
		return err
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_payment_records_sweep_queue
		ON payment_records (payment_record_session_checked_at NULLS FIRST, payment_record_updated_at)
		WHERE payment_record_is_paid = FALSE AND payment_record_checkout_session_id <> ''
	`).Error; err != nil {
		return err
	}

	log.Println("✅ Migrasi billing_configs & payment_records selesai.")
	return nil
}
