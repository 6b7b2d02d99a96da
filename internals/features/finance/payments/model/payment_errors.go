package model

import (
	"errors"

	billingModel "akademiku_backend/internals/features/finance/billing_configs/model"
)

var (
	ErrConfigMissing = billingModel.ErrConfigMissing
	ErrConfigInvalid = billingModel.ErrConfigInvalid

	ErrStudentNotFound     = errors.New("student tidak ditemukan")
	ErrInvalidLevel        = errors.New("level student harus 0..5")
	ErrNoEnrolledCourses   = errors.New("student belum terdaftar di course manapun")
	ErrInvalidCourseHours  = errors.New("jam course tidak valid")
	ErrAlreadyPaid         = errors.New("pembayaran term ini sudah lunas")
	ErrSignatureInvalid    = errors.New("signature webhook tidak valid")
	ErrLedgerConflict      = errors.New("konflik penulisan ledger")
	ErrGatewayUnavailable  = errors.New("payment gateway tidak tersedia")
	ErrOrphanNotification  = errors.New("notifikasi tidak cocok dengan ledger manapun")
	ErrPaymentNotFound     = errors.New("no payment found for this term/level")
	ErrUnsupportedProvider = errors.New("provider payment tidak didukung")
)
