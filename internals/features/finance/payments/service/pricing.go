package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"akademiku_backend/internals/features/finance/payments/model"
)

type CourseHours struct {
	CourseID uuid.UUID
	Hours    int
}

type Quote struct {
	Courses     []model.CourseSnapshot
	TotalHours  int
	HourRate    decimal.Decimal
	TotalAmount decimal.Decimal
}

// Calculate: total jam = Σ hours, total amount = jam × tarif (2 desimal).
// Urutan course dipertahankan di snapshot.
func Calculate(courses []CourseHours, hourRate decimal.Decimal) (Quote, error) {
	if !hourRate.IsPositive() {
		return Quote{}, model.ErrConfigInvalid
	}

	snap := make([]model.CourseSnapshot, 0, len(courses))
	total := 0
	for _, c := range courses {
		if c.Hours < 0 {
			return Quote{}, model.ErrInvalidCourseHours
		}
		total += c.Hours
		snap = append(snap, model.CourseSnapshot{CourseID: c.CourseID, Hours: c.Hours})
	}
	if total == 0 {
		return Quote{}, model.ErrNoEnrolledCourses
	}

	rate := hourRate.Round(2)
	return Quote{
		Courses:     snap,
		TotalHours:  total,
		HourRate:    rate,
		TotalAmount: rate.Mul(decimal.NewFromInt(int64(total))).Round(2),
	}, nil
}
