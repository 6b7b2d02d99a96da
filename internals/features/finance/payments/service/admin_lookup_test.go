package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akademiku_backend/internals/features/finance/payments/model"
	"akademiku_backend/internals/features/finance/payments/repository"
)

func TestAdminSearch(t *testing.T) {
	ctx := context.Background()
	l := newMemLedger()
	cat := newFakeCatalog()
	a := &AdminLookup{Catalog: cat, Ledger: l}

	s := cat.addStudent("Budi", 2, 3, 5)
	enrolled := cat.enrolled[s.ID]
	ghost := uuid.New() // course sudah dihapus dari katalog

	rec, err := l.UpsertUnpaid(ctx, repository.UpsertInput{
		StudentID: s.ID, Level: 2, Term: 1,
		Courses: []model.CourseSnapshot{
			{CourseID: enrolled[0].ID, Hours: 3},
			{CourseID: ghost, Hours: 1},
			{CourseID: enrolled[1].ID, Hours: 5},
		},
		TotalHours: 9, HourRate: decimal.NewFromInt(40), TotalAmount: decimal.NewFromInt(360),
	})
	require.NoError(t, err)

	// unpaid → sama dengan tidak ada
	_, err = a.Search(ctx, "budi", 2, 1)
	assert.ErrorIs(t, err, model.ErrPaymentNotFound)

	_, err = l.MarkPaid(ctx, rec.PaymentRecordID, "pi_1", nil)
	require.NoError(t, err)

	got, err := a.Search(ctx, "BUDI", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.Student.ID)
	assert.True(t, got.Record.PaymentRecordIsPaid)
	require.Len(t, got.Courses, 3)
	assert.Equal(t, enrolled[0].Title, got.Courses[0].Title)
	assert.Equal(t, ghost, got.Courses[1].CourseID)
	assert.Empty(t, got.Courses[1].Title)
	assert.Equal(t, 1, got.Courses[1].Hours)
	assert.Equal(t, enrolled[1].Code, got.Courses[2].Code)
}

func TestAdminSearchNotFoundCases(t *testing.T) {
	ctx := context.Background()
	cat := newFakeCatalog()
	a := &AdminLookup{Catalog: cat, Ledger: newMemLedger()}
	cat.addStudent("budi", 2, 3)

	_, err := a.Search(ctx, "tidak-ada", 2, 1)
	assert.ErrorIs(t, err, model.ErrPaymentNotFound)

	_, err = a.Search(ctx, "budi", 2, 1)
	assert.ErrorIs(t, err, model.ErrPaymentNotFound)

	_, err = a.Search(ctx, "  ", 2, 1)
	assert.ErrorIs(t, err, model.ErrPaymentNotFound)
}

func TestAdminList(t *testing.T) {
	ctx := context.Background()
	l := newMemLedger()
	a := &AdminLookup{Catalog: newFakeCatalog(), Ledger: l}
	r1 := seedUnpaid(t, l, uuid.New(), 100)
	seedUnpaid(t, l, uuid.New(), 200)
	_, _ = l.MarkPaid(ctx, r1.PaymentRecordID, "pi_1", nil)

	paid := true
	rows, total, err := a.List(ctx, repository.ListFilter{IsPaid: &paid}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, r1.PaymentRecordID, rows[0].PaymentRecordID)
}
