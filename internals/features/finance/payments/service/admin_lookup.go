package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"akademiku_backend/internals/features/finance/payments/model"
	"akademiku_backend/internals/features/finance/payments/repository"
)

// ExpandedCourse: snapshot hours + detail katalog untuk tampilan admin.
type ExpandedCourse struct {
	CourseID uuid.UUID
	Code     string
	Title    string
	Hours    int
}

type AdminRecord struct {
	Record  *model.PaymentRecordModel
	Student *model.StudentRef
	Courses []ExpandedCourse
}

type AdminLookup struct {
	Catalog Catalog
	Ledger  Ledger
}

// Search sengaja kasar: student tidak ada, record tidak ada, dan record unpaid
// semuanya ErrPaymentNotFound.
func (a *AdminLookup) Search(ctx context.Context, studentName string, level, term int) (*AdminRecord, error) {
	name := strings.TrimSpace(studentName)
	if name == "" {
		return nil, model.ErrPaymentNotFound
	}

	st, err := a.Catalog.FindStudentByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find student: %w", err)
	}

	rec, err := a.Ledger.FindByKey(ctx, st.ID, level, term)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("find payment record: %w", err)
	}
	if !rec.IsPaid() {
		return nil, model.ErrPaymentNotFound
	}

	courses, err := a.expand(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &AdminRecord{Record: rec, Student: st, Courses: courses}, nil
}

// List: semua record (paid/unpaid) dengan filter opsional.
func (a *AdminLookup) List(ctx context.Context, f repository.ListFilter, offset, limit int) ([]model.PaymentRecordModel, int64, error) {
	return a.Ledger.List(ctx, f, offset, limit)
}

// expand mempertahankan urutan snapshot; course yang hilang dari katalog tetap tampil dengan id + hours.
func (a *AdminLookup) expand(ctx context.Context, rec *model.PaymentRecordModel) ([]ExpandedCourse, error) {
	details, err := a.Catalog.FindCoursesByIDs(ctx, rec.CourseIDs())
	if err != nil {
		return nil, fmt.Errorf("expand courses: %w", err)
	}
	byID := make(map[uuid.UUID]model.CourseDetail, len(details))
	for _, d := range details {
		byID[d.ID] = d
	}

	out := make([]ExpandedCourse, 0, len(rec.PaymentRecordCourses))
	for _, c := range rec.PaymentRecordCourses {
		ec := ExpandedCourse{CourseID: c.CourseID, Hours: c.Hours}
		if d, ok := byID[c.CourseID]; ok {
			ec.Code = d.Code
			ec.Title = d.Title
		}
		out = append(out, ec)
	}
	return out, nil
}
