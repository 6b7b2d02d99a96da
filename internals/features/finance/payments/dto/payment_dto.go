package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"akademiku_backend/internals/features/finance/payments/model"
	"akademiku_backend/internals/features/finance/payments/service"
)

/* =========================================================
   RESPONSE: record
========================================================= */

type CourseItem struct {
	CourseID uuid.UUID `json:"course_id"`
	Code     string    `json:"course_code,omitempty"`
	Title    string    `json:"course_title,omitempty"`
	Hours    int       `json:"hours"`
}

type PaymentRecordResponse struct {
	PaymentRecordID uuid.UUID       `json:"payment_record_id"`
	StudentID       uuid.UUID       `json:"student_id"`
	Level           int             `json:"level"`
	Term            int             `json:"term"`
	OrderReference  string          `json:"order_reference"`
	Courses         []CourseItem    `json:"courses"`
	TotalHours      int             `json:"total_hours"`
	HourRate        decimal.Decimal `json:"hour_rate"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	IsPaid          bool            `json:"is_paid"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Provider        string          `json:"provider,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func FromModel(m *model.PaymentRecordModel) PaymentRecordResponse {
	courses := make([]CourseItem, 0, len(m.PaymentRecordCourses))
	for _, c := range m.PaymentRecordCourses {
		courses = append(courses, CourseItem{CourseID: c.CourseID, Hours: c.Hours})
	}
	return PaymentRecordResponse{
		PaymentRecordID: m.PaymentRecordID,
		StudentID:       m.PaymentRecordStudentID,
		Level:           m.PaymentRecordLevel,
		Term:            m.PaymentRecordTerm,
		OrderReference:  m.PaymentRecordOrderReference,
		Courses:         courses,
		TotalHours:      m.PaymentRecordTotalHours,
		HourRate:        m.PaymentRecordHourRate,
		TotalAmount:     m.PaymentRecordTotalAmount,
		IsPaid:          m.PaymentRecordIsPaid,
		PaidAt:          m.PaymentRecordPaidAt,
		Provider:        m.PaymentRecordProvider,
		CreatedAt:       m.PaymentRecordCreatedAt,
		UpdatedAt:       m.PaymentRecordUpdatedAt,
	}
}

func FromModels(rows []model.PaymentRecordModel) []PaymentRecordResponse {
	out := make([]PaymentRecordResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

/* =========================================================
   RESPONSE: checkout & status
========================================================= */

type CreateSessionResponse struct {
	SessionURL      string          `json:"session_url"`
	SessionID       string          `json:"session_id"`
	Provider        string          `json:"provider"`
	PaymentRecordID uuid.UUID       `json:"payment_record_id"`
	TotalHours      int             `json:"total_hours"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
}

func FromCheckout(r *service.CheckoutResult) CreateSessionResponse {
	return CreateSessionResponse{
		SessionURL:      r.Session.URL,
		SessionID:       r.Session.SessionID,
		Provider:        r.Session.Provider,
		PaymentRecordID: r.Record.PaymentRecordID,
		TotalHours:      r.Record.PaymentRecordTotalHours,
		TotalAmount:     r.Record.PaymentRecordTotalAmount,
	}
}

type StudentStatusResponse struct {
	IsPaid      bool            `json:"is_paid"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Level       int             `json:"level"`
	Term        int             `json:"term"`
}

func FromStatus(s *service.AccessStatus) StudentStatusResponse {
	return StudentStatusResponse{
		IsPaid:      s.IsPaid,
		TotalAmount: s.TotalAmount,
		Level:       s.Level,
		Term:        s.Term,
	}
}

/* =========================================================
   ADMIN
========================================================= */

// GET /payment/admin/search?name=&level=&term=
type AdminSearchQuery struct {
	Name  string `query:"name" validate:"required"`
	Level *int   `query:"level" validate:"required,gte=0,lte=5"`
	Term  *int   `query:"term" validate:"required,gte=1"`
}

type StudentItem struct {
	ID       uuid.UUID `json:"id"`
	UserName string    `json:"user_name"`
	FullName string    `json:"full_name,omitempty"`
}

type AdminRecordResponse struct {
	PaymentRecordResponse
	Student StudentItem `json:"student"`
}

func FromAdminRecord(a *service.AdminRecord) AdminRecordResponse {
	base := FromModel(a.Record)
	base.Courses = make([]CourseItem, 0, len(a.Courses))
	for _, c := range a.Courses {
		base.Courses = append(base.Courses, CourseItem{
			CourseID: c.CourseID,
			Code:     c.Code,
			Title:    c.Title,
			Hours:    c.Hours,
		})
	}
	return AdminRecordResponse{
		PaymentRecordResponse: base,
		Student: StudentItem{
			ID:       a.Student.ID,
			UserName: a.Student.UserName,
			FullName: a.Student.FullName,
		},
	}
}

// GET /payment/admin/records?student_id=&level=&term=&is_paid=&page=&per_page=
type AdminListQuery struct {
	StudentID string `query:"student_id"`
	Level     *int   `query:"level" validate:"omitempty,gte=0,lte=5"`
	Term      *int   `query:"term" validate:"omitempty,gte=1"`
	IsPaid    *bool  `query:"is_paid"`
}
