package controller

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"akademiku_backend/internals/features/finance/payments/dto"
	"akademiku_backend/internals/features/finance/payments/model"
	"akademiku_backend/internals/features/finance/payments/repository"
	"akademiku_backend/internals/features/finance/payments/service"
	helper "akademiku_backend/internals/helpers"
)

type CheckoutCreator interface {
	CreateSession(ctx context.Context, p service.Principal) (*service.CheckoutResult, error)
}

type StatusReader interface {
	StatusFor(ctx context.Context, p service.Principal) (*service.AccessStatus, bool, error)
}

type WebhookHandler interface {
	HandleWebhook(ctx context.Context, provider string, body []byte, headers map[string]string) (service.Outcome, error)
}

type AdminSearcher interface {
	Search(ctx context.Context, studentName string, level, term int) (*service.AdminRecord, error)
	List(ctx context.Context, f repository.ListFilter, offset, limit int) ([]model.PaymentRecordModel, int64, error)
}

type PaymentController struct {
	Checkout  CheckoutCreator
	Status    StatusReader
	Webhooks  WebhookHandler
	Admin     AdminSearcher
	Validator *validator.Validate
}

func NewPaymentController(checkout CheckoutCreator, status StatusReader, webhooks WebhookHandler, admin AdminSearcher) *PaymentController {
	return &PaymentController{
		Checkout:  checkout,
		Status:    status,
		Webhooks:  webhooks,
		Admin:     admin,
		Validator: validator.New(),
	}
}

/* =======================================================================
   Student
======================================================================= */

// POST /payment/create-session
func (h *PaymentController) CreateSession(c *fiber.Ctx) error {
	p, err := principalFromCtx(c)
	if err != nil {
		return err
	}

	res, err := h.Checkout.CreateSession(c.UserContext(), p)
	if err != nil {
		if errors.Is(err, model.ErrAlreadyPaid) && res != nil && res.Record != nil {
			return helper.JsonErrorWithData(c, fiber.StatusConflict, "Pembayaran term ini sudah lunas", dto.FromModel(res.Record))
		}
		return writeError(c, err)
	}
	return helper.JsonOK(c, "Checkout session dibuat", dto.FromCheckout(res))
}

// GET /payment/student/status
func (h *PaymentController) StudentStatus(c *fiber.Ctx) error {
	p, err := principalFromCtx(c)
	if err != nil {
		return err
	}

	st, found, err := h.Status.StatusFor(c.UserContext(), p)
	if err != nil {
		return writeError(c, err)
	}
	if !found {
		return helper.JsonOK(c, "Belum ada pembayaran untuk term ini", nil)
	}
	return helper.JsonOK(c, "ok", dto.FromStatus(st))
}

// GET /content/access (di belakang RequirePaidTerm)
func (h *PaymentController) ContentAccess(c *fiber.Ctx) error {
	return helper.JsonOK(c, "Akses konten diizinkan", fiber.Map{"granted": true})
}

/* =======================================================================
   Webhook (tanpa JWT, diverifikasi signature)
======================================================================= */

// POST /payment/webhook, /payment/webhook/:provider
func (h *PaymentController) Webhook(c *fiber.Ctx) error {
	body := append([]byte(nil), c.Body()...)
	headers := make(map[string]string)
	c.Request().Header.VisitAll(func(k, v []byte) {
		headers[strings.ToLower(string(k))] = string(v)
	})

	out, err := h.Webhooks.HandleWebhook(c.UserContext(), c.Params("provider"), body, headers)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrSignatureInvalid):
			return helper.JsonError(c, fiber.StatusBadRequest, "invalid signature")
		case errors.Is(err, model.ErrUnsupportedProvider):
			return helper.JsonError(c, fiber.StatusNotFound, err.Error())
		default:
			// non-2xx → gateway retry
			log.Printf("[WEBHOOK] gagal diproses: %v", err)
			return helper.JsonError(c, fiber.StatusInternalServerError, "webhook processing failed")
		}
	}
	return c.JSON(fiber.Map{"status": string(out)})
}

/* =======================================================================
   Admin
======================================================================= */

// GET /payment/admin/search?name=&level=&term=
func (h *PaymentController) AdminSearch(c *fiber.Ctx) error {
	var q dto.AdminSearchQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "query tidak valid: "+err.Error())
	}
	q.Name = strings.TrimSpace(q.Name)
	if err := h.Validator.Struct(q); err != nil {
		if fields, ok := helper.ValidationErrorMap(err); ok {
			return helper.JsonValidationError(c, fields)
		}
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	rec, err := h.Admin.Search(c.UserContext(), q.Name, *q.Level, *q.Term)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromAdminRecord(rec))
}

// GET /payment/admin/records
func (h *PaymentController) AdminList(c *fiber.Ctx) error {
	var q dto.AdminListQuery
	if err := c.QueryParser(&q); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "query tidak valid: "+err.Error())
	}
	if err := h.Validator.Struct(q); err != nil {
		if fields, ok := helper.ValidationErrorMap(err); ok {
			return helper.JsonValidationError(c, fields)
		}
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}

	f := repository.ListFilter{Level: q.Level, Term: q.Term, IsPaid: q.IsPaid}
	if s := strings.TrimSpace(q.StudentID); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "student_id tidak valid")
		}
		f.StudentID = &id
	}

	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := h.Admin.List(c.UserContext(), f, p.Offset, p.Limit)
	if err != nil {
		return writeError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), helper.BuildPagination(total, p, len(rows)))
}

/* =======================================================================
   Helpers
======================================================================= */

func principalFromCtx(c *fiber.Ctx) (service.Principal, error) {
	id, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return service.Principal{}, err
	}
	level, ok := helper.GetLevelFromToken(c)
	return service.Principal{
		StudentID: id,
		Role:      helper.GetRoleFromToken(c),
		Level:     level,
		HasLevel:  ok,
	}, nil
}
