package controller

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"akademiku_backend/internals/features/finance/billing_configs/dto"
	"akademiku_backend/internals/features/finance/billing_configs/model"
	helper "akademiku_backend/internals/helpers"
)

type ConfigManager interface {
	Current(ctx context.Context) (*model.BillingConfigModel, error)
	Save(ctx context.Context, hourRate decimal.Decimal, term int) (*model.BillingConfigModel, error)
}

type BillingConfigController struct {
	Configs   ConfigManager
	Validator *validator.Validate
}

func NewBillingConfigController(configs ConfigManager) *BillingConfigController {
	return &BillingConfigController{
		Configs:   configs,
		Validator: validator.New(),
	}
}

// GET /payment-config
func (h *BillingConfigController) Get(c *fiber.Ctx) error {
	cfg, err := h.Configs.Current(c.UserContext())
	if err != nil {
		if errors.Is(err, model.ErrConfigMissing) {
			return helper.JsonError(c, fiber.StatusNotFound, "billing config belum diset")
		}
		log.Printf("[ERROR] get billing config: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "gagal memuat billing config")
	}
	return helper.JsonOK(c, "ok", dto.FromModel(cfg))
}

// POST /payment-config
func (h *BillingConfigController) Upsert(c *fiber.Ctx) error {
	var req dto.UpsertBillingConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	if err := h.Validator.Struct(req); err != nil {
		if fields, ok := helper.ValidationErrorMap(err); ok {
			return helper.JsonValidationError(c, fields)
		}
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	// disimpan 2 desimal; 0.004 dianggap 0
	if !req.HourRate.Round(2).IsPositive() {
		return helper.JsonValidationError(c, map[string][]string{
			"hour_rate": {"hour_rate harus minimal 0.01"},
		})
	}

	cfg, err := h.Configs.Save(c.UserContext(), req.HourRate, req.Term)
	if err != nil {
		if errors.Is(err, model.ErrConfigInvalid) {
			return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
		}
		log.Printf("[ERROR] save billing config: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "gagal menyimpan billing config")
	}
	return helper.JsonUpdated(c, "billing config tersimpan", dto.FromModel(cfg))
}
