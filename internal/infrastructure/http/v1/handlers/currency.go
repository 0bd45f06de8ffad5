package handlers

import (
	"github.com/gin-gonic/gin"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain/currency"
	"facturo/internal/infrastructure/http/v1/dto"
)

// CurrencyHandler handles HTTP requests for the currency ledger.
type CurrencyHandler struct {
	*BaseHandler
	service *currency.Service
}

// NewCurrencyHandler creates a new currency handler.
func NewCurrencyHandler(base *BaseHandler, service *currency.Service) *CurrencyHandler {
	return &CurrencyHandler{BaseHandler: base, service: service}
}

// Create handles POST /currencies.
func (h *CurrencyHandler) Create(c *gin.Context) {
	var req dto.CreateCurrencyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, entity.ID.String())
}

// List handles GET /currencies.
func (h *CurrencyHandler) List(c *gin.Context) {
	currencies, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCurrencies(currencies))
}

// GetBase handles GET /settings/base-currency.
func (h *CurrencyHandler) GetBase(c *gin.Context) {
	base, err := h.service.BaseCurrency(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCurrency(base))
}

// SetBase handles PUT /settings/base-currency.
func (h *CurrencyHandler) SetBase(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SetBaseCurrencyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	target, err := h.service.FindByCode(ctx, req.Code)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.SetBaseCurrency(ctx, target.ID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "base currency updated")
}

// UpsertRate handles POST /exchange-rates.
func (h *CurrencyHandler) UpsertRate(c *gin.Context) {
	var req dto.UpsertRateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	rate, err := h.service.UpsertRateByCodes(c.Request.Context(), req.FromCode, req.ToCode, req.Rate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, rate.ID.String())
}

// ListRates handles GET /exchange-rates.
func (h *CurrencyHandler) ListRates(c *gin.Context) {
	rates, err := h.service.ListRates(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRatesWithCodes(rates))
}

// DeleteRate handles DELETE /exchange-rates/:id.
func (h *CurrencyHandler) DeleteRate(c *gin.Context) {
	rateID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.DeleteRate(c.Request.Context(), rateID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// Convert handles POST /currencies/convert - one-off conversion against the
// current ledger snapshot, direct edges only.
func (h *CurrencyHandler) Convert(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ConvertRequest
	if !h.BindJSON(c, &req) {
		return
	}

	snap, err := h.service.Snapshot(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	converted, err := snap.Convert(req.Amount, req.FromCode, req.ToCode)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ConvertResponse{
		Amount:    req.Amount,
		FromCode:  req.FromCode,
		ToCode:    req.ToCode,
		Converted: converted,
	})
}
