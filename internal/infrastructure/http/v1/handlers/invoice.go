package handlers

import (
	"github.com/gin-gonic/gin"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain/currency"
	"facturo/internal/domain/invoice"
	"facturo/internal/infrastructure/http/v1/dto"
)

// InvoiceHandler handles HTTP requests for invoices.
type InvoiceHandler struct {
	*BaseHandler
	service *invoice.Service
	ledger  *currency.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(base *BaseHandler, service *invoice.Service, ledger *currency.Service) *InvoiceHandler {
	return &InvoiceHandler{BaseHandler: base, service: service, ledger: ledger}
}

// Create handles POST /invoices.
func (h *InvoiceHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid supplier id"))
		return
	}

	if err := h.resolveCurrency(c, req.CurrencyCode, inv); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, inv); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, inv.ID.String())
}

// Get handles GET /invoices/:id.
func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	inv, err := h.service.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv))
}

// List handles GET /invoices with optional status/supplierId filters.
func (h *InvoiceHandler) List(c *gin.Context) {
	filter := invoice.ListFilter{
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if status := c.Query("status"); status != "" {
		s := invoice.Status(status)
		if !invoice.ValidStatus(s) {
			h.Error(c, apperror.NewValidation("invalid status filter").WithDetail("value", status))
			return
		}
		filter.Status = &s
	}

	if supplierID := c.Query("supplierId"); supplierID != "" {
		parsed, err := id.Parse(supplierID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId filter"))
			return
		}
		filter.SupplierID = &parsed
	}

	invoices, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoices(invoices))
}

// Update handles PUT /invoices/:id.
func (h *InvoiceHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()

	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateInvoiceRequest
	if !h.BindJSON(c, &req) {
		return
	}

	inv, err := h.service.GetByID(ctx, invoiceID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(inv)

	if err := h.resolveCurrency(c, req.CurrencyCode, inv); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, inv); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromInvoice(inv))
}

// UpdateStatus handles PATCH /invoices/:id/status.
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateInvoiceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), invoiceID, invoice.Status(req.Status)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "status updated")
}

// Delete handles DELETE /invoices/:id.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	invoiceID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), invoiceID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// resolveCurrency translates an optional currency code into the stored id.
func (h *InvoiceHandler) resolveCurrency(c *gin.Context, code *string, inv *invoice.Invoice) error {
	if code == nil {
		return nil
	}

	cur, err := h.ledger.FindByCode(c.Request.Context(), *code)
	if err != nil {
		return err
	}

	inv.CurrencyID = &cur.ID
	return nil
}
