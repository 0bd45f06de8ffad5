package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"facturo/internal/core/id"
	"facturo/internal/domain/extraction"
	"facturo/internal/domain/invoice"
)

type InvoiceItemRequest struct {
	Description *string          `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	TotalPrice  *decimal.Decimal `json:"totalPrice"`
	TaxRate     *decimal.Decimal `json:"taxRate"`
	TaxAmount   *decimal.Decimal `json:"taxAmount"`
}

type CreateInvoiceRequest struct {
	SupplierID    string           `json:"supplierId" binding:"required,uuid"`
	InvoiceNumber *string          `json:"invoiceNumber"`
	IssueDate     *time.Time       `json:"issueDate"`
	DueDate       *time.Time       `json:"dueDate"`
	TotalAmount   *decimal.Decimal `json:"totalAmount"`
	CurrencyCode  *string          `json:"currencyCode" binding:"omitempty,len=3"`
	Status        *string          `json:"status"`
	PaymentTerms  *string          `json:"paymentTerms"`
	Notes         *string          `json:"notes"`

	Items []InvoiceItemRequest `json:"items"`
}

func (r *CreateInvoiceRequest) ToEntity() (*invoice.Invoice, error) {
	supplierID, err := id.Parse(r.SupplierID)
	if err != nil {
		return nil, err
	}

	status := invoice.StatusPending
	if r.Status != nil {
		status = invoice.Status(*r.Status)
	}

	inv := invoice.NewInvoice(supplierID, status)
	inv.InvoiceNumber = r.InvoiceNumber
	inv.IssueDate = r.IssueDate
	inv.DueDate = r.DueDate
	inv.TotalAmount = r.TotalAmount
	inv.PaymentTerms = r.PaymentTerms
	inv.Notes = r.Notes
	inv.Items = itemsToEntities(inv.ID, r.Items)

	return inv, nil
}

type UpdateInvoiceRequest struct {
	InvoiceNumber *string          `json:"invoiceNumber"`
	IssueDate     *time.Time       `json:"issueDate"`
	DueDate       *time.Time       `json:"dueDate"`
	TotalAmount   *decimal.Decimal `json:"totalAmount"`
	CurrencyCode  *string          `json:"currencyCode" binding:"omitempty,len=3"`
	Status        *string          `json:"status"`
	PaymentTerms  *string          `json:"paymentTerms"`
	Notes         *string          `json:"notes"`

	Items []InvoiceItemRequest `json:"items"`
}

func (r *UpdateInvoiceRequest) ApplyTo(inv *invoice.Invoice) {
	inv.InvoiceNumber = r.InvoiceNumber
	inv.IssueDate = r.IssueDate
	inv.DueDate = r.DueDate
	inv.TotalAmount = r.TotalAmount
	if r.Status != nil {
		inv.Status = invoice.Status(*r.Status)
	}
	inv.PaymentTerms = r.PaymentTerms
	inv.Notes = r.Notes
	// An absent items key leaves the stored line items alone; only an
	// explicit list (including an empty one) replaces them.
	if r.Items != nil {
		inv.Items = itemsToEntities(inv.ID, r.Items)
	}
}

func itemsToEntities(invoiceID id.ID, items []InvoiceItemRequest) []invoice.Item {
	out := make([]invoice.Item, 0, len(items))
	for _, it := range items {
		out = append(out, invoice.Item{
			ID:          id.New(),
			InvoiceID:   invoiceID,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			TaxRate:     it.TaxRate,
			TaxAmount:   it.TaxAmount,
		})
	}
	return out
}

type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type InvoiceItemResponse struct {
	ID          string           `json:"id"`
	Description *string          `json:"description,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unitPrice,omitempty"`
	TotalPrice  *decimal.Decimal `json:"totalPrice,omitempty"`
	TaxRate     *decimal.Decimal `json:"taxRate,omitempty"`
	TaxAmount   *decimal.Decimal `json:"taxAmount,omitempty"`
}

type InvoiceResponse struct {
	ID               string           `json:"id"`
	InvoiceNumber    *string          `json:"invoiceNumber,omitempty"`
	SupplierID       string           `json:"supplierId"`
	IssueDate        *time.Time       `json:"issueDate,omitempty"`
	DueDate          *time.Time       `json:"dueDate,omitempty"`
	TotalAmount      *decimal.Decimal `json:"totalAmount,omitempty"`
	CurrencyID       *string          `json:"currencyId,omitempty"`
	TotalAmountBase  *decimal.Decimal `json:"totalAmountBase,omitempty"`
	ExchangeRateUsed *decimal.Decimal `json:"exchangeRateUsed,omitempty"`
	Status           string           `json:"status"`
	PaymentTerms     *string          `json:"paymentTerms,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	OriginalFilePath *string          `json:"originalFilePath,omitempty"`
	ExtractedData    json.RawMessage  `json:"extractedData,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`

	Items []InvoiceItemResponse `json:"items,omitempty"`
}

func FromInvoice(inv *invoice.Invoice) *InvoiceResponse {
	resp := &InvoiceResponse{
		ID:               inv.ID.String(),
		InvoiceNumber:    inv.InvoiceNumber,
		SupplierID:       inv.SupplierID.String(),
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		TotalAmount:      inv.TotalAmount,
		TotalAmountBase:  inv.TotalAmountBase,
		ExchangeRateUsed: inv.ExchangeRateUsed,
		Status:           string(inv.Status),
		PaymentTerms:     inv.PaymentTerms,
		Notes:            inv.Notes,
		OriginalFilePath: inv.OriginalFilePath,
		ExtractedData:    inv.ExtractedData,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}

	if inv.CurrencyID != nil {
		cid := inv.CurrencyID.String()
		resp.CurrencyID = &cid
	}

	for i := range inv.Items {
		it := &inv.Items[i]
		resp.Items = append(resp.Items, InvoiceItemResponse{
			ID:          it.ID.String(),
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
			TaxRate:     it.TaxRate,
			TaxAmount:   it.TaxAmount,
		})
	}

	return resp
}

func FromInvoices(list []*invoice.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, *FromInvoice(inv))
	}
	return out
}

// ExtractResponse carries the normalized draft back to the caller, plus the
// reconciliation outcome when persistence was requested.
type ExtractResponse struct {
	Draft  *extraction.InvoiceDraft `json:"draft"`
	Saved  bool                     `json:"saved"`
	Result *invoice.Result          `json:"result,omitempty"`
}
