// Package extraction turns raw AI-extracted document payloads into canonical
// invoice drafts. A draft is null-safe: every field is an explicit optional,
// item lists are never nil, and nothing is silently defaulted to a
// business-meaningful value.
package extraction

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Extractor is the opaque external extraction collaborator.
// It returns the raw JSON payload for a stored document, or an opaque
// failure; callers never inspect its internals.
type Extractor interface {
	Extract(ctx context.Context, filePath string) (json.RawMessage, error)
}

// SupplierDraft is the supplier sub-object of a draft.
// Tax-id/IBAN/BIC/RIB are carried verbatim: presence is tracked, format is not.
type SupplierDraft struct {
	Name    *string `json:"name,omitempty"`
	TaxID   *string `json:"taxId,omitempty"`
	Email   *string `json:"email,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	IBAN    *string `json:"iban,omitempty"`
	BIC     *string `json:"bic,omitempty"`
	RIB     *string `json:"rib,omitempty"`
}

// InvoiceHeaderDraft is the invoice sub-object of a draft.
type InvoiceHeaderDraft struct {
	Number       *string          `json:"number,omitempty"`
	IssueDate    *time.Time       `json:"issueDate,omitempty"`
	DueDate      *time.Time       `json:"dueDate,omitempty"`
	PaymentTerms *string          `json:"paymentTerms,omitempty"`
	Currency     *string          `json:"currency,omitempty"`
	TotalAmount  *decimal.Decimal `json:"totalAmount,omitempty"`
	TaxAmount    *decimal.Decimal `json:"taxAmount,omitempty"`
	Subtotal     *decimal.Decimal `json:"subtotal,omitempty"`
}

// ItemDraft is one extracted line item.
// Absent numerics stay nil so "not extracted" is distinguishable from zero.
type ItemDraft struct {
	Description *string          `json:"description,omitempty"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unitPrice,omitempty"`
	TotalPrice  *decimal.Decimal `json:"totalPrice,omitempty"`
	TaxRate     *decimal.Decimal `json:"taxRate,omitempty"`
}

// PaymentInfoDraft is the payment-info sub-object of a draft.
type PaymentInfoDraft struct {
	IBAN      *string `json:"iban,omitempty"`
	BIC       *string `json:"bic,omitempty"`
	Reference *string `json:"reference,omitempty"`
}

// InvoiceDraft is the canonical, normalized intermediate representation.
// Items is always non-nil. Raw retains the extraction payload verbatim for
// audit; the draft is derived, not authoritative.
type InvoiceDraft struct {
	Supplier    SupplierDraft      `json:"supplier"`
	Invoice     InvoiceHeaderDraft `json:"invoice"`
	Items       []ItemDraft        `json:"items"`
	PaymentInfo PaymentInfoDraft   `json:"paymentInfo"`

	Raw json.RawMessage `json:"-"`
}
