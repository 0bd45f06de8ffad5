// Package invoice provides invoice documents, their line items and payment
// reminders, plus the reconciler that turns normalized extraction drafts into
// committed rows.
package invoice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
)

// Status is the invoice lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"

	// StatusExtracted is the initial state of pipeline-created invoices,
	// distinct from user-entered ones which start pending.
	StatusExtracted Status = "extracted"
)

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusOverdue, StatusCancelled, StatusExtracted:
		return true
	}
	return false
}

// Invoice is one payable document owned by a supplier.
//
// TotalAmountBase and ExchangeRateUsed stay NULL when no direct rate edge to
// the base currency existed at reconciliation time; the amount is then
// flaggable for later manual correction rather than silently invented.
type Invoice struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	InvoiceNumber *string    `db:"invoice_number" json:"invoiceNumber,omitempty"`
	SupplierID    id.ID      `db:"supplier_id" json:"supplierId"`
	IssueDate     *time.Time `db:"issue_date" json:"issueDate,omitempty"`
	DueDate       *time.Time `db:"due_date" json:"dueDate,omitempty"`

	TotalAmount      *decimal.Decimal `db:"total_amount" json:"totalAmount,omitempty"`
	CurrencyID       *id.ID           `db:"currency_id" json:"currencyId,omitempty"`
	TotalAmountBase  *decimal.Decimal `db:"total_amount_base" json:"totalAmountBase,omitempty"`
	ExchangeRateUsed *decimal.Decimal `db:"exchange_rate_used" json:"exchangeRateUsed,omitempty"`

	Status       Status  `db:"status" json:"status"`
	PaymentTerms *string `db:"payment_terms" json:"paymentTerms,omitempty"`
	Notes        *string `db:"notes" json:"notes,omitempty"`

	// OriginalFilePath points into the blob store for pipeline invoices
	OriginalFilePath *string `db:"original_file_path" json:"originalFilePath,omitempty"`

	// ExtractedData retains the raw extraction payload verbatim (JSONB).
	// The normalized draft is derived, not authoritative.
	ExtractedData json.RawMessage `db:"extracted_data" json:"extractedData,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Items is the owned table part, loaded separately
	Items []Item `db:"-" json:"items,omitempty"`
}

// NewInvoice creates an invoice shell with generated id and timestamps.
func NewInvoice(supplierID id.ID, status Status) *Invoice {
	now := time.Now().UTC()
	return &Invoice{
		ID:         id.New(),
		SupplierID: supplierID,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Validate checks invoice invariants.
func (i *Invoice) Validate(ctx context.Context) error {
	if id.IsNil(i.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}

	if !ValidStatus(i.Status) {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(i.Status))
	}

	return nil
}

// Item is one invoice line, owned exclusively by its invoice and cascade
// deleted with it. Absent numerics persist as NULL, not zero.
type Item struct {
	ID          id.ID            `db:"id" json:"id"`
	InvoiceID   id.ID            `db:"invoice_id" json:"invoiceId"`
	Description *string          `db:"description" json:"description,omitempty"`
	Quantity    *decimal.Decimal `db:"quantity" json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `db:"unit_price" json:"unitPrice,omitempty"`
	TotalPrice  *decimal.Decimal `db:"total_price" json:"totalPrice,omitempty"`
	TaxRate     *decimal.Decimal `db:"tax_rate" json:"taxRate,omitempty"`
	TaxAmount   *decimal.Decimal `db:"tax_amount" json:"taxAmount,omitempty"`
}

// ReminderTypeOnDue is the reminder scheduled for the due date itself.
const ReminderTypeOnDue = "on_due"

// PaymentReminder is one scheduled reminder for an invoice.
// Exactly one on_due reminder is created at reconciliation when a due date
// exists; further scheduling policy lives outside this module.
type PaymentReminder struct {
	ID           id.ID     `db:"id" json:"id"`
	InvoiceID    id.ID     `db:"invoice_id" json:"invoiceId"`
	ReminderDate time.Time `db:"reminder_date" json:"reminderDate"`
	ReminderType string    `db:"reminder_type" json:"reminderType"`
	DaysOffset   int       `db:"days_offset" json:"daysOffset"`
}
