package invoice

import (
	"context"

	"facturo/internal/core/id"
)

// ListFilter narrows invoice listings.
type ListFilter struct {
	Status     *Status
	SupplierID *id.ID
	Limit      int
	Offset     int
}

// Repository defines the interface for invoice persistence.
type Repository interface {
	// Create inserts an invoice row (header only).
	Create(ctx context.Context, inv *Invoice) error

	// GetByID retrieves an invoice header.
	GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error)

	// List retrieves invoices newest first, filtered.
	List(ctx context.Context, filter ListFilter) ([]*Invoice, error)

	// Update replaces the mutable fields of an invoice header.
	Update(ctx context.Context, inv *Invoice) error

	// UpdateStatus transitions the lifecycle state only.
	UpdateStatus(ctx context.Context, invoiceID id.ID, status Status) error

	// Delete removes an invoice; items and reminders cascade at the
	// database level.
	Delete(ctx context.Context, invoiceID id.ID) error

	// GetItems retrieves the invoice's line items.
	GetItems(ctx context.Context, invoiceID id.ID) ([]Item, error)

	// SaveItems replaces the invoice's line items (delete + insert).
	SaveItems(ctx context.Context, invoiceID id.ID, items []Item) error

	// CreateReminder inserts one payment reminder.
	CreateReminder(ctx context.Context, reminder *PaymentReminder) error
}
