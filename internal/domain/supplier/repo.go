package supplier

import (
	"context"

	"facturo/internal/core/id"
)

// ContactPatch carries the contact columns the resolver may fill in on a
// weak-key match. Only NULL columns are overwritten (COALESCE(existing, new)).
type ContactPatch struct {
	Phone   *string
	Address *string
	IBAN    *string
	BIC     *string
	RIB     *string
}

// Repository defines the interface for supplier persistence.
type Repository interface {
	// Create inserts a new supplier.
	Create(ctx context.Context, s *Supplier) error

	// GetByID retrieves a supplier by id.
	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)

	// List retrieves all suppliers ordered by name.
	List(ctx context.Context) ([]*Supplier, error)

	// Update replaces the mutable fields of a supplier.
	Update(ctx context.Context, s *Supplier) error

	// Delete removes a supplier.
	Delete(ctx context.Context, supplierID id.ID) error

	// UpsertByTaxID inserts the supplier, or — when a row with the same
	// tax_id already exists — overwrites its contact fields with the new
	// values (the tax_id is authoritative, newest data wins). Returns the
	// row id either way. Single atomic statement: concurrent calls for the
	// same tax_id are serialized by the unique constraint, never two inserts.
	UpsertByTaxID(ctx context.Context, s *Supplier) (id.ID, error)

	// FindByNameEmail retrieves the first supplier matching the weak natural
	// key: exact name, emails compared as COALESCE(email,'').
	FindByNameEmail(ctx context.Context, name string, email *string) (*Supplier, error)

	// PatchMissingContact fills only the NULL contact columns of a supplier.
	// Populated values are never regressed.
	PatchMissingContact(ctx context.Context, supplierID id.ID, patch ContactPatch) error
}
