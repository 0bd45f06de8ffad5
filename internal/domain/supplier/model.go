// Package supplier provides the supplier catalog and the resolver that maps
// extracted supplier data onto exactly one supplier row.
package supplier

import (
	"context"
	"time"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
)

// UnknownName is the fallback display name when an extraction carries no
// supplier name at all.
const UnknownName = "Unknown supplier"

// Supplier represents a business partner issuing invoices.
//
// Identity precedence: TaxID is the strong natural key when present
// (unique constraint); otherwise the (Name, coalesced Email) pair is the
// weak natural key.
type Supplier struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// TaxID is the fiscal identification number, unique when present
	TaxID *string `db:"tax_id" json:"taxId,omitempty"`

	Email   *string `db:"email" json:"email,omitempty"`
	Phone   *string `db:"phone" json:"phone,omitempty"`
	Address *string `db:"address" json:"address,omitempty"`

	// Banking details, carried verbatim from extraction or admin input
	IBAN *string `db:"iban" json:"iban,omitempty"`
	BIC  *string `db:"bic" json:"bic,omitempty"`
	RIB  *string `db:"rib" json:"rib,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// NewSupplier creates a supplier with required fields.
func NewSupplier(name string) *Supplier {
	now := time.Now().UTC()
	return &Supplier{
		ID:        id.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate checks supplier invariants.
func (s *Supplier) Validate(ctx context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	return nil
}
