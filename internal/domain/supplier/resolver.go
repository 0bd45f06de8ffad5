package supplier

import (
	"context"
	"fmt"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain/extraction"
	"facturo/pkg/logger"
)

// Resolver deterministically maps an extracted supplier onto exactly one
// supplier row, creating it when necessary.
//
// Precedence, each step short-circuiting on success:
//  1. tax_id present: atomic upsert-by-tax_id, newest extraction wins.
//  2. weak key (name, coalesced email): patch NULL contact columns only;
//     no match creates a new row, name defaulting to UnknownName.
//
// Ambiguous weak-key matches resolve to the first row found. Two suppliers
// sharing a name with no email on file therefore merge — a known collision
// risk inherited from the matching rules, not corrected here.
type Resolver struct {
	repo Repository
}

// NewResolver creates a supplier resolver.
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve returns the id of the supplier matching the draft.
// Runs inside whatever transaction the caller holds; the reconciler opens
// one around the whole reconciliation.
func (r *Resolver) Resolve(ctx context.Context, draft extraction.SupplierDraft) (id.ID, error) {
	if draft.TaxID != nil {
		return r.resolveByTaxID(ctx, draft)
	}
	return r.resolveByNameEmail(ctx, draft)
}

func (r *Resolver) resolveByTaxID(ctx context.Context, draft extraction.SupplierDraft) (id.ID, error) {
	s := NewSupplier(nameOrUnknown(draft.Name))
	s.TaxID = draft.TaxID
	s.Email = draft.Email
	s.Phone = draft.Phone
	s.Address = draft.Address
	s.IBAN = draft.IBAN
	s.BIC = draft.BIC
	s.RIB = draft.RIB

	supplierID, err := r.repo.UpsertByTaxID(ctx, s)
	if err != nil {
		return id.Nil(), fmt.Errorf("upsert supplier by tax_id: %w", err)
	}

	return supplierID, nil
}

func (r *Resolver) resolveByNameEmail(ctx context.Context, draft extraction.SupplierDraft) (id.ID, error) {
	name := nameOrUnknown(draft.Name)

	existing, err := r.repo.FindByNameEmail(ctx, name, draft.Email)
	if err != nil && !apperror.IsNotFound(err) {
		return id.Nil(), fmt.Errorf("find supplier by name/email: %w", err)
	}

	if existing != nil {
		patch := ContactPatch{
			Phone:   draft.Phone,
			Address: draft.Address,
			IBAN:    draft.IBAN,
			BIC:     draft.BIC,
			RIB:     draft.RIB,
		}
		if err := r.repo.PatchMissingContact(ctx, existing.ID, patch); err != nil {
			return id.Nil(), fmt.Errorf("patch supplier contact: %w", err)
		}
		return existing.ID, nil
	}

	s := NewSupplier(name)
	s.Email = draft.Email
	s.Phone = draft.Phone
	s.Address = draft.Address
	s.IBAN = draft.IBAN
	s.BIC = draft.BIC
	s.RIB = draft.RIB

	if err := r.repo.Create(ctx, s); err != nil {
		return id.Nil(), fmt.Errorf("create supplier: %w", err)
	}

	logger.Info(ctx, "supplier created from extraction",
		"supplier_id", s.ID,
		"name", s.Name)

	return s.ID, nil
}

func nameOrUnknown(name *string) string {
	if name == nil || *name == "" {
		return UnknownName
	}
	return *name
}
