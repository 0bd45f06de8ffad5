package supplier

import (
	"context"
	"time"

	"facturo/internal/core/id"
)

// Service provides CRUD operations for the supplier catalog (admin surface).
// Extraction-driven writes go through the Resolver instead.
type Service struct {
	repo Repository
}

// NewService creates a new supplier service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and inserts a new supplier.
func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Create(ctx, sup)
}

// GetByID retrieves a supplier by id.
func (s *Service) GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	return s.repo.GetByID(ctx, supplierID)
}

// List retrieves all suppliers.
func (s *Service) List(ctx context.Context) ([]*Supplier, error) {
	return s.repo.List(ctx)
}

// Update validates and replaces a supplier's mutable fields.
// Admin edits overwrite unconditionally, unlike the resolver's merges.
func (s *Service) Update(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	sup.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, sup)
}

// Delete removes a supplier.
func (s *Service) Delete(ctx context.Context, supplierID id.ID) error {
	return s.repo.Delete(ctx, supplierID)
}
