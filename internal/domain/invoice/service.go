package invoice

import (
	"context"
	"fmt"
	"time"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/core/tx"
	"facturo/internal/domain/currency"
	"facturo/pkg/logger"
)

func errInvalidStatus(s Status) error {
	return apperror.NewValidation("invalid status").
		WithDetail("field", "status").
		WithDetail("value", string(s))
}

// Service provides CRUD operations for user-entered invoices.
// Pipeline-created invoices go through the Reconciler instead.
type Service struct {
	repo      Repository
	ledger    *currency.Service
	txManager tx.Manager
}

// NewService creates a new invoice service.
func NewService(repo Repository, ledger *currency.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		txManager: txManager,
	}
}

// Create inserts a user-entered invoice with its items in one transaction.
// Base-currency equivalents are computed at write time when a direct rate
// edge exists; otherwise they stay NULL.
func (s *Service) Create(ctx context.Context, inv *Invoice) error {
	if inv.Status == "" {
		inv.Status = StatusPending
	}
	if err := inv.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		snap, err := s.ledger.Snapshot(ctx)
		if err != nil {
			return err
		}
		s.fillBaseAmount(ctx, inv, snap)

		if err := s.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}

		if len(inv.Items) > 0 {
			for i := range inv.Items {
				if id.IsNil(inv.Items[i].ID) {
					inv.Items[i].ID = id.New()
				}
				inv.Items[i].InvoiceID = inv.ID
			}
			if err := s.repo.SaveItems(ctx, inv.ID, inv.Items); err != nil {
				return fmt.Errorf("insert items: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "invoice created",
		"invoice_id", inv.ID,
		"status", inv.Status)

	return nil
}

// GetByID retrieves an invoice with its items.
func (s *Service) GetByID(ctx context.Context, invoiceID id.ID) (*Invoice, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.GetItems(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}
	inv.Items = items

	return inv, nil
}

// List retrieves invoice headers, filtered.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Invoice, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}

// Update replaces an invoice header and its items in one transaction.
// Base-currency equivalents are recomputed from the current rate graph;
// a stale value never survives an amount or currency edit.
func (s *Service) Update(ctx context.Context, inv *Invoice) error {
	if err := inv.Validate(ctx); err != nil {
		return err
	}
	inv.UpdatedAt = time.Now().UTC()

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		snap, err := s.ledger.Snapshot(ctx)
		if err != nil {
			return err
		}
		inv.TotalAmountBase = nil
		inv.ExchangeRateUsed = nil
		s.fillBaseAmount(ctx, inv, snap)

		if err := s.repo.Update(ctx, inv); err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}
		if inv.Items != nil {
			for i := range inv.Items {
				if id.IsNil(inv.Items[i].ID) {
					inv.Items[i].ID = id.New()
				}
				inv.Items[i].InvoiceID = inv.ID
			}
			if err := s.repo.SaveItems(ctx, inv.ID, inv.Items); err != nil {
				return fmt.Errorf("save items: %w", err)
			}
		}
		return nil
	})
}

// UpdateStatus transitions the lifecycle state.
func (s *Service) UpdateStatus(ctx context.Context, invoiceID id.ID, status Status) error {
	if !ValidStatus(status) {
		return errInvalidStatus(status)
	}
	return s.repo.UpdateStatus(ctx, invoiceID, status)
}

// Delete removes an invoice; owned items and reminders cascade.
func (s *Service) Delete(ctx context.Context, invoiceID id.ID) error {
	return s.repo.Delete(ctx, invoiceID)
}

func (s *Service) fillBaseAmount(ctx context.Context, inv *Invoice, snap *currency.Snapshot) {
	if inv.TotalAmount == nil || inv.CurrencyID == nil || inv.TotalAmountBase != nil {
		return
	}

	c, err := s.ledger.GetByID(ctx, *inv.CurrencyID)
	if err != nil {
		return
	}

	converted, rate, err := snap.ConvertToBase(*inv.TotalAmount, c.Code)
	if err != nil {
		logger.Warn(ctx, "base conversion unavailable for manual invoice",
			"currency", c.Code,
			"error", err)
		return
	}

	inv.TotalAmountBase = &converted
	inv.ExchangeRateUsed = &rate
}
