package currency

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/core/tx"
	"facturo/pkg/logger"
)

// Service provides business logic for the currency ledger.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new currency service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Create validates and inserts a new currency.
func (s *Service) Create(ctx context.Context, c *Currency) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.FindByCode(ctx, c.Code); err == nil && existing != nil {
		return apperror.NewDuplicate("currency", "code", c.Code)
	} else if err != nil && !apperror.IsNotFound(err) {
		return err
	}

	// Creating the first base currency must not race with SetBaseCurrency.
	if c.IsBase {
		return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.repo.ClearBase(ctx); err != nil {
				return err
			}
			return s.repo.Create(ctx, c)
		})
	}

	return s.repo.Create(ctx, c)
}

// GetByID retrieves a currency by id.
func (s *Service) GetByID(ctx context.Context, currencyID id.ID) (*Currency, error) {
	return s.repo.GetByID(ctx, currencyID)
}

// FindByCode retrieves a currency by its uppercase code.
func (s *Service) FindByCode(ctx context.Context, code string) (*Currency, error) {
	return s.repo.FindByCode(ctx, code)
}

// List retrieves all currencies.
func (s *Service) List(ctx context.Context) ([]*Currency, error) {
	return s.repo.List(ctx)
}

// BaseCurrency returns the currency flagged as base, falling back to the
// FallbackBaseCode row when none is flagged.
func (s *Service) BaseCurrency(ctx context.Context) (*Currency, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Base() == nil {
		return nil, apperror.NewNotFound("base currency", FallbackBaseCode)
	}
	return snap.Base(), nil
}

// SetBaseCurrency reassigns the base flag atomically: clear all, then set
// one, inside a single transaction so concurrent readers never observe zero
// or two base currencies.
func (s *Service) SetBaseCurrency(ctx context.Context, currencyID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.ClearBase(ctx); err != nil {
			return fmt.Errorf("clear base: %w", err)
		}
		return s.repo.SetBase(ctx, currencyID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "base currency changed", "currency_id", currencyID)
	return nil
}

// UpsertRate validates and stores one directed rate edge.
// Self-loops and non-positive rates are rejected; the (from, to) pair is
// unique, so repeat calls update the existing edge.
func (s *Service) UpsertRate(ctx context.Context, fromID, toID id.ID, rate decimal.Decimal) (*ExchangeRate, error) {
	if !rate.IsPositive() {
		return nil, apperror.NewInvalidRate("rate must be positive").
			WithDetail("rate", rate.String())
	}
	if fromID == toID {
		return nil, apperror.NewInvalidRate("from and to currencies must differ")
	}

	return s.repo.UpsertRate(ctx, fromID, toID, rate)
}

// UpsertRateByCodes resolves currency codes and stores the edge.
func (s *Service) UpsertRateByCodes(ctx context.Context, fromCode, toCode string, rate decimal.Decimal) (*ExchangeRate, error) {
	from, err := s.repo.FindByCode(ctx, fromCode)
	if err != nil {
		return nil, err
	}
	to, err := s.repo.FindByCode(ctx, toCode)
	if err != nil {
		return nil, err
	}
	return s.UpsertRate(ctx, from.ID, to.ID, rate)
}

// ListRates retrieves all rate edges with joined currency codes.
func (s *Service) ListRates(ctx context.Context) ([]*RateWithCodes, error) {
	return s.repo.ListRatesWithCodes(ctx)
}

// DeleteRate removes one rate edge.
func (s *Service) DeleteRate(ctx context.Context, rateID id.ID) error {
	return s.repo.DeleteRate(ctx, rateID)
}

// Snapshot loads an immutable ledger view for conversion and display.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	currencies, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load currencies: %w", err)
	}

	rates, err := s.repo.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load exchange rates: %w", err)
	}

	return NewSnapshot(currencies, rates), nil
}
