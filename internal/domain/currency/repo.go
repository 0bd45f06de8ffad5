package currency

import (
	"context"

	"github.com/shopspring/decimal"

	"facturo/internal/core/id"
)

// Repository defines the interface for currency and exchange-rate persistence.
type Repository interface {
	// Create inserts a new currency.
	Create(ctx context.Context, c *Currency) error

	// GetByID retrieves a currency by id.
	GetByID(ctx context.Context, currencyID id.ID) (*Currency, error)

	// FindByCode retrieves a currency by its 3-letter code.
	FindByCode(ctx context.Context, code string) (*Currency, error)

	// List retrieves all currencies, base first then by code.
	List(ctx context.Context) ([]*Currency, error)

	// ClearBase clears the is_base flag on all currencies.
	// Must run inside the same transaction as SetBase.
	ClearBase(ctx context.Context) error

	// SetBase sets the is_base flag on one currency.
	// Returns NotFound when the id does not exist.
	SetBase(ctx context.Context, currencyID id.ID) error

	// UpsertRate inserts or updates the single directed edge (from, to),
	// refreshing updated_at. Enforced by the unique constraint on the pair.
	UpsertRate(ctx context.Context, fromID, toID id.ID, rate decimal.Decimal) (*ExchangeRate, error)

	// ListRates retrieves all rate edges.
	ListRates(ctx context.Context) ([]*ExchangeRate, error)

	// ListRatesWithCodes retrieves all rate edges joined with currency codes.
	ListRatesWithCodes(ctx context.Context) ([]*RateWithCodes, error)

	// DeleteRate removes a rate edge by id.
	DeleteRate(ctx context.Context, rateID id.ID) error
}
