// Package currency provides the currency catalog and the exchange-rate ledger.
// The ledger answers conversion questions over a directed graph of pairwise
// rates and manages the single base-currency flag.
package currency

import (
	"context"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
)

// FallbackBaseCode is treated as the base currency when no row carries is_base.
const FallbackBaseCode = "TND"

var codeRE = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency represents a monetary unit.
type Currency struct {
	// ID is the primary key (UUIDv7)
	ID id.ID `db:"id" json:"id"`

	// Code is the ISO 4217 alphabetic code (e.g., "TND", "EUR", "USD"), unique
	Code string `db:"code" json:"code"`

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Symbol is the currency symbol (e.g., "€", "د.ت")
	Symbol string `db:"symbol" json:"symbol"`

	// IsBase indicates if this is the base (reporting) currency
	IsBase bool `db:"is_base" json:"isBase"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewCurrency creates a new Currency with required fields.
func NewCurrency(code, name, symbol string) *Currency {
	return &Currency{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		Symbol:    symbol,
		CreatedAt: time.Now().UTC(),
	}
}

// Validate checks currency invariants.
func (c *Currency) Validate(ctx context.Context) error {
	if !codeRE.MatchString(c.Code) {
		return apperror.NewValidation("currency code must be 3 uppercase letters").
			WithDetail("field", "code").
			WithDetail("value", c.Code)
	}

	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}

	return nil
}

// Format renders an amount with this currency's decoration.
// Pure function of (amount, currency); magnitude first, symbol appended.
func (c *Currency) Format(amount decimal.Decimal) string {
	symbol := c.Symbol
	if symbol == "" {
		symbol = c.Code
	}
	return amount.StringFixed(2) + " " + symbol
}

// ExchangeRate is a directed edge in the conversion graph.
// At most one edge exists per ordered (from, to) pair.
type ExchangeRate struct {
	ID             id.ID           `db:"id" json:"id"`
	FromCurrencyID id.ID           `db:"from_currency_id" json:"fromCurrencyId"`
	ToCurrencyID   id.ID           `db:"to_currency_id" json:"toCurrencyId"`
	Rate           decimal.Decimal `db:"rate" json:"rate"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`
}

// RateWithCodes is an ExchangeRate joined with its currency codes, for listings.
type RateWithCodes struct {
	ExchangeRate

	FromCode   string `db:"from_code" json:"fromCode"`
	FromSymbol string `db:"from_symbol" json:"fromSymbol"`
	ToCode     string `db:"to_code" json:"toCode"`
	ToSymbol   string `db:"to_symbol" json:"toSymbol"`
}
