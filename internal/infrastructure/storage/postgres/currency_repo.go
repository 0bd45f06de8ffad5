package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain/currency"
)

const (
	currenciesTable    = "currencies"
	exchangeRatesTable = "exchange_rates"
)

// Compile-time check that CurrencyRepo implements currency.Repository.
var _ currency.Repository = (*CurrencyRepo)(nil)

// CurrencyRepo implements currency.Repository on PostgreSQL.
type CurrencyRepo struct {
	txm  *TxManager
	cols []string
}

// NewCurrencyRepo creates a new currency repository.
func NewCurrencyRepo(txm *TxManager) *CurrencyRepo {
	return &CurrencyRepo{
		txm:  txm,
		cols: ExtractDBColumns[currency.Currency](),
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholder format.
func (r *CurrencyRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *CurrencyRepo) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.cols...).
		From(currenciesTable)
}

// Create inserts a new currency.
func (r *CurrencyRepo) Create(ctx context.Context, c *currency.Currency) error {
	q := r.Builder().
		Insert(currenciesTable).
		SetMap(StructToMap(c))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("currency", "code", c.Code).WithCause(err)
		}
		return fmt.Errorf("insert currency: %w", err)
	}

	return nil
}

// GetByID retrieves a currency by id.
func (r *CurrencyRepo) GetByID(ctx context.Context, currencyID id.ID) (*currency.Currency, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": currencyID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c currency.Currency
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("currency", currencyID.String())
		}
		return nil, fmt.Errorf("get currency: %w", err)
	}

	return &c, nil
}

// FindByCode retrieves a currency by its 3-letter code.
func (r *CurrencyRepo) FindByCode(ctx context.Context, code string) (*currency.Currency, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"code": code}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c currency.Currency
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("currency", code)
		}
		return nil, fmt.Errorf("find currency by code: %w", err)
	}

	return &c, nil
}

// List retrieves all currencies, base first then by code.
func (r *CurrencyRepo) List(ctx context.Context) ([]*currency.Currency, error) {
	q := r.baseSelect().
		OrderBy("is_base DESC", "code ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*currency.Currency
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}

	return items, nil
}

// ClearBase clears the is_base flag on all currencies.
func (r *CurrencyRepo) ClearBase(ctx context.Context) error {
	q := r.Builder().
		Update(currenciesTable).
		Set("is_base", false).
		Where(squirrel.Eq{"is_base": true})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("clear base: %w", err)
	}

	return nil
}

// SetBase sets the is_base flag on one currency.
func (r *CurrencyRepo) SetBase(ctx context.Context, currencyID id.ID) error {
	q := r.Builder().
		Update(currenciesTable).
		Set("is_base", true).
		Where(squirrel.Eq{"id": currencyID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("set base: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("currency", currencyID.String())
	}

	return nil
}

// UpsertRate inserts or updates the single directed edge (from, to).
func (r *CurrencyRepo) UpsertRate(ctx context.Context, fromID, toID id.ID, rate decimal.Decimal) (*currency.ExchangeRate, error) {
	now := time.Now().UTC()

	q := r.Builder().
		Insert(exchangeRatesTable).
		Columns("id", "from_currency_id", "to_currency_id", "rate", "updated_at").
		Values(id.New(), fromID, toID, rate, now).
		Suffix(`ON CONFLICT (from_currency_id, to_currency_id)
			DO UPDATE SET rate = EXCLUDED.rate, updated_at = EXCLUDED.updated_at
			RETURNING id, from_currency_id, to_currency_id, rate, updated_at`)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build upsert: %w", err)
	}

	var edge currency.ExchangeRate
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &edge, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			missing := missingRateEndpoint(pgErr, fromID, toID)
			return nil, apperror.NewNotFound("currency", missing.String()).WithCause(err)
		}
		return nil, fmt.Errorf("upsert exchange rate: %w", err)
	}

	return &edge, nil
}

// missingRateEndpoint picks which endpoint of a rate edge a foreign-key
// violation refers to. The constraint name carries the referencing column.
func missingRateEndpoint(pgErr *pgconn.PgError, fromID, toID id.ID) id.ID {
	if strings.Contains(pgErr.ConstraintName, "to_currency_id") {
		return toID
	}
	return fromID
}

// ListRates retrieves all rate edges.
func (r *CurrencyRepo) ListRates(ctx context.Context) ([]*currency.ExchangeRate, error) {
	q := r.Builder().
		Select("id", "from_currency_id", "to_currency_id", "rate", "updated_at").
		From(exchangeRatesTable)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var edges []*currency.ExchangeRate
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &edges, sql, args...); err != nil {
		return nil, fmt.Errorf("list exchange rates: %w", err)
	}

	return edges, nil
}

// ListRatesWithCodes retrieves all rate edges joined with currency codes.
func (r *CurrencyRepo) ListRatesWithCodes(ctx context.Context) ([]*currency.RateWithCodes, error) {
	q := r.Builder().
		Select(
			"er.id", "er.from_currency_id", "er.to_currency_id", "er.rate", "er.updated_at",
			"fc.code AS from_code", "fc.symbol AS from_symbol",
			"tc.code AS to_code", "tc.symbol AS to_symbol",
		).
		From(exchangeRatesTable + " er").
		Join(currenciesTable + " fc ON er.from_currency_id = fc.id").
		Join(currenciesTable + " tc ON er.to_currency_id = tc.id").
		OrderBy("fc.code", "tc.code")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*currency.RateWithCodes
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list rates with codes: %w", err)
	}

	return rows, nil
}

// DeleteRate removes a rate edge by id.
func (r *CurrencyRepo) DeleteRate(ctx context.Context, rateID id.ID) error {
	q := r.Builder().
		Delete(exchangeRatesTable).
		Where(squirrel.Eq{"id": rateID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete exchange rate: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("exchange rate", rateID.String())
	}

	return nil
}
