package currency

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
)

// fakeTxManager runs the function directly; transaction semantics are covered
// by the postgres integration layer.
type fakeTxManager struct {
	calls int
}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeCurrencyRepo struct {
	currencies []*Currency
	rates      []*ExchangeRate

	clearBaseCalls int
}

func (f *fakeCurrencyRepo) Create(_ context.Context, c *Currency) error {
	f.currencies = append(f.currencies, c)
	return nil
}

func (f *fakeCurrencyRepo) GetByID(_ context.Context, currencyID id.ID) (*Currency, error) {
	for _, c := range f.currencies {
		if c.ID == currencyID {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("currency", currencyID)
}

func (f *fakeCurrencyRepo) FindByCode(_ context.Context, code string) (*Currency, error) {
	for _, c := range f.currencies {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("currency", code)
}

func (f *fakeCurrencyRepo) List(_ context.Context) ([]*Currency, error) {
	return f.currencies, nil
}

func (f *fakeCurrencyRepo) ClearBase(_ context.Context) error {
	f.clearBaseCalls++
	for _, c := range f.currencies {
		c.IsBase = false
	}
	return nil
}

func (f *fakeCurrencyRepo) SetBase(_ context.Context, currencyID id.ID) error {
	for _, c := range f.currencies {
		if c.ID == currencyID {
			c.IsBase = true
			return nil
		}
	}
	return apperror.NewNotFound("currency", currencyID)
}

func (f *fakeCurrencyRepo) UpsertRate(_ context.Context, fromID, toID id.ID, rate decimal.Decimal) (*ExchangeRate, error) {
	for _, r := range f.rates {
		if r.FromCurrencyID == fromID && r.ToCurrencyID == toID {
			r.Rate = rate
			return r, nil
		}
	}
	r := &ExchangeRate{ID: id.New(), FromCurrencyID: fromID, ToCurrencyID: toID, Rate: rate}
	f.rates = append(f.rates, r)
	return r, nil
}

func (f *fakeCurrencyRepo) ListRates(_ context.Context) ([]*ExchangeRate, error) {
	return f.rates, nil
}

func (f *fakeCurrencyRepo) ListRatesWithCodes(_ context.Context) ([]*RateWithCodes, error) {
	out := make([]*RateWithCodes, 0, len(f.rates))
	for _, r := range f.rates {
		out = append(out, &RateWithCodes{ExchangeRate: *r})
	}
	return out, nil
}

func (f *fakeCurrencyRepo) DeleteRate(_ context.Context, rateID id.ID) error {
	for i, r := range f.rates {
		if r.ID == rateID {
			f.rates = append(f.rates[:i], f.rates[i+1:]...)
			return nil
		}
	}
	return apperror.NewNotFound("exchange rate", rateID)
}

func TestService_Create_RejectsDuplicateCode(t *testing.T) {
	repo := &fakeCurrencyRepo{}
	svc := NewService(repo, &fakeTxManager{})
	ctx := context.Background()

	require.NoError(t, svc.Create(ctx, NewCurrency("EUR", "Euro", "€")))

	err := svc.Create(ctx, NewCurrency("EUR", "Euro again", "€"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
}

func TestService_Create_RejectsBadCode(t *testing.T) {
	svc := NewService(&fakeCurrencyRepo{}, &fakeTxManager{})

	for _, code := range []string{"", "eu", "EURO", "eur"} {
		err := svc.Create(context.Background(), NewCurrency(code, "Bad", ""))
		assert.Error(t, err, "code %q must be rejected", code)
	}
}

func TestService_SetBaseCurrency_ClearsThenSets(t *testing.T) {
	tnd := newTestCurrency("TND", "DT", true)
	eur := newTestCurrency("EUR", "€", false)
	repo := &fakeCurrencyRepo{currencies: []*Currency{tnd, eur}}
	txm := &fakeTxManager{}
	svc := NewService(repo, txm)

	require.NoError(t, svc.SetBaseCurrency(context.Background(), eur.ID))

	assert.Equal(t, 1, txm.calls, "clear+set must run in one transaction")
	assert.Equal(t, 1, repo.clearBaseCalls)
	assert.False(t, tnd.IsBase)
	assert.True(t, eur.IsBase)
}

func TestService_UpsertRate_Validation(t *testing.T) {
	svc := NewService(&fakeCurrencyRepo{}, &fakeTxManager{})
	ctx := context.Background()
	a, b := id.New(), id.New()

	t.Run("zero rate rejected", func(t *testing.T) {
		_, err := svc.UpsertRate(ctx, a, b, decimal.Zero)
		requireInvalidRate(t, err)
	})

	t.Run("negative rate rejected", func(t *testing.T) {
		_, err := svc.UpsertRate(ctx, a, b, decimal.RequireFromString("-1.5"))
		requireInvalidRate(t, err)
	})

	t.Run("self loop rejected", func(t *testing.T) {
		_, err := svc.UpsertRate(ctx, a, a, decimal.NewFromInt(2))
		requireInvalidRate(t, err)
	})
}

func requireInvalidRate(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidRate, appErr.Code)
}

func TestService_UpsertRate_RepeatUpdatesSameEdge(t *testing.T) {
	repo := &fakeCurrencyRepo{}
	svc := NewService(repo, &fakeTxManager{})
	ctx := context.Background()
	a, b := id.New(), id.New()

	first, err := svc.UpsertRate(ctx, a, b, decimal.RequireFromString("3.0"))
	require.NoError(t, err)

	second, err := svc.UpsertRate(ctx, a, b, decimal.RequireFromString("3.2"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.rates, 1)
	assert.True(t, decimal.RequireFromString("3.2").Equal(repo.rates[0].Rate))
}

func TestService_Snapshot_ReflectsRepoState(t *testing.T) {
	tnd := newTestCurrency("TND", "DT", true)
	eur := newTestCurrency("EUR", "€", false)
	repo := &fakeCurrencyRepo{
		currencies: []*Currency{tnd, eur},
		rates:      []*ExchangeRate{edge(eur, tnd, "3.1")},
	}
	svc := NewService(repo, &fakeTxManager{})

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	require.NotNil(t, snap.Base())
	assert.Equal(t, "TND", snap.Base().Code)

	rate, ok := snap.Rate("EUR", "TND")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("3.1").Equal(rate))
}
