package invoice

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
)

func newServiceUnderTest(repo *fakeInvoiceRepo) (*Service, *fakeCurrencyRepo) {
	txm := &fakeTxManager{}
	ledger, currencyRepo := newLedger(txm)
	return NewService(repo, ledger, txm), currencyRepo
}

func TestService_Create_DefaultsToPending(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc, _ := newServiceUnderTest(repo)

	inv := NewInvoice(id.New(), "")
	inv.Status = ""
	require.NoError(t, svc.Create(context.Background(), inv))

	assert.Equal(t, StatusPending, inv.Status)
}

func TestService_Create_FillsBaseAmountFromLedger(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc, currencyRepo := newServiceUnderTest(repo)

	var eurID id.ID
	for _, c := range currencyRepo.currencies {
		if c.Code == "EUR" {
			eurID = c.ID
		}
	}

	inv := NewInvoice(id.New(), StatusPending)
	inv.TotalAmount = decPtr("200")
	inv.CurrencyID = &eurID
	inv.Items = []Item{{Description: strPtr("Widgets"), Quantity: decPtr("2")}}

	require.NoError(t, svc.Create(context.Background(), inv))

	require.NotNil(t, inv.TotalAmountBase)
	assert.True(t, decimal.RequireFromString("620").Equal(*inv.TotalAmountBase))
	require.NotNil(t, inv.ExchangeRateUsed)
	assert.True(t, decimal.RequireFromString("3.1").Equal(*inv.ExchangeRateUsed))

	items := repo.items[inv.ID]
	require.Len(t, items, 1)
	assert.Equal(t, inv.ID, items[0].InvoiceID)
	assert.False(t, id.IsNil(items[0].ID))
}

func TestService_Create_RequiresSupplier(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc, _ := newServiceUnderTest(repo)

	inv := NewInvoice(id.Nil(), StatusPending)
	err := svc.Create(context.Background(), inv)
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService_UpdateStatus_RejectsUnknown(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc, _ := newServiceUnderTest(repo)

	err := svc.UpdateStatus(context.Background(), id.New(), Status("weird"))
	require.Error(t, err)
	assert.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestService_UpdateStatus_AllLifecycleStates(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc, _ := newServiceUnderTest(repo)
	ctx := context.Background()

	inv := NewInvoice(id.New(), StatusExtracted)
	require.NoError(t, svc.Create(ctx, inv))

	for _, s := range []Status{StatusPending, StatusPaid, StatusOverdue, StatusCancelled, StatusExtracted} {
		require.NoError(t, svc.UpdateStatus(ctx, inv.ID, s))
		assert.Equal(t, s, repo.invoices[0].Status)
	}
}

func TestService_List_DefaultLimit(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc, _ := newServiceUnderTest(repo)

	_, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
}

func TestService_Update_NilItemsLeavesStoredItems(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc, _ := newServiceUnderTest(repo)
	ctx := context.Background()

	inv := NewInvoice(id.New(), StatusPending)
	inv.Items = []Item{{Description: strPtr("Widgets"), Quantity: decPtr("2")}}
	require.NoError(t, svc.Create(ctx, inv))
	require.Len(t, repo.items[inv.ID], 1)
	kept := repo.items[inv.ID][0].ID

	inv.Items = nil
	inv.Notes = strPtr("header edit only")
	require.NoError(t, svc.Update(ctx, inv))

	require.Len(t, repo.items[inv.ID], 1, "a header-only update must not rewrite line items")
	assert.Equal(t, kept, repo.items[inv.ID][0].ID)
}

func TestService_Update_RecomputesBaseAmount(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc, currencyRepo := newServiceUnderTest(repo)
	ctx := context.Background()

	var eurID id.ID
	for _, c := range currencyRepo.currencies {
		if c.Code == "EUR" {
			eurID = c.ID
		}
	}

	inv := NewInvoice(id.New(), StatusPending)
	inv.TotalAmount = decPtr("200")
	inv.CurrencyID = &eurID
	require.NoError(t, svc.Create(ctx, inv))
	require.NotNil(t, inv.TotalAmountBase)

	inv.TotalAmount = decPtr("100")
	require.NoError(t, svc.Update(ctx, inv))

	require.NotNil(t, inv.TotalAmountBase)
	assert.True(t, decimal.RequireFromString("310").Equal(*inv.TotalAmountBase))
	require.NotNil(t, inv.ExchangeRateUsed)
	assert.True(t, decimal.RequireFromString("3.1").Equal(*inv.ExchangeRateUsed))
}

func TestService_Update_ClearsBaseWhenCurrencyDropped(t *testing.T) {
	repo := newFakeInvoiceRepo()
	svc, currencyRepo := newServiceUnderTest(repo)
	ctx := context.Background()

	var eurID id.ID
	for _, c := range currencyRepo.currencies {
		if c.Code == "EUR" {
			eurID = c.ID
		}
	}

	inv := NewInvoice(id.New(), StatusPending)
	inv.TotalAmount = decPtr("200")
	inv.CurrencyID = &eurID
	require.NoError(t, svc.Create(ctx, inv))
	require.NotNil(t, inv.TotalAmountBase)

	inv.CurrencyID = nil
	require.NoError(t, svc.Update(ctx, inv))

	assert.Nil(t, inv.TotalAmountBase, "stale base equivalent must not survive a currency edit")
	assert.Nil(t, inv.ExchangeRateUsed)
}
