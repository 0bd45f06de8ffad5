package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/core/tx"
	"facturo/internal/domain/currency"
	"facturo/internal/domain/extraction"
	"facturo/internal/domain/supplier"
)

// --- fakes ---

type fakeTxManager struct {
	calls int
}

var _ tx.Manager = (*fakeTxManager)(nil)

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeInvoiceRepo struct {
	invoices  []*Invoice
	items     map[id.ID][]Item
	reminders []*PaymentReminder

	saveItemsErr error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{items: make(map[id.ID][]Item)}
}

func (f *fakeInvoiceRepo) Create(_ context.Context, inv *Invoice) error {
	f.invoices = append(f.invoices, inv)
	return nil
}

func (f *fakeInvoiceRepo) GetByID(_ context.Context, invoiceID id.ID) (*Invoice, error) {
	for _, inv := range f.invoices {
		if inv.ID == invoiceID {
			return inv, nil
		}
	}
	return nil, apperror.NewNotFound("invoice", invoiceID)
}

func (f *fakeInvoiceRepo) List(_ context.Context, _ ListFilter) ([]*Invoice, error) {
	return f.invoices, nil
}

func (f *fakeInvoiceRepo) Update(_ context.Context, inv *Invoice) error {
	for i, existing := range f.invoices {
		if existing.ID == inv.ID {
			f.invoices[i] = inv
			return nil
		}
	}
	return apperror.NewNotFound("invoice", inv.ID)
}

func (f *fakeInvoiceRepo) UpdateStatus(_ context.Context, invoiceID id.ID, status Status) error {
	for _, inv := range f.invoices {
		if inv.ID == invoiceID {
			inv.Status = status
			return nil
		}
	}
	return apperror.NewNotFound("invoice", invoiceID)
}

func (f *fakeInvoiceRepo) Delete(_ context.Context, invoiceID id.ID) error {
	for i, inv := range f.invoices {
		if inv.ID == invoiceID {
			f.invoices = append(f.invoices[:i], f.invoices[i+1:]...)
			delete(f.items, invoiceID)
			return nil
		}
	}
	return apperror.NewNotFound("invoice", invoiceID)
}

func (f *fakeInvoiceRepo) GetItems(_ context.Context, invoiceID id.ID) ([]Item, error) {
	return f.items[invoiceID], nil
}

func (f *fakeInvoiceRepo) SaveItems(_ context.Context, invoiceID id.ID, items []Item) error {
	if f.saveItemsErr != nil {
		return f.saveItemsErr
	}
	f.items[invoiceID] = items
	return nil
}

func (f *fakeInvoiceRepo) CreateReminder(_ context.Context, reminder *PaymentReminder) error {
	f.reminders = append(f.reminders, reminder)
	return nil
}

// fakeSupplierRepo covers only what the resolver touches on the tax_id path.
type fakeSupplierRepo struct {
	suppliers []*supplier.Supplier
}

func (f *fakeSupplierRepo) Create(_ context.Context, s *supplier.Supplier) error {
	f.suppliers = append(f.suppliers, s)
	return nil
}

func (f *fakeSupplierRepo) GetByID(_ context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	for _, s := range f.suppliers {
		if s.ID == supplierID {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("supplier", supplierID)
}

func (f *fakeSupplierRepo) List(_ context.Context) ([]*supplier.Supplier, error) {
	return f.suppliers, nil
}

func (f *fakeSupplierRepo) Update(_ context.Context, s *supplier.Supplier) error {
	return nil
}

func (f *fakeSupplierRepo) Delete(_ context.Context, _ id.ID) error {
	return nil
}

func (f *fakeSupplierRepo) UpsertByTaxID(_ context.Context, s *supplier.Supplier) (id.ID, error) {
	for _, existing := range f.suppliers {
		if existing.TaxID != nil && s.TaxID != nil && *existing.TaxID == *s.TaxID {
			return existing.ID, nil
		}
	}
	f.suppliers = append(f.suppliers, s)
	return s.ID, nil
}

func (f *fakeSupplierRepo) FindByNameEmail(_ context.Context, name string, email *string) (*supplier.Supplier, error) {
	for _, s := range f.suppliers {
		if s.Name == name {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("supplier", name)
}

func (f *fakeSupplierRepo) PatchMissingContact(_ context.Context, _ id.ID, _ supplier.ContactPatch) error {
	return nil
}

// fakeCurrencyRepo serves ledger snapshots from fixed rows.
type fakeCurrencyRepo struct {
	currencies []*currency.Currency
	rates      []*currency.ExchangeRate
}

func (f *fakeCurrencyRepo) Create(_ context.Context, c *currency.Currency) error {
	f.currencies = append(f.currencies, c)
	return nil
}

func (f *fakeCurrencyRepo) GetByID(_ context.Context, currencyID id.ID) (*currency.Currency, error) {
	for _, c := range f.currencies {
		if c.ID == currencyID {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("currency", currencyID)
}

func (f *fakeCurrencyRepo) FindByCode(_ context.Context, code string) (*currency.Currency, error) {
	for _, c := range f.currencies {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, apperror.NewNotFound("currency", code)
}

func (f *fakeCurrencyRepo) List(_ context.Context) ([]*currency.Currency, error) {
	return f.currencies, nil
}

func (f *fakeCurrencyRepo) ClearBase(_ context.Context) error { return nil }

func (f *fakeCurrencyRepo) SetBase(_ context.Context, _ id.ID) error { return nil }

func (f *fakeCurrencyRepo) UpsertRate(_ context.Context, fromID, toID id.ID, rate decimal.Decimal) (*currency.ExchangeRate, error) {
	r := &currency.ExchangeRate{ID: id.New(), FromCurrencyID: fromID, ToCurrencyID: toID, Rate: rate}
	f.rates = append(f.rates, r)
	return r, nil
}

func (f *fakeCurrencyRepo) ListRates(_ context.Context) ([]*currency.ExchangeRate, error) {
	return f.rates, nil
}

func (f *fakeCurrencyRepo) ListRatesWithCodes(_ context.Context) ([]*currency.RateWithCodes, error) {
	return nil, nil
}

func (f *fakeCurrencyRepo) DeleteRate(_ context.Context, _ id.ID) error { return nil }

// --- fixtures ---

func strPtr(s string) *string { return &s }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newLedger(txm tx.Manager) (*currency.Service, *fakeCurrencyRepo) {
	tnd := currency.NewCurrency("TND", "Tunisian Dinar", "DT")
	tnd.IsBase = true
	eur := currency.NewCurrency("EUR", "Euro", "€")

	repo := &fakeCurrencyRepo{
		currencies: []*currency.Currency{tnd, eur},
		rates: []*currency.ExchangeRate{{
			ID:             id.New(),
			FromCurrencyID: eur.ID,
			ToCurrencyID:   tnd.ID,
			Rate:           decimal.RequireFromString("3.1"),
		}},
	}
	return currency.NewService(repo, txm), repo
}

func newReconcilerUnderTest(invoiceRepo *fakeInvoiceRepo) (*Reconciler, *fakeSupplierRepo, *fakeTxManager) {
	txm := &fakeTxManager{}
	ledger, _ := newLedger(txm)
	supplierRepo := &fakeSupplierRepo{}
	resolver := supplier.NewResolver(supplierRepo)
	return NewReconciler(resolver, ledger, invoiceRepo, txm), supplierRepo, txm
}

func fullDraft() *extraction.InvoiceDraft {
	due := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	issue := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	return &extraction.InvoiceDraft{
		Supplier: extraction.SupplierDraft{
			Name:  strPtr("ACME Tunisie"),
			TaxID: strPtr("123/A/M/000"),
		},
		Invoice: extraction.InvoiceHeaderDraft{
			Number:      strPtr("INV-2024-001"),
			IssueDate:   &issue,
			DueDate:     &due,
			Currency:    strPtr("EUR"),
			TotalAmount: decPtr("100"),
		},
		Items: []extraction.ItemDraft{
			{Description: strPtr("Widgets"), Quantity: decPtr("10"), UnitPrice: decPtr("10")},
			{Description: strPtr("Shipping"), TotalPrice: decPtr("0")},
		},
		Raw: json.RawMessage(`{"invoice":{"number":"INV-2024-001"}}`),
	}
}

// --- tests ---

func TestReconciler_FullDraft(t *testing.T) {
	repo := newFakeInvoiceRepo()
	r, supplierRepo, txm := newReconcilerUnderTest(repo)

	result, err := r.Reconcile(context.Background(), fullDraft(), strPtr("/uploads/invoices/1_inv.pdf"))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, txm.calls, "everything runs in one transaction")
	assert.Equal(t, 2, result.ItemCount)

	require.Len(t, supplierRepo.suppliers, 1)
	assert.Equal(t, result.SupplierID, supplierRepo.suppliers[0].ID)

	require.Len(t, repo.invoices, 1)
	inv := repo.invoices[0]
	assert.Equal(t, result.InvoiceID, inv.ID)
	assert.Equal(t, StatusExtracted, inv.Status)
	assert.Equal(t, "INV-2024-001", *inv.InvoiceNumber)
	assert.Equal(t, "/uploads/invoices/1_inv.pdf", *inv.OriginalFilePath)
	assert.JSONEq(t, `{"invoice":{"number":"INV-2024-001"}}`, string(inv.ExtractedData))

	require.NotNil(t, inv.CurrencyID)
	require.NotNil(t, inv.TotalAmountBase)
	assert.True(t, decimal.RequireFromString("310").Equal(*inv.TotalAmountBase))
	require.NotNil(t, inv.ExchangeRateUsed)
	assert.True(t, decimal.RequireFromString("3.1").Equal(*inv.ExchangeRateUsed))

	items := repo.items[inv.ID]
	require.Len(t, items, 2)
	assert.Equal(t, inv.ID, items[0].InvoiceID)
	require.NotNil(t, items[1].TotalPrice)
	assert.True(t, items[1].TotalPrice.IsZero(), "extracted zero stays zero, not NULL")
	assert.Nil(t, items[1].Quantity, "absent numeric stays NULL")

	require.Len(t, repo.reminders, 1)
	assert.Equal(t, inv.ID, repo.reminders[0].InvoiceID)
	assert.Equal(t, ReminderTypeOnDue, repo.reminders[0].ReminderType)
	assert.True(t, inv.DueDate.Equal(repo.reminders[0].ReminderDate))
}

func TestReconciler_MissingRateEdgeTolerated(t *testing.T) {
	repo := newFakeInvoiceRepo()
	r, _, _ := newReconcilerUnderTest(repo)

	draft := fullDraft()
	draft.Invoice.Currency = strPtr("USD") // known? no: ledger only has TND, EUR

	result, err := r.Reconcile(context.Background(), draft, nil)
	require.NoError(t, err, "a missing conversion edge must not fail reconciliation")
	require.NotNil(t, result)

	inv := repo.invoices[0]
	assert.Nil(t, inv.CurrencyID, "unknown code stores no currency reference")
	assert.Nil(t, inv.TotalAmountBase)
	assert.Nil(t, inv.ExchangeRateUsed)
	require.NotNil(t, inv.TotalAmount)
	assert.True(t, decimal.RequireFromString("100").Equal(*inv.TotalAmount), "original amount survives")
}

func TestReconciler_NoDueDateNoReminder(t *testing.T) {
	repo := newFakeInvoiceRepo()
	r, _, _ := newReconcilerUnderTest(repo)

	draft := fullDraft()
	draft.Invoice.DueDate = nil

	_, err := r.Reconcile(context.Background(), draft, nil)
	require.NoError(t, err)
	assert.Empty(t, repo.reminders)
}

func TestReconciler_ItemFailureAbortsEverything(t *testing.T) {
	repo := newFakeInvoiceRepo()
	repo.saveItemsErr = errors.New("disk full")
	r, _, txm := newReconcilerUnderTest(repo)

	result, err := r.Reconcile(context.Background(), fullDraft(), nil)
	require.Error(t, err)
	assert.Nil(t, result)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeReconciliation, appErr.Code)

	assert.Equal(t, 1, txm.calls)
	assert.Empty(t, repo.reminders, "nothing after the failure point runs")
}

func TestReconciler_NilDraftRejected(t *testing.T) {
	repo := newFakeInvoiceRepo()
	r, _, _ := newReconcilerUnderTest(repo)

	_, err := r.Reconcile(context.Background(), nil, nil)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestReconciler_EmptyDraftStillCommits(t *testing.T) {
	repo := newFakeInvoiceRepo()
	r, supplierRepo, _ := newReconcilerUnderTest(repo)

	draft := &extraction.InvoiceDraft{
		Items: []extraction.ItemDraft{},
		Raw:   json.RawMessage(`{}`),
	}

	result, err := r.Reconcile(context.Background(), draft, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, result.ItemCount)
	require.Len(t, supplierRepo.suppliers, 1)
	assert.Equal(t, supplier.UnknownName, supplierRepo.suppliers[0].Name)

	require.Len(t, repo.invoices, 1)
	assert.Equal(t, StatusExtracted, repo.invoices[0].Status)
	assert.Nil(t, repo.invoices[0].TotalAmount)
}
