package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/domain/invoice"
)

const (
	invoicesTable         = "invoices"
	invoiceItemsTable     = "invoice_items"
	paymentRemindersTable = "payment_reminders"
)

// Compile-time check that InvoiceRepo implements invoice.Repository.
var _ invoice.Repository = (*InvoiceRepo)(nil)

// InvoiceRepo implements invoice.Repository on PostgreSQL.
type InvoiceRepo struct {
	txm  *TxManager
	cols []string
}

// NewInvoiceRepo creates a new invoice repository.
func NewInvoiceRepo(txm *TxManager) *InvoiceRepo {
	return &InvoiceRepo{
		txm:  txm,
		cols: ExtractDBColumns[invoice.Invoice](),
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholder format.
func (r *InvoiceRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *InvoiceRepo) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.cols...).
		From(invoicesTable)
}

// Create inserts an invoice row (header only).
func (r *InvoiceRepo) Create(ctx context.Context, inv *invoice.Invoice) error {
	q := r.Builder().
		Insert(invoicesTable).
		SetMap(StructToMap(inv))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewValidation("referenced supplier or currency does not exist").
				WithCause(err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	return nil
}

// GetByID retrieves an invoice header.
func (r *InvoiceRepo) GetByID(ctx context.Context, invoiceID id.ID) (*invoice.Invoice, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": invoiceID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var inv invoice.Invoice
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &inv, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("invoice", invoiceID.String())
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	return &inv, nil
}

// List retrieves invoices newest first, filtered.
func (r *InvoiceRepo) List(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	q := r.baseSelect()

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
	}

	q = q.OrderBy("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*invoice.Invoice
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}

	return items, nil
}

// Update replaces the mutable fields of an invoice header.
func (r *InvoiceRepo) Update(ctx context.Context, inv *invoice.Invoice) error {
	data := StructToMap(inv)
	delete(data, "id")
	delete(data, "created_at")

	q := r.Builder().
		Update(invoicesTable).
		SetMap(data).
		Where(squirrel.Eq{"id": inv.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", inv.ID.String())
	}

	return nil
}

// UpdateStatus transitions the lifecycle state only.
func (r *InvoiceRepo) UpdateStatus(ctx context.Context, invoiceID id.ID, status invoice.Status) error {
	q := r.Builder().
		Update(invoicesTable).
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update invoice status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}

	return nil
}

// Delete removes an invoice. Items and reminders cascade via their foreign
// keys (ON DELETE CASCADE), not application logic.
func (r *InvoiceRepo) Delete(ctx context.Context, invoiceID id.ID) error {
	q := r.Builder().
		Delete(invoicesTable).
		Where(squirrel.Eq{"id": invoiceID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("invoice", invoiceID.String())
	}

	return nil
}

// GetItems retrieves the invoice's line items.
func (r *InvoiceRepo) GetItems(ctx context.Context, invoiceID id.ID) ([]invoice.Item, error) {
	q := r.Builder().
		Select("id", "invoice_id", "description", "quantity", "unit_price", "total_price", "tax_rate", "tax_amount").
		From(invoiceItemsTable).
		Where(squirrel.Eq{"invoice_id": invoiceID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []invoice.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// SaveItems replaces the invoice's line items (delete existing + insert new).
func (r *InvoiceRepo) SaveItems(ctx context.Context, invoiceID id.ID, items []invoice.Item) error {
	querier := r.txm.GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + invoiceItemsTable + " WHERE invoice_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, invoiceID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(invoiceItemsTable).
		Columns("id", "invoice_id", "description", "quantity", "unit_price", "total_price", "tax_rate", "tax_amount")

	for _, it := range items {
		q = q.Values(it.ID, invoiceID, it.Description, it.Quantity, it.UnitPrice, it.TotalPrice, it.TaxRate, it.TaxAmount)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	return nil
}

// CreateReminder inserts one payment reminder.
func (r *InvoiceRepo) CreateReminder(ctx context.Context, reminder *invoice.PaymentReminder) error {
	q := r.Builder().
		Insert(paymentRemindersTable).
		SetMap(StructToMap(reminder))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}

	return nil
}
