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
	"facturo/internal/domain/supplier"
)

const suppliersTable = "suppliers"

// Compile-time check that SupplierRepo implements supplier.Repository.
var _ supplier.Repository = (*SupplierRepo)(nil)

// SupplierRepo implements supplier.Repository on PostgreSQL.
type SupplierRepo struct {
	txm  *TxManager
	cols []string
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txm *TxManager) *SupplierRepo {
	return &SupplierRepo{
		txm:  txm,
		cols: ExtractDBColumns[supplier.Supplier](),
	}
}

// Builder returns a squirrel builder with PostgreSQL placeholder format.
func (r *SupplierRepo) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *SupplierRepo) baseSelect() squirrel.SelectBuilder {
	return r.Builder().
		Select(r.cols...).
		From(suppliersTable)
}

// Create inserts a new supplier.
func (r *SupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error {
	q := r.Builder().
		Insert(suppliersTable).
		SetMap(StructToMap(s))

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("supplier", "tax_id", deref(s.TaxID)).WithCause(err)
		}
		return fmt.Errorf("insert supplier: %w", err)
	}

	return nil
}

// GetByID retrieves a supplier by id.
func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": supplierID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s supplier.Supplier
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier", supplierID.String())
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}

	return &s, nil
}

// List retrieves all suppliers ordered by name.
func (r *SupplierRepo) List(ctx context.Context) ([]*supplier.Supplier, error) {
	q := r.baseSelect().
		OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []*supplier.Supplier
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}

	return items, nil
}

// Update replaces the mutable fields of a supplier.
func (r *SupplierRepo) Update(ctx context.Context, s *supplier.Supplier) error {
	data := StructToMap(s)
	delete(data, "id")
	delete(data, "created_at")

	q := r.Builder().
		Update(suppliersTable).
		SetMap(data).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return apperror.NewDuplicate("supplier", "tax_id", deref(s.TaxID)).WithCause(err)
		}
		return fmt.Errorf("update supplier: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", s.ID.String())
	}

	return nil
}

// Delete removes a supplier.
func (r *SupplierRepo) Delete(ctx context.Context, supplierID id.ID) error {
	q := r.Builder().
		Delete(suppliersTable).
		Where(squirrel.Eq{"id": supplierID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperror.NewConflict("cannot delete: supplier has invoices").
				WithDetail("id", supplierID.String()).
				WithCause(err)
		}
		return fmt.Errorf("delete supplier: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", supplierID.String())
	}

	return nil
}

// UpsertByTaxID inserts or updates a supplier keyed by tax_id.
// The unique constraint on tax_id is the serialization point for concurrent
// extractions of the same supplier: exactly one row survives.
func (r *SupplierRepo) UpsertByTaxID(ctx context.Context, s *supplier.Supplier) (id.ID, error) {
	q := r.Builder().
		Insert(suppliersTable).
		Columns("id", "name", "tax_id", "email", "phone", "address", "iban", "bic", "rib", "created_at", "updated_at").
		Values(s.ID, s.Name, s.TaxID, s.Email, s.Phone, s.Address, s.IBAN, s.BIC, s.RIB, s.CreatedAt, s.UpdatedAt).
		Suffix(`ON CONFLICT (tax_id)
			DO UPDATE SET
				name = EXCLUDED.name,
				email = EXCLUDED.email,
				phone = EXCLUDED.phone,
				address = EXCLUDED.address,
				iban = EXCLUDED.iban,
				bic = EXCLUDED.bic,
				rib = EXCLUDED.rib,
				updated_at = EXCLUDED.updated_at
			RETURNING id`)

	sql, args, err := q.ToSql()
	if err != nil {
		return id.Nil(), fmt.Errorf("build upsert: %w", err)
	}

	var supplierID id.ID
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&supplierID); err != nil {
		return id.Nil(), fmt.Errorf("upsert supplier: %w", err)
	}

	return supplierID, nil
}

// FindByNameEmail retrieves the first supplier matching the weak natural key.
// Emails are compared null-coalesced, so two rows both missing email with the
// same name are the same entity.
func (r *SupplierRepo) FindByNameEmail(ctx context.Context, name string, email *string) (*supplier.Supplier, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"name": name}).
		Where(squirrel.Expr("COALESCE(email, '') = COALESCE(?, '')", email)).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s supplier.Supplier
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier", name)
		}
		return nil, fmt.Errorf("find supplier by name/email: %w", err)
	}

	return &s, nil
}

// PatchMissingContact fills only NULL contact columns: COALESCE(existing, new),
// so a populated value always wins over the incoming one.
func (r *SupplierRepo) PatchMissingContact(ctx context.Context, supplierID id.ID, patch supplier.ContactPatch) error {
	q := r.Builder().
		Update(suppliersTable).
		Set("phone", squirrel.Expr("COALESCE(phone, ?)", patch.Phone)).
		Set("address", squirrel.Expr("COALESCE(address, ?)", patch.Address)).
		Set("iban", squirrel.Expr("COALESCE(iban, ?)", patch.IBAN)).
		Set("bic", squirrel.Expr("COALESCE(bic, ?)", patch.BIC)).
		Set("rib", squirrel.Expr("COALESCE(rib, ?)", patch.RIB)).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": supplierID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build patch: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("patch supplier contact: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", supplierID.String())
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
