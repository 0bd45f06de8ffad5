package invoice

import (
	"context"
	"fmt"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
	"facturo/internal/core/tx"
	"facturo/internal/domain/currency"
	"facturo/internal/domain/extraction"
	"facturo/internal/domain/supplier"
	"facturo/pkg/logger"
)

// Result reports what one reconciliation committed.
type Result struct {
	SupplierID id.ID `json:"supplierId"`
	InvoiceID  id.ID `json:"invoiceId"`
	ItemCount  int   `json:"itemCount"`
}

// Reconciler turns one normalized InvoiceDraft into persisted invoice, items
// and reminder rows as a single all-or-nothing unit.
//
// Supplier resolution runs INSIDE the same transaction: a failure anywhere in
// the chain also undoes a freshly created supplier, keeping reconciliation
// strictly atomic and auditable.
type Reconciler struct {
	resolver  *supplier.Resolver
	ledger    *currency.Service
	repo      Repository
	txManager tx.Manager
}

// NewReconciler creates a reconciler.
func NewReconciler(
	resolver *supplier.Resolver,
	ledger *currency.Service,
	repo Repository,
	txManager tx.Manager,
) *Reconciler {
	return &Reconciler{
		resolver:  resolver,
		ledger:    ledger,
		repo:      repo,
		txManager: txManager,
	}
}

// Reconcile persists a draft. The external extraction has already happened by
// the time this is called; no long-running work occurs inside the transaction.
func (r *Reconciler) Reconcile(ctx context.Context, draft *extraction.InvoiceDraft, filePath *string) (*Result, error) {
	if draft == nil {
		return nil, apperror.NewValidation("draft is required")
	}

	var result Result

	err := r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// 1. Supplier
		supplierID, err := r.resolver.Resolve(ctx, draft.Supplier)
		if err != nil {
			return err
		}
		result.SupplierID = supplierID

		// 2. Currency + base conversion. The snapshot is read inside the
		// transaction so one reconciliation never mixes two rate sets.
		snap, err := r.ledger.Snapshot(ctx)
		if err != nil {
			return err
		}

		inv := NewInvoice(supplierID, StatusExtracted)
		inv.InvoiceNumber = draft.Invoice.Number
		inv.IssueDate = draft.Invoice.IssueDate
		inv.DueDate = draft.Invoice.DueDate
		inv.PaymentTerms = draft.Invoice.PaymentTerms
		inv.TotalAmount = draft.Invoice.TotalAmount
		inv.OriginalFilePath = filePath
		inv.ExtractedData = draft.Raw

		if draft.Invoice.Currency != nil {
			if c := snap.ByCode(*draft.Invoice.Currency); c != nil {
				inv.CurrencyID = &c.ID
			}
		}

		r.convertTotal(ctx, inv, draft, snap)

		// 3. Invoice header
		if err := r.repo.Create(ctx, inv); err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		result.InvoiceID = inv.ID

		// 4. Items (possibly none)
		items := make([]Item, 0, len(draft.Items))
		for _, it := range draft.Items {
			items = append(items, Item{
				ID:          id.New(),
				InvoiceID:   inv.ID,
				Description: it.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
				TotalPrice:  it.TotalPrice,
				TaxRate:     it.TaxRate,
			})
		}
		if len(items) > 0 {
			if err := r.repo.SaveItems(ctx, inv.ID, items); err != nil {
				return fmt.Errorf("insert items: %w", err)
			}
		}
		result.ItemCount = len(items)

		// 5. Reminder on the due date
		if inv.DueDate != nil {
			reminder := &PaymentReminder{
				ID:           id.New(),
				InvoiceID:    inv.ID,
				ReminderDate: *inv.DueDate,
				ReminderType: ReminderTypeOnDue,
				DaysOffset:   0,
			}
			if err := r.repo.CreateReminder(ctx, reminder); err != nil {
				return fmt.Errorf("insert reminder: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		if appErr, ok := apperror.AsAppError(err); ok {
			return nil, appErr
		}
		return nil, apperror.NewReconciliation(err)
	}

	logger.Info(ctx, "extraction reconciled",
		"invoice_id", result.InvoiceID,
		"supplier_id", result.SupplierID,
		"items", result.ItemCount)

	return &result, nil
}

// convertTotal fills TotalAmountBase/ExchangeRateUsed when a direct edge to
// the base currency exists. A missing edge is tolerated: the amount stays
// unconverted with the base fields NULL, flagged by a warn log.
func (r *Reconciler) convertTotal(ctx context.Context, inv *Invoice, draft *extraction.InvoiceDraft, snap *currency.Snapshot) {
	if draft.Invoice.TotalAmount == nil || draft.Invoice.Currency == nil {
		return
	}

	converted, rate, err := snap.ConvertToBase(*draft.Invoice.TotalAmount, *draft.Invoice.Currency)
	if err != nil {
		logger.Warn(ctx, "base conversion unavailable, storing unconverted amount",
			"currency", *draft.Invoice.Currency,
			"error", err)
		return
	}

	inv.TotalAmountBase = &converted
	inv.ExchangeRateUsed = &rate
}
