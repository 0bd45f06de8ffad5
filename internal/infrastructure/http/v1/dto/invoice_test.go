package dto

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/id"
	"facturo/internal/domain/invoice"
)

func existingInvoiceWithItems() *invoice.Invoice {
	inv := invoice.NewInvoice(id.New(), invoice.StatusPending)
	desc := "consulting"
	total := decimal.NewFromInt(100)
	inv.Items = []invoice.Item{{
		ID:          id.New(),
		InvoiceID:   inv.ID,
		Description: &desc,
		TotalPrice:  &total,
	}}
	return inv
}

func TestUpdateInvoiceRequest_AbsentItemsKeyKeepsLineItems(t *testing.T) {
	inv := existingInvoiceWithItems()
	kept := inv.Items[0].ID

	num := "INV-42"
	req := &UpdateInvoiceRequest{InvoiceNumber: &num}
	req.ApplyTo(inv)

	require.Len(t, inv.Items, 1, "a header-only edit must not touch line items")
	assert.Equal(t, kept, inv.Items[0].ID)
	assert.Equal(t, &num, inv.InvoiceNumber)
}

func TestUpdateInvoiceRequest_EmptyItemsListClears(t *testing.T) {
	inv := existingInvoiceWithItems()

	req := &UpdateInvoiceRequest{Items: []InvoiceItemRequest{}}
	req.ApplyTo(inv)

	require.NotNil(t, inv.Items)
	assert.Empty(t, inv.Items)
}

func TestUpdateInvoiceRequest_ItemsListReplaces(t *testing.T) {
	inv := existingInvoiceWithItems()
	old := inv.Items[0].ID

	desc := "hosting"
	req := &UpdateInvoiceRequest{Items: []InvoiceItemRequest{{Description: &desc}}}
	req.ApplyTo(inv)

	require.Len(t, inv.Items, 1)
	assert.NotEqual(t, old, inv.Items[0].ID)
	assert.Equal(t, inv.ID, inv.Items[0].InvoiceID)
	assert.Equal(t, &desc, inv.Items[0].Description)
}
