package extraction

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
)

// Normalize coerces a raw extraction payload into an InvoiceDraft.
//
// The only fatal condition is a top-level payload that does not decode as a
// JSON object (MalformedExtraction). Every field-level problem — wrong type,
// unparseable number or date — degrades to an absent field and never aborts
// the pipeline.
func Normalize(raw json.RawMessage) (*InvoiceDraft, error) {
	var payload map[string]any

	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, apperror.NewMalformedExtraction(err)
	}
	if payload == nil {
		return nil, apperror.NewMalformedExtraction(nil)
	}

	draft := &InvoiceDraft{
		Items: make([]ItemDraft, 0),
		Raw:   append(json.RawMessage(nil), raw...),
	}

	if s, ok := asObject(payload["supplier"]); ok {
		draft.Supplier = SupplierDraft{
			Name:    asString(s["name"]),
			TaxID:   asString(s["tax_id"]),
			Email:   asString(s["email"]),
			Phone:   asString(s["phone"]),
			Address: asString(s["address"]),
			IBAN:    asString(s["iban"]),
			BIC:     asString(s["bic"]),
			RIB:     asString(s["rib"]),
		}
	}

	if inv, ok := asObject(payload["invoice"]); ok {
		draft.Invoice = InvoiceHeaderDraft{
			Number:       asString(inv["number"]),
			IssueDate:    asDate(inv["date"]),
			DueDate:      asDate(inv["due_date"]),
			PaymentTerms: asString(inv["payment_terms"]),
			Currency:     asCurrencyCode(inv["currency"]),
			TotalAmount:  asDecimal(inv["total_amount"]),
			TaxAmount:    asDecimal(inv["tax_amount"]),
			Subtotal:     asDecimal(inv["subtotal"]),
		}
	}

	if items, ok := payload["items"].([]any); ok {
		for _, entry := range items {
			it, ok := asObject(entry)
			if !ok {
				continue
			}
			draft.Items = append(draft.Items, ItemDraft{
				Description: asString(it["description"]),
				Quantity:    asDecimal(it["quantity"]),
				UnitPrice:   asDecimal(it["unit_price"]),
				TotalPrice:  asDecimal(it["total_price"]),
				TaxRate:     asDecimal(it["tax_rate"]),
			})
		}
	}

	if p, ok := asObject(payload["payment_info"]); ok {
		draft.PaymentInfo = PaymentInfoDraft{
			IBAN:      asString(p["iban"]),
			BIC:       asString(p["bic"]),
			Reference: asString(p["reference"]),
		}
	}

	return draft, nil
}

// --- coercion helpers: nil means absent ---

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// asDecimal accepts a JSON number or a numeric string; anything else is absent.
func asDecimal(v any) *decimal.Decimal {
	var raw string
	switch t := v.(type) {
	case json.Number:
		raw = t.String()
	case string:
		raw = strings.TrimSpace(t)
	default:
		return nil
	}

	if raw == "" {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &d
}

// dateLayouts accepted for extracted dates, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

func asDate(v any) *time.Time {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// asCurrencyCode uppercases a currency code; non-strings stay absent.
func asCurrencyCode(v any) *string {
	s := asString(v)
	if s == nil {
		return nil
	}
	up := strings.ToUpper(*s)
	return &up
}
