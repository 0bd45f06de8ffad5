package currency

import (
	"github.com/shopspring/decimal"

	"facturo/internal/core/apperror"
	"facturo/internal/core/id"
)

// pair is an ordered currency-code pair keying one directed rate edge.
type pair struct {
	from string
	to   string
}

// Snapshot is an immutable view of the ledger: all currencies, all directed
// rate edges, and the resolved base currency. It is loaded once per request
// (or operation) and passed by reference into conversion calls, so a single
// business operation never observes two different rate sets.
type Snapshot struct {
	byCode map[string]*Currency
	byID   map[id.ID]*Currency
	rates  map[pair]decimal.Decimal
	base   *Currency
}

// NewSnapshot builds a snapshot from loaded rows.
// Base resolution: the currency flagged is_base, else the FallbackBaseCode
// row if present, else nil (conversion to base then fails, never guesses).
func NewSnapshot(currencies []*Currency, rates []*ExchangeRate) *Snapshot {
	s := &Snapshot{
		byCode: make(map[string]*Currency, len(currencies)),
		byID:   make(map[id.ID]*Currency, len(currencies)),
		rates:  make(map[pair]decimal.Decimal, len(rates)),
	}

	for _, c := range currencies {
		s.byCode[c.Code] = c
		s.byID[c.ID] = c
		if c.IsBase && s.base == nil {
			s.base = c
		}
	}

	if s.base == nil {
		s.base = s.byCode[FallbackBaseCode]
	}

	for _, r := range rates {
		from, okFrom := s.byID[r.FromCurrencyID]
		to, okTo := s.byID[r.ToCurrencyID]
		if !okFrom || !okTo {
			continue // dangling edge, skip
		}
		s.rates[pair{from.Code, to.Code}] = r.Rate
	}

	return s
}

// Base returns the base currency, or nil when none is resolvable.
func (s *Snapshot) Base() *Currency {
	return s.base
}

// ByCode returns the currency with the given code, or nil.
func (s *Snapshot) ByCode(code string) *Currency {
	return s.byCode[code]
}

// Rate returns the direct edge (from, to) if stored.
func (s *Snapshot) Rate(fromCode, toCode string) (decimal.Decimal, bool) {
	r, ok := s.rates[pair{fromCode, toCode}]
	return r, ok
}

// Convert converts an amount between currency codes.
// Identity conversions return the amount exactly. Only the direct edge
// (from, to) is consulted: the ledger never inverts or chains rates; a
// missing edge is a ConversionUnavailable error for the caller to handle.
func (s *Snapshot) Convert(amount decimal.Decimal, fromCode, toCode string) (decimal.Decimal, error) {
	if fromCode == toCode {
		return amount, nil
	}

	rate, ok := s.rates[pair{fromCode, toCode}]
	if !ok {
		return decimal.Zero, apperror.NewConversionUnavailable(fromCode, toCode)
	}

	return amount.Mul(rate), nil
}

// ConvertToBase converts an amount into the base currency and also returns
// the rate that was applied (1 for identity).
func (s *Snapshot) ConvertToBase(amount decimal.Decimal, fromCode string) (decimal.Decimal, decimal.Decimal, error) {
	if s.base == nil {
		return decimal.Zero, decimal.Zero, apperror.NewConversionUnavailable(fromCode, FallbackBaseCode)
	}

	if fromCode == s.base.Code {
		return amount, decimal.NewFromInt(1), nil
	}

	rate, ok := s.rates[pair{fromCode, s.base.Code}]
	if !ok {
		return decimal.Zero, decimal.Zero, apperror.NewConversionUnavailable(fromCode, s.base.Code)
	}

	return amount.Mul(rate), rate, nil
}

// Display is a dual representation of an amount: the original magnitude with
// its own currency decoration, and the base-currency equivalent when a direct
// edge exists.
type Display struct {
	Primary   string  `json:"primary"`
	Secondary *string `json:"secondary,omitempty"`
}

// DisplayAmount renders an amount against a snapshot. Pure function: no
// state, no loading phase; the caller controls when the snapshot is ready.
func DisplayAmount(amount decimal.Decimal, fromCode string, s *Snapshot) Display {
	from := s.ByCode(fromCode)
	if from == nil {
		return Display{Primary: amount.StringFixed(2) + " " + fromCode}
	}

	d := Display{Primary: from.Format(amount)}

	base := s.Base()
	if base == nil || base.Code == from.Code {
		return d
	}

	converted, _, err := s.ConvertToBase(amount, fromCode)
	if err != nil {
		return d
	}

	secondary := base.Format(converted)
	d.Secondary = &secondary
	return d
}
