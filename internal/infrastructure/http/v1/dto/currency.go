package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"facturo/internal/domain/currency"
)

type CreateCurrencyRequest struct {
	Code   string `json:"code" binding:"required,len=3"`
	Name   string `json:"name" binding:"required"`
	Symbol string `json:"symbol"`
	IsBase bool   `json:"isBase"`
}

func (r *CreateCurrencyRequest) ToEntity() *currency.Currency {
	c := currency.NewCurrency(r.Code, r.Name, r.Symbol)
	c.IsBase = r.IsBase
	return c
}

type CurrencyResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	IsBase    bool      `json:"isBase"`
	CreatedAt time.Time `json:"createdAt"`
}

func FromCurrency(c *currency.Currency) *CurrencyResponse {
	return &CurrencyResponse{
		ID:        c.ID.String(),
		Code:      c.Code,
		Name:      c.Name,
		Symbol:    c.Symbol,
		IsBase:    c.IsBase,
		CreatedAt: c.CreatedAt,
	}
}

func FromCurrencies(list []*currency.Currency) []CurrencyResponse {
	out := make([]CurrencyResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *FromCurrency(c))
	}
	return out
}

type SetBaseCurrencyRequest struct {
	Code string `json:"code" binding:"required,len=3"`
}

type UpsertRateRequest struct {
	FromCode string          `json:"fromCode" binding:"required,len=3"`
	ToCode   string          `json:"toCode" binding:"required,len=3"`
	Rate     decimal.Decimal `json:"rate" binding:"required"`
}

type RateResponse struct {
	ID        string          `json:"id"`
	FromCode  string          `json:"fromCode"`
	ToCode    string          `json:"toCode"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func FromRateWithCodes(r *currency.RateWithCodes) *RateResponse {
	return &RateResponse{
		ID:        r.ID.String(),
		FromCode:  r.FromCode,
		ToCode:    r.ToCode,
		Rate:      r.Rate,
		UpdatedAt: r.UpdatedAt,
	}
}

func FromRatesWithCodes(list []*currency.RateWithCodes) []RateResponse {
	out := make([]RateResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *FromRateWithCodes(r))
	}
	return out
}

type ConvertRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	FromCode string          `json:"fromCode" binding:"required,len=3"`
	ToCode   string          `json:"toCode" binding:"required,len=3"`
}

type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	FromCode  string          `json:"fromCode"`
	ToCode    string          `json:"toCode"`
	Converted decimal.Decimal `json:"converted"`
}
