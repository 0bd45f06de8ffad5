package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facturo/internal/core/id"
)

func TestCreateCurrencyRequest_ToEntityAssignsIdentity(t *testing.T) {
	req := &CreateCurrencyRequest{
		Code:   "EUR",
		Name:   "Euro",
		Symbol: "€",
		IsBase: true,
	}

	c := req.ToEntity()

	require.False(t, id.IsNil(c.ID), "a freshly created currency must carry a real id")
	assert.False(t, c.CreatedAt.IsZero())
	assert.Equal(t, "EUR", c.Code)
	assert.Equal(t, "Euro", c.Name)
	assert.Equal(t, "€", c.Symbol)
	assert.True(t, c.IsBase)
}

func TestCreateCurrencyRequest_ToEntityIdsAreDistinct(t *testing.T) {
	a := (&CreateCurrencyRequest{Code: "EUR", Name: "Euro"}).ToEntity()
	b := (&CreateCurrencyRequest{Code: "USD", Name: "US Dollar"}).ToEntity()

	assert.NotEqual(t, a.ID, b.ID)
}
