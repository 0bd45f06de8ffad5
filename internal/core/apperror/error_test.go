package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactoryHTTPStatuses(t *testing.T) {
	cases := []struct {
		name string
		err  *AppError
		code string
		want int
	}{
		{"validation", NewValidation("bad"), CodeValidation, http.StatusBadRequest},
		{"invalid rate", NewInvalidRate("bad rate"), CodeInvalidRate, http.StatusBadRequest},
		{"malformed extraction", NewMalformedExtraction(nil), CodeMalformedExtraction, http.StatusBadRequest},
		{"not found", NewNotFound("invoice", "x"), CodeNotFound, http.StatusNotFound},
		{"conflict", NewConflict("busy"), CodeConflict, http.StatusConflict},
		{"duplicate", NewDuplicate("currency", "code", "EUR"), CodeDuplicate, http.StatusConflict},
		{"conversion unavailable", NewConversionUnavailable("EUR", "TND"), CodeConversionUnavailable, http.StatusUnprocessableEntity},
		{"extraction failed", NewExtractionFailed("boom", nil), CodeExtractionFailed, http.StatusBadGateway},
		{"reconciliation", NewReconciliation(errors.New("x")), CodeReconciliation, http.StatusInternalServerError},
		{"internal", NewInternal(errors.New("x")), CodeInternal, http.StatusInternalServerError},
		{"database", NewDatabase("begin transaction", errors.New("x")), CodeDatabase, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.Equal(t, tc.want, tc.err.HTTPStatus)
			assert.Equal(t, tc.want, GetHTTPStatus(tc.err))
		})
	}
}

func TestAsAppError_ThroughWrapping(t *testing.T) {
	orig := NewNotFound("supplier", "abc")
	wrapped := fmt.Errorf("resolve: %w", orig)

	got, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, orig, got)
	assert.True(t, IsNotFound(wrapped))
	assert.True(t, IsCode(wrapped, CodeNotFound))
}

func TestGetHTTPStatus_UnknownErrorIs500(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("plain")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestConversionUnavailable_CarriesPair(t *testing.T) {
	err := NewConversionUnavailable("EUR", "TND")
	assert.Equal(t, "EUR", err.Details["from"])
	assert.Equal(t, "TND", err.Details["to"])
	assert.True(t, IsConversionUnavailable(err))
}

func TestWithDetailAndCause(t *testing.T) {
	cause := errors.New("underlying")
	err := NewValidation("bad").WithDetail("field", "code").WithCause(cause)

	assert.Equal(t, "code", err.Details["field"])
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "underlying")
}
