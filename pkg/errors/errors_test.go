package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrInvalidInput, ErrConflict,
		ErrInternal, ErrServiceUnavail, ErrCheckoutFailed,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

func TestAppError_ErrorString(t *testing.T) {
	wrapped := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: fmt.Errorf("redis down")}
	assert.Contains(t, wrapped.Error(), "INTERNAL_ERROR")
	assert.Contains(t, wrapped.Error(), "redis down")

	bare := &AppError{Code: "NOT_FOUND", Message: "product not found"}
	assert.Equal(t, "NOT_FOUND: product not found", bare.Error())
	assert.Nil(t, bare.Unwrap())
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		code     string
		status   int
		sentinel error
	}{
		{"not found", NotFound("product", "7"), "NOT_FOUND", http.StatusNotFound, ErrNotFound},
		{"invalid input", InvalidInput("rating must be between 1 and 5"), "INVALID_INPUT", http.StatusBadRequest, ErrInvalidInput},
		{"conflict", Conflict("session modified concurrently"), "CONFLICT", http.StatusConflict, ErrConflict},
		{"unavailable", ServiceUnavailable("catalog not loaded"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable, ErrServiceUnavail},
		{"checkout failed", CheckoutFailed(errors.New("broker down")), "CHECKOUT_FAILED", http.StatusUnprocessableEntity, ErrCheckoutFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestNotFound_Message(t *testing.T) {
	err := NotFound("product", "42")
	assert.Contains(t, err.Message, "product")
	assert.Contains(t, err.Message, "42")
}

func TestCheckoutFailed_KeepsCause(t *testing.T) {
	cause := errors.New("kafka: leader not available")
	err := CheckoutFailed(cause)

	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, err.Message, "kafka")
}

func TestInternal_WrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := Internal(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
}

func TestHTTPStatus_WrappedSentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(Wrap(ErrNotFound, "get product")))
	assert.Equal(t, http.StatusConflict, HTTPStatus(fmt.Errorf("save: %w", ErrConflict)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("x: %w", ErrInvalidInput)))
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(ErrServiceUnavail))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrNotFound, "load session")
	assert.Equal(t, "load session: resource not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
}
