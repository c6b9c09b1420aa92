package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("OFR_001", "Offer not found", http.StatusNotFound),
			expected: "[OFR_001] Offer not found",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("STO_001", "store failure", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[STO_001] store failure: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("VAL_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"Validation", Validation("bad input"), "VAL_001", http.StatusBadRequest},
		{"InvalidAddress", ErrInvalidAddress("0x123"), "VAL_002", http.StatusBadRequest},
		{"InvalidRate", ErrInvalidRate(), "VAL_003", http.StatusBadRequest},
		{"InvalidAmount", ErrInvalidAmount(), "VAL_004", http.StatusBadRequest},
		{"OfferNotFound", ErrOfferNotFound(), "OFR_001", http.StatusNotFound},
		{"OfferInactive", ErrOfferInactive(), "OFR_002", http.StatusNotFound},
		{"LoanNotFound", ErrLoanNotFound(), "LOAN_001", http.StatusNotFound},
		{"ProfileNotFound", ErrProfileNotFound(), "LOAN_002", http.StatusNotFound},
		{"ChainUnavailable", ErrChainUnavailable(errors.New("rpc down")), "LED_001", http.StatusBadGateway},
		{"SigningFailure", ErrSigningFailure(errors.New("bad key")), "LED_002", http.StatusInternalServerError},
		{"NonceConflict", ErrNonceConflict(errors.New("nonce too low")), "LED_003", http.StatusConflict},
		{"InvalidCredentials", ErrInvalidCredentials(), "AUTH_001", http.StatusUnauthorized},
		{"UsernameExists", ErrUsernameExists(), "AUTH_002", http.StatusConflict},
		{"WalletRegistered", ErrWalletRegistered(), "AUTH_003", http.StatusConflict},
		{"InvalidToken", ErrInvalidToken(), "AUTH_004", http.StatusUnauthorized},
		{"RateLimitExceeded", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{"StoreFailure", ErrStoreFailure(errors.New("insert failed")), "STO_001", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestErrInvalidAddress_IncludesInput(t *testing.T) {
	err := ErrInvalidAddress("0xnope")
	assert.Contains(t, err.Message, "0xnope")
}
