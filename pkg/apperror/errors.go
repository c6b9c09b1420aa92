package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

// Validation returns a generic bad-input error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidAddress(addr string) *AppError {
	return New("VAL_002", fmt.Sprintf("invalid wallet address: %s", addr), http.StatusBadRequest)
}

func ErrInvalidRate() *AppError {
	return New("VAL_003", "interest rate must be greater than 0 and at most 100 percent", http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_004", "amount must be greater than zero", http.StatusBadRequest)
}

// ---- Offers & Loans (OFR / LOAN) ----

func ErrOfferNotFound() *AppError {
	return New("OFR_001", "Offer not found", http.StatusNotFound)
}

func ErrOfferInactive() *AppError {
	return New("OFR_002", "Offer is no longer available", http.StatusNotFound)
}

func ErrLoanNotFound() *AppError {
	return New("LOAN_001", "Loan not found", http.StatusNotFound)
}

func ErrProfileNotFound() *AppError {
	return New("LOAN_002", "Borrower profile not found", http.StatusNotFound)
}

// ---- Ledger (LED) ----

func ErrChainUnavailable(err error) *AppError {
	return Wrap("LED_001", "Ledger temporarily unavailable", http.StatusBadGateway, err)
}

func ErrSigningFailure(err error) *AppError {
	return Wrap("LED_002", "Failed to sign ledger transaction", http.StatusInternalServerError, err)
}

// ErrNonceConflict signals a lost race for the signer's sequence counter.
// The submission may be retried with a fresh nonce.
func ErrNonceConflict(err error) *AppError {
	return Wrap("LED_003", "Ledger nonce conflict, retry submission", http.StatusConflict, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid username or password", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrWalletRegistered() *AppError {
	return New("AUTH_003", "Wallet address already registered", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_004", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Store & System (STO / SYS) ----

func ErrStoreFailure(err error) *AppError {
	return Wrap("STO_001", "Off-ledger store failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}
