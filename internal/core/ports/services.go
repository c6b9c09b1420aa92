package ports

import (
	"context"
	"time"

	"credloom-coordinator/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferService manages marketplace offers backed by ledger registration.
type OfferService interface {
	CreateOffer(ctx context.Context, req CreateOfferRequest) (*CreateOfferResult, error)
	ListActiveOffers(ctx context.Context) ([]domain.Offer, error)
}

// CreateOfferRequest holds validated input for posting a lender offer.
type CreateOfferRequest struct {
	Lender       string
	AmountEth    decimal.Decimal
	DurationDays int
	MinScore     int
}

// CreateOfferResult reports the ledger outcome of an offer registration.
// PersistencePending is set when the ledger transaction succeeded but the
// off-ledger listing could not be written; reconciliation will repair it.
type CreateOfferResult struct {
	TxHash             string `json:"tx_hash"`
	ChainOfferID       int64  `json:"offer_id"`
	PersistencePending bool   `json:"persistence_pending"`
}

// LoanService is the loan origination coordinator.
type LoanService interface {
	AcceptOffer(ctx context.Context, req AcceptOfferRequest) (*AcceptOfferResult, error)
	TriggerDefault(ctx context.Context, loanID string) (string, error)
}

// AcceptOfferRequest holds validated input for an acceptance attempt.
// (ChainOfferID, Borrower) is the idempotency key.
type AcceptOfferRequest struct {
	ChainOfferID int64
	Borrower     string
	Rate         decimal.Decimal // percent
	Insured      bool
	Insurer      string
}

// AcceptOfferResult is the acceptance outcome. The ledger fields are
// authoritative even when PersistencePending is true: a store failure after a
// successful ledger submission must never be reported as loan failure.
type AcceptOfferResult struct {
	TxHash             string          `json:"tx_hash"`
	LoanID             string          `json:"loan_id"`
	InterestAmount     decimal.Decimal `json:"interest_amount"`
	PersistencePending bool            `json:"persistence_pending"`
}

// ReconcileService repairs off-ledger state to match ledger truth after a
// partial failure. It never writes to the ledger.
type ReconcileService interface {
	Run(ctx context.Context) (*ReconcileReport, error)
}

// ReconcileReport summarizes one reconciliation pass.
type ReconcileReport struct {
	PromotedLoans     int `json:"promoted_loans"`
	DeactivatedOffers int `json:"deactivated_offers"`
}

// RateService quotes an interest rate band for a credit score. Quotes are
// advisory pricing guidance; they place no constraint on the rate a borrower
// actually submits.
type RateService interface {
	Quote(score int) (RateQuote, error)
}

// RateQuote is a priced rate band with a suggested point inside it.
type RateQuote struct {
	Score         int             `json:"score"`
	Tier          string          `json:"tier"`
	MinRate       decimal.Decimal `json:"min_rate"`
	MaxRate       decimal.Decimal `json:"max_rate"`
	SuggestedRate decimal.Decimal `json:"suggested_rate"`
}

// AuthService defines authentication business logic.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	Username string
	Password string
	Wallet   string
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, wallet string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
	Wallet string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
