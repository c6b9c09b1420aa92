package ports

import (
	"context"
	"errors"
	"math/big"
)

// Sentinel errors returned by the ledger gateway. Callers classify with
// errors.Is; the adapter wraps transport detail around them.
var (
	ErrOfferNotOnLedger = errors.New("offer not found on ledger")
	ErrChainUnavailable = errors.New("ledger unavailable")
	ErrSigningFailed    = errors.New("transaction signing failed")
	// ErrNonceConflict means the signing account's sequence counter was
	// consumed concurrently. The caller may retry with a fresh sequence.
	ErrNonceConflict = errors.New("nonce conflict")
)

// OfferSubmission is the input for registering a lender offer on the ledger.
type OfferSubmission struct {
	Lender       string
	AmountWei    *big.Int
	DurationDays int
	MinScore     int
}

// OfferResult is the outcome of a pooled offer-registration transaction.
type OfferResult struct {
	TxHash  string
	OfferID int64
}

// AcceptanceSubmission is the input for the offer-acceptance entry point.
type AcceptanceSubmission struct {
	OfferID     int64
	Borrower    string
	InterestWei *big.Int
	Insured     bool
	Insurer     string
}

// AcceptanceResult is the outcome of a pooled acceptance transaction. LoanID
// is the ledger-assigned loan identity.
type AcceptanceResult struct {
	TxHash string
	LoanID string
}

// LedgerGateway signs and submits ledger transactions and performs read-only
// ledger queries. All writes go through a single process-wide signing
// identity; the implementation serializes sequence-counter acquisition across
// concurrent requests. Write methods return once the transaction is accepted
// into the transaction pool, not once it is mined; a client-side timeout must
// never be interpreted as transaction failure.
type LedgerGateway interface {
	// ReadOfferPrincipal returns the live minor-unit principal of an offer.
	// A value <= 0 means the offer is not acceptable.
	ReadOfferPrincipal(ctx context.Context, offerID int64) (*big.Int, error)
	SubmitOffer(ctx context.Context, sub OfferSubmission) (*OfferResult, error)
	SubmitAcceptance(ctx context.Context, sub AcceptanceSubmission) (*AcceptanceResult, error)
	SubmitDefault(ctx context.Context, loanID string) (string, error)
	IsBorrowerFlagged(ctx context.Context, wallet string) (bool, error)
	Balance(ctx context.Context, wallet string) (*big.Int, error)
}
