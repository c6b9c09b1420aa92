package ports

import (
	"context"

	"credloom-coordinator/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OfferRepository defines persistence operations for marketplace offers.
// Methods accepting pgx.Tx run inside the finalizer's transaction block.
type OfferRepository interface {
	Create(ctx context.Context, offer *domain.Offer) error
	ListActive(ctx context.Context) ([]domain.Offer, error)
	// GetByChainOfferID returns nil, nil when no row exists.
	GetByChainOfferID(ctx context.Context, chainOfferID int64) (*domain.Offer, error)
	// GetByID fetches an offer by its row id. Returns nil, nil on miss.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error)
	// Deactivate is idempotent: deactivating an already-inactive offer is a
	// no-op success, because the finalizer may retry this step after a crash.
	Deactivate(ctx context.Context, tx pgx.Tx, chainOfferID int64) error
	// ForceDeactivate is the out-of-transaction variant used by reconciliation.
	ForceDeactivate(ctx context.Context, chainOfferID int64) error
}

// LoanRepository defines persistence operations for loan records.
type LoanRepository interface {
	Create(ctx context.Context, loan *domain.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)
	// GetSelection resolves the acceptance idempotency key: the row (any
	// status) for this borrower and originating offer. Returns nil, nil on miss.
	GetSelection(ctx context.Context, borrowerWallet string, optionID uuid.UUID) (*domain.Loan, error)
	// UpdateReservation rewrites the terms on a still-provisional row before
	// the acceptance goes to the ledger, so a retry at a different rate never
	// leaves stale terms behind for promotion or reconciliation.
	UpdateReservation(ctx context.Context, loan *domain.Loan) error
	// SetLedgerResult records the ledger-assigned identity on a provisional
	// row immediately after broadcast, so a crashed finalization is findable.
	SetLedgerResult(ctx context.Context, id uuid.UUID, loanID, txHash string) error
	// Promote rewrites a provisional row with final terms and status=active.
	Promote(ctx context.Context, tx pgx.Tx, loan *domain.Loan) error
	// ListStranded returns rows holding a tx hash but still status=selected.
	ListStranded(ctx context.Context) ([]domain.Loan, error)
	UpdateStatus(ctx context.Context, loanID string, status domain.LoanStatus) error
}

// ProfileRepository defines persistence for borrower statistics.
type ProfileRepository interface {
	// GetByWallet returns nil, nil when no profile exists.
	GetByWallet(ctx context.Context, wallet string) (*domain.Profile, error)
	// ApplyLoanOutcome increments transaction count, previous-loan count and
	// cumulative volume with a single database-side atomic update. A missing
	// profile is a silent no-op: an absent off-ledger profile must never block
	// a completed ledger transaction.
	ApplyLoanOutcome(ctx context.Context, tx pgx.Tx, wallet string, principal decimal.Decimal) error
}

// UserRepository defines persistence operations for registered users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByWallet(ctx context.Context, wallet string) (*domain.User, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
