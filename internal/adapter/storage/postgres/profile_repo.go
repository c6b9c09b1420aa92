package postgres

import (
	"context"
	"errors"
	"fmt"

	"credloom-coordinator/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ProfileRepo implements ports.ProfileRepository.
type ProfileRepo struct {
	pool Pool
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(pool Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// GetByWallet fetches a borrower profile. Returns nil, nil on miss.
func (r *ProfileRepo) GetByWallet(ctx context.Context, wallet string) (*domain.Profile, error) {
	query := `SELECT wallet, total_transactions, num_previous_loans, total_previous_loans_eth, updated_at
		FROM profiles WHERE wallet = $1`

	p := &domain.Profile{}
	err := r.pool.QueryRow(ctx, query, wallet).Scan(
		&p.Wallet, &p.TotalTransactions, &p.NumPreviousLoans,
		&p.TotalPreviousLoansEth, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by wallet: %w", err)
	}
	return p, nil
}

// ApplyLoanOutcome bumps the borrower's running statistics with one atomic
// database-side update. Concurrent finalizations for the same borrower
// commute; no increment is lost. A missing profile is a silent no-op — an
// absent off-ledger profile never blocks a completed ledger transaction.
func (r *ProfileRepo) ApplyLoanOutcome(ctx context.Context, tx pgx.Tx, wallet string, principal decimal.Decimal) error {
	query := `UPDATE profiles SET
		total_transactions = total_transactions + 1,
		num_previous_loans = num_previous_loans + 1,
		total_previous_loans_eth = total_previous_loans_eth + $1,
		updated_at = NOW()
		WHERE wallet = $2`

	if _, err := tx.Exec(ctx, query, principal, wallet); err != nil {
		return fmt.Errorf("apply loan outcome: %w", err)
	}
	return nil
}
