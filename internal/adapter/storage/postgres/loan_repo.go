package postgres

import (
	"context"
	"errors"
	"fmt"

	"credloom-coordinator/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LoanRepo implements ports.LoanRepository.
type LoanRepo struct {
	pool Pool
}

// NewLoanRepo creates a new LoanRepo.
func NewLoanRepo(pool Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

const loanColumns = `id, loan_id, borrower_wallet, lender_wallet, insurer_wallet, principal, interest_amount, insurance_amount, apr_bps, insurance_bps, duration_days, status, start_ts, due_ts, tx_create_hash, selected_option_id, created_at, updated_at`

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	l := &domain.Loan{}
	err := row.Scan(
		&l.ID, &l.LoanID, &l.BorrowerWallet, &l.LenderWallet, &l.InsurerWallet,
		&l.Principal, &l.InterestAmount, &l.InsuranceAmount, &l.AprBps, &l.InsuranceBps,
		&l.DurationDays, &l.Status, &l.StartTs, &l.DueTs, &l.TxCreateHash,
		&l.SelectedOptionID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Create inserts a loan row, typically a provisional selected reservation.
func (r *LoanRepo) Create(ctx context.Context, l *domain.Loan) error {
	query := `INSERT INTO loans (id, loan_id, borrower_wallet, lender_wallet, insurer_wallet, principal, interest_amount, insurance_amount, apr_bps, insurance_bps, duration_days, status, start_ts, due_ts, tx_create_hash, selected_option_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.LoanID, l.BorrowerWallet, l.LenderWallet, l.InsurerWallet,
		l.Principal, l.InterestAmount, l.InsuranceAmount, l.AprBps, l.InsuranceBps,
		l.DurationDays, l.Status, l.StartTs, l.DueTs, l.TxCreateHash,
		l.SelectedOptionID, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert loan: %w", err)
	}
	return nil
}

// GetByID fetches a loan by its row id.
func (r *LoanRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	l, err := scanLoan(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get loan by id: %w", err)
	}
	return l, nil
}

// GetSelection resolves the acceptance idempotency key: the most recent row
// for this borrower and originating offer, whatever its status.
func (r *LoanRepo) GetSelection(ctx context.Context, borrowerWallet string, optionID uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
		WHERE borrower_wallet = $1 AND selected_option_id = $2
		ORDER BY created_at DESC LIMIT 1`

	l, err := scanLoan(r.pool.QueryRow(ctx, query, borrowerWallet, optionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get loan selection: %w", err)
	}
	return l, nil
}

// UpdateReservation rewrites the negotiable terms on a provisional row. Only
// rows still in the selected state may be refreshed; a row that has advanced
// past reservation is left untouched.
func (r *LoanRepo) UpdateReservation(ctx context.Context, l *domain.Loan) error {
	query := `UPDATE loans SET insurer_wallet = $1, principal = $2, interest_amount = $3, insurance_amount = $4, apr_bps = $5, insurance_bps = $6, duration_days = $7, updated_at = NOW()
		WHERE id = $8 AND status = $9`

	tag, err := r.pool.Exec(ctx, query,
		l.InsurerWallet, l.Principal, l.InterestAmount, l.InsuranceAmount,
		l.AprBps, l.InsuranceBps, l.DurationDays, l.ID, domain.LoanStatusSelected,
	)
	if err != nil {
		return fmt.Errorf("update loan reservation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan reservation not found: %s", l.ID)
	}
	return nil
}

// SetLedgerResult records the ledger-assigned loan id and tx hash on a
// provisional row right after broadcast. Kept as a separate single-statement
// write so a crash before full persistence still leaves a reconcilable row.
func (r *LoanRepo) SetLedgerResult(ctx context.Context, id uuid.UUID, loanID, txHash string) error {
	query := `UPDATE loans SET loan_id = $1, tx_create_hash = $2, updated_at = NOW() WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, loanID, txHash, id)
	if err != nil {
		return fmt.Errorf("set ledger result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan row not found: %s", id)
	}
	return nil
}

// Promote rewrites a provisional row with the final terms and status=active,
// within the finalizer's transaction.
func (r *LoanRepo) Promote(ctx context.Context, tx pgx.Tx, l *domain.Loan) error {
	query := `UPDATE loans SET loan_id = $1, insurer_wallet = $2, principal = $3, interest_amount = $4, insurance_amount = $5, apr_bps = $6, insurance_bps = $7, duration_days = $8, status = $9, start_ts = $10, due_ts = $11, tx_create_hash = $12, updated_at = NOW()
		WHERE id = $13`

	tag, err := tx.Exec(ctx, query,
		l.LoanID, l.InsurerWallet, l.Principal, l.InterestAmount, l.InsuranceAmount,
		l.AprBps, l.InsuranceBps, l.DurationDays, l.Status, l.StartTs, l.DueTs,
		l.TxCreateHash, l.ID,
	)
	if err != nil {
		return fmt.Errorf("promote loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan row not found: %s", l.ID)
	}
	return nil
}

// ListStranded returns rows that hold a tx hash but were never promoted past
// the provisional state. These are the reconciler's work queue.
func (r *LoanRepo) ListStranded(ctx context.Context) ([]domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE tx_create_hash IS NOT NULL AND status = $1`

	rows, err := r.pool.Query(ctx, query, domain.LoanStatusSelected)
	if err != nil {
		return nil, fmt.Errorf("list stranded loans: %w", err)
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		l := &domain.Loan{}
		if err := rows.Scan(
			&l.ID, &l.LoanID, &l.BorrowerWallet, &l.LenderWallet, &l.InsurerWallet,
			&l.Principal, &l.InterestAmount, &l.InsuranceAmount, &l.AprBps, &l.InsuranceBps,
			&l.DurationDays, &l.Status, &l.StartTs, &l.DueTs, &l.TxCreateHash,
			&l.SelectedOptionID, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan stranded loan: %w", err)
		}
		loans = append(loans, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stranded loans: %w", err)
	}
	return loans, nil
}

// UpdateStatus updates a loan's status by its ledger-assigned id, used for
// the externally triggered defaulted transition.
func (r *LoanRepo) UpdateStatus(ctx context.Context, loanID string, status domain.LoanStatus) error {
	query := `UPDATE loans SET status = $1, updated_at = NOW() WHERE loan_id = $2`

	if _, err := r.pool.Exec(ctx, query, status, loanID); err != nil {
		return fmt.Errorf("update loan status: %w", err)
	}
	return nil
}
