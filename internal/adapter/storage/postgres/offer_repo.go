package postgres

import (
	"context"
	"errors"
	"fmt"

	"credloom-coordinator/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OfferRepo implements ports.OfferRepository over the lender_loan_options table.
type OfferRepo struct {
	pool Pool
}

// NewOfferRepo creates a new OfferRepo.
func NewOfferRepo(pool Pool) *OfferRepo {
	return &OfferRepo{pool: pool}
}

const offerColumns = `id, chain_offer_id, lender_wallet, amount_available, duration_days, min_score, active, created_at, updated_at`

// Create inserts a new offer listing.
func (r *OfferRepo) Create(ctx context.Context, o *domain.Offer) error {
	query := `INSERT INTO lender_loan_options (id, chain_offer_id, lender_wallet, amount_available, duration_days, min_score, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		o.ID, o.ChainOfferID, o.LenderWallet, o.AmountAvailable,
		o.DurationDays, o.MinScore, o.Active, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

// ListActive returns all offers still listed on the marketplace.
func (r *OfferRepo) ListActive(ctx context.Context) ([]domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM lender_loan_options WHERE active = TRUE ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active offers: %w", err)
	}
	defer rows.Close()

	var offers []domain.Offer
	for rows.Next() {
		var o domain.Offer
		if err := rows.Scan(
			&o.ID, &o.ChainOfferID, &o.LenderWallet, &o.AmountAvailable,
			&o.DurationDays, &o.MinScore, &o.Active, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offers: %w", err)
	}
	return offers, nil
}

// GetByID fetches an offer by its row id.
func (r *OfferRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM lender_loan_options WHERE id = $1`

	o := &domain.Offer{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.ChainOfferID, &o.LenderWallet, &o.AmountAvailable,
		&o.DurationDays, &o.MinScore, &o.Active, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer by id: %w", err)
	}
	return o, nil
}

// GetByChainOfferID fetches an offer by its ledger-assigned id.
func (r *OfferRepo) GetByChainOfferID(ctx context.Context, chainOfferID int64) (*domain.Offer, error) {
	query := `SELECT ` + offerColumns + ` FROM lender_loan_options WHERE chain_offer_id = $1`

	o := &domain.Offer{}
	err := r.pool.QueryRow(ctx, query, chainOfferID).Scan(
		&o.ID, &o.ChainOfferID, &o.LenderWallet, &o.AmountAvailable,
		&o.DurationDays, &o.MinScore, &o.Active, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get offer by chain id: %w", err)
	}
	return o, nil
}

// Deactivate clears the active flag within a transaction. Deactivating an
// already-inactive offer is a no-op success, so the finalizer may retry.
func (r *OfferRepo) Deactivate(ctx context.Context, tx pgx.Tx, chainOfferID int64) error {
	query := `UPDATE lender_loan_options SET active = FALSE, updated_at = NOW() WHERE chain_offer_id = $1`

	if _, err := tx.Exec(ctx, query, chainOfferID); err != nil {
		return fmt.Errorf("deactivate offer: %w", err)
	}
	return nil
}

// ForceDeactivate clears the active flag outside any transaction, for
// reconciliation of offers the ledger reports as consumed.
func (r *OfferRepo) ForceDeactivate(ctx context.Context, chainOfferID int64) error {
	query := `UPDATE lender_loan_options SET active = FALSE, updated_at = NOW() WHERE chain_offer_id = $1`

	if _, err := r.pool.Exec(ctx, query, chainOfferID); err != nil {
		return fmt.Errorf("force deactivate offer: %w", err)
	}
	return nil
}
