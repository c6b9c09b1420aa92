package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"credloom-coordinator/internal/core/domain"
	"credloom-coordinator/internal/core/ports"

	"github.com/rs/zerolog"
)

// ReconcileServiceImpl repairs off-ledger state left behind by failures
// between a successful ledger submission and finalization. It only reads the
// ledger; it never submits transactions.
type ReconcileServiceImpl struct {
	offerRepo   ports.OfferRepository
	loanRepo    ports.LoanRepository
	profileRepo ports.ProfileRepository
	gateway     ports.LedgerGateway
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewReconcileService creates a new ReconcileServiceImpl.
func NewReconcileService(
	offerRepo ports.OfferRepository,
	loanRepo ports.LoanRepository,
	profileRepo ports.ProfileRepository,
	gateway ports.LedgerGateway,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		offerRepo:   offerRepo,
		loanRepo:    loanRepo,
		profileRepo: profileRepo,
		gateway:     gateway,
		transactor:  transactor,
		log:         log,
	}
}

// Run performs one reconciliation pass: promote stranded selections that
// already hold a ledger identity, then retire listed offers the ledger
// reports as consumed. Individual failures are logged and skipped so one bad
// row cannot stall the pass.
func (s *ReconcileServiceImpl) Run(ctx context.Context) (*ports.ReconcileReport, error) {
	report := &ports.ReconcileReport{}

	stranded, err := s.loanRepo.ListStranded(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stranded selections: %w", err)
	}
	for i := range stranded {
		loan := &stranded[i]
		if err := s.promoteStranded(ctx, loan); err != nil {
			s.log.Error().Err(err).Str("selection", loan.ID.String()).Msg("stranded selection not promoted")
			continue
		}
		report.PromotedLoans++
	}

	offers, err := s.offerRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active offers: %w", err)
	}
	for i := range offers {
		offer := &offers[i]
		consumed, err := s.offerConsumed(ctx, offer.ChainOfferID)
		if err != nil {
			s.log.Warn().Err(err).Int64("offer_id", offer.ChainOfferID).Msg("offer liveness check failed")
			continue
		}
		if !consumed {
			continue
		}
		if err := s.offerRepo.ForceDeactivate(ctx, offer.ChainOfferID); err != nil {
			s.log.Error().Err(err).Int64("offer_id", offer.ChainOfferID).Msg("consumed offer not deactivated")
			continue
		}
		report.DeactivatedOffers++
	}

	if report.PromotedLoans > 0 || report.DeactivatedOffers > 0 {
		s.log.Info().
			Int("promoted_loans", report.PromotedLoans).
			Int("deactivated_offers", report.DeactivatedOffers).
			Msg("reconciliation pass repaired off-ledger state")
	}
	return report, nil
}

// promoteStranded completes the finalization a crashed acceptance never
// reached. The terms were fixed at reservation time; only the lifecycle
// timestamps are assigned here.
func (s *ReconcileServiceImpl) promoteStranded(ctx context.Context, loan *domain.Loan) error {
	offer, err := s.offerRepo.GetByID(ctx, loan.SelectedOptionID)
	if err != nil {
		return fmt.Errorf("resolving originating offer: %w", err)
	}
	if offer == nil {
		return fmt.Errorf("originating offer %s missing", loan.SelectedOptionID)
	}

	now := time.Now().UTC()
	due := now.AddDate(0, 0, loan.DurationDays)
	loan.Status = domain.LoanStatusActive
	loan.StartTs = &now
	loan.DueTs = &due
	loan.UpdatedAt = now

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := s.loanRepo.Promote(ctx, tx, loan); err != nil {
		return err
	}
	if err := s.profileRepo.ApplyLoanOutcome(ctx, tx, loan.BorrowerWallet, loan.Principal); err != nil {
		return err
	}
	if err := s.offerRepo.Deactivate(ctx, tx, offer.ChainOfferID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// offerConsumed reports whether the ledger no longer holds principal for the
// offer, meaning the listing should be retired.
func (s *ReconcileServiceImpl) offerConsumed(ctx context.Context, chainOfferID int64) (bool, error) {
	principal, err := s.gateway.ReadOfferPrincipal(ctx, chainOfferID)
	if err != nil {
		if errors.Is(err, ports.ErrOfferNotOnLedger) {
			return true, nil
		}
		return false, err
	}
	return principal.Sign() <= 0, nil
}
