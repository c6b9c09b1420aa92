package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"credloom-coordinator/internal/core/domain"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/pkg/apperror"
	"credloom-coordinator/pkg/ethaddr"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// acceptanceCacheTTL bounds response replay from the cache layer. The
// selection row in the database backs the idempotency check indefinitely.
const acceptanceCacheTTL = 24 * time.Hour

// LoanServiceImpl coordinates loan origination: it reserves the acceptance
// off-ledger, submits it to the ledger, then finalizes the off-ledger record.
// The ledger outcome is authoritative; a store failure after a successful
// ledger submission is reported as success with PersistencePending set.
type LoanServiceImpl struct {
	offerRepo   ports.OfferRepository
	loanRepo    ports.LoanRepository
	profileRepo ports.ProfileRepository
	gateway     ports.LedgerGateway
	cache       ports.IdempotencyCache
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLoanService creates the loan origination coordinator.
func NewLoanService(
	offerRepo ports.OfferRepository,
	loanRepo ports.LoanRepository,
	profileRepo ports.ProfileRepository,
	gateway ports.LedgerGateway,
	cache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LoanServiceImpl {
	return &LoanServiceImpl{
		offerRepo:   offerRepo,
		loanRepo:    loanRepo,
		profileRepo: profileRepo,
		gateway:     gateway,
		cache:       cache,
		transactor:  transactor,
		log:         log,
	}
}

// AcceptOffer runs one acceptance attempt end to end. Retries with the same
// (offer, borrower) pair replay the recorded outcome instead of resubmitting.
func (s *LoanServiceImpl) AcceptOffer(ctx context.Context, req ports.AcceptOfferRequest) (*ports.AcceptOfferResult, error) {
	borrower, err := ethaddr.Normalize(req.Borrower)
	if err != nil {
		return nil, apperror.ErrInvalidAddress(req.Borrower)
	}

	var insurer *string
	if req.Insured {
		norm, err := ethaddr.Normalize(req.Insurer)
		if err != nil {
			return nil, apperror.ErrInvalidAddress(req.Insurer)
		}
		insurer = &norm
	}

	// Fast path: a finalized response cached for this acceptance key.
	key := domain.AcceptanceKey(req.ChainOfferID, borrower)
	if cached, err := s.cache.Get(ctx, key); err == nil && cached != nil {
		var result ports.AcceptOfferResult
		if err := json.Unmarshal(cached, &result); err == nil {
			s.log.Debug().Str("key", key).Msg("acceptance replayed from cache")
			return &result, nil
		}
	}

	offer, err := s.offerRepo.GetByChainOfferID(ctx, req.ChainOfferID)
	if err != nil {
		return nil, apperror.ErrStoreFailure(err)
	}
	if offer == nil {
		return nil, apperror.ErrOfferNotFound()
	}
	if !offer.Active {
		return nil, apperror.ErrOfferInactive()
	}

	// Durable idempotency check: an existing selection row for this key.
	existing, err := s.loanRepo.GetSelection(ctx, borrower, offer.ID)
	if err != nil {
		return nil, apperror.ErrStoreFailure(err)
	}
	if existing != nil {
		if existing.IsFinalized() {
			return resultFromLoan(existing), nil
		}
		// A reservation that already carries a ledger identity was broadcast;
		// submitting again would double-accept on the ledger. Reconciliation
		// finishes the promotion, so hand back the recorded outcome.
		if existing.TxCreateHash != nil {
			result := resultFromLoan(existing)
			result.PersistencePending = true
			return result, nil
		}
	}

	// The ledger is the principal authority. Client-side amounts are never
	// trusted for term computation.
	principalWei, err := s.gateway.ReadOfferPrincipal(ctx, req.ChainOfferID)
	if err != nil {
		if errors.Is(err, ports.ErrOfferNotOnLedger) {
			return nil, apperror.ErrOfferNotFound()
		}
		return nil, apperror.ErrChainUnavailable(err)
	}
	if principalWei.Sign() <= 0 {
		return nil, apperror.ErrOfferInactive()
	}
	principal := domain.EthFromWei(decimal.NewFromBigInt(principalWei, 0))

	terms, err := domain.ComputeTerms(principal, req.Rate, req.Insured)
	if err != nil {
		return nil, apperror.ErrInvalidRate()
	}

	// Reserve the acceptance before touching the ledger so a crash between
	// broadcast and finalization leaves a row the reconciler can repair.
	loan := existing
	if loan == nil {
		now := time.Now().UTC()
		loan = &domain.Loan{
			ID:               uuid.New(),
			BorrowerWallet:   borrower,
			LenderWallet:     offer.LenderWallet,
			InsurerWallet:    insurer,
			Principal:        principal,
			InterestAmount:   terms.InterestAmount,
			InsuranceAmount:  terms.InsuranceAmount,
			AprBps:           terms.AprBps,
			InsuranceBps:     terms.InsuranceBps,
			DurationDays:     offer.DurationDays,
			Status:           domain.LoanStatusSelected,
			SelectedOptionID: offer.ID,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.loanRepo.Create(ctx, loan); err != nil {
			return nil, apperror.ErrStoreFailure(err)
		}
	} else {
		// A leftover reservation may hold terms from an earlier attempt at a
		// different rate. Refresh it so the stored row matches what is about
		// to go on the ledger, including what the reconciler would promote.
		loan.InsurerWallet = insurer
		loan.Principal = principal
		loan.InterestAmount = terms.InterestAmount
		loan.InsuranceAmount = terms.InsuranceAmount
		loan.AprBps = terms.AprBps
		loan.InsuranceBps = terms.InsuranceBps
		loan.DurationDays = offer.DurationDays
		loan.UpdatedAt = time.Now().UTC()
		if err := s.loanRepo.UpdateReservation(ctx, loan); err != nil {
			return nil, apperror.ErrStoreFailure(err)
		}
	}

	var insurerAddr string
	if insurer != nil {
		insurerAddr = *insurer
	}
	ledgerRes, err := s.gateway.SubmitAcceptance(ctx, ports.AcceptanceSubmission{
		OfferID:     req.ChainOfferID,
		Borrower:    borrower,
		InterestWei: domain.WeiFromEth(terms.InterestAmount).BigInt(),
		Insured:     req.Insured,
		Insurer:     insurerAddr,
	})
	if err != nil {
		return nil, mapLedgerError(err)
	}

	result := &ports.AcceptOfferResult{
		TxHash:         ledgerRes.TxHash,
		LoanID:         ledgerRes.LoanID,
		InterestAmount: terms.InterestAmount,
	}

	// Record the ledger identity on the reservation first. Even if full
	// finalization fails below, the row is no longer anonymous.
	if err := s.loanRepo.SetLedgerResult(ctx, loan.ID, ledgerRes.LoanID, ledgerRes.TxHash); err != nil {
		s.log.Error().Err(err).
			Str("loan_id", ledgerRes.LoanID).
			Str("tx_hash", ledgerRes.TxHash).
			Msg("ledger result not recorded; reconciliation required")
		result.PersistencePending = true
		return result, nil
	}

	if err := s.finalize(ctx, loan, offer, ledgerRes); err != nil {
		s.log.Error().Err(err).
			Str("loan_id", ledgerRes.LoanID).
			Str("tx_hash", ledgerRes.TxHash).
			Msg("acceptance finalization failed; reconciliation required")
		result.PersistencePending = true
		return result, nil
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, payload, acceptanceCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("acceptance cache write failed")
		}
	}

	s.log.Info().
		Str("loan_id", ledgerRes.LoanID).
		Str("tx_hash", ledgerRes.TxHash).
		Int64("offer_id", req.ChainOfferID).
		Str("borrower", borrower).
		Msg("loan originated")

	return result, nil
}

// finalize promotes the reservation, updates borrower statistics and retires
// the offer in a single transaction.
func (s *LoanServiceImpl) finalize(ctx context.Context, loan *domain.Loan, offer *domain.Offer, res *ports.AcceptanceResult) error {
	now := time.Now().UTC()
	due := now.AddDate(0, 0, loan.DurationDays)

	loan.LoanID = &res.LoanID
	loan.TxCreateHash = &res.TxHash
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

// TriggerDefault marks a loan defaulted on the ledger, then mirrors the
// status off-ledger. The off-ledger write is best effort.
func (s *LoanServiceImpl) TriggerDefault(ctx context.Context, loanID string) (string, error) {
	txHash, err := s.gateway.SubmitDefault(ctx, loanID)
	if err != nil {
		if errors.Is(err, ports.ErrOfferNotOnLedger) {
			return "", apperror.ErrLoanNotFound()
		}
		return "", mapLedgerError(err)
	}

	if err := s.loanRepo.UpdateStatus(ctx, loanID, domain.LoanStatusDefaulted); err != nil {
		s.log.Error().Err(err).Str("loan_id", loanID).Msg("default status not mirrored off-ledger")
	}

	s.log.Info().Str("loan_id", loanID).Str("tx_hash", txHash).Msg("loan marked defaulted")
	return txHash, nil
}

func resultFromLoan(l *domain.Loan) *ports.AcceptOfferResult {
	res := &ports.AcceptOfferResult{InterestAmount: l.InterestAmount}
	if l.LoanID != nil {
		res.LoanID = *l.LoanID
	}
	if l.TxCreateHash != nil {
		res.TxHash = *l.TxCreateHash
	}
	return res
}

// mapLedgerError translates gateway sentinels into client-facing errors.
func mapLedgerError(err error) error {
	switch {
	case errors.Is(err, ports.ErrOfferNotOnLedger):
		return apperror.ErrOfferInactive()
	case errors.Is(err, ports.ErrNonceConflict):
		return apperror.ErrNonceConflict(err)
	case errors.Is(err, ports.ErrSigningFailed):
		return apperror.ErrSigningFailure(err)
	default:
		return apperror.ErrChainUnavailable(err)
	}
}
