package service

import (
	"context"
	"time"

	"credloom-coordinator/internal/core/domain"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/pkg/apperror"
	"credloom-coordinator/pkg/ethaddr"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OfferServiceImpl manages marketplace offers. Registration is ledger-first:
// the listing row is written only after the ledger assigns the offer id.
type OfferServiceImpl struct {
	offerRepo ports.OfferRepository
	gateway   ports.LedgerGateway
	log       zerolog.Logger
}

// NewOfferService creates a new OfferServiceImpl.
func NewOfferService(offerRepo ports.OfferRepository, gateway ports.LedgerGateway, log zerolog.Logger) *OfferServiceImpl {
	return &OfferServiceImpl{offerRepo: offerRepo, gateway: gateway, log: log}
}

// CreateOffer registers a lender offer on the ledger and lists it off-ledger.
func (s *OfferServiceImpl) CreateOffer(ctx context.Context, req ports.CreateOfferRequest) (*ports.CreateOfferResult, error) {
	lender, err := ethaddr.Normalize(req.Lender)
	if err != nil {
		return nil, apperror.ErrInvalidAddress(req.Lender)
	}
	if req.AmountEth.LessThanOrEqual(decimal.Zero) {
		return nil, apperror.ErrInvalidAmount()
	}

	ledgerRes, err := s.gateway.SubmitOffer(ctx, ports.OfferSubmission{
		Lender:       lender,
		AmountWei:    domain.WeiFromEth(req.AmountEth).BigInt(),
		DurationDays: req.DurationDays,
		MinScore:     req.MinScore,
	})
	if err != nil {
		return nil, mapLedgerError(err)
	}

	result := &ports.CreateOfferResult{
		TxHash:       ledgerRes.TxHash,
		ChainOfferID: ledgerRes.OfferID,
	}

	now := time.Now().UTC()
	offer := &domain.Offer{
		ID:              uuid.New(),
		ChainOfferID:    ledgerRes.OfferID,
		LenderWallet:    lender,
		AmountAvailable: req.AmountEth,
		DurationDays:    req.DurationDays,
		MinScore:        req.MinScore,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.offerRepo.Create(ctx, offer); err != nil {
		s.log.Error().Err(err).
			Int64("offer_id", ledgerRes.OfferID).
			Str("tx_hash", ledgerRes.TxHash).
			Msg("offer listing not persisted; reconciliation required")
		result.PersistencePending = true
		return result, nil
	}

	s.log.Info().
		Int64("offer_id", ledgerRes.OfferID).
		Str("lender", lender).
		Str("amount_eth", req.AmountEth.String()).
		Msg("offer listed")

	return result, nil
}

// ListActiveOffers returns all offers still open on the marketplace.
func (s *OfferServiceImpl) ListActiveOffers(ctx context.Context) ([]domain.Offer, error) {
	offers, err := s.offerRepo.ListActive(ctx)
	if err != nil {
		return nil, apperror.ErrStoreFailure(err)
	}
	return offers, nil
}
