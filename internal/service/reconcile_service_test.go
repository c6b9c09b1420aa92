package service

import (
	"context"
	"math/big"
	"testing"

	"credloom-coordinator/internal/core/domain"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type reconcileTestDeps struct {
	svc         *ReconcileServiceImpl
	offerRepo   *mocks.MockOfferRepository
	loanRepo    *mocks.MockLoanRepository
	profileRepo *mocks.MockProfileRepository
	gateway     *mocks.MockLedgerGateway
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupReconcileService(t *testing.T) *reconcileTestDeps {
	ctrl := gomock.NewController(t)
	d := &reconcileTestDeps{
		offerRepo:   mocks.NewMockOfferRepository(ctrl),
		loanRepo:    mocks.NewMockLoanRepository(ctrl),
		profileRepo: mocks.NewMockProfileRepository(ctrl),
		gateway:     mocks.NewMockLedgerGateway(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewReconcileService(
		d.offerRepo, d.loanRepo, d.profileRepo,
		d.gateway, d.transactor, zerolog.Nop(),
	)
	return d
}

func strandedLoan(optionID uuid.UUID) domain.Loan {
	loanID := "8"
	txHash := "0xstranded"
	return domain.Loan{
		ID:               uuid.New(),
		LoanID:           &loanID,
		TxCreateHash:     &txHash,
		BorrowerWallet:   testBorrower,
		LenderWallet:     testLender,
		Principal:        decimal.NewFromInt(10),
		InterestAmount:   decimal.NewFromInt(1),
		AprBps:           1000,
		DurationDays:     30,
		Status:           domain.LoanStatusSelected,
		SelectedOptionID: optionID,
	}
}

func TestReconcileService_PromotesStrandedSelection(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()
	tx := &mockTx{}

	d.loanRepo.EXPECT().ListStranded(ctx).Return([]domain.Loan{strandedLoan(offer.ID)}, nil)
	d.offerRepo.EXPECT().GetByID(ctx, offer.ID).Return(offer, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.loanRepo.EXPECT().Promote(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, l *domain.Loan) error {
			assert.Equal(t, domain.LoanStatusActive, l.Status)
			require.NotNil(t, l.StartTs)
			require.NotNil(t, l.DueTs)
			return nil
		})
	d.profileRepo.EXPECT().ApplyLoanOutcome(ctx, tx, testBorrower, gomock.Any()).Return(nil)
	d.offerRepo.EXPECT().Deactivate(ctx, tx, int64(7)).Return(nil)
	d.offerRepo.EXPECT().ListActive(ctx).Return(nil, nil)

	report, err := d.svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PromotedLoans)
	assert.Equal(t, 0, report.DeactivatedOffers)
}

func TestReconcileService_DeactivatesConsumedOffers(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	consumed := *newTestOffer()
	live := *newTestOffer()
	live.ID = uuid.New()
	live.ChainOfferID = 8

	d.loanRepo.EXPECT().ListStranded(ctx).Return(nil, nil)
	d.offerRepo.EXPECT().ListActive(ctx).Return([]domain.Offer{consumed, live}, nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(7)).Return(big.NewInt(0), nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(8)).Return(tenEthWei(), nil)
	d.offerRepo.EXPECT().ForceDeactivate(ctx, int64(7)).Return(nil)

	report, err := d.svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DeactivatedOffers)
}

func TestReconcileService_TreatsMissingLedgerOfferAsConsumed(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := *newTestOffer()

	d.loanRepo.EXPECT().ListStranded(ctx).Return(nil, nil)
	d.offerRepo.EXPECT().ListActive(ctx).Return([]domain.Offer{offer}, nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(7)).Return(nil, ports.ErrOfferNotOnLedger)
	d.offerRepo.EXPECT().ForceDeactivate(ctx, int64(7)).Return(nil)

	report, err := d.svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.DeactivatedOffers)
}

func TestReconcileService_SkipsOfferOnLedgerError(t *testing.T) {
	d := setupReconcileService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := *newTestOffer()

	d.loanRepo.EXPECT().ListStranded(ctx).Return(nil, nil)
	d.offerRepo.EXPECT().ListActive(ctx).Return([]domain.Offer{offer}, nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(7)).Return(nil, ports.ErrChainUnavailable)

	report, err := d.svc.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, report.DeactivatedOffers)
}
