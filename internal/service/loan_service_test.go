package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"credloom-coordinator/internal/core/domain"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/internal/core/ports/mocks"
	"credloom-coordinator/pkg/apperror"
	"credloom-coordinator/pkg/ethaddr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	testBorrower = ethaddr.MustNormalize("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")
	testLender   = ethaddr.MustNormalize("0xfb6916095ca1df60bb79ce92ce3ea74c37c5d359")
	testInsurer  = ethaddr.MustNormalize("0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb")
)

type loanTestDeps struct {
	svc         *LoanServiceImpl
	offerRepo   *mocks.MockOfferRepository
	loanRepo    *mocks.MockLoanRepository
	profileRepo *mocks.MockProfileRepository
	gateway     *mocks.MockLedgerGateway
	cache       *mocks.MockIdempotencyCache
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupLoanService(t *testing.T) *loanTestDeps {
	ctrl := gomock.NewController(t)
	d := &loanTestDeps{
		offerRepo:   mocks.NewMockOfferRepository(ctrl),
		loanRepo:    mocks.NewMockLoanRepository(ctrl),
		profileRepo: mocks.NewMockProfileRepository(ctrl),
		gateway:     mocks.NewMockLedgerGateway(ctrl),
		cache:       mocks.NewMockIdempotencyCache(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewLoanService(
		d.offerRepo, d.loanRepo, d.profileRepo,
		d.gateway, d.cache, d.transactor, zerolog.Nop(),
	)
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

func newTestOffer() *domain.Offer {
	return &domain.Offer{
		ID:              uuid.New(),
		ChainOfferID:    7,
		LenderWallet:    testLender,
		AmountAvailable: decimal.NewFromInt(10),
		DurationDays:    30,
		MinScore:        600,
		Active:          true,
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
}

func tenEthWei() *big.Int {
	wei, _ := new(big.Int).SetString("10000000000000000000", 10)
	return wei
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func TestLoanService_AcceptOffer_Success(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()
	tx := &mockTx{}
	key := domain.AcceptanceKey(7, testBorrower)

	req := ports.AcceptOfferRequest{
		ChainOfferID: 7,
		// Lowercase input must be canonicalized before any lookup.
		Borrower: "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed",
		Rate:     decimal.NewFromInt(10),
	}

	d.cache.EXPECT().Get(ctx, key).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(7)).Return(offer, nil)
	d.loanRepo.EXPECT().GetSelection(ctx, testBorrower, offer.ID).Return(nil, nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(7)).Return(tenEthWei(), nil)

	var reserved *domain.Loan
	d.loanRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, l *domain.Loan) error {
			reserved = l
			assert.Equal(t, domain.LoanStatusSelected, l.Status)
			assert.Equal(t, testBorrower, l.BorrowerWallet)
			assert.Equal(t, testLender, l.LenderWallet)
			assert.True(t, l.Principal.Equal(decimal.NewFromInt(10)))
			assert.Equal(t, int32(1000), l.AprBps)
			return nil
		})

	d.gateway.EXPECT().SubmitAcceptance(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, sub ports.AcceptanceSubmission) (*ports.AcceptanceResult, error) {
			assert.Equal(t, int64(7), sub.OfferID)
			assert.Equal(t, testBorrower, sub.Borrower)
			// 1 ETH interest in wei.
			assert.Equal(t, "1000000000000000000", sub.InterestWei.String())
			assert.False(t, sub.Insured)
			return &ports.AcceptanceResult{TxHash: "0xtx", LoanID: "3"}, nil
		})

	d.loanRepo.EXPECT().SetLedgerResult(ctx, gomock.Any(), "3", "0xtx").Return(nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.loanRepo.EXPECT().Promote(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, l *domain.Loan) error {
			assert.Equal(t, reserved.ID, l.ID)
			assert.Equal(t, domain.LoanStatusActive, l.Status)
			require.NotNil(t, l.DueTs)
			require.NotNil(t, l.StartTs)
			assert.Equal(t, l.StartTs.AddDate(0, 0, 30), *l.DueTs)
			return nil
		})
	d.profileRepo.EXPECT().ApplyLoanOutcome(ctx, tx, testBorrower, gomock.Any()).Return(nil)
	d.offerRepo.EXPECT().Deactivate(ctx, tx, int64(7)).Return(nil)
	d.cache.EXPECT().Set(ctx, key, gomock.Any(), acceptanceCacheTTL).Return(nil)

	result, err := d.svc.AcceptOffer(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "0xtx", result.TxHash)
	assert.Equal(t, "3", result.LoanID)
	assert.True(t, result.InterestAmount.Equal(decimal.NewFromInt(1)))
	assert.False(t, result.PersistencePending)
}

func TestLoanService_AcceptOffer_CacheReplay(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	key := domain.AcceptanceKey(7, testBorrower)

	cached, _ := json.Marshal(ports.AcceptOfferResult{
		TxHash: "0xold", LoanID: "2", InterestAmount: decimal.NewFromInt(1),
	})
	d.cache.EXPECT().Get(ctx, key).Return(cached, nil)

	result, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 7,
		Borrower:     testBorrower,
		Rate:         decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "0xold", result.TxHash)
	assert.Equal(t, "2", result.LoanID)
}

func TestLoanService_AcceptOffer_FinalizedRowReplay(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()
	loanID := "5"
	txHash := "0xdone"
	existing := &domain.Loan{
		ID:             uuid.New(),
		LoanID:         &loanID,
		TxCreateHash:   &txHash,
		Status:         domain.LoanStatusActive,
		InterestAmount: decimal.NewFromInt(1),
	}

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(7)).Return(offer, nil)
	d.loanRepo.EXPECT().GetSelection(ctx, testBorrower, offer.ID).Return(existing, nil)

	// No ledger submission may happen for a finalized selection.
	result, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 7,
		Borrower:     testBorrower,
		Rate:         decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "5", result.LoanID)
	assert.Equal(t, "0xdone", result.TxHash)
}

func TestLoanService_AcceptOffer_RetryRefreshesReservationTerms(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()
	tx := &mockTx{}

	// Reservation left over from an earlier attempt at 10%.
	existing := &domain.Loan{
		ID:               uuid.New(),
		BorrowerWallet:   testBorrower,
		LenderWallet:     testLender,
		Principal:        decimal.NewFromInt(10),
		InterestAmount:   decimal.NewFromInt(1),
		AprBps:           1000,
		DurationDays:     30,
		Status:           domain.LoanStatusSelected,
		SelectedOptionID: offer.ID,
	}

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(7)).Return(offer, nil)
	d.loanRepo.EXPECT().GetSelection(ctx, testBorrower, offer.ID).Return(existing, nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(7)).Return(tenEthWei(), nil)

	// The reservation must carry the retried rate before the broadcast.
	d.loanRepo.EXPECT().UpdateReservation(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, l *domain.Loan) error {
			assert.Equal(t, existing.ID, l.ID)
			assert.Equal(t, int32(800), l.AprBps)
			assert.True(t, l.InterestAmount.Equal(decimal.NewFromFloat(0.8)))
			return nil
		})

	d.gateway.EXPECT().SubmitAcceptance(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, sub ports.AcceptanceSubmission) (*ports.AcceptanceResult, error) {
			// 0.8 ETH interest in wei.
			assert.Equal(t, "800000000000000000", sub.InterestWei.String())
			return &ports.AcceptanceResult{TxHash: "0xtx", LoanID: "6"}, nil
		})
	d.loanRepo.EXPECT().SetLedgerResult(ctx, existing.ID, "6", "0xtx").Return(nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.loanRepo.EXPECT().Promote(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, l *domain.Loan) error {
			// Promotion must persist the submitted terms, not the stale ones.
			assert.Equal(t, int32(800), l.AprBps)
			assert.True(t, l.InterestAmount.Equal(decimal.NewFromFloat(0.8)))
			return nil
		})
	d.profileRepo.EXPECT().ApplyLoanOutcome(ctx, tx, testBorrower, gomock.Any()).Return(nil)
	d.offerRepo.EXPECT().Deactivate(ctx, tx, int64(7)).Return(nil)
	d.cache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), acceptanceCacheTTL).Return(nil)

	result, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 7,
		Borrower:     testBorrower,
		Rate:         decimal.NewFromInt(8),
	})
	require.NoError(t, err)
	assert.True(t, result.InterestAmount.Equal(decimal.NewFromFloat(0.8)))
}

func TestLoanService_AcceptOffer_BroadcastReservationNotResubmitted(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()
	loanID := "9"
	txHash := "0xfirst"

	// A selected row already holding a ledger identity: broadcast happened but
	// finalization never completed.
	existing := &domain.Loan{
		ID:               uuid.New(),
		LoanID:           &loanID,
		TxCreateHash:     &txHash,
		Status:           domain.LoanStatusSelected,
		InterestAmount:   decimal.NewFromInt(1),
		SelectedOptionID: offer.ID,
	}

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(7)).Return(offer, nil)
	d.loanRepo.EXPECT().GetSelection(ctx, testBorrower, offer.ID).Return(existing, nil)

	// No second broadcast and no overwrite of the recorded identity; the
	// reconciler owns the rest.
	result, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 7,
		Borrower:     testBorrower,
		Rate:         decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "9", result.LoanID)
	assert.Equal(t, "0xfirst", result.TxHash)
	assert.True(t, result.PersistencePending)
}

func TestLoanService_AcceptOffer_OfferNotFound(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(99)).Return(nil, nil)

	_, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 99, Borrower: testBorrower, Rate: decimal.NewFromInt(10),
	})
	assert.Equal(t, "OFR_001", appCode(t, err))
}

func TestLoanService_AcceptOffer_OfferInactive(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()
	offer.Active = false

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(7)).Return(offer, nil)

	_, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 7, Borrower: testBorrower, Rate: decimal.NewFromInt(10),
	})
	assert.Equal(t, "OFR_002", appCode(t, err))
}

func TestLoanService_AcceptOffer_ZeroLedgerPrincipal(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(7)).Return(offer, nil)
	d.loanRepo.EXPECT().GetSelection(ctx, testBorrower, offer.ID).Return(nil, nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(7)).Return(big.NewInt(0), nil)

	_, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 7, Borrower: testBorrower, Rate: decimal.NewFromInt(10),
	})
	assert.Equal(t, "OFR_002", appCode(t, err))
}

func TestLoanService_AcceptOffer_InvalidRate(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(7)).Return(offer, nil)
	d.loanRepo.EXPECT().GetSelection(ctx, testBorrower, offer.ID).Return(nil, nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(7)).Return(tenEthWei(), nil)

	_, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 7, Borrower: testBorrower, Rate: decimal.Zero,
	})
	assert.Equal(t, "VAL_003", appCode(t, err))
}

func TestLoanService_AcceptOffer_InvalidBorrower(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.AcceptOffer(context.Background(), ports.AcceptOfferRequest{
		ChainOfferID: 7, Borrower: "not-an-address", Rate: decimal.NewFromInt(10),
	})
	assert.Equal(t, "VAL_002", appCode(t, err))
}

func TestLoanService_AcceptOffer_NonceConflict(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(7)).Return(offer, nil)
	d.loanRepo.EXPECT().GetSelection(ctx, testBorrower, offer.ID).Return(nil, nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(7)).Return(tenEthWei(), nil)
	d.loanRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.gateway.EXPECT().SubmitAcceptance(ctx, gomock.Any()).
		Return(nil, ports.ErrNonceConflict)

	// No Promote, no profile update, no deactivation on a failed submission.
	_, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 7, Borrower: testBorrower, Rate: decimal.NewFromInt(10),
	})
	assert.Equal(t, "LED_003", appCode(t, err))
}

func TestLoanService_AcceptOffer_PersistencePendingOnPromoteFailure(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()
	tx := &mockTx{}

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(7)).Return(offer, nil)
	d.loanRepo.EXPECT().GetSelection(ctx, testBorrower, offer.ID).Return(nil, nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(7)).Return(tenEthWei(), nil)
	d.loanRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)
	d.gateway.EXPECT().SubmitAcceptance(ctx, gomock.Any()).
		Return(&ports.AcceptanceResult{TxHash: "0xtx", LoanID: "3"}, nil)
	d.loanRepo.EXPECT().SetLedgerResult(ctx, gomock.Any(), "3", "0xtx").Return(nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.loanRepo.EXPECT().Promote(ctx, tx, gomock.Any()).Return(errors.New("db down"))

	// The ledger outcome is authoritative: the caller still gets success.
	result, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 7, Borrower: testBorrower, Rate: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, "0xtx", result.TxHash)
	assert.Equal(t, "3", result.LoanID)
	assert.True(t, result.PersistencePending)
}

func TestLoanService_AcceptOffer_Insured(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	offer := newTestOffer()
	tx := &mockTx{}

	d.cache.EXPECT().Get(ctx, gomock.Any()).Return(nil, nil)
	d.offerRepo.EXPECT().GetByChainOfferID(ctx, int64(7)).Return(offer, nil)
	d.loanRepo.EXPECT().GetSelection(ctx, testBorrower, offer.ID).Return(nil, nil)
	d.gateway.EXPECT().ReadOfferPrincipal(ctx, int64(7)).Return(tenEthWei(), nil)
	d.loanRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, l *domain.Loan) error {
			require.NotNil(t, l.InsurerWallet)
			assert.Equal(t, testInsurer, *l.InsurerWallet)
			assert.Equal(t, int32(100), l.InsuranceBps)
			assert.True(t, l.InsuranceAmount.Equal(decimal.NewFromFloat(0.1)))
			return nil
		})
	d.gateway.EXPECT().SubmitAcceptance(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, sub ports.AcceptanceSubmission) (*ports.AcceptanceResult, error) {
			assert.True(t, sub.Insured)
			assert.Equal(t, testInsurer, sub.Insurer)
			return &ports.AcceptanceResult{TxHash: "0xtx", LoanID: "4"}, nil
		})
	d.loanRepo.EXPECT().SetLedgerResult(ctx, gomock.Any(), "4", "0xtx").Return(nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.loanRepo.EXPECT().Promote(ctx, tx, gomock.Any()).Return(nil)
	d.profileRepo.EXPECT().ApplyLoanOutcome(ctx, tx, testBorrower, gomock.Any()).Return(nil)
	d.offerRepo.EXPECT().Deactivate(ctx, tx, int64(7)).Return(nil)
	d.cache.EXPECT().Set(ctx, gomock.Any(), gomock.Any(), acceptanceCacheTTL).Return(nil)

	result, err := d.svc.AcceptOffer(ctx, ports.AcceptOfferRequest{
		ChainOfferID: 7,
		Borrower:     testBorrower,
		Rate:         decimal.NewFromInt(10),
		Insured:      true,
		Insurer:      "0xdbf03b407c01e7cd3cbea99509d93f8dddc8c6fb",
	})
	require.NoError(t, err)
	assert.Equal(t, "4", result.LoanID)
}

func TestLoanService_TriggerDefault_Success(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.gateway.EXPECT().SubmitDefault(ctx, "3").Return("0xdef", nil)
	d.loanRepo.EXPECT().UpdateStatus(ctx, "3", domain.LoanStatusDefaulted).Return(nil)

	txHash, err := d.svc.TriggerDefault(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "0xdef", txHash)
}

func TestLoanService_TriggerDefault_MirrorFailureStillSucceeds(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.gateway.EXPECT().SubmitDefault(ctx, "3").Return("0xdef", nil)
	d.loanRepo.EXPECT().UpdateStatus(ctx, "3", domain.LoanStatusDefaulted).
		Return(errors.New("db down"))

	txHash, err := d.svc.TriggerDefault(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, "0xdef", txHash)
}

func TestLoanService_TriggerDefault_NotOnLedger(t *testing.T) {
	d := setupLoanService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.gateway.EXPECT().SubmitDefault(ctx, "99").Return("", ports.ErrOfferNotOnLedger)

	_, err := d.svc.TriggerDefault(ctx, "99")
	assert.Equal(t, "LOAN_001", appCode(t, err))
}
