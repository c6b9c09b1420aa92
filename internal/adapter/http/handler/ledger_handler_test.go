package handler

import (
	"math/big"
	"net/http"
	"testing"
	"time"

	"credloom-coordinator/internal/adapter/http/dto"
	"credloom-coordinator/internal/core/domain"
	"credloom-coordinator/internal/core/ports/mocks"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func setupLedgerRouter(t *testing.T) (*gin.Engine, *mocks.MockLedgerGateway, *mocks.MockProfileRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	gateway := mocks.NewMockLedgerGateway(ctrl)
	profileRepo := mocks.NewMockProfileRepository(ctrl)
	h := NewLedgerHandler(gateway, profileRepo)

	r := gin.New()
	r.GET("/borrowers/:address/flagged", h.GetFlagged)
	r.GET("/borrowers/:address/profile", h.GetProfile)
	r.GET("/wallets/:address/balance", h.GetBalance)
	return r, gateway, profileRepo
}

func TestLedgerHandler_GetFlagged(t *testing.T) {
	r, gateway, _ := setupLedgerRouter(t)

	gateway.EXPECT().
		IsBorrowerFlagged(gomock.Any(), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed").
		Return(true, nil)

	// Lowercase input is canonicalized before the lookup.
	w := performJSON(r, http.MethodGet, "/borrowers/0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed/flagged", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.FlaggedResponse
	envelopeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed", resp.Wallet)
	assert.True(t, resp.Flagged)
}

func TestLedgerHandler_GetFlagged_BadAddress(t *testing.T) {
	r, _, _ := setupLedgerRouter(t)

	w := performJSON(r, http.MethodGet, "/borrowers/nonsense/flagged", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_002", errorCode(t, w.Body.Bytes()))
}

func TestLedgerHandler_GetProfile(t *testing.T) {
	r, _, profileRepo := setupLedgerRouter(t)

	profileRepo.EXPECT().
		GetByWallet(gomock.Any(), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed").
		Return(&domain.Profile{
			Wallet:                "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
			TotalTransactions:     12,
			NumPreviousLoans:      3,
			TotalPreviousLoansEth: decimal.NewFromInt(45),
			UpdatedAt:             time.Now().UTC(),
		}, nil)

	w := performJSON(r, http.MethodGet, "/borrowers/0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed/profile", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.ProfileResponse
	envelopeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, int64(3), resp.NumPreviousLoans)
	assert.Equal(t, "45", resp.TotalPreviousLoansEth)
}

func TestLedgerHandler_GetProfile_NotFound(t *testing.T) {
	r, _, profileRepo := setupLedgerRouter(t)

	profileRepo.EXPECT().
		GetByWallet(gomock.Any(), gomock.Any()).
		Return(nil, nil)

	w := performJSON(r, http.MethodGet, "/borrowers/0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed/profile", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "LOAN_002", errorCode(t, w.Body.Bytes()))
}

func TestLedgerHandler_GetBalance(t *testing.T) {
	r, gateway, _ := setupLedgerRouter(t)

	wei, _ := new(big.Int).SetString("1500000000000000000", 10)
	gateway.EXPECT().
		Balance(gomock.Any(), "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed").
		Return(wei, nil)

	w := performJSON(r, http.MethodGet, "/wallets/0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed/balance", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp dto.BalanceResponse
	envelopeData(t, w.Body.Bytes(), &resp)
	assert.Equal(t, "1500000000000000000", resp.BalanceWei)
	assert.Equal(t, "1.5", resp.BalanceEth)
}

func TestLedgerHandler_GetBalance_ChainDown(t *testing.T) {
	r, gateway, _ := setupLedgerRouter(t)

	gateway.EXPECT().
		Balance(gomock.Any(), gomock.Any()).
		Return(nil, assert.AnError)

	w := performJSON(r, http.MethodGet, "/wallets/0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed/balance", "")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "LED_001", errorCode(t, w.Body.Bytes()))
}
