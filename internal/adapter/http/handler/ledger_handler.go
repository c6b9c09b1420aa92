package handler

import (
	"credloom-coordinator/internal/adapter/http/dto"
	"credloom-coordinator/internal/core/domain"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/pkg/apperror"
	"credloom-coordinator/pkg/ethaddr"
	"credloom-coordinator/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles read-only ledger and borrower views.
type LedgerHandler struct {
	gateway     ports.LedgerGateway
	profileRepo ports.ProfileRepository
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(gateway ports.LedgerGateway, profileRepo ports.ProfileRepository) *LedgerHandler {
	return &LedgerHandler{gateway: gateway, profileRepo: profileRepo}
}

// GetFlagged handles GET /api/v1/borrowers/:address/flagged.
func (h *LedgerHandler) GetFlagged(c *gin.Context) {
	wallet, err := ethaddr.Normalize(c.Param("address"))
	if err != nil {
		response.Error(c, apperror.ErrInvalidAddress(c.Param("address")))
		return
	}

	flagged, err := h.gateway.IsBorrowerFlagged(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, apperror.ErrChainUnavailable(err))
		return
	}

	response.OK(c, dto.FlaggedResponse{Wallet: wallet, Flagged: flagged})
}

// GetProfile handles GET /api/v1/borrowers/:address/profile.
func (h *LedgerHandler) GetProfile(c *gin.Context) {
	wallet, err := ethaddr.Normalize(c.Param("address"))
	if err != nil {
		response.Error(c, apperror.ErrInvalidAddress(c.Param("address")))
		return
	}

	profile, err := h.profileRepo.GetByWallet(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, apperror.ErrStoreFailure(err))
		return
	}
	if profile == nil {
		response.Error(c, apperror.ErrProfileNotFound())
		return
	}

	response.OK(c, dto.ProfileResponse{
		Wallet:                profile.Wallet,
		TotalTransactions:     profile.TotalTransactions,
		NumPreviousLoans:      profile.NumPreviousLoans,
		TotalPreviousLoansEth: profile.TotalPreviousLoansEth.String(),
	})
}

// GetBalance handles GET /api/v1/wallets/:address/balance.
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	wallet, err := ethaddr.Normalize(c.Param("address"))
	if err != nil {
		response.Error(c, apperror.ErrInvalidAddress(c.Param("address")))
		return
	}

	wei, err := h.gateway.Balance(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, apperror.ErrChainUnavailable(err))
		return
	}

	response.OK(c, dto.BalanceResponse{
		Wallet:     wallet,
		BalanceWei: wei.String(),
		BalanceEth: domain.EthFromWei(decimal.NewFromBigInt(wei, 0)).String(),
	})
}
