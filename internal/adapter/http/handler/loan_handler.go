package handler

import (
	"credloom-coordinator/internal/adapter/http/dto"
	"credloom-coordinator/internal/core/domain"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/pkg/apperror"
	"credloom-coordinator/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LoanHandler handles loan origination endpoints.
type LoanHandler struct {
	loanSvc ports.LoanService
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanSvc ports.LoanService) *LoanHandler {
	return &LoanHandler{loanSvc: loanSvc}
}

// AcceptOffer handles POST /api/v1/loans/accept.
func (h *LoanHandler) AcceptOffer(c *gin.Context) {
	var req dto.AcceptOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		response.Error(c, apperror.ErrInvalidRate())
		return
	}
	if req.Insured && req.InsurerWallet == "" {
		response.Error(c, apperror.Validation("insurer_wallet is required for insured loans"))
		return
	}

	result, err := h.loanSvc.AcceptOffer(c.Request.Context(), ports.AcceptOfferRequest{
		ChainOfferID: req.OfferID,
		Borrower:     req.BorrowerWallet,
		Rate:         rate,
		Insured:      req.Insured,
		Insurer:      req.InsurerWallet,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.AcceptOfferResponse{
		TxHash:             result.TxHash,
		LoanID:             result.LoanID,
		InterestAmount:     result.InterestAmount.String(),
		PersistencePending: result.PersistencePending,
	})
}

// TriggerDefault handles POST /api/v1/loans/:loanId/default.
func (h *LoanHandler) TriggerDefault(c *gin.Context) {
	loanID := c.Param("loanId")
	if loanID == "" {
		response.Error(c, apperror.Validation("loan id is required"))
		return
	}

	txHash, err := h.loanSvc.TriggerDefault(c.Request.Context(), loanID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.DefaultResponse{
		LoanID: loanID,
		TxHash: txHash,
		Status: string(domain.LoanStatusDefaulted),
	})
}
