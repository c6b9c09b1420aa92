package handler

import (
	"time"

	"credloom-coordinator/internal/adapter/http/dto"
	"credloom-coordinator/internal/core/domain"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/pkg/apperror"
	"credloom-coordinator/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OfferHandler handles marketplace offer endpoints.
type OfferHandler struct {
	offerSvc ports.OfferService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offerSvc ports.OfferService) *OfferHandler {
	return &OfferHandler{offerSvc: offerSvc}
}

// CreateOffer handles POST /api/v1/offers.
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	var req dto.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	amount, err := decimal.NewFromString(req.AmountEth)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.offerSvc.CreateOffer(c.Request.Context(), ports.CreateOfferRequest{
		Lender:       req.LenderWallet,
		AmountEth:    amount,
		DurationDays: req.DurationDays,
		MinScore:     req.MinScore,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateOfferResponse{
		TxHash:             result.TxHash,
		OfferID:            result.ChainOfferID,
		PersistencePending: result.PersistencePending,
	})
}

// ListOffers handles GET /api/v1/offers.
func (h *OfferHandler) ListOffers(c *gin.Context) {
	offers, err := h.offerSvc.ListActiveOffers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]dto.OfferResponse, 0, len(offers))
	for i := range offers {
		out = append(out, toOfferResponse(&offers[i]))
	}
	response.OK(c, out)
}

// toOfferResponse converts domain.Offer to DTO.
func toOfferResponse(o *domain.Offer) dto.OfferResponse {
	return dto.OfferResponse{
		ID:           o.ID.String(),
		OfferID:      o.ChainOfferID,
		LenderWallet: o.LenderWallet,
		AmountEth:    o.AmountAvailable.String(),
		DurationDays: o.DurationDays,
		MinScore:     o.MinScore,
		Active:       o.Active,
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
	}
}
