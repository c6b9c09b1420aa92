package handler

import (
	"credloom-coordinator/internal/adapter/http/dto"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/pkg/apperror"
	"credloom-coordinator/pkg/response"

	"github.com/gin-gonic/gin"
)

// RateHandler handles interest rate quoting.
type RateHandler struct {
	rateSvc ports.RateService
}

// NewRateHandler creates a new RateHandler.
func NewRateHandler(rateSvc ports.RateService) *RateHandler {
	return &RateHandler{rateSvc: rateSvc}
}

// Quote handles POST /api/v1/rates/quote.
func (h *RateHandler) Quote(c *gin.Context) {
	var req dto.RateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	quote, err := h.rateSvc.Quote(req.CreditScore)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.RateQuoteResponse{
		Score:         quote.Score,
		Tier:          quote.Tier,
		MinRate:       quote.MinRate.String(),
		MaxRate:       quote.MaxRate.String(),
		SuggestedRate: quote.SuggestedRate.String(),
	})
}
