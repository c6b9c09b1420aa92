package handler

import (
	"credloom-coordinator/internal/adapter/http/dto"
	"credloom-coordinator/internal/core/ports"
	"credloom-coordinator/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles operator endpoints.
type AdminHandler struct {
	reconcileSvc ports.ReconcileService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reconcileSvc ports.ReconcileService) *AdminHandler {
	return &AdminHandler{reconcileSvc: reconcileSvc}
}

// Reconcile handles POST /api/v1/admin/reconcile. It runs one repair pass
// on demand, on top of the background ticker.
func (h *AdminHandler) Reconcile(c *gin.Context) {
	report, err := h.reconcileSvc.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ReconcileResponse{
		PromotedLoans:     report.PromotedLoans,
		DeactivatedOffers: report.DeactivatedOffers,
	})
}
