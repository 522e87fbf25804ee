package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gymdesk/backend/internal/services"
)

type ReceiptHandler struct {
	service *services.ReceiptService
}

func NewReceiptHandler(service *services.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{service: service}
}

// ClosingSlip returns the QR slip of a closed register
// @Summary Closing Slip
// @Description QR code (base64 PNG) encoding the reconciliation of a closed register
// @Tags Registers
// @Produce json
// @Security BearerAuth
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Success 200 {object} services.ClosingSlip
// @Failure 404 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /registers/{date}/slip [get]
func (h *ReceiptHandler) ClosingSlip(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	slip, err := h.service.ClosingSlip(r.Context(), actor.TenantID, chi.URLParam(r, "date"))
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, slip)
}
