package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gymdesk/backend/internal/services"
)

type OpenRegisterRequest struct {
	OpeningAmount decimal.Decimal `json:"openingAmount" validate:"gte=0" swaggertype:"string" example:"1000.00"`
	Notes         string          `json:"notes" validate:"max=500"`
}

type CloseRegisterRequest struct {
	ClosingAmount decimal.Decimal `json:"closingAmount" validate:"gte=0" swaggertype:"string" example:"4000.00"`
	Notes         string          `json:"notes" validate:"max=500"`
}

type RegisterHandler struct {
	registers *services.RegisterService
	recon     *services.ReconciliationService
	validator *services.ValidationHelper
}

func NewRegisterHandler(registers *services.RegisterService, recon *services.ReconciliationService) *RegisterHandler {
	return &RegisterHandler{
		registers: registers,
		recon:     recon,
		validator: services.NewValidationHelper(),
	}
}

// OpenRegister opens (or reopens) today's register
// @Summary Open Register
// @Description Open the cash register for today, or reopen it if it was closed earlier today
// @Tags Registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Param request body OpenRegisterRequest true "Opening amount"
// @Success 201 {object} models.Register
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Router /registers/{date}/open [post]
func (h *RegisterHandler) OpenRegister(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req OpenRegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendDecodeError(w, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	reg, err := h.registers.Open(r.Context(), services.OpenRequest{
		TenantID:      actor.TenantID,
		Date:          chi.URLParam(r, "date"),
		OpeningAmount: req.OpeningAmount,
		Notes:         req.Notes,
		ActorID:       actor.UserID,
	})
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, reg)
}

// CloseRegister reconciles and closes a register
// @Summary Close Register
// @Description Reconcile the counted closing amount against the expected balance and close the register
// @Tags Registers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Param request body CloseRegisterRequest true "Counted cash"
// @Success 200 {object} models.ReconciliationReport
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Router /registers/{date}/close [post]
func (h *RegisterHandler) CloseRegister(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req CloseRegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendDecodeError(w, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	report, err := h.registers.Close(r.Context(), services.CloseRequest{
		TenantID:      actor.TenantID,
		Date:          chi.URLParam(r, "date"),
		ClosingAmount: req.ClosingAmount,
		Notes:         req.Notes,
		ActorID:       actor.UserID,
	})
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// GetRegister returns one register
// @Summary Get Register
// @Tags Registers
// @Produce json
// @Security BearerAuth
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Success 200 {object} models.Register
// @Failure 404 {object} services.ErrorResponse
// @Router /registers/{date} [get]
func (h *RegisterHandler) GetRegister(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	reg, err := h.registers.GetByDate(r.Context(), actor.TenantID, chi.URLParam(r, "date"))
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reg)
}

// GetRegisters lists registers in a date range
// @Summary List Registers
// @Description Registers between start and end inclusive, newest first
// @Tags Registers
// @Produce json
// @Security BearerAuth
// @Param start query string true "First date (YYYY-MM-DD)"
// @Param end query string true "Last date (YYYY-MM-DD)"
// @Success 200 {array} models.Register
// @Failure 422 {object} services.ErrorResponse
// @Router /registers [get]
func (h *RegisterHandler) GetRegisters(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	regs, err := h.registers.GetRange(r.Context(), actor.TenantID, query.Get("start"), query.Get("end"))
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, regs)
}

// AuditRegister compares stored aggregates with the ledger
// @Summary Audit Register
// @Tags Registers
// @Produce json
// @Security BearerAuth
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Success 200 {object} models.ConsistencyReport
// @Failure 404 {object} services.ErrorResponse
// @Router /registers/{date}/audit [get]
func (h *RegisterHandler) AuditRegister(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	report, err := h.recon.Audit(r.Context(), actor.TenantID, chi.URLParam(r, "date"))
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
