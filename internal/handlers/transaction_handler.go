package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/gymdesk/backend/internal/models"
	"github.com/gymdesk/backend/internal/services"
)

// IdempotencyHeader lets clients retry a posting without recording it twice.
const IdempotencyHeader = "Idempotency-Key"

type PostTransactionRequest struct {
	Type          string          `json:"type" validate:"required,oneof=income expense refund" example:"income"`
	Category      string          `json:"category" validate:"required,max=32" example:"membership"`
	Amount        decimal.Decimal `json:"amount" validate:"gt=0" swaggertype:"string" example:"5000.00"`
	Description   string          `json:"description" validate:"required,max=255" example:"cuota Juan"`
	PaymentMethod string          `json:"paymentMethod" validate:"omitempty,oneof=cash card transfer other" example:"cash"`
	Notes         string          `json:"notes" validate:"max=500"`
}

type TransactionHandler struct {
	postings  *services.PostingService
	reports   *services.ReportService
	validator *services.ValidationHelper
}

func NewTransactionHandler(postings *services.PostingService, reports *services.ReportService) *TransactionHandler {
	return &TransactionHandler{
		postings:  postings,
		reports:   reports,
		validator: services.NewValidationHelper(),
	}
}

// PostTransaction records income, an expense or a refund
// @Summary Post Transaction
// @Description Record a cash movement against the open register of the given date
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Param Idempotency-Key header string false "Client key that makes retries safe"
// @Param request body PostTransactionRequest true "Posting"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} services.ErrorResponse
// @Failure 409 {object} services.ErrorResponse
// @Failure 503 {object} services.ErrorResponse
// @Router /registers/{date}/transactions [post]
func (h *TransactionHandler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req PostTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendDecodeError(w, err)
		return
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	key := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
	tx, err := h.postings.Post(r.Context(), services.PostingRequest{
		TenantID:       actor.TenantID,
		Date:           chi.URLParam(r, "date"),
		Type:           models.TransactionType(req.Type),
		Category:       models.Category(req.Category),
		Amount:         req.Amount,
		Description:    req.Description,
		PaymentMethod:  models.PaymentMethod(req.PaymentMethod),
		ActorID:        actor.UserID,
		ActorName:      actor.Name,
		Notes:          req.Notes,
		IdempotencyKey: key,
	})
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	// a replayed key answers with the original transaction and the same status
	writeJSON(w, http.StatusCreated, tx)
}

// GetTransactions lists the ledger of one day
// @Summary List Transactions
// @Description Transactions of a business date, newest first
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param date path string true "Business date (YYYY-MM-DD)"
// @Success 200 {array} models.Transaction
// @Failure 422 {object} services.ErrorResponse
// @Router /registers/{date}/transactions [get]
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	txs, err := h.reports.GetTransactions(r.Context(), actor.TenantID, chi.URLParam(r, "date"))
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, txs)
}

// GetTransaction returns one transaction
// @Summary Get Transaction
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} models.Transaction
// @Failure 404 {object} services.ErrorResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	tx, err := h.reports.GetTransaction(r.Context(), actor.TenantID, chi.URLParam(r, "id"))
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

// Summary totals the ledger over a date range
// @Summary Summarize
// @Description Totals of completed transactions by type, category and payment method
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param start query string true "First date (YYYY-MM-DD)"
// @Param end query string true "Last date (YYYY-MM-DD)"
// @Success 200 {object} models.Summary
// @Failure 422 {object} services.ErrorResponse
// @Router /reports/summary [get]
func (h *TransactionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrUnauthorized(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	summary, err := h.reports.Summarize(r.Context(), actor.TenantID, query.Get("start"), query.Get("end"))
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
