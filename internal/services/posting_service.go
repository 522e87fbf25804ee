package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymdesk/backend/internal/audit"
	"github.com/gymdesk/backend/internal/models"
	"github.com/gymdesk/backend/internal/store"
)

type PostingRequest struct {
	TenantID       string
	Date           string
	Type           models.TransactionType
	Category       models.Category
	Amount         decimal.Decimal
	Description    string
	PaymentMethod  models.PaymentMethod
	ActorID        string
	ActorName      string
	Notes          string
	IdempotencyKey string
}

// PostingService records cash movements against an open register.
type PostingService struct {
	store      store.Store
	clock      *TenantClock
	cache      *SummaryCache
	audit      *audit.AuditLogger
	timeout    time.Duration
	allowStale bool
}

func NewPostingService(st store.Store, clock *TenantClock, cache *SummaryCache, auditLogger *audit.AuditLogger, timeout time.Duration, allowStale bool) *PostingService {
	return &PostingService{
		store:      st,
		clock:      clock,
		cache:      cache,
		audit:      auditLogger,
		timeout:    timeout,
		allowStale: allowStale,
	}
}

// Post validates the request, then updates the register aggregates and
// appends the transaction as one atomic write. Replaying an idempotency key
// returns the transaction stored the first time.
func (s *PostingService) Post(ctx context.Context, req PostingRequest) (*models.Transaction, error) {
	req = normalizePosting(req)
	if err := validatePosting(req); err != nil {
		return nil, err
	}

	entry := &models.Transaction{
		ID:             uuid.New().String(),
		TenantID:       req.TenantID,
		Type:           req.Type,
		Category:       req.Category,
		Amount:         req.Amount,
		Description:    req.Description,
		Date:           req.Date,
		PaymentMethod:  req.PaymentMethod,
		Status:         models.StatusCompleted,
		UserID:         req.ActorID,
		UserName:       req.ActorName,
		Notes:          req.Notes,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      s.clock.Now(),
	}
	today := s.clock.Today(req.TenantID)

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	stored, created, err := s.store.AppendTransaction(ctx, entry, func(current *models.Register) (*models.Register, error) {
		if current == nil {
			return nil, ErrNoRegister
		}
		if !current.IsOpen() {
			return nil, ErrRegisterClosed
		}
		if current.Date != today && !s.allowStale {
			return nil, fmt.Errorf("%w: register %s is still open but today is %s", ErrStaleRegister, current.Date, today)
		}
		current.Apply(entry)
		return current, nil
	})
	if err != nil {
		err = storeErr(err)
		s.audit.LogError("post", req.TenantID, req.Date, err)
		return nil, err
	}

	if !created {
		log.Printf("[POSTING] idempotent replay of %s for %s (key %s)", stored.ID, stored.TenantID, req.IdempotencyKey)
		return stored, nil
	}

	// the posting is committed; a cancelled request must not keep stale summaries alive
	invalidateCtx, cancelInvalidate := bounded(context.WithoutCancel(ctx), s.timeout)
	defer cancelInvalidate()
	s.cache.Invalidate(invalidateCtx, stored.TenantID)

	log.Printf("[POSTING] %s %s/%s %s %s on %s/%s", stored.ID, stored.Type, stored.Category,
		stored.Amount.StringFixed(2), stored.PaymentMethod, stored.TenantID, stored.Date)
	s.audit.LogPosting(stored)
	return stored, nil
}

// normalizePosting maps the legacy expense/refund form onto the refund type
// and fills defaults.
func normalizePosting(req PostingRequest) PostingRequest {
	if req.Type == models.TypeExpense && req.Category == models.CategoryRefund {
		req.Type = models.TypeRefund
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = models.PaymentCash
	}
	req.Description = strings.TrimSpace(req.Description)
	req.Notes = strings.TrimSpace(req.Notes)
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	return req
}

func validatePosting(req PostingRequest) error {
	if err := parseDate(req.Date); err != nil {
		return err
	}
	if !req.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCategory, req.Type)
	}
	if !req.Type.Allows(req.Category) {
		return fmt.Errorf("%w: %q is not a %s category", ErrInvalidCategory, req.Category, req.Type)
	}
	if err := checkMoney(req.Amount, false); err != nil {
		return err
	}
	if req.Description == "" {
		return ErrInvalidDescription
	}
	if !req.PaymentMethod.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, req.PaymentMethod)
	}
	return nil
}
