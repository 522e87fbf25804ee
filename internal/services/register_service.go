package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gymdesk/backend/internal/audit"
	"github.com/gymdesk/backend/internal/models"
	"github.com/gymdesk/backend/internal/store"
)

type OpenRequest struct {
	TenantID      string
	Date          string
	OpeningAmount decimal.Decimal
	Notes         string
	ActorID       string
}

type CloseRequest struct {
	TenantID      string
	Date          string
	ClosingAmount decimal.Decimal
	Notes         string
	ActorID       string
}

// RegisterService owns the open / close / reopen lifecycle of daily registers.
type RegisterService struct {
	store   store.Store
	clock   *TenantClock
	audit   *audit.AuditLogger
	timeout time.Duration
}

func NewRegisterService(st store.Store, clock *TenantClock, auditLogger *audit.AuditLogger, timeout time.Duration) *RegisterService {
	return &RegisterService{
		store:   st,
		clock:   clock,
		audit:   auditLogger,
		timeout: timeout,
	}
}

// Open creates today's register, or reopens it when it was closed earlier the
// same day. Aggregates survive a reopen, and the reopen notes are appended to
// the existing ones (separated by a newline) so the close remarks are kept.
func (s *RegisterService) Open(ctx context.Context, req OpenRequest) (*models.Register, error) {
	if err := parseDate(req.Date); err != nil {
		return nil, err
	}
	if err := checkMoney(req.OpeningAmount, true); err != nil {
		return nil, err
	}
	today := s.clock.Today(req.TenantID)
	if req.Date != today {
		return nil, fmt.Errorf("%w: registers can only be opened for today (%s)", ErrInvalidDate, today)
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var reopened bool
	reg, err := s.store.MutateRegister(ctx, req.TenantID, req.Date, func(current *models.Register) (*models.Register, error) {
		now := s.clock.Now()
		reopened = false

		if current == nil {
			return &models.Register{
				Timezone:      s.clock.Location(req.TenantID).String(),
				Status:        models.RegisterOpen,
				OpeningAmount: req.OpeningAmount,
				OpeningTime:   now,
				OpenedBy:      req.ActorID,
				Notes:         strings.TrimSpace(req.Notes),
			}, nil
		}
		if current.IsOpen() {
			return nil, ErrAlreadyOpen
		}

		reopened = true
		current.Status = models.RegisterOpen
		current.OpeningAmount = req.OpeningAmount
		current.OpeningTime = now
		current.OpenedBy = req.ActorID
		current.ClosingAmount = nil
		current.ClosingTime = nil
		current.ClosedBy = ""
		current.ExpectedBalance = nil
		current.Difference = nil
		current.Discrepancy = ""
		current.ReopenCount++
		current.Notes = appendNote(current.Notes, req.Notes)
		return current, nil
	})
	if err != nil {
		err = storeErr(err)
		s.audit.LogError("open", req.TenantID, req.Date, err)
		return nil, err
	}

	if reopened {
		log.Printf("[CASHIER] register %s/%s reopened by %s (reopen #%d)", reg.TenantID, reg.Date, reg.OpenedBy, reg.ReopenCount)
		s.audit.LogReopen(reg)
	} else {
		log.Printf("[CASHIER] register %s/%s opened by %s with %s", reg.TenantID, reg.Date, reg.OpenedBy, reg.OpeningAmount.StringFixed(2))
		s.audit.LogOpen(reg)
	}
	return reg, nil
}

// Close reconciles the counted cash and closes the register in one write.
// Registers left open on a past day can still be closed.
func (s *RegisterService) Close(ctx context.Context, req CloseRequest) (*models.ReconciliationReport, error) {
	if err := parseDate(req.Date); err != nil {
		return nil, err
	}
	if err := checkMoney(req.ClosingAmount, true); err != nil {
		return nil, err
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var report models.ReconciliationReport
	reg, err := s.store.MutateRegister(ctx, req.TenantID, req.Date, func(current *models.Register) (*models.Register, error) {
		if current == nil || !current.IsOpen() {
			return nil, ErrNotOpen
		}

		report = Reconcile(current, req.ClosingAmount)
		now := s.clock.Now()
		closing, expected, difference := report.ClosingAmount, report.ExpectedBalance, report.Difference

		current.Status = models.RegisterClosed
		current.ClosingAmount = &closing
		current.ClosingTime = &now
		current.ClosedBy = req.ActorID
		current.ExpectedBalance = &expected
		current.Difference = &difference
		current.Discrepancy = report.Classification
		current.Notes = appendNote(current.Notes, req.Notes)
		return current, nil
	})
	if err != nil {
		err = storeErr(err)
		s.audit.LogError("close", req.TenantID, req.Date, err)
		return nil, err
	}

	log.Printf("[CASHIER] register %s/%s closed by %s: expected %s, counted %s (%s)",
		reg.TenantID, reg.Date, reg.ClosedBy,
		report.ExpectedBalance.StringFixed(2), report.ClosingAmount.StringFixed(2), report.Classification)
	s.audit.LogClose(reg, &report)
	return &report, nil
}

func (s *RegisterService) GetByDate(ctx context.Context, tenantID, date string) (*models.Register, error) {
	if err := parseDate(date); err != nil {
		return nil, err
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	reg, err := s.store.GetRegister(ctx, tenantID, date)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrRegisterNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return reg, nil
}

// GetRange lists registers between start and end inclusive, newest first.
func (s *RegisterService) GetRange(ctx context.Context, tenantID, start, end string) ([]models.Register, error) {
	if err := parseRange(start, end); err != nil {
		return nil, err
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	regs, err := s.store.ListRegisters(ctx, tenantID, start, end)
	if err != nil {
		return nil, storeErr(err)
	}
	return regs, nil
}

// maxAmount is the largest value a NUMERIC(14,2) money column holds.
var maxAmount = decimal.RequireFromString("999999999999.99")

// checkMoney rejects negative amounts (or non-positive ones when zero is not
// allowed), amounts above maxAmount and anything finer than cents.
func checkMoney(amount decimal.Decimal, allowZero bool) error {
	if amount.IsNegative() || (!allowZero && amount.IsZero()) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: %s exceeds %s", ErrInvalidAmount, amount.String(), maxAmount.String())
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: %s has more than two decimal places", ErrInvalidAmount, amount.String())
	}
	return nil
}

func appendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	switch {
	case note == "":
		return existing
	case existing == "":
		return note
	}
	return existing + "\n" + note
}
