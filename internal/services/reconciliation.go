package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gymdesk/backend/internal/models"
	"github.com/gymdesk/backend/internal/store"
)

// Reconcile compares a counted closing amount with the balance the register
// should hold. It has no side effects.
func Reconcile(reg *models.Register, closingAmount decimal.Decimal) models.ReconciliationReport {
	expected := reg.OpeningAmount.
		Add(reg.TotalIncome).
		Sub(reg.TotalExpense).
		Sub(reg.TotalRefunds)
	difference := closingAmount.Sub(expected)

	classification := models.DiscrepancyExact
	switch difference.Sign() {
	case 1:
		classification = models.DiscrepancySurplus
	case -1:
		classification = models.DiscrepancyShortage
	}

	return models.ReconciliationReport{
		TenantID:        reg.TenantID,
		Date:            reg.Date,
		ExpectedBalance: expected,
		ClosingAmount:   closingAmount,
		Difference:      difference,
		Classification:  classification,
		Breakdown: models.Breakdown{
			OpeningAmount:    reg.OpeningAmount,
			TotalIncome:      reg.TotalIncome,
			MembershipIncome: reg.MembershipIncome,
			OtherIncome:      reg.OtherIncome,
			TotalExpense:     reg.TotalExpense,
			TotalRefunds:     reg.TotalRefunds,
			TransactionCount: reg.TransactionCount,
		},
	}
}

const auditSnapshotAttempts = 3

// ReconciliationService checks stored register aggregates against the ledger.
type ReconciliationService struct {
	store   store.Store
	timeout time.Duration
}

func NewReconciliationService(st store.Store, timeout time.Duration) *ReconciliationService {
	return &ReconciliationService{store: st, timeout: timeout}
}

// Audit recomputes the aggregates of one register from its completed
// transactions and reports every field that drifted. The register is read
// again after the ledger and the pair is retried if a posting slipped in
// between; when no stable pair is seen ErrConcurrencyConflict is returned.
func (s *ReconciliationService) Audit(ctx context.Context, tenantID, date string) (*models.ConsistencyReport, error) {
	if err := parseDate(date); err != nil {
		return nil, err
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	var (
		reg *models.Register
		txs []models.Transaction
	)
	for attempt := 0; attempt < auditSnapshotAttempts; attempt++ {
		before, err := s.store.GetRegister(ctx, tenantID, date)
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRegisterNotFound
		}
		if err != nil {
			return nil, storeErr(err)
		}

		txs, err = s.store.ListTransactions(ctx, tenantID, date, date)
		if err != nil {
			return nil, storeErr(err)
		}

		after, err := s.store.GetRegister(ctx, tenantID, date)
		if err != nil {
			return nil, storeErr(err)
		}
		if before.Version == after.Version {
			reg = after
			break
		}
	}
	if reg == nil {
		return nil, fmt.Errorf("%w: register %s/%s kept changing during audit", ErrConcurrencyConflict, tenantID, date)
	}

	computed := &models.Register{}
	for i := range txs {
		if txs[i].Status == models.StatusCompleted {
			computed.Apply(&txs[i])
		}
	}

	report := &models.ConsistencyReport{
		TenantID: tenantID,
		Date:     date,
		Drift:    []models.AggregateDrift{},
	}
	compare := func(field string, stored, recomputed decimal.Decimal) {
		if !stored.Equal(recomputed) {
			report.Drift = append(report.Drift, models.AggregateDrift{Field: field, Stored: stored, Computed: recomputed})
		}
	}
	compare("totalIncome", reg.TotalIncome, computed.TotalIncome)
	compare("totalExpense", reg.TotalExpense, computed.TotalExpense)
	compare("totalRefunds", reg.TotalRefunds, computed.TotalRefunds)
	compare("membershipIncome", reg.MembershipIncome, computed.MembershipIncome)
	compare("otherIncome", reg.OtherIncome, computed.OtherIncome)
	compare("transactionCount", decimal.NewFromInt(int64(reg.TransactionCount)), decimal.NewFromInt(int64(computed.TransactionCount)))

	report.Consistent = len(report.Drift) == 0
	return report, nil
}
