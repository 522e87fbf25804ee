package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gymdesk/backend/internal/models"
	"github.com/gymdesk/backend/internal/store"
)

// ReportService answers read-side questions over the ledger.
type ReportService struct {
	store   store.Store
	cache   *SummaryCache
	timeout time.Duration
}

func NewReportService(st store.Store, cache *SummaryCache, timeout time.Duration) *ReportService {
	return &ReportService{
		store:   st,
		cache:   cache,
		timeout: timeout,
	}
}

// Summarize totals the completed transactions whose business date falls in
// [start, end].
func (s *ReportService) Summarize(ctx context.Context, tenantID, start, end string) (*models.Summary, error) {
	if err := parseRange(start, end); err != nil {
		return nil, err
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	cached, gen, ok := s.cache.Get(ctx, tenantID, start, end)
	if ok {
		return cached, nil
	}

	txs, err := s.store.ListTransactions(ctx, tenantID, start, end)
	if err != nil {
		return nil, storeErr(err)
	}

	summary := summarize(tenantID, start, end, txs)
	s.cache.Put(ctx, gen, summary)
	return summary, nil
}

func summarize(tenantID, start, end string, txs []models.Transaction) *models.Summary {
	summary := &models.Summary{
		TenantID:        tenantID,
		StartDate:       start,
		EndDate:         end,
		ByCategory:      map[models.Category]decimal.Decimal{},
		ByType:          map[models.TransactionType]decimal.Decimal{},
		ByPaymentMethod: map[models.PaymentMethod]decimal.Decimal{},
	}

	for _, tx := range txs {
		if tx.Status != models.StatusCompleted {
			continue
		}
		switch tx.Type {
		case models.TypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
			if tx.Category == models.CategoryMembership {
				summary.MembershipIncome = summary.MembershipIncome.Add(tx.Amount)
			} else {
				summary.OtherIncome = summary.OtherIncome.Add(tx.Amount)
			}
		case models.TypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
		case models.TypeRefund:
			summary.TotalRefunds = summary.TotalRefunds.Add(tx.Amount)
		}
		summary.ByCategory[tx.Category] = summary.ByCategory[tx.Category].Add(tx.Amount)
		summary.ByType[tx.Type] = summary.ByType[tx.Type].Add(tx.Amount)
		summary.ByPaymentMethod[tx.PaymentMethod] = summary.ByPaymentMethod[tx.PaymentMethod].Add(tx.Amount)
		summary.TransactionCount++
	}

	summary.Net = summary.TotalIncome.Sub(summary.TotalExpense).Sub(summary.TotalRefunds)
	return summary
}

// GetTransactions lists the ledger of one business date, newest first.
func (s *ReportService) GetTransactions(ctx context.Context, tenantID, date string) ([]models.Transaction, error) {
	if err := parseDate(date); err != nil {
		return nil, err
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	txs, err := s.store.ListTransactions(ctx, tenantID, date, date)
	if err != nil {
		return nil, storeErr(err)
	}
	return txs, nil
}

func (s *ReportService) GetTransaction(ctx context.Context, tenantID, id string) (*models.Transaction, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrTransactionNotFound
	}

	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	tx, err := s.store.GetTransaction(ctx, tenantID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, storeErr(err)
	}
	return tx, nil
}
