package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gymdesk/backend/internal/models"
	"github.com/gymdesk/backend/internal/store"
)

func postG1(t *testing.T, f *fixture, typ models.TransactionType, category models.Category, amount string) *models.Transaction {
	t.Helper()
	tx, err := f.postings.Post(context.Background(), PostingRequest{
		TenantID:    "G1",
		Date:        "2024-05-01",
		Type:        typ,
		Category:    category,
		Amount:      dec(amount),
		Description: fmt.Sprintf("%s %s", typ, category),
		ActorID:     "u1",
		ActorName:   "Ana",
	})
	require.NoError(t, err)
	return tx
}

func TestPostingService_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newBoltFixture(t)

	reg := openG1(t, f, "1000")
	assert.Equal(t, models.RegisterOpen, reg.Status)

	membership, err := f.postings.Post(ctx, PostingRequest{
		TenantID:      "G1",
		Date:          "2024-05-01",
		Type:          models.TypeIncome,
		Category:      models.CategoryMembership,
		Amount:        dec("5000"),
		Description:   "cuota Juan",
		PaymentMethod: models.PaymentCash,
		ActorID:       "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, membership.Status)

	reg, err = f.registers.GetByDate(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, reg.MembershipIncome.Equal(dec("5000")))
	assert.True(t, reg.TotalIncome.Equal(dec("5000")))

	_, err = f.postings.Post(ctx, PostingRequest{
		TenantID:    "G1",
		Date:        "2024-05-01",
		Type:        models.TypeExpense,
		Category:    models.CategoryWithdrawal,
		Amount:      dec("2000"),
		Description: "retiro",
		ActorID:     "u1",
	})
	require.NoError(t, err)

	reg, err = f.registers.GetByDate(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, reg.TotalExpense.Equal(dec("2000")))

	report, err := f.registers.Close(ctx, CloseRequest{TenantID: "G1", Date: "2024-05-01", ClosingAmount: dec("4000"), ActorID: "u1"})
	require.NoError(t, err)
	assert.True(t, report.ExpectedBalance.Equal(dec("4000")))
	assert.True(t, report.Difference.IsZero())
	assert.Equal(t, models.DiscrepancyExact, report.Classification)

	reg, err = f.registers.GetByDate(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, models.RegisterClosed, reg.Status)
}

func TestPostingService_RequiresOpenRegister(t *testing.T) {
	ctx := context.Background()
	f := newBoltFixture(t)

	req := PostingRequest{
		TenantID:    "G1",
		Date:        "2024-05-01",
		Type:        models.TypeIncome,
		Category:    models.CategoryProduct,
		Amount:      dec("25"),
		Description: "agua",
	}

	_, err := f.postings.Post(ctx, req)
	assert.ErrorIs(t, err, ErrNoRegister)

	openG1(t, f, "100")
	_, err = f.registers.Close(ctx, CloseRequest{TenantID: "G1", Date: "2024-05-01", ClosingAmount: dec("100")})
	require.NoError(t, err)

	_, err = f.postings.Post(ctx, req)
	assert.ErrorIs(t, err, ErrRegisterClosed)

	txs, err := f.reports.GetTransactions(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.Empty(t, txs)

	reg, err := f.registers.GetByDate(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, reg.TotalIncome.IsZero())
	assert.Zero(t, reg.TransactionCount)
}

func TestPostingService_Validation(t *testing.T) {
	ctx := context.Background()
	f := newBoltFixture(t)
	openG1(t, f, "100")

	base := PostingRequest{
		TenantID:    "G1",
		Date:        "2024-05-01",
		Type:        models.TypeIncome,
		Category:    models.CategoryMembership,
		Amount:      dec("10"),
		Description: "cuota",
	}

	cases := []struct {
		name   string
		mutate func(r *PostingRequest)
		want   error
	}{
		{"income cannot be a withdrawal", func(r *PostingRequest) { r.Category = models.CategoryWithdrawal }, ErrInvalidCategory},
		{"expense cannot be membership", func(r *PostingRequest) { r.Type = models.TypeExpense }, ErrInvalidCategory},
		{"refund only allows refund", func(r *PostingRequest) { r.Type = models.TypeRefund }, ErrInvalidCategory},
		{"unknown type", func(r *PostingRequest) { r.Type = "transfer" }, ErrInvalidCategory},
		{"zero amount", func(r *PostingRequest) { r.Amount = decimal.Zero }, ErrInvalidAmount},
		{"negative amount", func(r *PostingRequest) { r.Amount = dec("-3") }, ErrInvalidAmount},
		{"fractions of a cent", func(r *PostingRequest) { r.Amount = dec("0.001") }, ErrInvalidAmount},
		{"larger than a money column", func(r *PostingRequest) { r.Amount = dec("1000000000000") }, ErrInvalidAmount},
		{"blank description", func(r *PostingRequest) { r.Description = "   " }, ErrInvalidDescription},
		{"unknown payment method", func(r *PostingRequest) { r.PaymentMethod = "crypto" }, ErrInvalidPaymentMethod},
		{"malformed date", func(r *PostingRequest) { r.Date = "2024-13-01" }, ErrInvalidDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := f.postings.Post(ctx, req)
			assert.ErrorIs(t, err, tc.want)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}

	reg, err := f.registers.GetByDate(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.Zero(t, reg.TransactionCount)
}

func TestPostingService_Refunds(t *testing.T) {
	ctx := context.Background()
	f := newBoltFixture(t)
	openG1(t, f, "1000")
	postG1(t, f, models.TypeIncome, models.CategoryMembership, "300")

	t.Run("first-class refund", func(t *testing.T) {
		tx := postG1(t, f, models.TypeRefund, models.CategoryRefund, "100")
		assert.Equal(t, models.TypeRefund, tx.Type)
	})

	t.Run("legacy expense refund is normalised", func(t *testing.T) {
		tx := postG1(t, f, models.TypeExpense, models.CategoryRefund, "50")
		assert.Equal(t, models.TypeRefund, tx.Type)
		assert.Equal(t, models.CategoryRefund, tx.Category)
	})

	reg, err := f.registers.GetByDate(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, reg.TotalRefunds.Equal(dec("150")))
	assert.True(t, reg.TotalExpense.IsZero())

	report, err := f.registers.Close(ctx, CloseRequest{TenantID: "G1", Date: "2024-05-01", ClosingAmount: dec("1150")})
	require.NoError(t, err)
	assert.True(t, report.ExpectedBalance.Equal(dec("1150")))
	assert.True(t, report.Breakdown.TotalRefunds.Equal(dec("150")))
}

func TestPostingService_Defaults(t *testing.T) {
	f := newBoltFixture(t)
	openG1(t, f, "0")

	tx, err := f.postings.Post(context.Background(), PostingRequest{
		TenantID:    "G1",
		Date:        "2024-05-01",
		Type:        models.TypeIncome,
		Category:    models.CategoryExtra,
		Amount:      dec("12.50"),
		Description: "  toalla  ",
		ActorID:     "u1",
		ActorName:   "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCash, tx.PaymentMethod)
	assert.Equal(t, "toalla", tx.Description)
	assert.Equal(t, "u1", tx.UserID)
	assert.Equal(t, "Ana", tx.UserName)
	assert.Equal(t, may1, tx.CreatedAt)
	assert.NotEmpty(t, tx.ID)
}

func TestPostingService_Idempotency(t *testing.T) {
	ctx := context.Background()
	f := newBoltFixture(t)
	openG1(t, f, "0")

	req := PostingRequest{
		TenantID:       "G1",
		Date:           "2024-05-01",
		Type:           models.TypeIncome,
		Category:       models.CategoryMembership,
		Amount:         dec("700"),
		Description:    "cuota Maria",
		IdempotencyKey: "pos-17-0042",
	}

	first, err := f.postings.Post(ctx, req)
	require.NoError(t, err)
	second, err := f.postings.Post(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	reg, err := f.registers.GetByDate(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, reg.TotalIncome.Equal(dec("700")))
	assert.Equal(t, 1, reg.TransactionCount)
}

func TestPostingService_StaleRegister(t *testing.T) {
	ctx := context.Background()
	req := PostingRequest{
		TenantID:    "G1",
		Date:        "2024-05-01",
		Type:        models.TypeIncome,
		Category:    models.CategoryMembership,
		Amount:      dec("10"),
		Description: "late",
	}

	t.Run("rejected by default", func(t *testing.T) {
		f := newBoltFixture(t)
		openG1(t, f, "0")
		f.clock.Set(may1.Add(24 * time.Hour))

		_, err := f.postings.Post(ctx, req)
		assert.ErrorIs(t, err, ErrStaleRegister)
		assert.Equal(t, KindState, KindOf(err))
	})

	t.Run("allowed when configured", func(t *testing.T) {
		f := newBoltFixture(t, withStalePostings)
		openG1(t, f, "0")
		f.clock.Set(may1.Add(24 * time.Hour))

		_, err := f.postings.Post(ctx, req)
		assert.NoError(t, err)
	})
}

func TestPostingService_AggregateConsistency(t *testing.T) {
	ctx := context.Background()
	f := newBoltFixture(t)
	openG1(t, f, "500")

	postings := []struct {
		typ      models.TransactionType
		category models.Category
		amount   string
	}{
		{models.TypeIncome, models.CategoryMembership, "1200"},
		{models.TypeIncome, models.CategoryProduct, "35.50"},
		{models.TypeExpense, models.CategorySupplier, "400"},
		{models.TypeIncome, models.CategoryPenalty, "20"},
		{models.TypeRefund, models.CategoryRefund, "35.50"},
		{models.TypeExpense, models.CategorySalary, "250.25"},
	}

	var wg sync.WaitGroup
	for _, p := range postings {
		wg.Add(1)
		go func(typ models.TransactionType, category models.Category, amount string) {
			defer wg.Done()
			_, err := f.postings.Post(ctx, PostingRequest{
				TenantID:    "G1",
				Date:        "2024-05-01",
				Type:        typ,
				Category:    category,
				Amount:      dec(amount),
				Description: string(category),
			})
			assert.NoError(t, err)
		}(p.typ, p.category, p.amount)
	}
	wg.Wait()

	txs, err := f.reports.GetTransactions(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	require.Len(t, txs, len(postings))

	income, expense, refunds := decimal.Zero, decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case models.TypeIncome:
			income = income.Add(tx.Amount)
		case models.TypeExpense:
			expense = expense.Add(tx.Amount)
		case models.TypeRefund:
			refunds = refunds.Add(tx.Amount)
		}
	}

	reg, err := f.registers.GetByDate(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, reg.TotalIncome.Equal(income), "income %s vs %s", reg.TotalIncome, income)
	assert.True(t, reg.TotalExpense.Equal(expense))
	assert.True(t, reg.TotalRefunds.Equal(refunds))
	assert.True(t, reg.MembershipIncome.Equal(dec("1200")))
	assert.True(t, reg.OtherIncome.Equal(dec("55.50")))
	assert.Equal(t, len(postings), reg.TransactionCount)

	consistency, err := f.recon.Audit(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.True(t, consistency.Consistent)
	assert.Empty(t, consistency.Drift)
}

func TestPostingService_CloseRacingPosts(t *testing.T) {
	ctx := context.Background()
	f := newBoltFixture(t)
	openG1(t, f, "100")

	const posters = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted = decimal.Zero
		report   *models.ReconciliationReport
	)
	for i := 0; i < posters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.postings.Post(ctx, PostingRequest{
				TenantID:    "G1",
				Date:        "2024-05-01",
				Type:        models.TypeIncome,
				Category:    models.CategoryProduct,
				Amount:      dec("10"),
				Description: "agua",
			})
			if err != nil {
				assert.ErrorIs(t, err, ErrRegisterClosed)
				return
			}
			mu.Lock()
			accepted = accepted.Add(dec("10"))
			mu.Unlock()
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		report, err = f.registers.Close(ctx, CloseRequest{
			TenantID:      "G1",
			Date:          "2024-05-01",
			ClosingAmount: dec("100"),
			ActorID:       "u1",
		})
		assert.NoError(t, err)
	}()
	wg.Wait()

	// every accepted posting is part of the closed register, none after it
	reg, err := f.registers.GetByDate(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, models.RegisterClosed, reg.Status)
	assert.True(t, reg.TotalIncome.Equal(accepted), "income %s vs accepted %s", reg.TotalIncome, accepted)
	require.NotNil(t, report)

	txs, err := f.reports.GetTransactions(ctx, "G1", "2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, reg.TransactionCount, len(txs))
	assert.True(t, report.Breakdown.TotalIncome.Equal(reg.TotalIncome))
}

func TestPostingService_StoreFailures(t *testing.T) {
	req := PostingRequest{
		TenantID:    "G1",
		Date:        "2024-05-01",
		Type:        models.TypeIncome,
		Category:    models.CategoryMembership,
		Amount:      dec("10"),
		Description: "cuota",
	}

	t.Run("unavailable", func(t *testing.T) {
		st := new(MockStore)
		f := newFixture(st, nil)
		st.On("AppendTransaction", mock.Anything, mock.AnythingOfType("*models.Transaction"), mock.Anything).
			Return(nil, false, fmt.Errorf("%w: connection refused", store.ErrUnavailable))

		_, err := f.postings.Post(context.Background(), req)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		st.AssertExpectations(t)
	})

	t.Run("conflict after retries", func(t *testing.T) {
		st := new(MockStore)
		f := newFixture(st, nil)
		st.On("AppendTransaction", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, false, store.ErrConflict)

		_, err := f.postings.Post(context.Background(), req)
		assert.ErrorIs(t, err, ErrConcurrencyConflict)
	})

	t.Run("deadline already passed on the embedded store", func(t *testing.T) {
		f := newBoltFixture(t)
		openG1(t, f, "100")

		expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		_, err := f.postings.Post(expired, req)
		assert.ErrorIs(t, err, ErrStoreUnavailable)
		assert.Equal(t, http.StatusServiceUnavailable, StatusFor(err))

		reg, err := f.registers.GetByDate(context.Background(), "G1", "2024-05-01")
		require.NoError(t, err)
		assert.Zero(t, reg.TransactionCount)
	})

	t.Run("totals overflowing the money columns", func(t *testing.T) {
		st := new(MockStore)
		f := newFixture(st, nil)
		st.On("AppendTransaction", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, false, fmt.Errorf("%w: pq: numeric field overflow", store.ErrInvalidValue))

		_, err := f.postings.Post(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Equal(t, KindValidation, KindOf(err))
		assert.Equal(t, http.StatusBadRequest, StatusFor(err))
	})

	t.Run("domain error from the mutation is kept", func(t *testing.T) {
		st := new(MockStore)
		f := newFixture(st, nil)
		st.On("AppendTransaction", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				fn := args.Get(2).(store.RegisterMutation)
				_, err := fn(&models.Register{Date: "2024-05-01", Status: models.RegisterClosed})
				assert.ErrorIs(t, err, ErrRegisterClosed)
			}).
			Return(nil, false, ErrRegisterClosed)

		_, err := f.postings.Post(context.Background(), req)
		assert.ErrorIs(t, err, ErrRegisterClosed)
	})
}
