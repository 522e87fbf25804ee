package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gymdesk/backend/internal/models"
	"github.com/gymdesk/backend/internal/store"
)

func TestReconcile(t *testing.T) {
	reg := &models.Register{
		TenantID:         "G1",
		Date:             "2024-05-01",
		OpeningAmount:    dec("1000"),
		TotalIncome:      dec("500"),
		MembershipIncome: dec("500"),
		TotalExpense:     dec("200"),
		TransactionCount: 2,
	}

	cases := []struct {
		closing        string
		difference     string
		classification models.Discrepancy
	}{
		{"1300", "0", models.DiscrepancyExact},
		{"1250", "-50", models.DiscrepancyShortage},
		{"1400", "100", models.DiscrepancySurplus},
	}

	for _, tc := range cases {
		t.Run(tc.closing, func(t *testing.T) {
			report := Reconcile(reg, dec(tc.closing))
			assert.True(t, report.ExpectedBalance.Equal(dec("1300")))
			assert.True(t, report.Difference.Equal(dec(tc.difference)), "difference %s", report.Difference)
			assert.Equal(t, tc.classification, report.Classification)
			assert.True(t, report.ClosingAmount.Equal(dec(tc.closing)))
			assert.Equal(t, 2, report.Breakdown.TransactionCount)
			assert.True(t, report.Breakdown.MembershipIncome.Equal(dec("500")))
		})
	}

	t.Run("refunds reduce the expected balance", func(t *testing.T) {
		withRefund := reg.Clone()
		withRefund.TotalRefunds = dec("75.25")

		report := Reconcile(withRefund, dec("1224.75"))
		assert.True(t, report.ExpectedBalance.Equal(dec("1224.75")))
		assert.Equal(t, models.DiscrepancyExact, report.Classification)
	})

	t.Run("does not touch the register", func(t *testing.T) {
		before := reg.Clone()
		Reconcile(reg, dec("1"))
		assert.Equal(t, before, reg)
	})
}

func TestReconciliationService_Audit(t *testing.T) {
	ctx := context.Background()

	ledger := []models.Transaction{
		{ID: "a", Type: models.TypeIncome, Category: models.CategoryMembership, Amount: dec("100"), Status: models.StatusCompleted},
		{ID: "b", Type: models.TypeIncome, Category: models.CategoryProduct, Amount: dec("20"), Status: models.StatusCompleted},
		{ID: "c", Type: models.TypeExpense, Category: models.CategorySupplier, Amount: dec("50"), Status: models.StatusCompleted},
		{ID: "d", Type: models.TypeIncome, Category: models.CategoryService, Amount: dec("999"), Status: models.StatusFailed},
	}

	t.Run("reports drift", func(t *testing.T) {
		st := new(MockStore)
		svc := NewReconciliationService(st, 0)

		drifted := &models.Register{
			TenantID:         "G1",
			Date:             "2024-05-01",
			Version:          4,
			TotalIncome:      dec("100"),
			MembershipIncome: dec("100"),
			TotalExpense:     dec("50"),
			TransactionCount: 2,
		}
		st.On("GetRegister", mock.Anything, "G1", "2024-05-01").Return(drifted, nil).Twice()
		st.On("ListTransactions", mock.Anything, "G1", "2024-05-01", "2024-05-01").Return(ledger, nil).Once()

		report, err := svc.Audit(ctx, "G1", "2024-05-01")
		require.NoError(t, err)
		assert.False(t, report.Consistent)

		fields := map[string]models.AggregateDrift{}
		for _, d := range report.Drift {
			fields[d.Field] = d
		}
		require.Len(t, fields, 3)
		assert.True(t, fields["totalIncome"].Computed.Equal(dec("120")))
		assert.True(t, fields["otherIncome"].Computed.Equal(dec("20")))
		assert.True(t, fields["transactionCount"].Computed.Equal(dec("3")))
		st.AssertExpectations(t)
	})

	t.Run("retries when a posting lands between reads", func(t *testing.T) {
		st := new(MockStore)
		svc := NewReconciliationService(st, 0)

		stale := &models.Register{Version: 1}
		fresh := &models.Register{
			Version:          2,
			TotalIncome:      dec("120"),
			MembershipIncome: dec("100"),
			OtherIncome:      dec("20"),
			TotalExpense:     dec("50"),
			TransactionCount: 3,
		}
		st.On("GetRegister", mock.Anything, "G1", "2024-05-01").Return(stale, nil).Once()
		st.On("GetRegister", mock.Anything, "G1", "2024-05-01").Return(fresh, nil)
		st.On("ListTransactions", mock.Anything, "G1", "2024-05-01", "2024-05-01").Return(ledger, nil).Twice()

		report, err := svc.Audit(ctx, "G1", "2024-05-01")
		require.NoError(t, err)
		assert.True(t, report.Consistent)
		st.AssertNumberOfCalls(t, "GetRegister", 4)
	})

	t.Run("gives up when every snapshot moves", func(t *testing.T) {
		st := new(MockStore)
		svc := NewReconciliationService(st, 0)

		for v := 1; v <= 2*auditSnapshotAttempts; v++ {
			st.On("GetRegister", mock.Anything, "G1", "2024-05-01").Return(&models.Register{Version: v}, nil).Once()
		}
		st.On("ListTransactions", mock.Anything, "G1", "2024-05-01", "2024-05-01").Return(ledger, nil).Times(auditSnapshotAttempts)

		report, err := svc.Audit(ctx, "G1", "2024-05-01")
		assert.Nil(t, report)
		assert.ErrorIs(t, err, ErrConcurrencyConflict)
		assert.Equal(t, KindInfrastructure, KindOf(err))
		st.AssertExpectations(t)
	})

	t.Run("missing register", func(t *testing.T) {
		st := new(MockStore)
		svc := NewReconciliationService(st, 0)
		st.On("GetRegister", mock.Anything, "G1", "2024-05-01").Return(nil, store.ErrNotFound)

		_, err := svc.Audit(ctx, "G1", "2024-05-01")
		assert.ErrorIs(t, err, ErrRegisterNotFound)
	})

	t.Run("bad date", func(t *testing.T) {
		svc := NewReconciliationService(new(MockStore), 0)
		_, err := svc.Audit(ctx, "G1", "yesterday")
		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}
