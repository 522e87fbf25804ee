package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gymdesk/backend/internal/audit"
	"github.com/gymdesk/backend/internal/config"
	"github.com/gymdesk/backend/internal/models"
	"github.com/gymdesk/backend/internal/store"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) GetRegister(ctx context.Context, tenantID, date string) (*models.Register, error) {
	args := m.Called(ctx, tenantID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Register), args.Error(1)
}

func (m *MockStore) ListRegisters(ctx context.Context, tenantID, startDate, endDate string) ([]models.Register, error) {
	args := m.Called(ctx, tenantID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Register), args.Error(1)
}

func (m *MockStore) MutateRegister(ctx context.Context, tenantID, date string, fn store.RegisterMutation) (*models.Register, error) {
	args := m.Called(ctx, tenantID, date, fn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Register), args.Error(1)
}

func (m *MockStore) AppendTransaction(ctx context.Context, tx *models.Transaction, fn store.RegisterMutation) (*models.Transaction, bool, error) {
	args := m.Called(ctx, tx, fn)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.Transaction), args.Bool(1), args.Error(2)
}

func (m *MockStore) GetTransaction(ctx context.Context, tenantID, id string) (*models.Transaction, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transaction), args.Error(1)
}

func (m *MockStore) ListTransactions(ctx context.Context, tenantID, startDate, endDate string) ([]models.Transaction, error) {
	args := m.Called(ctx, tenantID, startDate, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Transaction), args.Error(1)
}

func (m *MockStore) Close() error {
	return m.Called().Error(0)
}

// fakeClock is a settable wall clock shared by every service of a fixture.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// may1 is 2024-05-01 15:00 UTC, mid-afternoon in every zone the tests use.
var may1 = time.Date(2024, 5, 1, 15, 0, 0, 0, time.UTC)

type fixture struct {
	store     store.Store
	clock     *fakeClock
	registers *RegisterService
	postings  *PostingService
	reports   *ReportService
	recon     *ReconciliationService
	receipts  *ReceiptService
}

type fixtureOption func(cfg *config.CashierConfig)

func withStalePostings(cfg *config.CashierConfig) {
	cfg.AllowStalePostings = true
}

func withTenantZone(tenantID, zone string) fixtureOption {
	return func(cfg *config.CashierConfig) {
		cfg.TenantTimezones[tenantID] = zone
	}
}

func newBoltFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	st, err := store.NewBoltStore(filepath.Join(t.TempDir(), "cashier.db"), time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return newFixture(st, nil, opts...)
}

func newFixture(st store.Store, cache *SummaryCache, opts ...fixtureOption) *fixture {
	cfg := &config.CashierConfig{
		DefaultTimezone: "UTC",
		TenantTimezones: map[string]string{},
		StoreTimeout:    time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	fc := &fakeClock{now: may1}
	clock := NewTenantClock(cfg, fc.Now)
	auditLogger := audit.NewAuditLogger()

	registers := NewRegisterService(st, clock, auditLogger, cfg.StoreTimeout)
	return &fixture{
		store:     st,
		clock:     fc,
		registers: registers,
		postings:  NewPostingService(st, clock, cache, auditLogger, cfg.StoreTimeout, cfg.AllowStalePostings),
		reports:   NewReportService(st, cache, cfg.StoreTimeout),
		recon:     NewReconciliationService(st, cfg.StoreTimeout),
		receipts:  NewReceiptService(registers),
	}
}
