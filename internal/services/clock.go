package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gymdesk/backend/internal/config"
	"github.com/gymdesk/backend/internal/models"
)

// TenantClock answers "what day is it" for a tenant, in the tenant's zone.
type TenantClock struct {
	cfg *config.CashierConfig
	now func() time.Time
}

// NewTenantClock uses time.Now when now is nil.
func NewTenantClock(cfg *config.CashierConfig, now func() time.Time) *TenantClock {
	if now == nil {
		now = time.Now
	}
	return &TenantClock{cfg: cfg, now: now}
}

func (c *TenantClock) Now() time.Time {
	return c.now().UTC()
}

func (c *TenantClock) Location(tenantID string) *time.Location {
	return c.cfg.Location(tenantID)
}

// Today returns the tenant-local calendar date as YYYY-MM-DD.
func (c *TenantClock) Today(tenantID string) string {
	return c.now().In(c.Location(tenantID)).Format(models.DateLayout)
}

// parseDate checks the YYYY-MM-DD format and that the date exists.
func parseDate(date string) error {
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidDate, date)
	}
	return nil
}

func parseRange(start, end string) error {
	if err := parseDate(start); err != nil {
		return err
	}
	if err := parseDate(end); err != nil {
		return err
	}
	if start > end {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidDate, start, end)
	}
	return nil
}

// bounded caps a store call at the configured timeout.
func bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
