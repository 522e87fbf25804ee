// Package store persists daily cash registers and their ledger transactions.
//
// Two adapters implement Store: PostgresStore (relational, optimistic
// version checks) and BoltStore (embedded document store, serialised
// writers). Both apply a register mutation and its transaction insert as one
// atomic unit, so callers never observe an aggregate without its ledger row.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/gymdesk/backend/internal/models"
)

var (
	// ErrNotFound is returned when a requested register or transaction does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrConflict is returned when an optimistic write lost a race.
	ErrConflict = errors.New("store: concurrent modification")
	// ErrUnavailable is returned for timeouts and connection failures.
	ErrUnavailable = errors.New("store: unavailable")
	// ErrInvalidValue is returned when the database rejects a value, such as
	// an amount or running total that overflows its column.
	ErrInvalidValue = errors.New("store: value rejected")
)

// RegisterMutation receives a private copy of the current register (nil when
// none exists for the key) and returns the state to persist. Returning an
// error aborts the unit without writing anything.
type RegisterMutation func(current *models.Register) (*models.Register, error)

type Store interface {
	GetRegister(ctx context.Context, tenantID, date string) (*models.Register, error)
	// ListRegisters returns registers with startDate <= date <= endDate, newest first.
	ListRegisters(ctx context.Context, tenantID, startDate, endDate string) ([]models.Register, error)
	MutateRegister(ctx context.Context, tenantID, date string, fn RegisterMutation) (*models.Register, error)
	// AppendTransaction runs fn against the register of tx.TenantID/tx.Date and
	// inserts tx in the same atomic unit. When tx carries an idempotency key
	// that was already used, the stored transaction is returned with
	// created=false and nothing is written.
	AppendTransaction(ctx context.Context, tx *models.Transaction, fn RegisterMutation) (stored *models.Transaction, created bool, err error)
	GetTransaction(ctx context.Context, tenantID, id string) (*models.Transaction, error)
	// ListTransactions returns transactions whose business date is within
	// [startDate, endDate], newest first.
	ListTransactions(ctx context.Context, tenantID, startDate, endDate string) ([]models.Transaction, error)
	Close() error
}

// RetryPolicy bounds how often transient failures are retried.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

var DefaultRetryPolicy = RetryPolicy{Attempts: 3, Backoff: 25 * time.Millisecond}

// Retryable reports whether err is a transient store failure.
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrUnavailable)
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// attempts are exhausted. Backoff doubles after every failed attempt.
func (p RetryPolicy) Do(ctx context.Context, op string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.Backoff
	expo.Multiplier = 2
	expo.RandomizationFactor = 0
	expo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(expo, uint64(attempts-1)), ctx)

	var (
		attempt int
		last    error
	)
	err := backoff.RetryNotify(func() error {
		attempt++
		last = fn()
		if last != nil && !Retryable(last) {
			return backoff.Permanent(last)
		}
		return last
	}, policy, func(err error, wait time.Duration) {
		log.Printf("[STORE] %s attempt %d/%d failed, retrying in %v: %v", op, attempt, attempts, wait, err)
	})

	// a deadline hit while backing off reports the store failure that caused the wait
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) && last != nil {
		return last
	}
	return err
}

// stamp assigns the bookkeeping fields of a register about to be written.
func stamp(tenantID, date string, current, next *models.Register, now time.Time) {
	next.TenantID = tenantID
	next.Date = date
	if current == nil {
		next.Version = 1
		next.CreatedAt = now
	} else {
		next.Version = current.Version + 1
		next.CreatedAt = current.CreatedAt
	}
	next.UpdatedAt = now
}

func cloneRegister(r *models.Register) *models.Register {
	if r == nil {
		return nil
	}
	return r.Clone()
}
