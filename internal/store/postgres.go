package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/gymdesk/backend/internal/models"
)

const registerColumns = `tenant_id, date, timezone, status, opening_amount, opening_time, opened_by,
	closing_amount, closing_time, closed_by, expected_balance, difference, discrepancy,
	total_income, total_expense, total_refunds, membership_income, other_income,
	transaction_count, reopen_count, notes, version, created_at, updated_at`

const transactionColumns = `id, tenant_id, type, category, amount, description, date,
	payment_method, status, user_id, user_name, notes, idempotency_key, created_at`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore keeps registers and transactions in two tables. Register
// writes are guarded by the version column instead of row locks; a lost race
// surfaces as ErrConflict and is retried according to the retry policy.
type PostgresStore struct {
	db    *sql.DB
	retry RetryPolicy
	now   func() time.Time
}

func NewPostgresStore(db *sql.DB, retry RetryPolicy) *PostgresStore {
	return &PostgresStore{
		db:    db,
		retry: retry,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GetRegister(ctx context.Context, tenantID, date string) (*models.Register, error) {
	reg, err := s.loadRegister(ctx, s.db, tenantID, date)
	if err != nil {
		return nil, classify(err)
	}
	return reg, nil
}

func (s *PostgresStore) ListRegisters(ctx context.Context, tenantID, startDate, endDate string) ([]models.Register, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+registerColumns+`
		FROM cash_registers
		WHERE tenant_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date DESC`, tenantID, startDate, endDate)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	registers := []models.Register{}
	for rows.Next() {
		reg, err := scanRegister(rows)
		if err != nil {
			return nil, classify(err)
		}
		registers = append(registers, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return registers, nil
}

func (s *PostgresStore) MutateRegister(ctx context.Context, tenantID, date string, fn RegisterMutation) (*models.Register, error) {
	var result *models.Register
	err := s.retry.Do(ctx, "mutate register "+tenantID+"/"+date, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return classify(err)
		}
		defer tx.Rollback()

		current, err := s.loadRegister(ctx, tx, tenantID, date)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return classify(err)
		}

		next, err := fn(cloneRegister(current))
		if err != nil {
			return err
		}

		stamp(tenantID, date, current, next, s.now())
		if err := s.saveRegister(ctx, tx, current, next); err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return classify(err)
		}
		result = next
		return nil
	})
	return result, err
}

func (s *PostgresStore) AppendTransaction(ctx context.Context, entry *models.Transaction, fn RegisterMutation) (*models.Transaction, bool, error) {
	var (
		stored  *models.Transaction
		created bool
	)
	err := s.retry.Do(ctx, "append transaction "+entry.ID, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return classify(err)
		}
		defer tx.Rollback()

		if entry.IdempotencyKey != "" {
			existing, err := scanTransaction(tx.QueryRowContext(ctx, `
				SELECT `+transactionColumns+`
				FROM cash_transactions
				WHERE tenant_id = $1 AND idempotency_key = $2`, entry.TenantID, entry.IdempotencyKey))
			if err == nil {
				stored, created = existing, false
				return nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return classify(err)
			}
		}

		current, err := s.loadRegister(ctx, tx, entry.TenantID, entry.Date)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return classify(err)
		}

		next, err := fn(cloneRegister(current))
		if err != nil {
			return err
		}

		stamp(entry.TenantID, entry.Date, current, next, s.now())
		if err := s.saveRegister(ctx, tx, current, next); err != nil {
			return err
		}

		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = s.now()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO cash_transactions (`+transactionColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			entry.ID, entry.TenantID, entry.Type, entry.Category, entry.Amount, entry.Description, entry.Date,
			entry.PaymentMethod, entry.Status, entry.UserID, entry.UserName, entry.Notes,
			nullString(entry.IdempotencyKey), entry.CreatedAt)
		if err != nil {
			return classify(err)
		}

		if err := tx.Commit(); err != nil {
			return classify(err)
		}
		copied := *entry
		stored, created = &copied, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (s *PostgresStore) GetTransaction(ctx context.Context, tenantID, id string) (*models.Transaction, error) {
	tx, err := scanTransaction(s.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM cash_transactions
		WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		return nil, classify(err)
	}
	return tx, nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, tenantID, startDate, endDate string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM cash_transactions
		WHERE tenant_id = $1 AND date >= $2 AND date <= $3
		ORDER BY created_at DESC, id DESC`, tenantID, startDate, endDate)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, classify(err)
		}
		transactions = append(transactions, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return transactions, nil
}

func (s *PostgresStore) loadRegister(ctx context.Context, q queryRower, tenantID, date string) (*models.Register, error) {
	reg, err := scanRegister(q.QueryRowContext(ctx, `
		SELECT `+registerColumns+`
		FROM cash_registers
		WHERE tenant_id = $1 AND date = $2`, tenantID, date))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return reg, err
}

// saveRegister inserts next when no register existed, otherwise updates it
// only if nobody else bumped the version since it was read.
func (s *PostgresStore) saveRegister(ctx context.Context, tx *sql.Tx, current, next *models.Register) error {
	var (
		result sql.Result
		err    error
	)
	if current == nil {
		result, err = tx.ExecContext(ctx, `
			INSERT INTO cash_registers (`+registerColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
			ON CONFLICT (tenant_id, date) DO NOTHING`,
			next.TenantID, next.Date, next.Timezone, next.Status, next.OpeningAmount, next.OpeningTime, next.OpenedBy,
			nullDecimal(next.ClosingAmount), next.ClosingTime, next.ClosedBy, nullDecimal(next.ExpectedBalance),
			nullDecimal(next.Difference), next.Discrepancy, next.TotalIncome, next.TotalExpense, next.TotalRefunds,
			next.MembershipIncome, next.OtherIncome, next.TransactionCount, next.ReopenCount, next.Notes,
			next.Version, next.CreatedAt, next.UpdatedAt)
	} else {
		result, err = tx.ExecContext(ctx, `
			UPDATE cash_registers
			SET status = $3, opening_amount = $4, opening_time = $5, opened_by = $6,
				closing_amount = $7, closing_time = $8, closed_by = $9, expected_balance = $10,
				difference = $11, discrepancy = $12, total_income = $13, total_expense = $14,
				total_refunds = $15, membership_income = $16, other_income = $17,
				transaction_count = $18, reopen_count = $19, notes = $20,
				version = $21, updated_at = $22
			WHERE tenant_id = $1 AND date = $2 AND version = $23`,
			next.TenantID, next.Date, next.Status, next.OpeningAmount, next.OpeningTime, next.OpenedBy,
			nullDecimal(next.ClosingAmount), next.ClosingTime, next.ClosedBy, nullDecimal(next.ExpectedBalance),
			nullDecimal(next.Difference), next.Discrepancy, next.TotalIncome, next.TotalExpense,
			next.TotalRefunds, next.MembershipIncome, next.OtherIncome,
			next.TransactionCount, next.ReopenCount, next.Notes,
			next.Version, next.UpdatedAt, current.Version)
	}
	if err != nil {
		return classify(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: register %s/%s", ErrConflict, next.TenantID, next.Date)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegister(row rowScanner) (*models.Register, error) {
	var reg models.Register
	var closingAmount, expected, difference decimal.NullDecimal
	var closingTime sql.NullTime
	err := row.Scan(
		&reg.TenantID, &reg.Date, &reg.Timezone, &reg.Status, &reg.OpeningAmount, &reg.OpeningTime, &reg.OpenedBy,
		&closingAmount, &closingTime, &reg.ClosedBy, &expected, &difference, &reg.Discrepancy,
		&reg.TotalIncome, &reg.TotalExpense, &reg.TotalRefunds, &reg.MembershipIncome, &reg.OtherIncome,
		&reg.TransactionCount, &reg.ReopenCount, &reg.Notes, &reg.Version, &reg.CreatedAt, &reg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	reg.ClosingAmount = decimalPtr(closingAmount)
	reg.ExpectedBalance = decimalPtr(expected)
	reg.Difference = decimalPtr(difference)
	if closingTime.Valid {
		t := closingTime.Time
		reg.ClosingTime = &t
	}
	return &reg, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var (
		tx  models.Transaction
		key sql.NullString
	)
	err := row.Scan(
		&tx.ID, &tx.TenantID, &tx.Type, &tx.Category, &tx.Amount, &tx.Description, &tx.Date,
		&tx.PaymentMethod, &tx.Status, &tx.UserID, &tx.UserName, &tx.Notes, &key, &tx.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	tx.IdempotencyKey = key.String
	return &tx, nil
}

// classify maps driver failures onto the store's error vocabulary.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrUnavailable) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "40001", pqErr.Code == "40P01", pqErr.Code == "23505":
			// serialization failure, deadlock, duplicate key: retry sees the winner
			return fmt.Errorf("%w: %v", ErrConflict, err)
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "53", pqErr.Code.Class() == "57":
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		case pqErr.Code.Class() == "22":
			// data exception, e.g. 22003 numeric value out of range
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
	}
	return err
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
