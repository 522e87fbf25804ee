package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar key format for registers and business dates.
const DateLayout = "2006-01-02"

type RegisterStatus string

const (
	RegisterOpen   RegisterStatus = "open"
	RegisterClosed RegisterStatus = "closed"
)

// Register is the daily cash register of one tenant for one calendar date.
type Register struct {
	TenantID string         `json:"tenantId" db:"tenant_id"`
	Date     string         `json:"date" db:"date"`
	Timezone string         `json:"timezone" db:"timezone"`
	Status   RegisterStatus `json:"status" db:"status"`

	OpeningAmount decimal.Decimal `json:"openingAmount" db:"opening_amount"`
	OpeningTime   time.Time       `json:"openingTime" db:"opening_time"`
	OpenedBy      string          `json:"openedBy" db:"opened_by"`

	ClosingAmount *decimal.Decimal `json:"closingAmount" db:"closing_amount"`
	ClosingTime   *time.Time       `json:"closingTime" db:"closing_time"`
	ClosedBy      string           `json:"closedBy,omitempty" db:"closed_by"`

	ExpectedBalance *decimal.Decimal `json:"expectedBalance,omitempty" db:"expected_balance"`
	Difference      *decimal.Decimal `json:"difference,omitempty" db:"difference"`
	Discrepancy     Discrepancy      `json:"discrepancy,omitempty" db:"discrepancy"`

	TotalIncome      decimal.Decimal `json:"totalIncome" db:"total_income"`
	TotalExpense     decimal.Decimal `json:"totalExpense" db:"total_expense"`
	TotalRefunds     decimal.Decimal `json:"totalRefunds" db:"total_refunds"`
	MembershipIncome decimal.Decimal `json:"membershipIncome" db:"membership_income"`
	OtherIncome      decimal.Decimal `json:"otherIncome" db:"other_income"`
	TransactionCount int             `json:"transactionCount" db:"transaction_count"`
	ReopenCount      int             `json:"reopenCount" db:"reopen_count"`

	Notes     string    `json:"notes,omitempty" db:"notes"`
	Version   int       `json:"version" db:"version"` // for optimistic locking
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (r *Register) IsOpen() bool {
	return r.Status == RegisterOpen
}

// Apply adds one completed posting to the running aggregates.
func (r *Register) Apply(tx *Transaction) {
	switch tx.Type {
	case TypeIncome:
		r.TotalIncome = r.TotalIncome.Add(tx.Amount)
		if tx.Category == CategoryMembership {
			r.MembershipIncome = r.MembershipIncome.Add(tx.Amount)
		} else {
			r.OtherIncome = r.OtherIncome.Add(tx.Amount)
		}
	case TypeExpense:
		r.TotalExpense = r.TotalExpense.Add(tx.Amount)
	case TypeRefund:
		r.TotalRefunds = r.TotalRefunds.Add(tx.Amount)
	}
	r.TransactionCount++
}

// Clone returns a deep copy so mutations never leak into a caller's value.
func (r *Register) Clone() *Register {
	c := *r
	c.ClosingAmount = cloneDecimal(r.ClosingAmount)
	c.ExpectedBalance = cloneDecimal(r.ExpectedBalance)
	c.Difference = cloneDecimal(r.Difference)
	if r.ClosingTime != nil {
		t := *r.ClosingTime
		c.ClosingTime = &t
	}
	return &c
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
