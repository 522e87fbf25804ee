package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the tagged variant of a cash movement.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
	TypeRefund  TransactionType = "refund"
)

type Category string

const (
	CategoryMembership  Category = "membership"
	CategoryExtra       Category = "extra"
	CategoryPenalty     Category = "penalty"
	CategoryProduct     Category = "product"
	CategoryService     Category = "service"
	CategoryWithdrawal  Category = "withdrawal"
	CategoryRefund      Category = "refund"
	CategoryExpense     Category = "expense"
	CategorySupplier    Category = "supplier"
	CategoryServices    Category = "services"
	CategoryMaintenance Category = "maintenance"
	CategorySalary      Category = "salary"
	CategoryOther       Category = "other"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentOther    PaymentMethod = "other"
)

type TransactionStatus string

const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
	StatusRefunded  TransactionStatus = "refunded"
)

var categoriesByType = map[TransactionType]map[Category]bool{
	TypeIncome: {
		CategoryMembership: true,
		CategoryExtra:      true,
		CategoryPenalty:    true,
		CategoryProduct:    true,
		CategoryService:    true,
		CategoryOther:      true,
	},
	TypeExpense: {
		CategoryWithdrawal:  true,
		CategoryRefund:      true,
		CategoryExpense:     true,
		CategorySupplier:    true,
		CategoryServices:    true,
		CategoryMaintenance: true,
		CategorySalary:      true,
		CategoryOther:       true,
	},
	TypeRefund: {
		CategoryRefund: true,
	},
}

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	_, ok := categoriesByType[t]
	return ok
}

// Allows reports whether category c may be posted under type t.
func (t TransactionType) Allows(c Category) bool {
	return categoriesByType[t][c]
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentOther:
		return true
	}
	return false
}

// Transaction is one monetary event in a tenant's cash ledger.
// Completed transactions are never updated; reversals are new refund postings.
type Transaction struct {
	ID             string            `json:"id" db:"id"`
	TenantID       string            `json:"tenantId" db:"tenant_id"`
	Type           TransactionType   `json:"type" db:"type"`
	Category       Category          `json:"category" db:"category"`
	Amount         decimal.Decimal   `json:"amount" db:"amount"`
	Description    string            `json:"description" db:"description"`
	Date           string            `json:"date" db:"date"` // business date, YYYY-MM-DD in the tenant zone
	PaymentMethod  PaymentMethod     `json:"paymentMethod" db:"payment_method"`
	Status         TransactionStatus `json:"status" db:"status"`
	UserID         string            `json:"userId" db:"user_id"`
	UserName       string            `json:"userName" db:"user_name"`
	Notes          string            `json:"notes,omitempty" db:"notes"`
	IdempotencyKey string            `json:"idempotencyKey,omitempty" db:"idempotency_key"`
	CreatedAt      time.Time         `json:"createdAt" db:"created_at"`
}
