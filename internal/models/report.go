package models

import (
	"github.com/shopspring/decimal"
)

// Discrepancy classifies counted cash against the expected balance.
type Discrepancy string

const (
	DiscrepancySurplus  Discrepancy = "surplus"
	DiscrepancyShortage Discrepancy = "shortage"
	DiscrepancyExact    Discrepancy = "exact"
)

type Breakdown struct {
	OpeningAmount    decimal.Decimal `json:"openingAmount"`
	TotalIncome      decimal.Decimal `json:"totalIncome"`
	MembershipIncome decimal.Decimal `json:"membershipIncome"`
	OtherIncome      decimal.Decimal `json:"otherIncome"`
	TotalExpense     decimal.Decimal `json:"totalExpense"`
	TotalRefunds     decimal.Decimal `json:"totalRefunds"`
	TransactionCount int             `json:"transactionCount"`
}

type ReconciliationReport struct {
	TenantID        string          `json:"tenantId"`
	Date            string          `json:"date"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	ClosingAmount   decimal.Decimal `json:"closingAmount"`
	Difference      decimal.Decimal `json:"difference"`
	Classification  Discrepancy     `json:"classification"`
	Breakdown       Breakdown       `json:"breakdown"`
}

// Summary is a read-side rollup of completed transactions over a date range.
type Summary struct {
	TenantID         string                              `json:"tenantId"`
	StartDate        string                              `json:"startDate"`
	EndDate          string                              `json:"endDate"`
	TotalIncome      decimal.Decimal                     `json:"totalIncome"`
	TotalExpense     decimal.Decimal                     `json:"totalExpense"`
	TotalRefunds     decimal.Decimal                     `json:"totalRefunds"`
	MembershipIncome decimal.Decimal                     `json:"membershipIncome"`
	OtherIncome      decimal.Decimal                     `json:"otherIncome"`
	Net              decimal.Decimal                     `json:"net"`
	TransactionCount int                                 `json:"transactionCount"`
	ByCategory       map[Category]decimal.Decimal        `json:"byCategory"`
	ByType           map[TransactionType]decimal.Decimal `json:"byType"`
	ByPaymentMethod  map[PaymentMethod]decimal.Decimal   `json:"byPaymentMethod"`
}

// AggregateDrift is one aggregate whose stored value disagrees with the ledger.
type AggregateDrift struct {
	Field    string          `json:"field"`
	Stored   decimal.Decimal `json:"stored"`
	Computed decimal.Decimal `json:"computed"`
}

type ConsistencyReport struct {
	TenantID   string           `json:"tenantId"`
	Date       string           `json:"date"`
	Consistent bool             `json:"consistent"`
	Drift      []AggregateDrift `json:"drift"`
}
