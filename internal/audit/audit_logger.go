package audit

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gymdesk/backend/internal/models"
)

type AuditEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	EventType     string    `json:"event_type"`
	TenantID      string    `json:"tenant_id"`
	Date          string    `json:"date,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	ActorID       string    `json:"actor_id,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	Status        string    `json:"status"`
	Details       any       `json:"details,omitempty"`
}

// AuditLogger writes one JSON line per cash register event through the
// standard logger.
type AuditLogger struct {
	logger *log.Logger
	now    func() time.Time
}

func NewAuditLogger() *AuditLogger {
	return &AuditLogger{
		logger: log.Default(),
		now:    time.Now,
	}
}

func (a *AuditLogger) LogOpen(reg *models.Register) {
	a.log(AuditEvent{
		EventType: "REGISTER_OPEN",
		TenantID:  reg.TenantID,
		Date:      reg.Date,
		ActorID:   reg.OpenedBy,
		Amount:    reg.OpeningAmount.StringFixed(2),
		Status:    "SUCCESS",
		Details:   map[string]string{"timezone": reg.Timezone},
	})
}

func (a *AuditLogger) LogReopen(reg *models.Register) {
	a.log(AuditEvent{
		EventType: "REGISTER_REOPEN",
		TenantID:  reg.TenantID,
		Date:      reg.Date,
		ActorID:   reg.OpenedBy,
		Amount:    reg.OpeningAmount.StringFixed(2),
		Status:    "SUCCESS",
		Details:   map[string]int{"reopen_count": reg.ReopenCount},
	})
}

func (a *AuditLogger) LogClose(reg *models.Register, report *models.ReconciliationReport) {
	a.log(AuditEvent{
		EventType: "REGISTER_CLOSE",
		TenantID:  reg.TenantID,
		Date:      reg.Date,
		ActorID:   reg.ClosedBy,
		Amount:    report.ClosingAmount.StringFixed(2),
		Status:    "SUCCESS",
		Details: map[string]string{
			"expected":       report.ExpectedBalance.StringFixed(2),
			"difference":     report.Difference.StringFixed(2),
			"classification": string(report.Classification),
		},
	})
}

func (a *AuditLogger) LogPosting(tx *models.Transaction) {
	a.log(AuditEvent{
		EventType:     "POSTING",
		TenantID:      tx.TenantID,
		Date:          tx.Date,
		TransactionID: tx.ID,
		ActorID:       tx.UserID,
		Amount:        tx.Amount.StringFixed(2),
		Status:        string(tx.Status),
		Details: map[string]string{
			"type":           string(tx.Type),
			"category":       string(tx.Category),
			"payment_method": string(tx.PaymentMethod),
		},
	})
}

func (a *AuditLogger) LogError(operation, tenantID, date string, err error) {
	a.log(AuditEvent{
		EventType: "ERROR",
		TenantID:  tenantID,
		Date:      date,
		Status:    "FAILED",
		Details: map[string]string{
			"operation": operation,
			"error":     err.Error(),
		},
	})
}

func (a *AuditLogger) log(event AuditEvent) {
	event.Timestamp = a.now().UTC()
	data, _ := json.Marshal(event)
	a.logger.Printf("AUDIT: %s", string(data))
}
