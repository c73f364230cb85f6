package audit

import (
	"time"

	"github.com/google/uuid"
)

// DecisionAudit is the durable trail of leave decisions, written by the
// Kafka consumer from decision events. The (request_id, status) key makes
// event redelivery harmless.
type DecisionAudit struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_decision_audit_request_status"`
	Status    string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_decision_audit_request_status"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	LeaveType string    `gorm:"type:varchar(20);not null"`
	Days      int       `gorm:"not null"`
	DecidedBy string    `gorm:"type:varchar(64)"`

	DeductedQ1      int `gorm:"not null;default:0"`
	DeductedQ2      int `gorm:"not null;default:0"`
	DeductedQ3      int `gorm:"not null;default:0"`
	DeductedQ4      int `gorm:"not null;default:0"`
	DeductedCarried int `gorm:"not null;default:0"`

	OccurredAt time.Time
	CreatedAt  time.Time
}

func (DecisionAudit) TableName() string {
	return "leave_decision_audit"
}
