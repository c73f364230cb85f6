package events

import "time"

const LeaveDecidedTopic = "hr.leave.decision.v1"

// LeaveDecidedEvent is emitted through the outbox whenever a request leaves
// the PENDING state.
type LeaveDecidedEvent struct {
	EventType string `json:"event_type"`
	RequestID string `json:"request_id"`
	UserID    string `json:"user_id"`
	LeaveType string `json:"leave_type"`
	Days      int    `json:"days"`
	Status    string `json:"status"`
	DecidedBy string `json:"decided_by"`

	// Per-bucket deduction applied on approval, zeroes otherwise.
	DeductedQ1      int `json:"deducted_q1"`
	DeductedQ2      int `json:"deducted_q2"`
	DeductedQ3      int `json:"deducted_q3"`
	DeductedQ4      int `json:"deducted_q4"`
	DeductedCarried int `json:"deducted_carried"`

	OccurredAt time.Time `json:"occurred_at"`
}
