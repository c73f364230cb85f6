package events

import "time"

const LedgerJobCompletedTopic = "hr.ledger.job.v1"

// LedgerJobCompletedEvent reports a finished scheduled batch run and its
// per-user tally.
type LedgerJobCompletedEvent struct {
	EventType string    `json:"event_type"`
	JobName   string    `json:"job_name"`
	Year      int       `json:"year"`
	Quarter   int       `json:"quarter,omitempty"`
	Credited  int       `json:"credited"`
	Errors    int       `json:"errors"`
	RunAt     time.Time `json:"run_at"`
}
