package domain

// Leave types form a closed set. Optional leave draws from a fixed annual
// allowance, not from the quarterly balance.
const (
	LeaveTypeGeneral  = "GENERAL"
	LeaveTypeOptional = "OPTIONAL"
)

func ValidLeaveType(t string) bool {
	return t == LeaveTypeGeneral || t == LeaveTypeOptional
}

// Request statuses. PENDING is the only non-terminal state.
const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// OptionalHolidayCap is the number of optional-holiday slots per user per year.
const OptionalHolidayCap = 4

// QuarterlyCreditDays is the leave credit added to the active quarter at
// each quarter start.
const QuarterlyCreditDays = 5
