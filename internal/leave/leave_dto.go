package leave

import "github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"

type CreateLeaveRequest struct {
	LeaveType string `json:"leave_type" binding:"required,oneof=GENERAL OPTIONAL"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Days      int    `json:"days" binding:"required,min=1"`
	Reason    string `json:"reason"`
}

type DecideLeaveRequest struct {
	Decision        string  `json:"decision" binding:"required,oneof=approve reject"`
	RejectionReason *string `json:"rejection_reason"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	Days            int     `json:"days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ApprovedBy      *string `json:"approved_by,omitempty"`
	ApprovedAt      *string `json:"approved_at,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`

	// Present only on a freshly approved response.
	Deduction *ledger.DeductionBreakdown `json:"deduction,omitempty"`
}
