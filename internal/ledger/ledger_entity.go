package ledger

import (
	"time"

	"github.com/google/uuid"
)

// LeaveLedger is one row per (user, calendar year). Quarter fields hold days
// remaining, not days used.
type LeaveLedger struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ledger_user_year"`
	Year   int       `gorm:"not null;uniqueIndex:idx_ledger_user_year"`

	Q1 int `gorm:"not null;default:0"`
	Q2 int `gorm:"not null;default:0"`
	Q3 int `gorm:"not null;default:0"`
	Q4 int `gorm:"not null;default:0"`

	CarriedFromLastYear int `gorm:"not null;default:0"`
	OptionalUsed        int `gorm:"not null;default:0"`

	// Set by the year-end carry job once the 50% carry has been computed
	// for this row. Guards the new-year rollover ordering.
	CarryCalculated bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveLedger) TableName() string {
	return "leave_ledger"
}

// Balances is the mutable slice of a ledger row, used as the compare value
// for guarded updates.
type Balances struct {
	Q1                  int
	Q2                  int
	Q3                  int
	Q4                  int
	CarriedFromLastYear int
	OptionalUsed        int
}

func (l *LeaveLedger) Balances() Balances {
	return Balances{
		Q1:                  l.Q1,
		Q2:                  l.Q2,
		Q3:                  l.Q3,
		Q4:                  l.Q4,
		CarriedFromLastYear: l.CarriedFromLastYear,
		OptionalUsed:        l.OptionalUsed,
	}
}

// Total is the number of general-leave days still available.
func (b Balances) Total() int {
	return b.Q1 + b.Q2 + b.Q3 + b.Q4 + b.CarriedFromLastYear
}

// DeductionBreakdown records how many days each bucket contributed to a
// general-leave deduction.
type DeductionBreakdown struct {
	Q1      int `json:"q1"`
	Q2      int `json:"q2"`
	Q3      int `json:"q3"`
	Q4      int `json:"q4"`
	Carried int `json:"carried"`
}

// FieldDeltas is a sparse delta applied atomically to a ledger row. Zero
// fields are still written but change nothing.
type FieldDeltas struct {
	Q1                  int
	Q2                  int
	Q3                  int
	Q4                  int
	CarriedFromLastYear int
	OptionalUsed        int
}
