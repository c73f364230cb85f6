package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/ledger"
)

func TestQuarterOf(t *testing.T) {
	expected := map[time.Month]int{
		time.January:   1,
		time.February:  1,
		time.March:     1,
		time.April:     2,
		time.May:       2,
		time.June:      2,
		time.July:      3,
		time.August:    3,
		time.September: 3,
		time.October:   4,
		time.November:  4,
		time.December:  4,
	}

	for month, quarter := range expected {
		assert.Equal(t, quarter, ledger.QuarterOf(month), "month %s", month)
	}
}

func TestQuarterStartMonth(t *testing.T) {
	starts := map[time.Month]int{
		time.January: 1,
		time.April:   2,
		time.July:    3,
		time.October: 4,
	}

	for month := time.January; month <= time.December; month++ {
		quarter, ok := ledger.QuarterStartMonth(month)
		if want, isStart := starts[month]; isStart {
			assert.True(t, ok, "month %s", month)
			assert.Equal(t, want, quarter, "month %s", month)
		} else {
			assert.False(t, ok, "month %s", month)
			assert.Zero(t, quarter, "month %s", month)
		}
	}
}
