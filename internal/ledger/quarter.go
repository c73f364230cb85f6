package ledger

import "time"

// QuarterOf maps a calendar month to its quarter index: months 1-3 are
// quarter 1, 4-6 quarter 2, 7-9 quarter 3, 10-12 quarter 4.
func QuarterOf(month time.Month) int {
	return (int(month)-1)/3 + 1
}

// QuarterStartMonth reports whether a month is the first month of a quarter
// and, if so, which quarter it opens.
func QuarterStartMonth(month time.Month) (int, bool) {
	switch month {
	case time.January:
		return 1, true
	case time.April:
		return 2, true
	case time.July:
		return 3, true
	case time.October:
		return 4, true
	default:
		return 0, false
	}
}
