package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// PerInstallmentAmount splits the total payable evenly across the term.
// No rounding is applied and no remainder is redistributed.
func PerInstallmentAmount(amountToBePaid decimal.Decimal, term int) decimal.Decimal {
	return amountToBePaid.Div(decimal.NewFromInt(int64(term)))
}

// DueDateForWeek returns the due date of the n-th installment (zero
// based). The first installment is due on the loan start date itself.
func DueDateForWeek(startDate time.Time, week int) time.Time {
	return startDate.AddDate(0, 0, 7*week)
}

// IsDateOverdue checks if a due date has passed
func IsDateOverdue(dueDate time.Time, now time.Time) bool {
	return now.After(dueDate)
}
