package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

// IsDateOverdue checks if a due date has passed relative to now
func IsDateOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// CapacityRatio returns installment/balance rounded to 4 decimal places.
// Returns zero when balance is zero.
func CapacityRatio(installment, balance decimal.Decimal) decimal.Decimal {
	if balance.IsZero() {
		return decimal.Zero
	}
	return installment.Div(balance).Round(4)
}
