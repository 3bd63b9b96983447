// Package amortization computes flat-rate installment schedules. The rate is
// simple (non-compounding) per installment, matching the product's fixed-rate
// loans rather than a reducing-balance schedule.
package amortization

import (
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/progresar/progresar-core/pkg/errors"
)

// Calculator derives installment schedules from a fixed per-installment rate.
type Calculator struct {
	Rate            decimal.Decimal // per-installment interest rate, e.g. 0.015
	MinInstallments int
	MaxInstallments int
	PeriodMonths    int // spacing between consecutive due dates
}

// Schedule is the result of amortizing a principal over N installments.
type Schedule struct {
	Principal         decimal.Decimal
	InstallmentCount  int
	InstallmentAmount decimal.Decimal
	TotalAmount       decimal.Decimal
	TotalInterest     decimal.Decimal
	// Amounts holds the per-installment amounts in order. All entries equal
	// InstallmentAmount except possibly the last, which absorbs the rounding
	// residual so the amounts sum to TotalAmount exactly.
	Amounts []decimal.Decimal
}

// Calculate amortizes principal over count installments.
//
//	totalAmount       = round2(principal * (1 + rate*count))
//	installmentAmount = ceil2(totalAmount / count)
//
// Rounding the per-installment amount up to the cent keeps every regular
// installment equal while the final one takes whatever is left, so no penny
// drift accumulates across the schedule.
func (c *Calculator) Calculate(principal decimal.Decimal, count int) (*Schedule, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, customError.WrapInvalidAmount("principal must be greater than 0")
	}
	if count < c.MinInstallments || count > c.MaxInstallments {
		return nil, customError.WrapInvalidInstallmentCount(count, c.MinInstallments, c.MaxInstallments)
	}

	n := decimal.NewFromInt(int64(count))
	totalAmount := principal.Mul(decimal.NewFromInt(1).Add(c.Rate.Mul(n))).Round(2)
	installmentAmount := totalAmount.Div(n).RoundCeil(2)
	totalInterest := totalAmount.Sub(principal)

	amounts := make([]decimal.Decimal, count)
	for i := 0; i < count-1; i++ {
		amounts[i] = installmentAmount
	}
	amounts[count-1] = totalAmount.Sub(installmentAmount.Mul(decimal.NewFromInt(int64(count - 1))))

	return &Schedule{
		Principal:         principal,
		InstallmentCount:  count,
		InstallmentAmount: installmentAmount,
		TotalAmount:       totalAmount,
		TotalInterest:     totalInterest,
		Amounts:           amounts,
	}, nil
}

// DueDates returns the due date of each installment, spaced PeriodMonths
// calendar months apart starting one period after createdAt.
func (c *Calculator) DueDates(createdAt time.Time, count int) []time.Time {
	dates := make([]time.Time, count)
	for i := 0; i < count; i++ {
		dates[i] = createdAt.AddDate(0, c.PeriodMonths*(i+1), 0)
	}
	return dates
}

// ApprovalScore maps the loan's risk inputs to a 0-100 score. leverageLimit
// and capacityLimit are the maximum allowed principal and installment for the
// account; callers must have verified principal <= leverageLimit and
// installment <= capacityLimit already.
func ApprovalScore(principal, installment, leverageLimit, capacityLimit decimal.Decimal) int {
	if leverageLimit.IsZero() || capacityLimit.IsZero() {
		return 0
	}

	leverageUse := principal.Div(leverageLimit)
	capacityUse := installment.Div(capacityLimit)

	penalty := leverageUse.Mul(decimal.NewFromInt(40)).Add(capacityUse.Mul(decimal.NewFromInt(30)))
	score := int(decimal.NewFromInt(100).Sub(penalty).Round(0).IntPart())
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
