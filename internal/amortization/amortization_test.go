package amortization

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/progresar/progresar-core/pkg/errors"
)

func newCalculator() *Calculator {
	return &Calculator{
		Rate:            decimal.NewFromFloat(0.015),
		MinInstallments: 1,
		MaxInstallments: 6,
		PeriodMonths:    1,
	}
}

func TestCalculate(t *testing.T) {
	calc := newCalculator()

	tests := []struct {
		name              string
		principal         decimal.Decimal
		count             int
		installmentAmount string
		totalAmount       string
		totalInterest     string
		lastAmount        string
	}{
		{
			name:              "principal 1000 over 3 installments",
			principal:         decimal.NewFromInt(1000),
			count:             3,
			installmentAmount: "348.34",
			totalAmount:       "1045.00",
			totalInterest:     "45.00",
			lastAmount:        "348.32",
		},
		{
			name:              "single installment",
			principal:         decimal.NewFromInt(2000),
			count:             1,
			installmentAmount: "2030.00",
			totalAmount:       "2030.00",
			totalInterest:     "30.00",
			lastAmount:        "2030.00",
		},
		{
			name:              "six installments",
			principal:         decimal.NewFromInt(5000),
			count:             6,
			installmentAmount: "908.34",
			totalAmount:       "5450.00",
			totalInterest:     "450.00",
			lastAmount:        "908.30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schedule, err := calc.Calculate(tt.principal, tt.count)
			require.NoError(t, err)

			assert.Equal(t, tt.installmentAmount, schedule.InstallmentAmount.StringFixed(2))
			assert.Equal(t, tt.totalAmount, schedule.TotalAmount.StringFixed(2))
			assert.Equal(t, tt.totalInterest, schedule.TotalInterest.StringFixed(2))
			assert.Len(t, schedule.Amounts, tt.count)
			assert.Equal(t, tt.lastAmount, schedule.Amounts[tt.count-1].StringFixed(2))
		})
	}
}

func TestCalculate_NoPennyDrift(t *testing.T) {
	calc := newCalculator()

	principals := []string{"1", "99.99", "1000", "1234.56", "50000", "333333.33"}
	for _, p := range principals {
		principal, err := decimal.NewFromString(p)
		require.NoError(t, err)

		for count := 1; count <= 6; count++ {
			schedule, err := calc.Calculate(principal, count)
			require.NoError(t, err)

			sum := decimal.Zero
			for _, amount := range schedule.Amounts {
				sum = sum.Add(amount)
			}
			assert.True(t, sum.Equal(schedule.TotalAmount),
				"principal=%s count=%d: sum %s != total %s", p, count, sum, schedule.TotalAmount)

			expectedTotal := principal.Mul(decimal.NewFromInt(1).Add(calc.Rate.Mul(decimal.NewFromInt(int64(count))))).Round(2)
			assert.True(t, schedule.TotalAmount.Equal(expectedTotal))
			assert.True(t, schedule.TotalInterest.Equal(schedule.TotalAmount.Sub(principal)))
		}
	}
}

func TestCalculate_Deterministic(t *testing.T) {
	calc := newCalculator()

	first, err := calc.Calculate(decimal.NewFromFloat(1234.56), 5)
	require.NoError(t, err)
	second, err := calc.Calculate(decimal.NewFromFloat(1234.56), 5)
	require.NoError(t, err)

	assert.True(t, first.InstallmentAmount.Equal(second.InstallmentAmount))
	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
	for i := range first.Amounts {
		assert.True(t, first.Amounts[i].Equal(second.Amounts[i]))
	}
}

func TestCalculate_InvalidInputs(t *testing.T) {
	calc := newCalculator()

	_, err := calc.Calculate(decimal.Zero, 3)
	assert.True(t, errors.Is(err, customError.ErrInvalidAmount))

	_, err = calc.Calculate(decimal.NewFromInt(-100), 3)
	assert.True(t, errors.Is(err, customError.ErrInvalidAmount))

	_, err = calc.Calculate(decimal.NewFromInt(1000), 0)
	assert.True(t, errors.Is(err, customError.ErrInvalidInstallmentCount))

	_, err = calc.Calculate(decimal.NewFromInt(1000), 7)
	assert.True(t, errors.Is(err, customError.ErrInvalidInstallmentCount))
}

func TestDueDates(t *testing.T) {
	calc := newCalculator()

	start := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	dates := calc.DueDates(start, 3)

	require.Len(t, dates, 3)
	assert.Equal(t, time.Date(2025, 2, 15, 10, 0, 0, 0, time.UTC), dates[0])
	assert.Equal(t, time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC), dates[1])
	assert.Equal(t, time.Date(2025, 4, 15, 10, 0, 0, 0, time.UTC), dates[2])
}

func TestApprovalScore(t *testing.T) {
	// Tiny loan against large limits scores near 100.
	score := ApprovalScore(decimal.NewFromInt(100), decimal.NewFromInt(35), decimal.NewFromInt(5000), decimal.NewFromInt(700))
	assert.Greater(t, score, 90)

	// Loan at both limits takes the full penalty.
	score = ApprovalScore(decimal.NewFromInt(5000), decimal.NewFromInt(700), decimal.NewFromInt(5000), decimal.NewFromInt(700))
	assert.Equal(t, 30, score)

	// Zero limits mean no capacity at all.
	assert.Equal(t, 0, ApprovalScore(decimal.NewFromInt(100), decimal.NewFromInt(35), decimal.Zero, decimal.Zero))

	for _, score := range []int{
		ApprovalScore(decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(5000), decimal.NewFromInt(700)),
		ApprovalScore(decimal.NewFromInt(5000), decimal.NewFromInt(700), decimal.NewFromInt(5000), decimal.NewFromInt(700)),
	} {
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
}
