package model

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/microcred/internal/domain/valueobject"
	"github.com/bibbank/microcred/pkg/money"
)

var scheduleStart = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

func TestGenerateInstallmentSchedule_Annuity(t *testing.T) {
	// 1200 at 8% a month over 3 months.
	schedule, summary, err := GenerateInstallmentSchedule(
		decimal.NewFromInt(1200), decimal.RequireFromString("0.08"), 3, scheduleStart)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	assert.InDelta(t, 465.64, summary.Payment.InexactFloat64(), 0.01)
	assert.InDelta(t, 1396.92, summary.TotalPayable.InexactFloat64(), 0.02)
	assert.True(t, summary.TotalInterest.Equal(summary.TotalPayable.Sub(decimal.NewFromInt(1200))))

	t.Run("first period interest is balance times rate", func(t *testing.T) {
		assert.InDelta(t, 96.00, schedule[0].InterestAmount.InexactFloat64(), 0.001)
		assert.True(t, schedule[0].PrincipalAmount.Add(schedule[0].InterestAmount).Equal(schedule[0].Amount))
	})

	t.Run("balance runs down to zero", func(t *testing.T) {
		assert.True(t, schedule[2].RemainingBalanceAfterPayment.IsZero())
		for i := 1; i < len(schedule); i++ {
			assert.True(t, schedule[i].RemainingBalanceAfterPayment.LessThan(schedule[i-1].RemainingBalanceAfterPayment))
		}
	})

	t.Run("installments are monthly, pending and unpaid", func(t *testing.T) {
		for k, inst := range schedule {
			assert.Equal(t, k+1, inst.Number)
			assert.Equal(t, scheduleStart.AddDate(0, k+1, 0), inst.DueDate)
			assert.True(t, inst.Status.Equal(valueobject.InstallmentStatusPending))
			assert.True(t, inst.PaidAmount.IsZero())
			assert.True(t, inst.LateFee.IsZero())
			assert.True(t, inst.Amount.Equal(summary.Payment))
		}
	})
}

func TestGenerateInstallmentSchedule_ZeroRate(t *testing.T) {
	for _, tc := range []struct {
		principal int64
		n         int
	}{
		{1000, 3},
		{1000, 12},
		{500, 7},
		{999, 1},
	} {
		schedule, summary, err := GenerateInstallmentSchedule(decimal.NewFromInt(tc.principal), decimal.Zero, tc.n, scheduleStart)
		require.NoError(t, err)
		require.Len(t, schedule, tc.n)

		sum := decimal.Zero
		for _, inst := range schedule {
			assert.True(t, inst.Amount.Equal(schedule[0].Amount), "installments must be equal")
			assert.True(t, inst.InterestAmount.IsZero())
			sum = sum.Add(inst.Amount)
		}
		assert.InDelta(t, float64(tc.principal), sum.InexactFloat64(), 0.01)
		assert.True(t, summary.TotalInterest.Abs().LessThan(decimal.RequireFromString("0.01")))
		assert.True(t, schedule[tc.n-1].RemainingBalanceAfterPayment.IsZero())
	}
}

func TestGenerateInstallmentSchedule_InvalidInput(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		n         int
	}{
		{"zero principal", decimal.Zero, decimal.RequireFromString("0.1"), 3},
		{"negative principal", decimal.NewFromInt(-5), decimal.RequireFromString("0.1"), 3},
		{"negative rate", decimal.NewFromInt(100), decimal.RequireFromString("-0.01"), 3},
		{"no installments", decimal.NewFromInt(100), decimal.RequireFromString("0.1"), 0},
		{"degenerate denominator", decimal.NewFromInt(100), decimal.New(1, -20), 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := GenerateInstallmentSchedule(tc.principal, tc.rate, tc.n, scheduleStart)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestGenerateInstallmentSchedule_ScaleStaysBounded(t *testing.T) {
	schedule, summary, err := GenerateInstallmentSchedule(
		decimal.NewFromInt(1200), decimal.RequireFromString("0.08"), 360, scheduleStart)
	require.NoError(t, err)
	require.Len(t, schedule, 360)

	minExp := int32(-money.WorkingScale)
	assert.GreaterOrEqual(t, summary.Payment.Exponent(), minExp)
	for _, inst := range schedule {
		assert.GreaterOrEqual(t, inst.Amount.Exponent(), minExp, "amount of installment %d", inst.Number)
		assert.GreaterOrEqual(t, inst.InterestAmount.Exponent(), minExp, "interest of installment %d", inst.Number)
		assert.GreaterOrEqual(t, inst.PrincipalAmount.Exponent(), minExp, "principal of installment %d", inst.Number)
		assert.GreaterOrEqual(t, inst.RemainingBalanceAfterPayment.Exponent(), minExp, "balance after installment %d", inst.Number)
		assert.True(t, inst.PrincipalAmount.Add(inst.InterestAmount).Equal(inst.Amount))
	}
	assert.True(t, schedule[359].RemainingBalanceAfterPayment.IsZero())
}

func TestGenerateInstallmentSchedule_InstallmentCap(t *testing.T) {
	schedule, _, err := GenerateInstallmentSchedule(decimal.NewFromInt(1000), decimal.Zero, MaxInstallments, scheduleStart)
	require.NoError(t, err)
	assert.Len(t, schedule, MaxInstallments)

	_, _, err = GenerateInstallmentSchedule(decimal.NewFromInt(1000), decimal.Zero, MaxInstallments+1, scheduleStart)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestInstallment_OutstandingWritesOffPaidResidue(t *testing.T) {
	inst := Installment{
		Amount:     decimal.RequireFromString("465.6385"),
		PaidAmount: decimal.Zero,
		LateFee:    decimal.Zero,
		Status:     valueobject.InstallmentStatusPending,
	}
	inst = inst.withPayment(decimal.RequireFromString("465.631"))

	assert.True(t, inst.Status.Equal(valueobject.InstallmentStatusPaid))
	assert.True(t, inst.Outstanding().IsZero())
}
