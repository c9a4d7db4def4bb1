package model

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/domain/valueobject"
	"github.com/bibbank/microcred/pkg/money"
)

// Installment is one period of an amortized loan. Number, due date and the
// amount breakdown are fixed at origination; only Status, PaidAmount and
// LateFee change afterwards.
type Installment struct {
	Number                       int
	DueDate                      time.Time
	Amount                       decimal.Decimal
	PrincipalAmount              decimal.Decimal
	InterestAmount               decimal.Decimal
	RemainingBalanceAfterPayment decimal.Decimal
	Status                       valueobject.InstallmentStatus
	PaidAmount                   decimal.Decimal
	LateFee                      decimal.Decimal
}

// MaxInstallments bounds the schedule length of one loan (50 years monthly).
const MaxInstallments = 600

// Outstanding is amount + lateFee - paidAmount, floored at zero. A paid
// installment owes nothing; its sub-cent residue is written off.
func (i Installment) Outstanding() decimal.Decimal {
	if i.Status.Equal(valueobject.InstallmentStatusPaid) {
		return decimal.Zero
	}
	return money.FloorZero(i.Amount.Add(i.LateFee).Sub(i.PaidAmount))
}

// settled reports whether the paid amount covers amount plus late fee
// within cent tolerance.
func (i Installment) settled() bool {
	return money.AtLeast(i.PaidAmount, i.Amount.Add(i.LateFee))
}

// withPayment returns the installment after paidAmount changes by delta,
// with its status recomputed.
func (i Installment) withPayment(delta decimal.Decimal) Installment {
	i.PaidAmount = money.FloorZero(i.PaidAmount.Add(delta))
	switch {
	case i.settled():
		i.Status = valueobject.InstallmentStatusPaid
	case i.PaidAmount.IsPositive():
		i.Status = valueobject.InstallmentStatusPartiallyPaid
	default:
		i.Status = valueobject.InstallmentStatusPending
	}
	return i
}

// AmortizationSummary is the projection shown to a lender before booking an
// installments loan.
type AmortizationSummary struct {
	Payment       decimal.Decimal
	TotalPayable  decimal.Decimal
	TotalInterest decimal.Decimal
}

// GenerateInstallmentSchedule computes a fixed-payment amortization schedule.
//
// Parameters:
//   - principal:   the loan amount, must be positive
//   - monthlyRate: interest per period as a fraction (0.10 = 10%), must be >= 0
//   - n:           number of monthly installments, 1 to MaxInstallments
//   - startDate:   installment k falls due k months after this date
//
// The calculation uses:
//
//	payment = P / n                           when r = 0
//	payment = P * r * (1+r)^n / ((1+r)^n - 1) otherwise
//
// Amounts are kept at money.WorkingScale decimal places, not cents; cent
// tolerance is applied when payments are matched against them.
func GenerateInstallmentSchedule(
	principal, monthlyRate decimal.Decimal,
	n int,
	startDate time.Time,
) ([]Installment, AmortizationSummary, error) {
	if !principal.IsPositive() {
		return nil, AmortizationSummary{}, fmt.Errorf("%w: principal must be positive", ErrInvalidInput)
	}
	if monthlyRate.IsNegative() {
		return nil, AmortizationSummary{}, fmt.Errorf("%w: interest rate must not be negative", ErrInvalidInput)
	}
	if n < 1 || n > MaxInstallments {
		return nil, AmortizationSummary{}, fmt.Errorf("%w: installment count must be between 1 and %d", ErrInvalidInput, MaxInstallments)
	}

	count := decimal.NewFromInt(int64(n))
	var payment decimal.Decimal

	if monthlyRate.IsZero() {
		payment = money.RoundWorking(principal.Div(count))
	} else {
		// The power is taken in float64; everything monetary stays decimal.
		r := monthlyRate.InexactFloat64()
		factor := math.Pow(1+r, float64(n))
		denominator := factor - 1
		if denominator == 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
			return nil, AmortizationSummary{}, fmt.Errorf("%w: degenerate rate %s for %d installments", ErrInvalidInput, monthlyRate, n)
		}
		payment = money.RoundWorking(principal.Mul(monthlyRate).Mul(decimal.NewFromFloat(factor / denominator)))
	}

	// Remaining balances are discounted back from the last installment.
	// Running the recurrence forward would multiply the payment's rounding
	// error by (1+r)^n.
	remaining := make([]decimal.Decimal, n+1)
	remaining[n] = decimal.Zero
	onePlusRate := decimal.NewFromInt(1).Add(monthlyRate)
	for k := n; k > 0; k-- {
		remaining[k-1] = money.RoundWorking(remaining[k].Add(payment).Div(onePlusRate))
	}

	schedule := make([]Installment, 0, n)
	balance := principal

	for k := 1; k <= n; k++ {
		interest := money.RoundWorking(balance.Mul(monthlyRate))
		principalPart := payment.Sub(interest)

		balance = remaining[k]
		if money.NearlyZero(balance) || balance.IsNegative() {
			balance = decimal.Zero
		}

		schedule = append(schedule, Installment{
			Number:                       k,
			DueDate:                      startDate.AddDate(0, k, 0),
			Amount:                       payment,
			PrincipalAmount:              principalPart,
			InterestAmount:               interest,
			RemainingBalanceAfterPayment: balance,
			Status:                       valueobject.InstallmentStatusPending,
			PaidAmount:                   decimal.Zero,
			LateFee:                      decimal.Zero,
		})
	}

	total := payment.Mul(count)
	return schedule, AmortizationSummary{
		Payment:       payment,
		TotalPayable:  total,
		TotalInterest: total.Sub(principal),
	}, nil
}
