package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/valueobject"
	"github.com/bibbank/microcred/pkg/money"
)

// DefaultRenewalTermDays is how far an interest-only payment pushes a
// single loan's due date.
const DefaultRenewalTermDays = 30

// ---------------------------------------------------------------------------
// LifecycleEngine – domain service applying payments to loans
// ---------------------------------------------------------------------------

// PaymentAllocation is how the engine booked a payment, plus the loan state
// it replaced.
type PaymentAllocation struct {
	PaymentID         string
	PrincipalPaid     decimal.Decimal
	InterestPaid      decimal.Decimal
	InstallmentNumber int
	DaysPastDue       int
	PreviousStatus    valueobject.LoanStatus
	PreviousDueDate   time.Time
	PreviousBalance   decimal.Decimal
}

// LifecycleEngine decides what a payment does to a loan. It performs no I/O.
type LifecycleEngine struct {
	renewalTermDays int
}

// NewLifecycleEngine returns an engine renewing single loans by
// renewalTermDays. Non-positive values fall back to the 30 day default.
func NewLifecycleEngine(renewalTermDays int) *LifecycleEngine {
	if renewalTermDays <= 0 {
		renewalTermDays = DefaultRenewalTermDays
	}
	return &LifecycleEngine{renewalTermDays: renewalTermDays}
}

// ApplyPayment applies one payment to loan.
//
// Paths:
//
//	single, interest-only -> renewal, amount must match one period of interest
//	single, regular       -> balance reduction, paid once under one cent
//	installments          -> earliest open installment, flag ignored
//
// The generated payment ID is appended to the loan's payment history last.
func (e *LifecycleEngine) ApplyPayment(
	loan model.Loan,
	amount decimal.Decimal,
	isInterestOnly bool,
	now time.Time,
) (model.Loan, valueobject.Classification, PaymentAllocation, error) {
	if loan.Status().IsTerminal() {
		return loan, valueobject.Classification{}, PaymentAllocation{}, model.ErrLoanAlreadyPaid
	}
	if !amount.IsPositive() {
		return loan, valueobject.Classification{}, PaymentAllocation{}, model.ErrInvalidPaymentAmount
	}

	alloc := PaymentAllocation{
		PaymentID:       uuid.New().String(),
		DaysPastDue:     loan.DaysPastDue(now),
		PrincipalPaid:   decimal.Zero,
		InterestPaid:    decimal.Zero,
		PreviousStatus:  loan.Status(),
		PreviousDueDate: loan.DueDate(),
		PreviousBalance: loan.RemainingBalance(),
	}

	var (
		next           model.Loan
		classification valueobject.Classification
	)

	switch {
	case loan.Type().IsInstallments():
		updated, app, err := loan.PayInstallment(amount, now)
		if err != nil {
			return loan, valueobject.Classification{}, PaymentAllocation{}, err
		}
		next = updated
		alloc.InstallmentNumber = app.Number
		alloc.PrincipalPaid = app.PrincipalPaid
		alloc.InterestPaid = app.InterestPaid
		switch {
		case app.Last:
			classification = valueobject.ClassificationPaidInFull
		case app.Cleared:
			classification = valueobject.ClassificationInstallmentCleared
		default:
			classification = valueobject.ClassificationPartialPayment
		}

	case isInterestOnly:
		expected := loan.ExpectedInterest()
		if !money.NearlyEqual(amount, expected) {
			return loan, valueobject.Classification{}, PaymentAllocation{},
				fmt.Errorf("%w: expected %s, got %s", model.ErrInterestAmountMismatch, expected.StringFixed(2), amount.StringFixed(2))
		}
		next = loan.Renew(e.renewalTermDays, now)
		alloc.InterestPaid = amount
		classification = valueobject.ClassificationRenewedOnTime

	default:
		updated, applied := loan.ReduceBalance(amount, now)
		next = updated
		alloc.InterestPaid, alloc.PrincipalPaid = splitSingle(applied, loan.InterestRate())
		if next.Status().IsTerminal() {
			classification = valueobject.ClassificationPaidInFull
		} else {
			classification = valueobject.ClassificationPartialPayment
		}
	}

	next = next.RecordPayment(alloc.PaymentID, now)
	return next, classification, alloc, nil
}

// ReversePayment undoes payment on loan and marks the payment reversed.
func (e *LifecycleEngine) ReversePayment(
	loan model.Loan,
	payment model.Payment,
	now time.Time,
) (model.Loan, model.Payment, error) {
	if payment.IsReversed() {
		return loan, payment, model.ErrPaymentAlreadyReversed
	}
	nextLoan, err := loan.RevertPayment(payment, now)
	if err != nil {
		return loan, payment, err
	}
	nextPayment, err := payment.Reverse(now)
	if err != nil {
		return loan, payment, err
	}
	return nextLoan, nextPayment, nil
}

// AssessLateFees charges ratePct on each overdue open installment once.
func (e *LifecycleEngine) AssessLateFees(loan model.Loan, ratePct decimal.Decimal, now time.Time) (model.Loan, int) {
	return loan.AssessLateFees(ratePct, now)
}

// splitSingle divides an amount paid towards a single loan's
// principal*(1+rate/100) balance in the same proportion as that balance.
func splitSingle(applied, ratePct decimal.Decimal) (interest, principal decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	interest = applied.Mul(ratePct).Div(hundred.Add(ratePct))
	return interest, applied.Sub(interest)
}
