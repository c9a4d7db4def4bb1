package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	aggregateLoan   = "Loan"
	aggregateClient = "Client"
)

// ---------------------------------------------------------------------------
// Loan Events
// ---------------------------------------------------------------------------

// LoanOriginated is raised when a new loan is booked for a client.
type LoanOriginated struct {
	events.BaseEvent
	ClientID         string          `json:"client_id"`
	LoanType         string          `json:"loan_type"`
	Principal        decimal.Decimal `json:"principal"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	DueDate          time.Time       `json:"due_date"`
	Installments     int             `json:"installments,omitempty"`
}

func NewLoanOriginated(
	loanID, ownerID, clientID, loanType string,
	principal, interestRate, balance decimal.Decimal,
	dueDate time.Time, installments int, now time.Time,
) LoanOriginated {
	return LoanOriginated{
		BaseEvent:        events.NewBaseEvent("microcred.loan.originated", loanID, aggregateLoan, ownerID, now),
		ClientID:         clientID,
		LoanType:         loanType,
		Principal:        principal,
		InterestRate:     interestRate,
		RemainingBalance: balance,
		DueDate:          dueDate,
		Installments:     installments,
	}
}

// LoanRenewed is raised when an interest-only payment pushes a single loan's
// due date forward.
type LoanRenewed struct {
	events.BaseEvent
	PreviousDueDate time.Time `json:"previous_due_date"`
	NewDueDate      time.Time `json:"new_due_date"`
}

func NewLoanRenewed(loanID, ownerID string, previousDue, newDue, now time.Time) LoanRenewed {
	return LoanRenewed{
		BaseEvent:       events.NewBaseEvent("microcred.loan.renewed", loanID, aggregateLoan, ownerID, now),
		PreviousDueDate: previousDue,
		NewDueDate:      newDue,
	}
}

// LoanPaidOff is raised when a loan reaches the terminal paid status.
type LoanPaidOff struct {
	events.BaseEvent
	ClientID string `json:"client_id"`
}

func NewLoanPaidOff(loanID, ownerID, clientID string, now time.Time) LoanPaidOff {
	return LoanPaidOff{
		BaseEvent: events.NewBaseEvent("microcred.loan.paid_off", loanID, aggregateLoan, ownerID, now),
		ClientID:  clientID,
	}
}

// LateFeeAssessed is raised once per overdue installment that accrues a fee.
type LateFeeAssessed struct {
	events.BaseEvent
	InstallmentNumber int             `json:"installment_number"`
	LateFee           decimal.Decimal `json:"late_fee"`
	RemainingBalance  decimal.Decimal `json:"remaining_balance"`
}

func NewLateFeeAssessed(loanID, ownerID string, number int, fee, balance decimal.Decimal, now time.Time) LateFeeAssessed {
	return LateFeeAssessed{
		BaseEvent:         events.NewBaseEvent("microcred.loan.late_fee_assessed", loanID, aggregateLoan, ownerID, now),
		InstallmentNumber: number,
		LateFee:           fee,
		RemainingBalance:  balance,
	}
}

// ---------------------------------------------------------------------------
// Payment Events
// ---------------------------------------------------------------------------

// PaymentProcessed is raised when a payment has been applied to a loan.
// Payment events are keyed by loan so they stay ordered with the loan's
// other events.
type PaymentProcessed struct {
	events.BaseEvent
	PaymentID      string          `json:"payment_id"`
	ClientID       string          `json:"client_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	Classification string          `json:"classification"`
	PrincipalPaid  decimal.Decimal `json:"principal_paid"`
	InterestPaid   decimal.Decimal `json:"interest_paid"`
	ScoreDelta     decimal.Decimal `json:"score_delta"`
}

func NewPaymentProcessed(
	loanID, ownerID, paymentID, clientID string,
	amount decimal.Decimal, method, classification string,
	principalPaid, interestPaid, scoreDelta decimal.Decimal,
	now time.Time,
) PaymentProcessed {
	return PaymentProcessed{
		BaseEvent:      events.NewBaseEvent("microcred.payment.processed", loanID, aggregateLoan, ownerID, now),
		PaymentID:      paymentID,
		ClientID:       clientID,
		Amount:         amount,
		Method:         method,
		Classification: classification,
		PrincipalPaid:  principalPaid,
		InterestPaid:   interestPaid,
		ScoreDelta:     scoreDelta,
	}
}

// PaymentReversed is raised when a payment is undone by a compensating entry.
type PaymentReversed struct {
	events.BaseEvent
	PaymentID  string          `json:"payment_id"`
	Amount     decimal.Decimal `json:"amount"`
	ScoreDelta decimal.Decimal `json:"score_delta"`
}

func NewPaymentReversed(loanID, ownerID, paymentID string, amount, scoreDelta decimal.Decimal, now time.Time) PaymentReversed {
	return PaymentReversed{
		BaseEvent:  events.NewBaseEvent("microcred.payment.reversed", loanID, aggregateLoan, ownerID, now),
		PaymentID:  paymentID,
		Amount:     amount,
		ScoreDelta: scoreDelta,
	}
}

// ---------------------------------------------------------------------------
// Client Events
// ---------------------------------------------------------------------------

// ClientRegistered is raised when a lender adds a borrower.
type ClientRegistered struct {
	events.BaseEvent
	Name  string          `json:"name"`
	Score decimal.Decimal `json:"score"`
}

func NewClientRegistered(clientID, ownerID, name string, score decimal.Decimal, now time.Time) ClientRegistered {
	return ClientRegistered{
		BaseEvent: events.NewBaseEvent("microcred.client.registered", clientID, aggregateClient, ownerID, now),
		Name:      name,
		Score:     score,
	}
}

// ScoreAdjusted is raised for every score history entry appended to a client.
type ScoreAdjusted struct {
	events.BaseEvent
	Reason      string          `json:"reason"`
	Delta       decimal.Decimal `json:"delta"`
	ScoreBefore decimal.Decimal `json:"score_before"`
	ScoreAfter  decimal.Decimal `json:"score_after"`
}

func NewScoreAdjusted(clientID, ownerID, reason string, delta, before, after decimal.Decimal, now time.Time) ScoreAdjusted {
	return ScoreAdjusted{
		BaseEvent:   events.NewBaseEvent("microcred.client.score_adjusted", clientID, aggregateClient, ownerID, now),
		Reason:      reason,
		Delta:       delta,
		ScoreBefore: before,
		ScoreAfter:  after,
	}
}
