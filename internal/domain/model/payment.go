package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/domain/event"
	"github.com/bibbank/microcred/internal/domain/valueobject"
)

// PaymentDraft carries everything needed to record a payment: what the
// borrower paid, how the engine allocated it, and the loan state it
// replaced so the payment can later be reversed.
type PaymentDraft struct {
	ID             string
	OwnerID        string
	LoanID         string
	ClientID       string
	Date           time.Time
	Amount         decimal.Decimal
	Method         valueobject.PaymentMethod
	Notes          string
	IsInterestOnly bool

	PrincipalPaid     decimal.Decimal
	InterestPaid      decimal.Decimal
	Classification    valueobject.Classification
	ScoreDelta        decimal.Decimal
	InstallmentNumber int

	PreviousStatus  valueobject.LoanStatus
	PreviousDueDate time.Time
	PreviousBalance decimal.Decimal
}

// ---------------------------------------------------------------------------
// Payment aggregate
// ---------------------------------------------------------------------------

// Payment is immutable apart from the reversal timestamp, which is set at
// most once.
type Payment struct {
	d            PaymentDraft
	reversedAt   *time.Time
	domainEvents []event.DomainEvent
}

// NewPayment validates a draft and records a PaymentProcessed event.
func NewPayment(d PaymentDraft) (Payment, error) {
	switch {
	case d.ID == "":
		return Payment{}, errors.New("payment ID is required")
	case d.OwnerID == "":
		return Payment{}, errors.New("owner ID is required")
	case d.LoanID == "":
		return Payment{}, errors.New("loan ID is required")
	case d.ClientID == "":
		return Payment{}, errors.New("client ID is required")
	case d.Method.IsZero():
		return Payment{}, errors.New("payment method is required")
	case !d.Amount.IsPositive():
		return Payment{}, ErrInvalidPaymentAmount
	}

	p := Payment{d: d}
	p.domainEvents = []event.DomainEvent{event.NewPaymentProcessed(
		d.LoanID, d.OwnerID, d.ID, d.ClientID,
		d.Amount, d.Method.String(), d.Classification.String(),
		d.PrincipalPaid, d.InterestPaid, d.ScoreDelta, d.Date,
	)}
	return p, nil
}

// ReconstructPayment rebuilds a Payment from persistence.
func ReconstructPayment(d PaymentDraft, reversedAt *time.Time) Payment {
	return Payment{d: d, reversedAt: reversedAt}
}

// Reverse marks the payment as undone.
func (p Payment) Reverse(now time.Time) (Payment, error) {
	if p.reversedAt != nil {
		return p, ErrPaymentAlreadyReversed
	}
	next := p
	at := now
	next.reversedAt = &at
	next.domainEvents = copyEvents(p.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewPaymentReversed(
		p.d.LoanID, p.d.OwnerID, p.d.ID, p.d.Amount, p.d.ScoreDelta, now,
	))
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (p Payment) ID() string                                 { return p.d.ID }
func (p Payment) OwnerID() string                            { return p.d.OwnerID }
func (p Payment) LoanID() string                             { return p.d.LoanID }
func (p Payment) ClientID() string                           { return p.d.ClientID }
func (p Payment) Date() time.Time                            { return p.d.Date }
func (p Payment) Amount() decimal.Decimal                    { return p.d.Amount }
func (p Payment) Method() valueobject.PaymentMethod          { return p.d.Method }
func (p Payment) Notes() string                              { return p.d.Notes }
func (p Payment) IsInterestOnly() bool                       { return p.d.IsInterestOnly }
func (p Payment) PrincipalPaid() decimal.Decimal             { return p.d.PrincipalPaid }
func (p Payment) InterestPaid() decimal.Decimal              { return p.d.InterestPaid }
func (p Payment) Classification() valueobject.Classification { return p.d.Classification }
func (p Payment) ScoreDelta() decimal.Decimal                { return p.d.ScoreDelta }
func (p Payment) InstallmentNumber() int                     { return p.d.InstallmentNumber }
func (p Payment) PreviousStatus() valueobject.LoanStatus     { return p.d.PreviousStatus }
func (p Payment) PreviousDueDate() time.Time                 { return p.d.PreviousDueDate }
func (p Payment) PreviousBalance() decimal.Decimal           { return p.d.PreviousBalance }
func (p Payment) ReversedAt() *time.Time                     { return p.reversedAt }
func (p Payment) IsReversed() bool                           { return p.reversedAt != nil }
func (p Payment) DomainEvents() []event.DomainEvent          { return p.domainEvents }

// Draft returns the recorded fields, used by persistence adapters.
func (p Payment) Draft() PaymentDraft { return p.d }

// ClearEvents returns a copy with an empty event list.
func (p Payment) ClearEvents() Payment {
	next := p
	next.domainEvents = nil
	return next
}
