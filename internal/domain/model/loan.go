package model

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/domain/event"
	"github.com/bibbank/microcred/internal/domain/valueobject"
	"github.com/bibbank/microcred/pkg/money"
)

// RenewalEntry records one interest-only renewal of a single loan.
type RenewalEntry struct {
	Date       time.Time
	NewDueDate time.Time
}

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate. Mutations return a new copy.
type Loan struct {
	id               string
	ownerID          string
	clientID         string
	loanType         valueobject.LoanType
	principal        decimal.Decimal
	interestRate     decimal.Decimal
	startDate        time.Time
	dueDate          time.Time
	remainingBalance decimal.Decimal
	status           valueobject.LoanStatus
	paymentHistory   []string
	reversedPayments []string
	renewalHistory   []RenewalEntry
	schedule         []Installment
	notes            string
	version          int
	createdAt        time.Time
	updatedAt        time.Time
	domainEvents     []event.DomainEvent
}

// LoanSnapshot is the persisted form of a Loan.
type LoanSnapshot struct {
	ID               string
	OwnerID          string
	ClientID         string
	Type             valueobject.LoanType
	Principal        decimal.Decimal
	InterestRate     decimal.Decimal
	StartDate        time.Time
	DueDate          time.Time
	RemainingBalance decimal.Decimal
	Status           valueobject.LoanStatus
	PaymentHistory   []string
	ReversedPayments []string
	RenewalHistory   []RenewalEntry
	Schedule         []Installment
	Notes            string
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewSingleLoan books a one-shot loan due termDays after startDate. The
// balance is principal plus one period of interest.
func NewSingleLoan(
	ownerID, clientID string,
	principal, interestRate decimal.Decimal,
	startDate time.Time,
	termDays int,
	notes string,
	now time.Time,
) (Loan, error) {
	if err := validateOrigination(ownerID, clientID, principal, interestRate); err != nil {
		return Loan{}, err
	}
	if termDays <= 0 {
		return Loan{}, fmt.Errorf("%w: term days must be positive", ErrInvalidInput)
	}

	balance := principal.Add(money.Percent(principal, interestRate))
	return newLoan(ownerID, clientID, valueobject.LoanTypeSingle, principal, interestRate,
		startDate, startDate.AddDate(0, 0, termDays), balance, nil, notes, now), nil
}

// NewInstallmentsLoan books an amortized loan. interestRate is the monthly
// rate as a percentage.
func NewInstallmentsLoan(
	ownerID, clientID string,
	principal, interestRate decimal.Decimal,
	startDate time.Time,
	installments int,
	notes string,
	now time.Time,
) (Loan, error) {
	if err := validateOrigination(ownerID, clientID, principal, interestRate); err != nil {
		return Loan{}, err
	}

	schedule, summary, err := GenerateInstallmentSchedule(principal, money.RateFraction(interestRate), installments, startDate)
	if err != nil {
		return Loan{}, err
	}

	return newLoan(ownerID, clientID, valueobject.LoanTypeInstallments, principal, interestRate,
		startDate, schedule[0].DueDate, summary.TotalPayable, schedule, notes, now), nil
}

func validateOrigination(ownerID, clientID string, principal, interestRate decimal.Decimal) error {
	if ownerID == "" {
		return errors.New("owner ID is required")
	}
	if clientID == "" {
		return errors.New("client ID is required")
	}
	if !principal.IsPositive() {
		return fmt.Errorf("%w: principal must be positive", ErrInvalidInput)
	}
	if interestRate.IsNegative() {
		return fmt.Errorf("%w: interest rate must not be negative", ErrInvalidInput)
	}
	return nil
}

func newLoan(
	ownerID, clientID string,
	loanType valueobject.LoanType,
	principal, interestRate decimal.Decimal,
	startDate, dueDate time.Time,
	balance decimal.Decimal,
	schedule []Installment,
	notes string,
	now time.Time,
) Loan {
	id := uuid.New().String()
	l := Loan{
		id:               id,
		ownerID:          ownerID,
		clientID:         clientID,
		loanType:         loanType,
		principal:        principal,
		interestRate:     interestRate,
		startDate:        startDate,
		dueDate:          dueDate,
		remainingBalance: balance,
		status:           valueobject.LoanStatusActive,
		schedule:         schedule,
		notes:            notes,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}
	l.domainEvents = append(l.domainEvents, event.NewLoanOriginated(
		id, ownerID, clientID, loanType.String(),
		principal, interestRate, balance, dueDate, len(schedule), now,
	))
	return l
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(s LoanSnapshot) Loan {
	return Loan{
		id:               s.ID,
		ownerID:          s.OwnerID,
		clientID:         s.ClientID,
		loanType:         s.Type,
		principal:        s.Principal,
		interestRate:     s.InterestRate,
		startDate:        s.StartDate,
		dueDate:          s.DueDate,
		remainingBalance: s.RemainingBalance,
		status:           s.Status,
		paymentHistory:   s.PaymentHistory,
		reversedPayments: s.ReversedPayments,
		renewalHistory:   s.RenewalHistory,
		schedule:         s.Schedule,
		notes:            s.Notes,
		version:          s.Version,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Renew pushes a single loan's due date forward by termDays from the
// previous due date. The balance is left untouched.
func (l Loan) Renew(termDays int, now time.Time) Loan {
	newDue := l.dueDate.AddDate(0, 0, termDays)

	next := l.clone()
	next.dueDate = newDue
	next.renewalHistory = append(next.renewalHistory, RenewalEntry{Date: now, NewDueDate: newDue})
	next.status = valueobject.LoanStatusRenewed
	next.updatedAt = now
	next.domainEvents = append(next.domainEvents, event.NewLoanRenewed(l.id, l.ownerID, l.dueDate, newDue, now))
	return next
}

// ReduceBalance applies a regular payment to a single loan and returns the
// portion of amount that actually reduced the balance. A residue below one
// cent is written off and the loan becomes paid.
func (l Loan) ReduceBalance(amount decimal.Decimal, now time.Time) (Loan, decimal.Decimal) {
	applied := decimal.Min(amount, l.remainingBalance)
	newBalance := l.remainingBalance.Sub(amount)

	next := l.clone()
	next.updatedAt = now
	if newBalance.LessThan(money.Tolerance) {
		next.remainingBalance = decimal.Zero
		next.status = valueobject.LoanStatusPaid
		next.domainEvents = append(next.domainEvents, event.NewLoanPaidOff(l.id, l.ownerID, l.clientID, now))
		return next, applied
	}
	next.remainingBalance = newBalance
	next.status = valueobject.LoanStatusPartiallyPaid
	return next, applied
}

// InstallmentApplication describes what one payment did to the current
// installment of an amortized loan.
type InstallmentApplication struct {
	Number        int
	Applied       decimal.Decimal
	PrincipalPaid decimal.Decimal
	InterestPaid  decimal.Decimal
	Cleared       bool
	Last          bool
}

// PayInstallment adds amount to the earliest open installment. Clearing the
// final open installment pays the loan off; clearing any other advances the
// due date and returns the loan to active.
func (l Loan) PayInstallment(amount decimal.Decimal, now time.Time) (Loan, InstallmentApplication, error) {
	idx := l.currentInstallmentIndex()
	if idx < 0 {
		return l, InstallmentApplication{}, ErrLoanAlreadyPaid
	}

	current := l.schedule[idx]
	applied := decimal.Min(amount, current.Outstanding())
	app := InstallmentApplication{Number: current.Number, Applied: applied}
	if current.Amount.IsPositive() {
		app.PrincipalPaid = applied.Mul(current.PrincipalAmount).Div(current.Amount)
		app.InterestPaid = applied.Mul(current.InterestAmount).Div(current.Amount)
	}

	next := l.clone()
	next.updatedAt = now
	next.schedule[idx] = current.withPayment(amount)
	app.Cleared = next.schedule[idx].Status.Equal(valueobject.InstallmentStatusPaid)

	nextIdx := next.currentInstallmentIndex()
	switch {
	case app.Cleared && nextIdx < 0:
		app.Last = true
		next.status = valueobject.LoanStatusPaid
		next.remainingBalance = decimal.Zero
		next.domainEvents = append(next.domainEvents, event.NewLoanPaidOff(l.id, l.ownerID, l.clientID, now))
		return next, app, nil
	case app.Cleared:
		next.dueDate = next.schedule[nextIdx].DueDate
		next.status = valueobject.LoanStatusActive
	default:
		next.status = valueobject.LoanStatusPartiallyPaid
	}
	next.remainingBalance = next.outstandingTotal()
	return next, app, nil
}

// RecordPayment appends a payment identifier to the payment history.
func (l Loan) RecordPayment(paymentID string, now time.Time) Loan {
	next := l.clone()
	next.paymentHistory = append(next.paymentHistory, paymentID)
	next.updatedAt = now
	return next
}

// AssessLateFees charges ratePct percent of the installment amount on every
// open installment whose due day has passed and that carries no fee yet.
// It returns the updated loan and the number of installments charged.
func (l Loan) AssessLateFees(ratePct decimal.Decimal, now time.Time) (Loan, int) {
	if !l.loanType.IsInstallments() || l.status.IsTerminal() || !ratePct.IsPositive() {
		return l, 0
	}

	today := dayStart(now)
	next := l.clone()
	charged := 0
	for i, inst := range next.schedule {
		if !inst.Status.IsOpen() || !inst.LateFee.IsZero() || !dayStart(inst.DueDate).Before(today) {
			continue
		}
		inst.LateFee = money.Percent(inst.Amount, ratePct)
		next.schedule[i] = inst.withPayment(decimal.Zero)
		charged++
	}
	if charged == 0 {
		return l, 0
	}

	next.remainingBalance = next.outstandingTotal()
	next.updatedAt = now
	for _, inst := range next.schedule {
		if inst.LateFee.IsPositive() && l.installmentByNumber(inst.Number).LateFee.IsZero() {
			next.domainEvents = append(next.domainEvents, event.NewLateFeeAssessed(
				l.id, l.ownerID, inst.Number, inst.LateFee, next.remainingBalance, now,
			))
		}
	}
	return next, charged
}

// RevertPayment undoes the effect of p on the loan. Only the most recent
// unreversed payment can be reverted; the payment stays in the history.
func (l Loan) RevertPayment(p Payment, now time.Time) (Loan, error) {
	if p.LoanID() != l.id {
		return l, ErrPaymentNotFound
	}
	if p.IsReversed() || slices.Contains(l.reversedPayments, p.ID()) {
		return l, ErrPaymentAlreadyReversed
	}
	latest, ok := l.LatestActivePaymentID()
	if !ok || latest != p.ID() {
		return l, ErrReversalOutOfOrder
	}

	next := l.clone()
	next.reversedPayments = append(next.reversedPayments, p.ID())
	next.status = p.PreviousStatus()
	next.dueDate = p.PreviousDueDate()
	next.updatedAt = now

	if !l.loanType.IsInstallments() {
		next.remainingBalance = p.PreviousBalance()
		return next, nil
	}

	idx := slices.IndexFunc(next.schedule, func(i Installment) bool { return i.Number == p.InstallmentNumber() })
	if idx < 0 {
		return l, fmt.Errorf("installment %d not found on loan %s", p.InstallmentNumber(), l.id)
	}
	next.schedule[idx] = next.schedule[idx].withPayment(p.Amount().Neg())
	if open := next.currentInstallmentIndex(); open >= 0 {
		next.dueDate = next.schedule[open].DueDate
	}
	next.remainingBalance = next.outstandingTotal()
	return next, nil
}

// ---------------------------------------------------------------------------
// Derived views
// ---------------------------------------------------------------------------

// ExpectedInterest is one period of interest on the principal.
func (l Loan) ExpectedInterest() decimal.Decimal {
	return money.Percent(l.principal, l.interestRate)
}

// DaysPastDue is the number of calendar days between the due date and now.
// It is zero or negative while the loan is not late.
func (l Loan) DaysPastDue(now time.Time) int {
	return daysBetween(l.dueDate, now)
}

// EffectiveStatus returns overdue for an active loan whose due day has
// passed, and the stored status otherwise.
func (l Loan) EffectiveStatus(now time.Time) valueobject.LoanStatus {
	if l.status.Equal(valueobject.LoanStatusActive) && l.DaysPastDue(now) > 0 {
		return valueobject.LoanStatusOverdue
	}
	return l.status
}

// CanDelete reports whether the loan may be removed.
func (l Loan) CanDelete() error {
	if len(l.paymentHistory) > 0 {
		return ErrLoanHasPayments
	}
	return nil
}

// LatestActivePaymentID returns the most recent payment that has not been
// reversed.
func (l Loan) LatestActivePaymentID() (string, bool) {
	for i := len(l.paymentHistory) - 1; i >= 0; i-- {
		if !slices.Contains(l.reversedPayments, l.paymentHistory[i]) {
			return l.paymentHistory[i], true
		}
	}
	return "", false
}

// CurrentInstallment returns the earliest installment still accepting payments.
func (l Loan) CurrentInstallment() (Installment, bool) {
	idx := l.currentInstallmentIndex()
	if idx < 0 {
		return Installment{}, false
	}
	return l.schedule[idx], true
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                          { return l.id }
func (l Loan) OwnerID() string                     { return l.ownerID }
func (l Loan) ClientID() string                    { return l.clientID }
func (l Loan) Type() valueobject.LoanType          { return l.loanType }
func (l Loan) Principal() decimal.Decimal          { return l.principal }
func (l Loan) InterestRate() decimal.Decimal       { return l.interestRate }
func (l Loan) StartDate() time.Time                { return l.startDate }
func (l Loan) DueDate() time.Time                  { return l.dueDate }
func (l Loan) RemainingBalance() decimal.Decimal   { return l.remainingBalance }
func (l Loan) Status() valueobject.LoanStatus      { return l.status }
func (l Loan) Notes() string                       { return l.notes }
func (l Loan) Version() int                        { return l.version }
func (l Loan) CreatedAt() time.Time                { return l.createdAt }
func (l Loan) UpdatedAt() time.Time                { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent   { return l.domainEvents }
func (l Loan) PaymentHistory() []string            { return slices.Clone(l.paymentHistory) }
func (l Loan) ReversedPayments() []string          { return slices.Clone(l.reversedPayments) }
func (l Loan) RenewalHistory() []RenewalEntry      { return slices.Clone(l.renewalHistory) }
func (l Loan) Schedule() []Installment             { return slices.Clone(l.schedule) }

// WithVersion returns a copy carrying the version the store assigned on
// its last write.
func (l Loan) WithVersion(version int) Loan {
	next := l
	next.version = version
	return next
}

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func (l Loan) clone() Loan {
	next := l
	next.paymentHistory = slices.Clone(l.paymentHistory)
	next.reversedPayments = slices.Clone(l.reversedPayments)
	next.renewalHistory = slices.Clone(l.renewalHistory)
	next.schedule = slices.Clone(l.schedule)
	next.domainEvents = copyEvents(l.domainEvents)
	return next
}

func (l Loan) currentInstallmentIndex() int {
	return slices.IndexFunc(l.schedule, func(i Installment) bool { return i.Status.IsOpen() })
}

func (l Loan) installmentByNumber(n int) Installment {
	for _, inst := range l.schedule {
		if inst.Number == n {
			return inst
		}
	}
	return Installment{}
}

func (l Loan) outstandingTotal() decimal.Decimal {
	total := decimal.Zero
	for _, inst := range l.schedule {
		total = total.Add(inst.Outstanding())
	}
	return total
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts whole calendar days from a to b.
func daysBetween(a, b time.Time) int {
	return int(dayStart(b).Sub(dayStart(a)).Hours() / 24)
}
