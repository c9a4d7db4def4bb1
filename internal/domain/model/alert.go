package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/domain/valueobject"
)

// Alert severities.
const (
	AlertDanger  = "danger"
	AlertWarning = "warning"
)

// DueSoonDays is how far ahead a due date raises a warning.
const DueSoonDays = 3

// Alert flags a loan that needs the lender's attention.
type Alert struct {
	LoanID           string
	ClientID         string
	Severity         string
	DueDate          time.Time
	Days             int // days past due for danger, days until due for warning
	RemainingBalance decimal.Decimal
}

// Alert returns the loan's alert, if any. Paid loans never alert; overdue
// loans are dangers and loans due within DueSoonDays are warnings.
func (l Loan) Alert(now time.Time) (Alert, bool) {
	if l.status.IsTerminal() || l.dueDate.IsZero() {
		return Alert{}, false
	}

	a := Alert{
		LoanID:           l.id,
		ClientID:         l.clientID,
		DueDate:          l.dueDate,
		RemainingBalance: l.remainingBalance,
	}
	past := l.DaysPastDue(now)
	switch {
	case l.EffectiveStatus(now).Equal(valueobject.LoanStatusOverdue):
		a.Severity = AlertDanger
		a.Days = past
	case past <= 0 && -past <= DueSoonDays:
		a.Severity = AlertWarning
		a.Days = -past
	default:
		return Alert{}, false
	}
	return a, true
}
