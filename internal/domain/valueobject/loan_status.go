package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a loan. Overdue is only ever
// derived at read time; the lifecycle engine never stores it.
type LoanStatus struct {
	value string
}

const (
	loanStatusActive        = "active"
	loanStatusPartiallyPaid = "partially-paid"
	loanStatusPaid          = "paid"
	loanStatusRenewed       = "renewed"
	loanStatusOverdue       = "overdue"
)

var (
	LoanStatusActive        = LoanStatus{value: loanStatusActive}
	LoanStatusPartiallyPaid = LoanStatus{value: loanStatusPartiallyPaid}
	LoanStatusPaid          = LoanStatus{value: loanStatusPaid}
	LoanStatusRenewed       = LoanStatus{value: loanStatusRenewed}
	LoanStatusOverdue       = LoanStatus{value: loanStatusOverdue}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusActive:        LoanStatusActive,
	loanStatusPartiallyPaid: LoanStatusPartiallyPaid,
	loanStatusPaid:          LoanStatusPaid,
	loanStatusRenewed:       LoanStatusRenewed,
	loanStatusOverdue:       LoanStatusOverdue,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// IsTerminal reports whether no further payments may be applied.
func (s LoanStatus) IsTerminal() bool { return s.value == loanStatusPaid }

// ---------------------------------------------------------------------------
// InstallmentStatus – immutable value object
// ---------------------------------------------------------------------------

// InstallmentStatus represents the settlement state of one scheduled installment.
type InstallmentStatus struct {
	value string
}

const (
	installmentStatusPending       = "pending"
	installmentStatusPartiallyPaid = "partially-paid"
	installmentStatusPaid          = "paid"
)

var (
	InstallmentStatusPending       = InstallmentStatus{value: installmentStatusPending}
	InstallmentStatusPartiallyPaid = InstallmentStatus{value: installmentStatusPartiallyPaid}
	InstallmentStatusPaid          = InstallmentStatus{value: installmentStatusPaid}
)

var validInstallmentStatuses = map[string]InstallmentStatus{
	installmentStatusPending:       InstallmentStatusPending,
	installmentStatusPartiallyPaid: InstallmentStatusPartiallyPaid,
	installmentStatusPaid:          InstallmentStatusPaid,
}

// NewInstallmentStatus creates an InstallmentStatus from a raw string.
func NewInstallmentStatus(s string) (InstallmentStatus, error) {
	v, ok := validInstallmentStatuses[s]
	if !ok {
		return InstallmentStatus{}, fmt.Errorf("invalid installment status: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (s InstallmentStatus) String() string { return s.value }

// IsZero returns true when not initialised.
func (s InstallmentStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses match.
func (s InstallmentStatus) Equal(other InstallmentStatus) bool { return s.value == other.value }

// IsOpen reports whether the installment still accepts payments.
func (s InstallmentStatus) IsOpen() bool {
	return s.value == installmentStatusPending || s.value == installmentStatusPartiallyPaid
}
