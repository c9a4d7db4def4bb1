package valueobject

import "fmt"

// LoanType distinguishes one-shot loans from amortized ones.
type LoanType struct {
	value string
}

const (
	loanTypeSingle       = "single"
	loanTypeInstallments = "installments"
)

var (
	LoanTypeSingle       = LoanType{value: loanTypeSingle}
	LoanTypeInstallments = LoanType{value: loanTypeInstallments}
)

// NewLoanType creates a LoanType from a raw string.
func NewLoanType(s string) (LoanType, error) {
	switch s {
	case loanTypeSingle:
		return LoanTypeSingle, nil
	case loanTypeInstallments:
		return LoanTypeInstallments, nil
	default:
		return LoanType{}, fmt.Errorf("invalid loan type: %q", s)
	}
}

// String returns the string representation.
func (t LoanType) String() string { return t.value }

// IsZero returns true when not initialised.
func (t LoanType) IsZero() bool { return t.value == "" }

// Equal returns true when both types match.
func (t LoanType) Equal(other LoanType) bool { return t.value == other.value }

// IsInstallments reports whether the loan is amortized over a schedule.
func (t LoanType) IsInstallments() bool { return t.value == loanTypeInstallments }

// PaymentMethod is how the borrower handed over the money. It is opaque to
// the lifecycle engine.
type PaymentMethod struct {
	value string
}

const (
	paymentMethodCash = "cash"
	paymentMethodPix  = "pix"
	paymentMethodCard = "card"
)

var (
	PaymentMethodCash = PaymentMethod{value: paymentMethodCash}
	PaymentMethodPix  = PaymentMethod{value: paymentMethodPix}
	PaymentMethodCard = PaymentMethod{value: paymentMethodCard}
)

var validPaymentMethods = map[string]PaymentMethod{
	paymentMethodCash: PaymentMethodCash,
	paymentMethodPix:  PaymentMethodPix,
	paymentMethodCard: PaymentMethodCard,
}

// NewPaymentMethod creates a PaymentMethod from a raw string.
func NewPaymentMethod(s string) (PaymentMethod, error) {
	v, ok := validPaymentMethods[s]
	if !ok {
		return PaymentMethod{}, fmt.Errorf("invalid payment method: %q", s)
	}
	return v, nil
}

func (m PaymentMethod) String() string { return m.value }
func (m PaymentMethod) IsZero() bool   { return m.value == "" }
