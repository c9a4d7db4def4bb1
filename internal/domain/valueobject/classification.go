package valueobject

import "fmt"

// Classification is the lifecycle engine's verdict on what a payment did to
// its loan. The score ledger turns it into a score delta.
type Classification struct {
	value string
}

const (
	classificationRenewedOnTime      = "renewed-on-time"
	classificationPaidInFull         = "paid-in-full"
	classificationPartialPayment     = "partial-payment"
	classificationInstallmentCleared = "installment-cleared"
)

var (
	ClassificationRenewedOnTime      = Classification{value: classificationRenewedOnTime}
	ClassificationPaidInFull         = Classification{value: classificationPaidInFull}
	ClassificationPartialPayment     = Classification{value: classificationPartialPayment}
	ClassificationInstallmentCleared = Classification{value: classificationInstallmentCleared}
)

var validClassifications = map[string]Classification{
	classificationRenewedOnTime:      ClassificationRenewedOnTime,
	classificationPaidInFull:         ClassificationPaidInFull,
	classificationPartialPayment:     ClassificationPartialPayment,
	classificationInstallmentCleared: ClassificationInstallmentCleared,
}

// NewClassification creates a Classification from a raw string.
func NewClassification(s string) (Classification, error) {
	v, ok := validClassifications[s]
	if !ok {
		return Classification{}, fmt.Errorf("invalid payment classification: %q", s)
	}
	return v, nil
}

// String returns the string representation.
func (c Classification) String() string { return c.value }

// IsZero returns true when not initialised.
func (c Classification) IsZero() bool { return c.value == "" }

// Equal returns true when both classifications match.
func (c Classification) Equal(other Classification) bool { return c.value == other.value }
