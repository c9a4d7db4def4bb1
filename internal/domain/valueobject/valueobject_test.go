package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoanStatus(t *testing.T) {
	for _, raw := range []string{"active", "partially-paid", "paid", "renewed", "overdue"} {
		s, err := NewLoanStatus(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, s.String())
	}

	_, err := NewLoanStatus("ACTIVE")
	assert.Error(t, err)

	assert.True(t, LoanStatusPaid.IsTerminal())
	assert.False(t, LoanStatusRenewed.IsTerminal())
	assert.True(t, LoanStatus{}.IsZero())
}

func TestInstallmentStatus_IsOpen(t *testing.T) {
	assert.True(t, InstallmentStatusPending.IsOpen())
	assert.True(t, InstallmentStatusPartiallyPaid.IsOpen())
	assert.False(t, InstallmentStatusPaid.IsOpen())

	s, err := NewInstallmentStatus("partially-paid")
	require.NoError(t, err)
	assert.True(t, s.Equal(InstallmentStatusPartiallyPaid))
}

func TestNewLoanType(t *testing.T) {
	lt, err := NewLoanType("installments")
	require.NoError(t, err)
	assert.True(t, lt.IsInstallments())

	lt, err = NewLoanType("single")
	require.NoError(t, err)
	assert.False(t, lt.IsInstallments())

	_, err = NewLoanType("balloon")
	assert.Error(t, err)
}

func TestNewPaymentMethod(t *testing.T) {
	m, err := NewPaymentMethod("pix")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodPix, m)

	_, err = NewPaymentMethod("cheque")
	assert.Error(t, err)
}

func TestNewClassification(t *testing.T) {
	c, err := NewClassification("installment-cleared")
	require.NoError(t, err)
	assert.True(t, c.Equal(ClassificationInstallmentCleared))

	_, err = NewClassification("late")
	assert.Error(t, err)
}
