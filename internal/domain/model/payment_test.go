package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/microcred/internal/domain/valueobject"
)

func validDraft() PaymentDraft {
	return PaymentDraft{
		ID:             "p-1",
		OwnerID:        testOwner,
		LoanID:         "loan-1",
		ClientID:       testClient,
		Date:           loanStart,
		Amount:         dec("100"),
		Method:         valueobject.PaymentMethodPix,
		Classification: valueobject.ClassificationPartialPayment,
		ScoreDelta:     dec("0.5"),
	}
}

func TestNewPayment(t *testing.T) {
	p, err := NewPayment(validDraft())
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID())
	assert.False(t, p.IsReversed())
	require.Len(t, p.DomainEvents(), 1)
	assert.Equal(t, "microcred.payment.processed", p.DomainEvents()[0].EventType())
	assert.Equal(t, "loan-1", p.DomainEvents()[0].AggregateID())

	t.Run("rejects non-positive amount", func(t *testing.T) {
		d := validDraft()
		d.Amount = dec("0")
		_, err := NewPayment(d)
		assert.ErrorIs(t, err, ErrInvalidPaymentAmount)
	})

	t.Run("requires a method", func(t *testing.T) {
		d := validDraft()
		d.Method = valueobject.PaymentMethod{}
		_, err := NewPayment(d)
		assert.Error(t, err)
	})
}

func TestPayment_Reverse(t *testing.T) {
	p, err := NewPayment(validDraft())
	require.NoError(t, err)
	p = p.ClearEvents()

	at := loanStart.Add(time.Hour)
	reversed, err := p.Reverse(at)
	require.NoError(t, err)
	require.NotNil(t, reversed.ReversedAt())
	assert.Equal(t, at, *reversed.ReversedAt())
	assert.False(t, p.IsReversed(), "original copy must be unchanged")
	require.Len(t, reversed.DomainEvents(), 1)
	assert.Equal(t, "microcred.payment.reversed", reversed.DomainEvents()[0].EventType())

	_, err = reversed.Reverse(at)
	assert.ErrorIs(t, err, ErrPaymentAlreadyReversed)
}
