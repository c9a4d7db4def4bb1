package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/application/usecase"
	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/pkg/testutil"
)

func TestOriginateLoan_Execute(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("single loan uses the default term", func(t *testing.T) {
		client := newClient(t)
		loans := &mockLoanRepository{}
		uc := usecase.NewOriginateLoanUseCase(loans, holdingClient(client), fixedClock{now: now}, discardLogger(), 30)

		resp, err := uc.Execute(context.Background(), dto.OriginateLoanRequest{
			OwnerID:      ownerID,
			ClientID:     client.ID(),
			Type:         "single",
			Principal:    testutil.Dec("1000"),
			InterestRate: testutil.Dec("10"),
		})

		require.NoError(t, err)
		assert.Equal(t, "single", resp.Type)
		assert.Equal(t, "active", resp.Status)
		testutil.AssertDecimal(t, "1100", resp.RemainingBalance)
		assert.Equal(t, now.AddDate(0, 0, 30), resp.DueDate)
		assert.Empty(t, resp.PaymentHistory)

		require.Len(t, loans.savedLoans, 1)
		require.Len(t, loans.savedLoans[0].DomainEvents(), 1)
		assert.Equal(t, "microcred.loan.originated", loans.savedLoans[0].DomainEvents()[0].EventType())
	})

	t.Run("installments loan builds a schedule", func(t *testing.T) {
		client := newClient(t)
		loans := &mockLoanRepository{}
		uc := usecase.NewOriginateLoanUseCase(loans, holdingClient(client), fixedClock{now: now}, discardLogger(), 30)

		resp, err := uc.Execute(context.Background(), dto.OriginateLoanRequest{
			OwnerID:      ownerID,
			ClientID:     client.ID(),
			Type:         "installments",
			Principal:    testutil.Dec("1200"),
			InterestRate: testutil.Dec("0"),
			StartDate:    testutil.Day(2026, 1, 15),
			Installments: 12,
		})

		require.NoError(t, err)
		require.Len(t, resp.Schedule, 12)
		testutil.AssertDecimal(t, "100", resp.Schedule[0].Amount)
		testutil.AssertDecimal(t, "1200", resp.RemainingBalance)
		assert.Equal(t, resp.Schedule[0].DueDate, resp.DueDate)
	})

	t.Run("unknown client", func(t *testing.T) {
		loans := &mockLoanRepository{}
		uc := usecase.NewOriginateLoanUseCase(loans, &mockClientRepository{}, fixedClock{now: now}, discardLogger(), 30)

		_, err := uc.Execute(context.Background(), dto.OriginateLoanRequest{
			OwnerID:      ownerID,
			ClientID:     "missing",
			Type:         "single",
			Principal:    testutil.Dec("1000"),
			InterestRate: testutil.Dec("10"),
		})

		assert.ErrorIs(t, err, model.ErrClientNotFound)
		assert.Empty(t, loans.savedLoans)
	})

	t.Run("invalid terms", func(t *testing.T) {
		client := newClient(t)
		uc := usecase.NewOriginateLoanUseCase(&mockLoanRepository{}, holdingClient(client), fixedClock{now: now}, discardLogger(), 30)

		_, err := uc.Execute(context.Background(), dto.OriginateLoanRequest{
			OwnerID:      ownerID,
			ClientID:     client.ID(),
			Type:         "weekly",
			Principal:    testutil.Dec("1000"),
			InterestRate: testutil.Dec("10"),
		})
		assert.ErrorIs(t, err, model.ErrInvalidInput)

		_, err = uc.Execute(context.Background(), dto.OriginateLoanRequest{
			OwnerID:      ownerID,
			ClientID:     client.ID(),
			Type:         "installments",
			Principal:    testutil.Dec("1000"),
			InterestRate: testutil.Dec("5"),
		})
		assert.ErrorIs(t, err, model.ErrInvalidInput, "zero installments")
	})

	t.Run("installment count is capped", func(t *testing.T) {
		client := newClient(t)
		loans := &mockLoanRepository{}
		uc := usecase.NewOriginateLoanUseCase(loans, holdingClient(client), fixedClock{now: now}, discardLogger(), 30)

		_, err := uc.Execute(context.Background(), dto.OriginateLoanRequest{
			OwnerID:      ownerID,
			ClientID:     client.ID(),
			Type:         "installments",
			Principal:    testutil.Dec("1000"),
			InterestRate: testutil.Dec("0"),
			Installments: model.MaxInstallments + 1,
		})

		assert.ErrorIs(t, err, model.ErrInvalidInput)
		assert.Empty(t, loans.savedLoans)
	})
}
