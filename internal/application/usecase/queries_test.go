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

func TestGetLoan_Execute(t *testing.T) {
	client := newClient(t)
	loan := newSingleLoan(t, client)

	t.Run("reports overdue at read time", func(t *testing.T) {
		uc := usecase.NewGetLoanUseCase(holdingLoan(loan), fixedClock{now: time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)})

		resp, err := uc.Execute(context.Background(), dto.GetLoanRequest{OwnerID: ownerID, LoanID: loan.ID()})

		require.NoError(t, err)
		assert.Equal(t, loan.ID(), resp.ID)
		assert.Equal(t, "overdue", resp.Status)
	})

	t.Run("hidden from other lenders", func(t *testing.T) {
		uc := usecase.NewGetLoanUseCase(holdingLoan(loan), fixedClock{now: loanStart})

		_, err := uc.Execute(context.Background(), dto.GetLoanRequest{OwnerID: otherID, LoanID: loan.ID()})

		assert.ErrorIs(t, err, model.ErrLoanNotFound)
	})
}

func TestListPayments_Execute(t *testing.T) {
	client := newClient(t)
	loan := newSingleLoan(t, client)
	paid := pay(t, loan, client, "250", false, loanStart.AddDate(0, 0, 3))

	var listedFor []string
	payments := &mockPaymentRepository{
		listByLoanFunc: func(_ context.Context, owner, loanID string) ([]model.Payment, error) {
			listedFor = append(listedFor, owner+"/"+loanID)
			return []model.Payment{paid.payment}, nil
		},
	}

	t.Run("lists the loan's payments", func(t *testing.T) {
		uc := usecase.NewListPaymentsUseCase(holdingLoan(paid.loan), payments)

		resp, err := uc.Execute(context.Background(), dto.ListPaymentsRequest{OwnerID: ownerID, LoanID: loan.ID()})

		require.NoError(t, err)
		assert.Equal(t, loan.ID(), resp.LoanID)
		require.Len(t, resp.Payments, 1)
		assert.Equal(t, paid.payment.ID(), resp.Payments[0].ID)
		assert.False(t, resp.Payments[0].Reversed)
		testutil.AssertDecimal(t, "250", resp.Payments[0].Amount)
		assert.Equal(t, paid.payment.ID(), resp.ReversiblePaymentID)
	})

	t.Run("hidden from other lenders", func(t *testing.T) {
		listedFor = nil
		uc := usecase.NewListPaymentsUseCase(holdingLoan(paid.loan), payments)

		_, err := uc.Execute(context.Background(), dto.ListPaymentsRequest{OwnerID: otherID, LoanID: loan.ID()})

		assert.ErrorIs(t, err, model.ErrLoanNotFound)
		assert.Empty(t, listedFor, "payments are not read for a loan the caller does not own")
	})
}

func TestDeleteLoan_Execute(t *testing.T) {
	client := newClient(t)

	t.Run("deletes a loan without payments", func(t *testing.T) {
		loan := newSingleLoan(t, client)
		repo := holdingLoan(loan)
		uc := usecase.NewDeleteLoanUseCase(repo, discardLogger())

		resp, err := uc.Execute(context.Background(), dto.DeleteLoanRequest{OwnerID: ownerID, LoanID: loan.ID()})

		require.NoError(t, err)
		assert.Equal(t, loan.ID(), resp.LoanID)
		assert.Equal(t, []string{loan.ID()}, repo.deletedIDs)
	})

	t.Run("refuses a loan with payments", func(t *testing.T) {
		loan := newSingleLoan(t, client).RecordPayment("payment-1", loanStart)
		repo := holdingLoan(loan)
		uc := usecase.NewDeleteLoanUseCase(repo, discardLogger())

		_, err := uc.Execute(context.Background(), dto.DeleteLoanRequest{OwnerID: ownerID, LoanID: loan.ID()})

		assert.ErrorIs(t, err, model.ErrLoanHasPayments)
		assert.Empty(t, repo.deletedIDs)
	})
}

func TestRegisterClient_Execute(t *testing.T) {
	t.Run("starts at the maximum score", func(t *testing.T) {
		repo := &mockClientRepository{}
		uc := usecase.NewRegisterClientUseCase(repo, fixedClock{now: loanStart}, discardLogger())

		resp, err := uc.Execute(context.Background(), dto.RegisterClientRequest{
			OwnerID: ownerID,
			Name:    "Carlos Lima",
			Phone:   "+55 21 98888-0000",
		})

		require.NoError(t, err)
		assert.NotEmpty(t, resp.ID)
		testutil.AssertDecimal(t, "10", resp.Score)
		require.Len(t, resp.ScoreHistory, 1)
		assert.Equal(t, model.InitialScoreReason, resp.ScoreHistory[0].Reason)
		require.Len(t, repo.savedClients, 1)
	})

	t.Run("name is required", func(t *testing.T) {
		repo := &mockClientRepository{}
		uc := usecase.NewRegisterClientUseCase(repo, fixedClock{now: loanStart}, discardLogger())

		_, err := uc.Execute(context.Background(), dto.RegisterClientRequest{OwnerID: ownerID})

		assert.ErrorIs(t, err, model.ErrInvalidInput)
		assert.Empty(t, repo.savedClients)
	})
}

func TestGetClient_Execute(t *testing.T) {
	client := newClient(t)
	uc := usecase.NewGetClientUseCase(holdingClient(client))

	resp, err := uc.Execute(context.Background(), dto.GetClientRequest{OwnerID: ownerID, ClientID: client.ID()})
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", resp.Name)

	_, err = uc.Execute(context.Background(), dto.GetClientRequest{OwnerID: otherID, ClientID: client.ID()})
	assert.ErrorIs(t, err, model.ErrClientNotFound)
}

func TestListAlerts_Execute(t *testing.T) {
	client := newClient(t)
	dueSoon := newSingleLoan(t, client) // due 2026-03-31
	overdue, err := model.NewSingleLoan(ownerID, client.ID(), testutil.Dec("500"), testutil.Dec("10"), loanStart, 10, "", loanStart)
	require.NoError(t, err)
	later, err := model.NewSingleLoan(ownerID, client.ID(), testutil.Dec("500"), testutil.Dec("10"), loanStart, 60, "", loanStart)
	require.NoError(t, err)
	renewedLate := newSingleLoan(t, client).Renew(-20, loanStart)

	repo := &mockLoanRepository{
		listOpenFunc: func(_ context.Context, owner string) ([]model.Loan, error) {
			require.Equal(t, ownerID, owner)
			return []model.Loan{dueSoon, later, renewedLate, overdue}, nil
		},
	}
	now := time.Date(2026, 3, 29, 15, 0, 0, 0, time.UTC)
	uc := usecase.NewListAlertsUseCase(repo, fixedClock{now: now})

	resp, err := uc.Execute(context.Background(), dto.ListAlertsRequest{OwnerID: ownerID})

	require.NoError(t, err)
	require.Len(t, resp.Alerts, 2, "only active loans read as overdue")
	assert.Equal(t, model.AlertDanger, resp.Alerts[0].Severity)
	assert.Equal(t, overdue.ID(), resp.Alerts[0].LoanID)
	assert.Equal(t, 18, resp.Alerts[0].Days)
	assert.Equal(t, "Loan overdue by 18 day(s).", resp.Alerts[0].Message)
	assert.Equal(t, model.AlertWarning, resp.Alerts[1].Severity)
	assert.Equal(t, dueSoon.ID(), resp.Alerts[1].LoanID)
	assert.Equal(t, 2, resp.Alerts[1].Days)
}
