package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/port"
)

// ListPaymentsUseCase returns the payment history of one loan.
type ListPaymentsUseCase struct {
	loanRepo    port.LoanRepository
	paymentRepo port.PaymentRepository
}

// NewListPaymentsUseCase wires dependencies.
func NewListPaymentsUseCase(loanRepo port.LoanRepository, paymentRepo port.PaymentRepository) *ListPaymentsUseCase {
	return &ListPaymentsUseCase{loanRepo: loanRepo, paymentRepo: paymentRepo}
}

// Execute lists a loan's payments, reversed ones included. The loan must
// belong to the caller.
func (uc *ListPaymentsUseCase) Execute(ctx context.Context, req dto.ListPaymentsRequest) (dto.ListPaymentsResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.OwnerID, req.LoanID)
	if err != nil {
		return dto.ListPaymentsResponse{}, fmt.Errorf("find loan: %w", err)
	}

	payments, err := uc.paymentRepo.ListByLoan(ctx, req.OwnerID, loan.ID())
	if err != nil {
		return dto.ListPaymentsResponse{}, fmt.Errorf("list payments: %w", err)
	}

	resp := dto.ListPaymentsResponse{
		LoanID:   loan.ID(),
		Payments: make([]dto.PaymentResponse, 0, len(payments)),
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, dto.FromPayment(p))
	}
	if id, ok := loan.LatestActivePaymentID(); ok {
		resp.ReversiblePaymentID = id
	}
	return resp, nil
}
