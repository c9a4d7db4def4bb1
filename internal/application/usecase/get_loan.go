package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/port"
)

// GetLoanUseCase retrieves a loan by ID.
type GetLoanUseCase struct {
	loanRepo port.LoanRepository
	clock    port.Clock
}

// NewGetLoanUseCase wires dependencies.
func NewGetLoanUseCase(loanRepo port.LoanRepository, clock port.Clock) *GetLoanUseCase {
	return &GetLoanUseCase{loanRepo: loanRepo, clock: clock}
}

// Execute retrieves a loan. The status reflects the moment of the read.
func (uc *GetLoanUseCase) Execute(ctx context.Context, req dto.GetLoanRequest) (dto.LoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.OwnerID, req.LoanID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	return dto.FromLoan(loan, uc.clock.Now()), nil
}
