package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/port"
)

// DeleteLoanUseCase removes a loan that never received a payment.
type DeleteLoanUseCase struct {
	loanRepo port.LoanRepository
	logger   *slog.Logger
}

// NewDeleteLoanUseCase wires dependencies.
func NewDeleteLoanUseCase(loanRepo port.LoanRepository, logger *slog.Logger) *DeleteLoanUseCase {
	return &DeleteLoanUseCase{loanRepo: loanRepo, logger: logger}
}

// Execute deletes a loan.
func (uc *DeleteLoanUseCase) Execute(ctx context.Context, req dto.DeleteLoanRequest) (dto.DeleteLoanResponse, error) {
	loan, err := uc.loanRepo.FindByID(ctx, req.OwnerID, req.LoanID)
	if err != nil {
		return dto.DeleteLoanResponse{}, fmt.Errorf("find loan: %w", err)
	}
	if err := loan.CanDelete(); err != nil {
		return dto.DeleteLoanResponse{}, fmt.Errorf("delete loan: %w", err)
	}
	if err := uc.loanRepo.Delete(ctx, req.OwnerID, loan.ID()); err != nil {
		return dto.DeleteLoanResponse{}, fmt.Errorf("delete loan: %w", err)
	}

	uc.logger.InfoContext(ctx, "loan deleted", "loan_id", loan.ID())
	return dto.DeleteLoanResponse{LoanID: loan.ID()}, nil
}
