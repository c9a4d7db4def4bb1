package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/port"
	"github.com/bibbank/microcred/internal/domain/valueobject"
)

// OriginateLoanUseCase books a new loan for an existing client.
type OriginateLoanUseCase struct {
	loanRepo        port.LoanRepository
	clientRepo      port.ClientRepository
	clock           port.Clock
	logger          *slog.Logger
	defaultTermDays int
	telemetry       *telemetry
}

// NewOriginateLoanUseCase wires dependencies. defaultTermDays is used for
// single loans when the request leaves the term unset.
func NewOriginateLoanUseCase(
	loanRepo port.LoanRepository,
	clientRepo port.ClientRepository,
	clock port.Clock,
	logger *slog.Logger,
	defaultTermDays int,
) *OriginateLoanUseCase {
	return &OriginateLoanUseCase{
		loanRepo:        loanRepo,
		clientRepo:      clientRepo,
		clock:           clock,
		logger:          logger,
		defaultTermDays: defaultTermDays,
		telemetry:       newTelemetry(),
	}
}

// Execute originates a loan.
func (uc *OriginateLoanUseCase) Execute(
	ctx context.Context,
	req dto.OriginateLoanRequest,
) (resp dto.LoanResponse, err error) {
	ctx, done := uc.telemetry.track(ctx, "originate_loan")
	defer func() { done(err) }()

	now := uc.clock.Now()

	loanType, err := valueobject.NewLoanType(req.Type)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	if loanType.IsInstallments() && (req.Installments < 1 || req.Installments > model.MaxInstallments) {
		return dto.LoanResponse{}, fmt.Errorf("%w: installments must be between 1 and %d", model.ErrInvalidInput, model.MaxInstallments)
	}

	// 1. The borrower must belong to the caller.
	if _, err := uc.clientRepo.FindByID(ctx, req.OwnerID, req.ClientID); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("find client: %w", err)
	}

	startDate := req.StartDate
	if startDate.IsZero() {
		startDate = now
	}

	// 2. Build the loan.
	var loan model.Loan
	if loanType.IsInstallments() {
		loan, err = model.NewInstallmentsLoan(req.OwnerID, req.ClientID, req.Principal, req.InterestRate,
			startDate, req.Installments, req.Notes, now)
	} else {
		termDays := req.TermDays
		if termDays == 0 {
			termDays = uc.defaultTermDays
		}
		loan, err = model.NewSingleLoan(req.OwnerID, req.ClientID, req.Principal, req.InterestRate,
			startDate, termDays, req.Notes, now)
	}
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("create loan: %w", err)
	}

	// 3. Persist.
	if err := uc.loanRepo.Save(ctx, loan); err != nil {
		return dto.LoanResponse{}, fmt.Errorf("save loan: %w", err)
	}

	uc.logger.InfoContext(ctx, "loan originated",
		"loan_id", loan.ID(),
		"client_id", loan.ClientID(),
		"type", loanType.String(),
		"principal", loan.Principal().String(),
		"balance", loan.RemainingBalance().String(),
	)

	return dto.FromLoan(loan, now), nil
}
