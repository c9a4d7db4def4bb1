package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/port"
	"github.com/bibbank/microcred/internal/domain/service"
)

// AssessLateFeesUseCase charges late fees on overdue installments across
// every lender's book. It runs from the scheduler.
type AssessLateFeesUseCase struct {
	loanRepo  port.LoanRepository
	engine    *service.LifecycleEngine
	ratePct   decimal.Decimal
	clock     port.Clock
	logger    *slog.Logger
	telemetry *telemetry
}

// NewAssessLateFeesUseCase wires dependencies. ratePct is the fee as a
// percentage of the installment amount.
func NewAssessLateFeesUseCase(
	loanRepo port.LoanRepository,
	engine *service.LifecycleEngine,
	ratePct decimal.Decimal,
	clock port.Clock,
	logger *slog.Logger,
) *AssessLateFeesUseCase {
	return &AssessLateFeesUseCase{
		loanRepo:  loanRepo,
		engine:    engine,
		ratePct:   ratePct,
		clock:     clock,
		logger:    logger,
		telemetry: newTelemetry(),
	}
}

// Execute runs one sweep. A loan modified concurrently is skipped and picked
// up by the next sweep; any other save failure aborts the run.
func (uc *AssessLateFeesUseCase) Execute(ctx context.Context) (resp dto.LateFeeSweepResponse, err error) {
	ctx, done := uc.telemetry.track(ctx, "assess_late_fees")
	defer func() { done(err) }()

	loans, err := uc.loanRepo.ListOpenInstallments(ctx)
	if err != nil {
		return dto.LateFeeSweepResponse{}, fmt.Errorf("list loans: %w", err)
	}

	now := uc.clock.Now()
	resp.LoansScanned = len(loans)
	for _, loan := range loans {
		updated, charged := uc.engine.AssessLateFees(loan, uc.ratePct, now)
		if charged == 0 {
			continue
		}
		if err := uc.loanRepo.Save(ctx, updated); err != nil {
			if errors.Is(err, model.ErrConcurrentModification) {
				uc.logger.WarnContext(ctx, "late fee skipped, loan changed", "loan_id", loan.ID())
				continue
			}
			return resp, fmt.Errorf("save loan %s: %w", loan.ID(), err)
		}
		resp.LoansCharged++
		resp.InstallmentsCharged += charged
	}

	uc.logger.InfoContext(ctx, "late fee sweep finished",
		"loans_scanned", resp.LoansScanned,
		"loans_charged", resp.LoansCharged,
		"installments_charged", resp.InstallmentsCharged,
	)
	return resp, nil
}
