package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/port"
	"github.com/bibbank/microcred/internal/domain/service"
)

// ReversePaymentUseCase undoes the most recent payment of a loan, restoring
// the loan and withdrawing the score change it caused.
type ReversePaymentUseCase struct {
	paymentRepo port.PaymentRepository
	loanRepo    port.LoanRepository
	clientRepo  port.ClientRepository
	store       port.PaymentStore
	engine      *service.LifecycleEngine
	ledger      *service.ScoreLedger
	clock       port.Clock
	logger      *slog.Logger
	telemetry   *telemetry
}

// NewReversePaymentUseCase wires dependencies.
func NewReversePaymentUseCase(
	paymentRepo port.PaymentRepository,
	loanRepo port.LoanRepository,
	clientRepo port.ClientRepository,
	store port.PaymentStore,
	engine *service.LifecycleEngine,
	ledger *service.ScoreLedger,
	clock port.Clock,
	logger *slog.Logger,
) *ReversePaymentUseCase {
	return &ReversePaymentUseCase{
		paymentRepo: paymentRepo,
		loanRepo:    loanRepo,
		clientRepo:  clientRepo,
		store:       store,
		engine:      engine,
		ledger:      ledger,
		clock:       clock,
		logger:      logger,
		telemetry:   newTelemetry(),
	}
}

// Execute reverses a payment.
func (uc *ReversePaymentUseCase) Execute(
	ctx context.Context,
	req dto.ReversePaymentRequest,
) (resp dto.ReversePaymentResponse, err error) {
	ctx, done := uc.telemetry.track(ctx, "reverse_payment")
	defer func() { done(err) }()

	now := uc.clock.Now()

	// 1. Retrieve the payment and the records it touched.
	payment, err := uc.paymentRepo.FindByID(ctx, req.OwnerID, req.PaymentID)
	if err != nil {
		return dto.ReversePaymentResponse{}, fmt.Errorf("find payment: %w", err)
	}
	if payment.IsReversed() {
		return dto.ReversePaymentResponse{}, fmt.Errorf("reverse payment: %w", model.ErrPaymentAlreadyReversed)
	}
	loan, err := uc.loanRepo.FindByID(ctx, req.OwnerID, payment.LoanID())
	if err != nil {
		return dto.ReversePaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}
	client, err := uc.clientRepo.FindByID(ctx, req.OwnerID, payment.ClientID())
	if err != nil {
		return dto.ReversePaymentResponse{}, fmt.Errorf("find client: %w", err)
	}

	// 2. Undo the payment on the loan.
	updatedLoan, reversed, err := uc.engine.ReversePayment(loan, payment, now)
	if err != nil {
		return dto.ReversePaymentResponse{}, fmt.Errorf("reverse payment: %w", err)
	}

	// 3. Withdraw the score change.
	updatedClient := uc.ledger.Revert(client, payment, now)

	// 4. Commit all three records.
	committedLoan, committedClient, err := uc.store.CommitReversal(ctx, reversed, updatedLoan, updatedClient)
	if err != nil {
		return dto.ReversePaymentResponse{}, fmt.Errorf("commit reversal: %w", err)
	}

	uc.logger.InfoContext(ctx, "payment reversed",
		"payment_id", payment.ID(),
		"loan_id", loan.ID(),
		"score_delta", payment.ScoreDelta().Neg().String(),
		"loan_status", committedLoan.Status().String(),
	)

	return dto.ReversePaymentResponse{
		Payment: dto.FromPayment(reversed),
		Loan:    dto.FromLoan(committedLoan, now),
		Client:  dto.FromClient(committedClient),
	}, nil
}
