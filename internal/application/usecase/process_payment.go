package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/port"
	"github.com/bibbank/microcred/internal/domain/service"
	"github.com/bibbank/microcred/internal/domain/valueobject"
)

// ProcessPaymentUseCase applies a borrower payment to a loan, adjusts the
// client's score and records the payment in one commit.
type ProcessPaymentUseCase struct {
	loanRepo   port.LoanRepository
	clientRepo port.ClientRepository
	store      port.PaymentStore
	engine     *service.LifecycleEngine
	ledger     *service.ScoreLedger
	clock      port.Clock
	logger     *slog.Logger
	telemetry  *telemetry
}

// NewProcessPaymentUseCase wires dependencies.
func NewProcessPaymentUseCase(
	loanRepo port.LoanRepository,
	clientRepo port.ClientRepository,
	store port.PaymentStore,
	engine *service.LifecycleEngine,
	ledger *service.ScoreLedger,
	clock port.Clock,
	logger *slog.Logger,
) *ProcessPaymentUseCase {
	return &ProcessPaymentUseCase{
		loanRepo:   loanRepo,
		clientRepo: clientRepo,
		store:      store,
		engine:     engine,
		ledger:     ledger,
		clock:      clock,
		logger:     logger,
		telemetry:  newTelemetry(),
	}
}

// Execute processes a payment against a loan.
func (uc *ProcessPaymentUseCase) Execute(
	ctx context.Context,
	req dto.ProcessPaymentRequest,
) (resp dto.ProcessPaymentResponse, err error) {
	ctx, done := uc.telemetry.track(ctx, "process_payment")
	defer func() { done(err) }()

	now := uc.clock.Now()

	method, err := valueobject.NewPaymentMethod(req.Method)
	if err != nil {
		return dto.ProcessPaymentResponse{}, fmt.Errorf("%w: %q", model.ErrInvalidPaymentMethod, req.Method)
	}

	// 1. Retrieve the loan and its client.
	loan, err := uc.loanRepo.FindByID(ctx, req.OwnerID, req.LoanID)
	if err != nil {
		return dto.ProcessPaymentResponse{}, fmt.Errorf("find loan: %w", err)
	}
	if req.ClientID != "" && req.ClientID != loan.ClientID() {
		return dto.ProcessPaymentResponse{}, fmt.Errorf("find client: %w", model.ErrClientNotFound)
	}
	client, err := uc.clientRepo.FindByID(ctx, req.OwnerID, loan.ClientID())
	if err != nil {
		return dto.ProcessPaymentResponse{}, fmt.Errorf("find client: %w", err)
	}

	// 2. Apply the payment to the loan.
	updatedLoan, classification, alloc, err := uc.engine.ApplyPayment(loan, req.Amount, req.IsInterestOnly, now)
	if err != nil {
		return dto.ProcessPaymentResponse{}, fmt.Errorf("apply payment: %w", err)
	}

	// 3. Score the outcome.
	updatedClient, delta := uc.ledger.Apply(client, classification, alloc.DaysPastDue, now)

	// 4. Record the payment.
	payment, err := model.NewPayment(model.PaymentDraft{
		ID:                alloc.PaymentID,
		OwnerID:           req.OwnerID,
		LoanID:            loan.ID(),
		ClientID:          loan.ClientID(),
		Date:              now,
		Amount:            req.Amount,
		Method:            method,
		Notes:             req.Notes,
		IsInterestOnly:    req.IsInterestOnly && !loan.Type().IsInstallments(),
		PrincipalPaid:     alloc.PrincipalPaid,
		InterestPaid:      alloc.InterestPaid,
		Classification:    classification,
		ScoreDelta:        delta,
		InstallmentNumber: alloc.InstallmentNumber,
		PreviousStatus:    alloc.PreviousStatus,
		PreviousDueDate:   alloc.PreviousDueDate,
		PreviousBalance:   alloc.PreviousBalance,
	})
	if err != nil {
		return dto.ProcessPaymentResponse{}, fmt.Errorf("create payment: %w", err)
	}

	// 5. Commit payment, loan and client together.
	committedLoan, committedClient, err := uc.store.CommitPayment(ctx, payment, updatedLoan, updatedClient)
	if err != nil {
		return dto.ProcessPaymentResponse{}, fmt.Errorf("commit payment: %w", err)
	}

	uc.logger.InfoContext(ctx, "payment processed",
		"payment_id", payment.ID(),
		"loan_id", loan.ID(),
		"classification", classification.String(),
		"amount", req.Amount.String(),
		"score_delta", delta.String(),
		"loan_status", committedLoan.Status().String(),
	)

	return dto.ProcessPaymentResponse{
		Payment: dto.FromPayment(payment),
		Loan:    dto.FromLoan(committedLoan, now),
		Client:  dto.FromClient(committedClient),
	}, nil
}
