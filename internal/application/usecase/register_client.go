package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/port"
)

// RegisterClientUseCase adds a borrower to a lender's book.
type RegisterClientUseCase struct {
	clientRepo port.ClientRepository
	clock      port.Clock
	logger     *slog.Logger
	telemetry  *telemetry
}

// NewRegisterClientUseCase wires dependencies.
func NewRegisterClientUseCase(clientRepo port.ClientRepository, clock port.Clock, logger *slog.Logger) *RegisterClientUseCase {
	return &RegisterClientUseCase{
		clientRepo: clientRepo,
		clock:      clock,
		logger:     logger,
		telemetry:  newTelemetry(),
	}
}

// Execute registers a client with the initial score.
func (uc *RegisterClientUseCase) Execute(
	ctx context.Context,
	req dto.RegisterClientRequest,
) (resp dto.ClientResponse, err error) {
	ctx, done := uc.telemetry.track(ctx, "register_client")
	defer func() { done(err) }()

	client, err := model.NewClient(req.OwnerID, model.ClientProfile{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
		Notes:   req.Notes,
	}, uc.clock.Now())
	if err != nil {
		return dto.ClientResponse{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	if err := uc.clientRepo.Save(ctx, client); err != nil {
		return dto.ClientResponse{}, fmt.Errorf("save client: %w", err)
	}

	uc.logger.InfoContext(ctx, "client registered", "client_id", client.ID())
	return dto.FromClient(client), nil
}
