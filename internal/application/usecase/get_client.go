package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/port"
)

// GetClientUseCase retrieves a client with its score history.
type GetClientUseCase struct {
	clientRepo port.ClientRepository
}

// NewGetClientUseCase wires dependencies.
func NewGetClientUseCase(clientRepo port.ClientRepository) *GetClientUseCase {
	return &GetClientUseCase{clientRepo: clientRepo}
}

// Execute retrieves a client.
func (uc *GetClientUseCase) Execute(ctx context.Context, req dto.GetClientRequest) (dto.ClientResponse, error) {
	client, err := uc.clientRepo.FindByID(ctx, req.OwnerID, req.ClientID)
	if err != nil {
		return dto.ClientResponse{}, fmt.Errorf("find client: %w", err)
	}
	return dto.FromClient(client), nil
}
