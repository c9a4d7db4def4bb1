package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/port"
)

// ListAlertsUseCase reports a lender's overdue and soon-due loans.
type ListAlertsUseCase struct {
	loanRepo port.LoanRepository
	clock    port.Clock
}

// NewListAlertsUseCase wires dependencies.
func NewListAlertsUseCase(loanRepo port.LoanRepository, clock port.Clock) *ListAlertsUseCase {
	return &ListAlertsUseCase{loanRepo: loanRepo, clock: clock}
}

// Execute lists dangers first, most overdue first, then warnings, soonest
// first.
func (uc *ListAlertsUseCase) Execute(ctx context.Context, req dto.ListAlertsRequest) (dto.ListAlertsResponse, error) {
	loans, err := uc.loanRepo.ListOpen(ctx, req.OwnerID)
	if err != nil {
		return dto.ListAlertsResponse{}, fmt.Errorf("list loans: %w", err)
	}

	now := uc.clock.Now()
	alerts := make([]model.Alert, 0, len(loans))
	for _, loan := range loans {
		if a, ok := loan.Alert(now); ok {
			alerts = append(alerts, a)
		}
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Severity != b.Severity {
			return a.Severity == model.AlertDanger
		}
		if a.Severity == model.AlertDanger {
			return a.Days > b.Days
		}
		return a.Days < b.Days
	})

	resp := dto.ListAlertsResponse{Alerts: make([]dto.AlertResponse, 0, len(alerts))}
	for _, a := range alerts {
		resp.Alerts = append(resp.Alerts, dto.FromAlert(a))
	}
	return resp, nil
}
