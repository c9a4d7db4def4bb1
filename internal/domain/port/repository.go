package port

import (
	"context"
	"time"

	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/pkg/events"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// Every lookup is scoped to the owning lender account. A record owned by
// somebody else is reported as not found.

// LoanRepository persists and retrieves loans.
type LoanRepository interface {
	Save(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, ownerID, id string) (model.Loan, error)
	ListOpen(ctx context.Context, ownerID string) ([]model.Loan, error)
	ListOpenInstallments(ctx context.Context) ([]model.Loan, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// ClientRepository persists and retrieves clients.
type ClientRepository interface {
	Save(ctx context.Context, client model.Client) error
	FindByID(ctx context.Context, ownerID, id string) (model.Client, error)
}

// PaymentRepository retrieves recorded payments. Payments are only ever
// written through PaymentStore.
type PaymentRepository interface {
	FindByID(ctx context.Context, ownerID, id string) (model.Payment, error)
	ListByLoan(ctx context.Context, ownerID, loanID string) ([]model.Payment, error)
}

// ---------------------------------------------------------------------------
// Atomic commit port
// ---------------------------------------------------------------------------

// PaymentStore commits the three records touched by one payment event as a
// single unit, together with their domain events. Loan and client writes
// are conditional on the version that was read; a stale version yields
// model.ErrConcurrentModification and nothing is written. On success the
// loan and client are returned with their committed versions.
type PaymentStore interface {
	CommitPayment(ctx context.Context, payment model.Payment, loan model.Loan, client model.Client) (model.Loan, model.Client, error)
	CommitReversal(ctx context.Context, payment model.Payment, loan model.Loan, client model.Client) (model.Loan, model.Client, error)
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// OutboxPublisher delivers stored outbox entries to external consumers.
type OutboxPublisher interface {
	PublishEntries(ctx context.Context, entries []events.OutboxEntry) error
}

// ---------------------------------------------------------------------------
// Clock port
// ---------------------------------------------------------------------------

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
