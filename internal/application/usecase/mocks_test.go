package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/pkg/events"
	"github.com/bibbank/microcred/pkg/testutil"
)

// --- Mock implementations ---

type mockLoanRepository struct {
	saveFunc                 func(ctx context.Context, loan model.Loan) error
	findByIDFunc             func(ctx context.Context, ownerID, id string) (model.Loan, error)
	listOpenFunc             func(ctx context.Context, ownerID string) ([]model.Loan, error)
	listOpenInstallmentsFunc func(ctx context.Context) ([]model.Loan, error)
	deleteFunc               func(ctx context.Context, ownerID, id string) error
	savedLoans               []model.Loan
	deletedIDs               []string
}

func (m *mockLoanRepository) Save(ctx context.Context, loan model.Loan) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, loan)
	}
	m.savedLoans = append(m.savedLoans, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, ownerID, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, ownerID, id)
	}
	return model.Loan{}, model.ErrLoanNotFound
}

func (m *mockLoanRepository) ListOpen(ctx context.Context, ownerID string) ([]model.Loan, error) {
	if m.listOpenFunc != nil {
		return m.listOpenFunc(ctx, ownerID)
	}
	return nil, nil
}

func (m *mockLoanRepository) ListOpenInstallments(ctx context.Context) ([]model.Loan, error) {
	if m.listOpenInstallmentsFunc != nil {
		return m.listOpenInstallmentsFunc(ctx)
	}
	return nil, nil
}

func (m *mockLoanRepository) Delete(ctx context.Context, ownerID, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, ownerID, id)
	}
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

// holdingLoan returns a repository that serves exactly one loan to its owner.
func holdingLoan(loan model.Loan) *mockLoanRepository {
	return &mockLoanRepository{
		findByIDFunc: func(_ context.Context, ownerID, id string) (model.Loan, error) {
			if ownerID != loan.OwnerID() || id != loan.ID() {
				return model.Loan{}, model.ErrLoanNotFound
			}
			return loan, nil
		},
	}
}

type mockClientRepository struct {
	saveFunc     func(ctx context.Context, client model.Client) error
	findByIDFunc func(ctx context.Context, ownerID, id string) (model.Client, error)
	savedClients []model.Client
}

func (m *mockClientRepository) Save(ctx context.Context, client model.Client) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, client)
	}
	m.savedClients = append(m.savedClients, client)
	return nil
}

func (m *mockClientRepository) FindByID(ctx context.Context, ownerID, id string) (model.Client, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, ownerID, id)
	}
	return model.Client{}, model.ErrClientNotFound
}

func holdingClient(client model.Client) *mockClientRepository {
	return &mockClientRepository{
		findByIDFunc: func(_ context.Context, ownerID, id string) (model.Client, error) {
			if ownerID != client.OwnerID() || id != client.ID() {
				return model.Client{}, model.ErrClientNotFound
			}
			return client, nil
		},
	}
}

type mockPaymentRepository struct {
	findByIDFunc   func(ctx context.Context, ownerID, id string) (model.Payment, error)
	listByLoanFunc func(ctx context.Context, ownerID, loanID string) ([]model.Payment, error)
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, ownerID, id string) (model.Payment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, ownerID, id)
	}
	return model.Payment{}, model.ErrPaymentNotFound
}

func (m *mockPaymentRepository) ListByLoan(ctx context.Context, ownerID, loanID string) ([]model.Payment, error) {
	if m.listByLoanFunc != nil {
		return m.listByLoanFunc(ctx, ownerID, loanID)
	}
	return nil, nil
}

type commit struct {
	payment model.Payment
	loan    model.Loan
	client  model.Client
}

// mockPaymentStore records commits and, like the Postgres store, returns
// the loan and client one version ahead of what was written.
type mockPaymentStore struct {
	commitPaymentFunc  func(ctx context.Context, payment model.Payment, loan model.Loan, client model.Client) error
	commitReversalFunc func(ctx context.Context, payment model.Payment, loan model.Loan, client model.Client) error
	payments           []commit
	reversals          []commit
}

func (m *mockPaymentStore) CommitPayment(
	ctx context.Context,
	payment model.Payment,
	loan model.Loan,
	client model.Client,
) (model.Loan, model.Client, error) {
	if m.commitPaymentFunc != nil {
		if err := m.commitPaymentFunc(ctx, payment, loan, client); err != nil {
			return model.Loan{}, model.Client{}, err
		}
	}
	m.payments = append(m.payments, commit{payment: payment, loan: loan, client: client})
	return loan.WithVersion(loan.Version() + 1), client.WithVersion(client.Version() + 1), nil
}

func (m *mockPaymentStore) CommitReversal(
	ctx context.Context,
	payment model.Payment,
	loan model.Loan,
	client model.Client,
) (model.Loan, model.Client, error) {
	if m.commitReversalFunc != nil {
		if err := m.commitReversalFunc(ctx, payment, loan, client); err != nil {
			return model.Loan{}, model.Client{}, err
		}
	}
	m.reversals = append(m.reversals, commit{payment: payment, loan: loan, client: client})
	return loan.WithVersion(loan.Version() + 1), client.WithVersion(client.Version() + 1), nil
}

type mockOutboxRepository struct {
	fetchFunc   func(ctx context.Context, batchSize int) ([]events.OutboxEntry, error)
	markFunc    func(ctx context.Context, ids []string, at time.Time) error
	markedIDs   []string
	lastBatchSz int
}

func (m *mockOutboxRepository) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	m.lastBatchSz = batchSize
	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, batchSize)
	}
	return nil, nil
}

func (m *mockOutboxRepository) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	if m.markFunc != nil {
		return m.markFunc(ctx, ids, at)
	}
	m.markedIDs = append(m.markedIDs, ids...)
	return nil
}

type mockOutboxPublisher struct {
	publishFunc func(ctx context.Context, entries []events.OutboxEntry) error
	published   []events.OutboxEntry
}

func (m *mockOutboxPublisher) PublishEntries(ctx context.Context, entries []events.OutboxEntry) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, entries)
	}
	m.published = append(m.published, entries...)
	return nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

// --- Fixtures ---

var (
	ownerID   = testutil.TestOwnerID.String()
	otherID   = testutil.OtherOwnerID.String()
	loanStart = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newClient(t *testing.T) model.Client {
	t.Helper()
	c, err := model.NewClient(ownerID, model.ClientProfile{Name: "Ana Souza"}, loanStart)
	require.NoError(t, err)
	return c.ClearEvents()
}

// newSingleLoan books 1000 at 10% due on 2026-03-31 with a 1100 balance.
func newSingleLoan(t *testing.T, client model.Client) model.Loan {
	t.Helper()
	l, err := model.NewSingleLoan(ownerID, client.ID(), testutil.Dec("1000"), testutil.Dec("10"), loanStart, 30, "", loanStart)
	require.NoError(t, err)
	return l.ClearEvents()
}

func newInstallmentsLoan(t *testing.T, client model.Client, n int) model.Loan {
	t.Helper()
	l, err := model.NewInstallmentsLoan(ownerID, client.ID(), testutil.Dec("1000"), testutil.Dec("5"), loanStart, n, "", loanStart)
	require.NoError(t, err)
	return l.ClearEvents()
}
