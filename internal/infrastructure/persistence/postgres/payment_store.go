package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/microcred/internal/domain/event"
	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/pkg/events"
	pgutil "github.com/bibbank/microcred/pkg/postgres"
)

// CommitPayment writes a new payment with the loan and client it changed,
// plus all three aggregates' events, in one transaction.
func (r *PaymentRepo) CommitPayment(
	ctx context.Context,
	payment model.Payment,
	loan model.Loan,
	client model.Client,
) (model.Loan, model.Client, error) {
	var loanVersion, clientVersion int
	err := pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		if loanVersion, err = saveLoan(ctx, tx, loan); err != nil {
			return err
		}
		if clientVersion, err = saveClient(ctx, tx, client); err != nil {
			return err
		}
		if err := insertPayment(ctx, tx, payment); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, collectEvents(payment, loan, client))
	})
	if err != nil {
		return model.Loan{}, model.Client{}, err
	}
	return loan.ClearEvents().WithVersion(loanVersion), client.ClearEvents().WithVersion(clientVersion), nil
}

// CommitReversal marks a payment reversed and writes the restored loan and
// client in one transaction. A payment already marked reversed by a
// concurrent call yields model.ErrPaymentAlreadyReversed.
func (r *PaymentRepo) CommitReversal(
	ctx context.Context,
	payment model.Payment,
	loan model.Loan,
	client model.Client,
) (model.Loan, model.Client, error) {
	if !payment.IsReversed() {
		return model.Loan{}, model.Client{}, fmt.Errorf("commit reversal of %s: payment is not reversed", payment.ID())
	}
	var loanVersion, clientVersion int
	err := pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE payments SET reversed_at = $1
			WHERE id = $2 AND reversed_at IS NULL
		`, *payment.ReversedAt(), payment.ID())
		if err != nil {
			return fmt.Errorf("mark payment reversed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrPaymentAlreadyReversed
		}
		if loanVersion, err = saveLoan(ctx, tx, loan); err != nil {
			return err
		}
		if clientVersion, err = saveClient(ctx, tx, client); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, collectEvents(payment, loan, client))
	})
	if err != nil {
		return model.Loan{}, model.Client{}, err
	}
	return loan.ClearEvents().WithVersion(loanVersion), client.ClearEvents().WithVersion(clientVersion), nil
}

func insertPayment(ctx context.Context, tx pgx.Tx, p model.Payment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO payments (`+paymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		p.ID(), p.OwnerID(), p.LoanID(), p.ClientID(), p.Date(), p.Amount(), p.Method().String(), p.Notes(), p.IsInterestOnly(),
		p.PrincipalPaid(), p.InterestPaid(), p.Classification().String(), p.ScoreDelta(), p.InstallmentNumber(),
		p.PreviousStatus().String(), p.PreviousDueDate(), p.PreviousBalance(), p.ReversedAt(),
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// collectEvents orders the outbox rows payment first, then loan, then client.
func collectEvents(payment model.Payment, loan model.Loan, client model.Client) []event.DomainEvent {
	var c events.EventCollector
	c.RecordAll(payment.DomainEvents()...)
	c.RecordAll(loan.DomainEvents()...)
	c.RecordAll(client.DomainEvents()...)
	return c.ClearEvents()
}
