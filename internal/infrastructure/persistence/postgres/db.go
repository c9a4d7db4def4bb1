package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/microcred/pkg/events"
	pgutil "github.com/bibbank/microcred/pkg/postgres"
)

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	pgutil.Querier
	pgutil.TxBeginner
}

// scannable is satisfied by both pgx.Row and pgx.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// insertOutbox writes domain events to the outbox inside tx.
func insertOutbox(ctx context.Context, tx pgx.Tx, evts []events.DomainEvent) error {
	entries, err := events.NewOutboxEntries(evts)
	if err != nil {
		return fmt.Errorf("build outbox entries: %w", err)
	}
	for _, e := range entries {
		_, err := tx.Exec(ctx, `
			INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, owner_id, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, e.ID, e.AggregateID, e.AggregateType, e.EventType, e.OwnerID, e.Payload, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert outbox event %s: %w", e.EventType, err)
		}
	}
	return nil
}
