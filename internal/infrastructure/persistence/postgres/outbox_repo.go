package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/microcred/pkg/events"
)

// Compile-time interface check.
var _ events.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo reads and acknowledges outbox entries.
type OutboxRepo struct {
	db DB
}

// NewOutboxRepo creates a new PostgreSQL-backed outbox repository.
func NewOutboxRepo(db DB) *OutboxRepo {
	return &OutboxRepo{db: db}
}

// FetchUnpublished returns the oldest pending entries.
func (r *OutboxRepo) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, aggregate_id, aggregate_type, event_type, owner_id, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.OwnerID, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkPublished stamps entries as delivered.
func (r *OutboxRepo) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, `
		UPDATE outbox SET published_at = $1
		WHERE id = ANY($2) AND published_at IS NULL
	`, at, ids); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}
