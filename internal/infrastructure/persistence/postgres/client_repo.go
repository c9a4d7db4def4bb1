package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/domain/model"
	"github.com/bibbank/microcred/internal/domain/port"
	pgutil "github.com/bibbank/microcred/pkg/postgres"
)

// Compile-time interface check.
var _ port.ClientRepository = (*ClientRepo)(nil)

// ClientRepo implements port.ClientRepository.
type ClientRepo struct {
	db DB
}

// NewClientRepo creates a new PostgreSQL-backed client repository.
func NewClientRepo(db DB) *ClientRepo {
	return &ClientRepo{db: db}
}

// Save persists a client, its score history and its domain events.
func (r *ClientRepo) Save(ctx context.Context, client model.Client) error {
	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := saveClient(ctx, tx, client); err != nil {
			return err
		}
		return insertOutbox(ctx, tx, client.DomainEvents())
	})
}

// FindByID retrieves a client owned by ownerID with its full score history.
func (r *ClientRepo) FindByID(ctx context.Context, ownerID, id string) (model.Client, error) {
	var (
		clientID, owner      string
		profile              model.ClientProfile
		registered           time.Time
		score                decimal.Decimal
		version              int
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_id, name, phone, email, address, notes,
		       registration_date, score, version, created_at, updated_at
		FROM clients
		WHERE owner_id = $1 AND id = $2
	`, ownerID, id).Scan(
		&clientID, &owner, &profile.Name, &profile.Phone, &profile.Email, &profile.Address, &profile.Notes,
		&registered, &score, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Client{}, model.ErrClientNotFound
		}
		return model.Client{}, fmt.Errorf("query client: %w", err)
	}

	history, err := loadScoreHistory(ctx, r.db, clientID)
	if err != nil {
		return model.Client{}, err
	}

	return model.ReconstructClient(
		clientID, owner, profile, registered.UTC(), score, history,
		version, createdAt.UTC(), updatedAt.UTC(),
	), nil
}

// saveClient upserts the client row conditionally on its version, appends
// any score history entries not yet stored and returns the stored version.
func saveClient(ctx context.Context, tx pgx.Tx, client model.Client) (int, error) {
	p := client.Profile()
	var version int
	err := tx.QueryRow(ctx, `
		INSERT INTO clients (
			id, owner_id, name, phone, email, address, notes,
			registration_date, score, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name       = EXCLUDED.name,
			phone      = EXCLUDED.phone,
			email      = EXCLUDED.email,
			address    = EXCLUDED.address,
			notes      = EXCLUDED.notes,
			score      = EXCLUDED.score,
			version    = clients.version + 1,
			updated_at = EXCLUDED.updated_at
		WHERE clients.version = $10
		RETURNING version
	`,
		client.ID(), client.OwnerID(), p.Name, p.Phone, p.Email, p.Address, p.Notes,
		client.RegistrationDate(), client.Score(), client.Version(), client.CreatedAt(), client.UpdatedAt(),
	).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("save client %s: %w", client.ID(), model.ErrConcurrentModification)
	}
	if err != nil {
		return 0, fmt.Errorf("save client: %w", err)
	}

	for i, e := range client.ScoreHistory() {
		_, err := tx.Exec(ctx, `
			INSERT INTO client_score_history (client_id, seq, date, reason, delta, score_before, score_after)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (client_id, seq) DO NOTHING
		`, client.ID(), i+1, e.Date, e.Reason, e.Delta, e.ScoreBefore, e.ScoreAfter)
		if err != nil {
			return 0, fmt.Errorf("save score entry %d: %w", i+1, err)
		}
	}
	return version, nil
}

func loadScoreHistory(ctx context.Context, db pgutil.Querier, clientID string) ([]model.ScoreHistoryEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT date, reason, delta, score_before, score_after
		FROM client_score_history
		WHERE client_id = $1
		ORDER BY seq
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	var history []model.ScoreHistoryEntry
	for rows.Next() {
		var e model.ScoreHistoryEntry
		if err := rows.Scan(&e.Date, &e.Reason, &e.Delta, &e.ScoreBefore, &e.ScoreAfter); err != nil {
			return nil, fmt.Errorf("scan score entry: %w", err)
		}
		e.Date = e.Date.UTC()
		history = append(history, e)
	}
	return history, rows.Err()
}
