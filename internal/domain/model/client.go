package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/microcred/internal/domain/event"
	"github.com/bibbank/microcred/pkg/money"
)

// InitialScoreReason labels the history entry written at registration.
const InitialScoreReason = "Initial score"

// ClientProfile holds the contact details of a borrower. The lending core
// never interprets them.
type ClientProfile struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Notes   string
}

// ScoreHistoryEntry is one immutable line of a client's score audit trail.
type ScoreHistoryEntry struct {
	Date        time.Time
	Reason      string
	Delta       decimal.Decimal
	ScoreBefore decimal.Decimal
	ScoreAfter  decimal.Decimal
}

// ---------------------------------------------------------------------------
// Client aggregate root
// ---------------------------------------------------------------------------

// Client is an immutable aggregate. Mutations return a new copy.
type Client struct {
	id               string
	ownerID          string
	profile          ClientProfile
	registrationDate time.Time
	score            decimal.Decimal
	scoreHistory     []ScoreHistoryEntry
	version          int
	createdAt        time.Time
	updatedAt        time.Time
	domainEvents     []event.DomainEvent
}

// NewClient registers a borrower with the maximum score and a single
// "Initial score" history entry.
func NewClient(ownerID string, profile ClientProfile, now time.Time) (Client, error) {
	if ownerID == "" {
		return Client{}, errors.New("owner ID is required")
	}
	if profile.Name == "" {
		return Client{}, errors.New("client name is required")
	}

	id := uuid.New().String()
	c := Client{
		id:               id,
		ownerID:          ownerID,
		profile:          profile,
		registrationDate: now,
		score:            money.MaxScore,
		scoreHistory: []ScoreHistoryEntry{{
			Date:        now,
			Reason:      InitialScoreReason,
			Delta:       money.MaxScore,
			ScoreBefore: decimal.Zero,
			ScoreAfter:  money.MaxScore,
		}},
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
	c.domainEvents = append(c.domainEvents, event.NewClientRegistered(id, ownerID, profile.Name, c.score, now))
	return c, nil
}

// ReconstructClient rebuilds a Client aggregate from persistence.
func ReconstructClient(
	id, ownerID string,
	profile ClientProfile,
	registrationDate time.Time,
	score decimal.Decimal,
	history []ScoreHistoryEntry,
	version int,
	createdAt, updatedAt time.Time,
) Client {
	return Client{
		id:               id,
		ownerID:          ownerID,
		profile:          profile,
		registrationDate: registrationDate,
		score:            score,
		scoreHistory:     history,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// AdjustScore applies delta, clamping the result to [0, 10], and appends
// exactly one history entry recording the change.
func (c Client) AdjustScore(delta decimal.Decimal, reason string, now time.Time) Client {
	before := c.score
	after := money.ClampScore(before.Add(delta))

	next := c
	next.score = after
	next.scoreHistory = make([]ScoreHistoryEntry, len(c.scoreHistory), len(c.scoreHistory)+1)
	copy(next.scoreHistory, c.scoreHistory)
	next.scoreHistory = append(next.scoreHistory, ScoreHistoryEntry{
		Date:        now,
		Reason:      reason,
		Delta:       delta,
		ScoreBefore: before,
		ScoreAfter:  after,
	})
	next.updatedAt = now
	next.domainEvents = copyEvents(c.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewScoreAdjusted(c.id, c.ownerID, reason, delta, before, after, now))
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (c Client) ID() string                        { return c.id }
func (c Client) OwnerID() string                   { return c.ownerID }
func (c Client) Profile() ClientProfile            { return c.profile }
func (c Client) RegistrationDate() time.Time       { return c.registrationDate }
func (c Client) Score() decimal.Decimal            { return c.score }
func (c Client) Version() int                      { return c.version }
func (c Client) CreatedAt() time.Time              { return c.createdAt }
func (c Client) UpdatedAt() time.Time              { return c.updatedAt }
func (c Client) DomainEvents() []event.DomainEvent { return c.domainEvents }

// ScoreHistory returns a defensive copy of the audit trail.
func (c Client) ScoreHistory() []ScoreHistoryEntry {
	out := make([]ScoreHistoryEntry, len(c.scoreHistory))
	copy(out, c.scoreHistory)
	return out
}

// WithVersion returns a copy carrying the version the store assigned on
// its last write.
func (c Client) WithVersion(version int) Client {
	next := c
	next.version = version
	return next
}

// ClearEvents returns a copy with an empty event list.
func (c Client) ClearEvents() Client {
	next := c
	next.domainEvents = nil
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if src == nil {
		return nil
	}
	out := make([]event.DomainEvent, len(src))
	copy(out, src)
	return out
}
