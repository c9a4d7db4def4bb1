package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/microcred/internal/application/dto"
	"github.com/bibbank/microcred/internal/domain/port"
	"github.com/bibbank/microcred/pkg/events"
)

// DefaultOutboxBatchSize bounds how many entries one relay run publishes.
const DefaultOutboxBatchSize = 100

// RelayOutboxUseCase forwards committed domain events to the message bus.
// Delivery is at least once: entries are marked only after publishing.
type RelayOutboxUseCase struct {
	outbox    events.OutboxRepository
	publisher port.OutboxPublisher
	batchSize int
	clock     port.Clock
	logger    *slog.Logger
	telemetry *telemetry
}

// NewRelayOutboxUseCase wires dependencies.
func NewRelayOutboxUseCase(
	outbox events.OutboxRepository,
	publisher port.OutboxPublisher,
	batchSize int,
	clock port.Clock,
	logger *slog.Logger,
) *RelayOutboxUseCase {
	if batchSize <= 0 {
		batchSize = DefaultOutboxBatchSize
	}
	return &RelayOutboxUseCase{
		outbox:    outbox,
		publisher: publisher,
		batchSize: batchSize,
		clock:     clock,
		logger:    logger,
		telemetry: newTelemetry(),
	}
}

// Execute publishes one batch of pending entries.
func (uc *RelayOutboxUseCase) Execute(ctx context.Context) (resp dto.RelayOutboxResponse, err error) {
	ctx, done := uc.telemetry.track(ctx, "relay_outbox")
	defer func() { done(err) }()

	entries, err := uc.outbox.FetchUnpublished(ctx, uc.batchSize)
	if err != nil {
		return dto.RelayOutboxResponse{}, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		return dto.RelayOutboxResponse{}, nil
	}

	if err := uc.publisher.PublishEntries(ctx, entries); err != nil {
		return dto.RelayOutboxResponse{}, fmt.Errorf("publish entries: %w", err)
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}
	if err := uc.outbox.MarkPublished(ctx, ids, uc.clock.Now()); err != nil {
		return dto.RelayOutboxResponse{}, fmt.Errorf("mark published: %w", err)
	}

	uc.logger.DebugContext(ctx, "outbox relayed", "count", len(entries))
	return dto.RelayOutboxResponse{Published: len(entries)}, nil
}
