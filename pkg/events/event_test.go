package events

import (
	"encoding/json"
	"testing"
	"time"
)

type amountEvent struct {
	BaseEvent
	Amount string `json:"amount"`
}

func TestNewBaseEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	event := NewBaseEvent("loan.paid_off", "loan-123", "Loan", "owner-456", at)

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}
	if event.EventType() != "loan.paid_off" {
		t.Errorf("expected event type %q, got %q", "loan.paid_off", event.EventType())
	}
	if event.AggregateID() != "loan-123" {
		t.Errorf("expected aggregate ID %q, got %q", "loan-123", event.AggregateID())
	}
	if event.AggregateType() != "Loan" {
		t.Errorf("expected aggregate type %q, got %q", "Loan", event.AggregateType())
	}
	if event.OwnerID() != "owner-456" {
		t.Errorf("expected owner ID %q, got %q", "owner-456", event.OwnerID())
	}
	if !event.OccurredAt().Equal(at) {
		t.Errorf("expected occurredAt %v, got %v", at, event.OccurredAt())
	}
}

func TestNewBaseEventUniqueIDs(t *testing.T) {
	now := time.Now()
	a := NewBaseEvent("x", "agg", "Loan", "", now)
	b := NewBaseEvent("x", "agg", "Loan", "", now)
	if a.EventID() == b.EventID() {
		t.Error("expected distinct event IDs")
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
}

func TestNewOutboxEntry(t *testing.T) {
	event := amountEvent{
		BaseEvent: NewBaseEvent("payment.processed", "loan-789", "Loan", "owner-012", time.Now()),
		Amount:    "100.00",
	}

	entry, err := NewOutboxEntry(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.ID != event.EventID() {
		t.Errorf("expected outbox ID %v, got %v", event.EventID(), entry.ID)
	}
	if entry.AggregateID != "loan-789" {
		t.Errorf("expected aggregate ID %v, got %v", "loan-789", entry.AggregateID)
	}
	if entry.EventType != "payment.processed" {
		t.Errorf("expected event type %q, got %q", "payment.processed", entry.EventType)
	}
	if entry.OwnerID != "owner-012" {
		t.Errorf("expected owner ID %q, got %q", "owner-012", entry.OwnerID)
	}
	if entry.PublishedAt != nil {
		t.Error("expected published at to be nil")
	}

	// The payload carries both the envelope and the event body.
	var parsed map[string]interface{}
	if err := json.Unmarshal(entry.Payload, &parsed); err != nil {
		t.Fatalf("expected valid JSON payload, got error: %v", err)
	}
	if parsed["event_type"] != "payment.processed" {
		t.Errorf("expected envelope event_type in payload, got %v", parsed["event_type"])
	}
	if parsed["amount"] != "100.00" {
		t.Errorf("expected amount in payload, got %v", parsed["amount"])
	}
}

func TestNewOutboxEntries(t *testing.T) {
	now := time.Now()
	entries, err := NewOutboxEntries([]DomainEvent{
		NewBaseEvent("Event1", "agg", "Loan", "", now),
		NewBaseEvent("Event2", "agg", "Loan", "", now),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].EventType != "Event2" {
		t.Errorf("expected second entry type %q, got %q", "Event2", entries[1].EventType)
	}
}

func TestEventCollectorRecord(t *testing.T) {
	collector := &EventCollector{}
	now := time.Now()

	collector.Record(NewBaseEvent("Event1", "agg", "Aggregate", "", now))
	collector.Record(NewBaseEvent("Event2", "agg", "Aggregate", "", now))

	events := collector.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType() != "Event1" {
		t.Errorf("expected first event type %q, got %q", "Event1", events[0].EventType())
	}
}

func TestEventCollectorRecordAll(t *testing.T) {
	collector := &EventCollector{}
	now := time.Now()
	collector.RecordAll(
		NewBaseEvent("Event1", "agg", "Aggregate", "", now),
		NewBaseEvent("Event2", "agg", "Aggregate", "", now),
	)
	if len(collector.Events()) != 2 {
		t.Fatalf("expected 2 events, got %d", len(collector.Events()))
	}
}

func TestEventCollectorClearEvents(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", "agg", "Aggregate", "", time.Now()))

	cleared := collector.ClearEvents()
	if len(cleared) != 1 {
		t.Fatalf("expected ClearEvents to return 1 event, got %d", len(cleared))
	}
	if len(collector.Events()) != 0 {
		t.Errorf("expected internal slice to be empty after ClearEvents, got %d events", len(collector.Events()))
	}
}

func TestEventCollectorClearEventsOnEmpty(t *testing.T) {
	collector := &EventCollector{}
	if cleared := collector.ClearEvents(); cleared != nil {
		t.Errorf("expected nil from ClearEvents on empty collector, got %v", cleared)
	}
}
