package events

// EventCollector gathers the domain events raised while a single command is
// being handled so they can be written to the outbox together.
type EventCollector struct {
	events []DomainEvent
}

// Record appends a domain event to the collector.
func (c *EventCollector) Record(event DomainEvent) {
	c.events = append(c.events, event)
}

// RecordAll appends several domain events in order.
func (c *EventCollector) RecordAll(evts ...DomainEvent) {
	c.events = append(c.events, evts...)
}

// Events returns the collected domain events without clearing them.
func (c *EventCollector) Events() []DomainEvent {
	return c.events
}

// ClearEvents returns the collected domain events and clears the internal slice.
func (c *EventCollector) ClearEvents() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}
