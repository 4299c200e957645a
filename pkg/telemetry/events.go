package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event represents a telemetry event emitted by the loadout engine.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// Source identifies where the event originated.
	Source string `json:"source"`

	// LoadoutID is the associated loadout, if applicable.
	LoadoutID string `json:"loadout_id,omitempty"`

	// ItemID is the associated catalog item, if applicable.
	ItemID string `json:"item_id,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the event severity level (info, warning, error).
	Level string `json:"level"`

	// Data contains additional event-specific data.
	Data map[string]interface{} `json:"data,omitempty"`
}

// EventType constants for events published outside the command layer.
// Command notifications keep their own type names (item.added, ...).
const (
	EventTypeCommandApplied   = "command.applied"
	EventTypeCommandUndone    = "command.undone"
	EventTypeCommandRedone    = "command.redone"
	EventTypeCommandRejected  = "command.rejected"
	EventTypeResolveCompleted = "resolver.completed"
	EventTypeCatalogLoaded    = "catalog.loaded"
	EventTypeError            = "error"
)

// EventLevel constants for event severity.
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// EventSubscriber is a function that handles events.
type EventSubscriber func(event Event)

// EventFilter determines if an event should be processed.
type EventFilter func(event Event) bool

// EventPublisher manages event publishing and subscriptions. Subscribers
// receive events one at a time in publish order.
type EventPublisher struct {
	config      EventsConfig
	buffer      chan Event
	subscribers []subscriberEntry
	filters     []EventFilter
	wg          sync.WaitGroup
	mu          sync.RWMutex
	deliverMu   sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
}

type subscriberEntry struct {
	subscriber EventSubscriber
	filter     EventFilter
}

// NewEventPublisher creates a new event publisher with the given configuration.
func NewEventPublisher(cfg EventsConfig) (*EventPublisher, error) {
	if !cfg.Enabled {
		return &EventPublisher{config: cfg}, nil
	}
	if cfg.EnableAsync && cfg.BufferSize <= 0 {
		return nil, fmt.Errorf("event buffer size must be positive, got: %d", cfg.BufferSize)
	}

	ctx, cancel := context.WithCancel(context.Background())

	ep := &EventPublisher{
		config:      cfg,
		subscribers: make([]subscriberEntry, 0),
		filters:     make([]EventFilter, 0),
		ctx:         ctx,
		cancel:      cancel,
	}

	// Start the event processing goroutine
	if cfg.EnableAsync {
		ep.buffer = make(chan Event, cfg.BufferSize)
		ep.wg.Add(1)
		go ep.processEvents()
	}

	return ep, nil
}

// Publish publishes an event to all subscribers.
func (ep *EventPublisher) Publish(event Event) error {
	if ep == nil || !ep.config.Enabled {
		return nil
	}

	// Set ID and timestamp if not already set
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Apply global filters
	ep.mu.RLock()
	for _, filter := range ep.filters {
		if !filter(event) {
			ep.mu.RUnlock()
			return nil // Event filtered out
		}
	}
	ep.mu.RUnlock()

	if ep.config.EnableAsync {
		select {
		case <-ep.ctx.Done():
			return fmt.Errorf("event publisher stopped")
		default:
		}
		select {
		case ep.buffer <- event:
			return nil
		default:
			return fmt.Errorf("event buffer full, event dropped")
		}
	}

	ep.deliverEvent(event)
	return nil
}

// PublishCommand publishes a stack transition for a loadout. action is one
// of EventTypeCommandApplied, EventTypeCommandUndone, EventTypeCommandRedone
// or EventTypeCommandRejected.
func (ep *EventPublisher) PublishCommand(action, loadoutID, kind, description string) error {
	level := EventLevelInfo
	if action == EventTypeCommandRejected {
		level = EventLevelWarning
	}
	return ep.Publish(Event{
		Type:      action,
		Source:    "workbench",
		LoadoutID: loadoutID,
		Message:   description,
		Level:     level,
		Data: map[string]interface{}{
			"kind": kind,
		},
	})
}

// PublishResolveCompleted publishes the outcome of an auto placement search.
func (ep *EventPublisher) PublishResolveCompleted(loadoutID, itemID, outcome string, attempts int, duration time.Duration) error {
	level := EventLevelInfo
	if outcome != "success" {
		level = EventLevelWarning
	}
	return ep.Publish(Event{
		Type:      EventTypeResolveCompleted,
		Source:    "resolver",
		LoadoutID: loadoutID,
		ItemID:    itemID,
		Message:   fmt.Sprintf("Auto placement of %s finished: %s (%d attempts)", itemID, outcome, attempts),
		Level:     level,
		Data: map[string]interface{}{
			"outcome":  outcome,
			"attempts": attempts,
			"duration": duration.Seconds(),
		},
	})
}

// PublishCatalogLoaded publishes a catalog load.
func (ep *EventPublisher) PublishCatalogLoaded(source string, items, chassis, upgrades int) error {
	return ep.Publish(Event{
		Type:    EventTypeCatalogLoaded,
		Source:  "catalog",
		Message: fmt.Sprintf("Catalog loaded from %s: %d items, %d chassis, %d upgrades", source, items, chassis, upgrades),
		Level:   EventLevelInfo,
		Data: map[string]interface{}{
			"source":   source,
			"items":    items,
			"chassis":  chassis,
			"upgrades": upgrades,
		},
	})
}

// Subscribe adds a new event subscriber.
func (ep *EventPublisher) Subscribe(subscriber EventSubscriber, filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.subscribers = append(ep.subscribers, subscriberEntry{
		subscriber: subscriber,
		filter:     filter,
	})
}

// AddFilter adds a global event filter.
func (ep *EventPublisher) AddFilter(filter EventFilter) {
	ep.mu.Lock()
	defer ep.mu.Unlock()

	ep.filters = append(ep.filters, filter)
}

// processEvents drains the buffer, delivering in batches of MaxBatchSize
// or every FlushInterval, whichever comes first.
func (ep *EventPublisher) processEvents() {
	defer ep.wg.Done()

	size := ep.config.MaxBatchSize
	if size <= 0 {
		size = 1
	}
	batch := make([]Event, 0, size)

	var tick <-chan time.Time
	if ep.config.FlushInterval > 0 {
		ticker := time.NewTicker(ep.config.FlushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case event := <-ep.buffer:
			batch = append(batch, event)
			if len(batch) >= size {
				ep.flushBatch(batch)
				batch = batch[:0]
			}

		case <-tick:
			if len(batch) > 0 {
				ep.flushBatch(batch)
				batch = batch[:0]
			}

		case <-ep.ctx.Done():
			// Flush everything still queued before shutting down
			for {
				select {
				case event := <-ep.buffer:
					batch = append(batch, event)
				default:
					ep.flushBatch(batch)
					return
				}
			}
		}
	}
}

// flushBatch delivers a batch of events to subscribers.
func (ep *EventPublisher) flushBatch(events []Event) {
	for _, event := range events {
		ep.deliverEvent(event)
	}
}

// deliverEvent delivers an event to all subscribers in subscription order.
func (ep *EventPublisher) deliverEvent(event Event) {
	ep.deliverMu.Lock()
	defer ep.deliverMu.Unlock()

	ep.mu.RLock()
	subs := make([]subscriberEntry, len(ep.subscribers))
	copy(subs, ep.subscribers)
	ep.mu.RUnlock()

	for _, entry := range subs {
		// Apply subscriber-specific filter
		if entry.filter != nil && !entry.filter(event) {
			continue
		}
		entry.subscriber(event)
	}
}

// Shutdown gracefully shuts down the event publisher, delivering any
// buffered events first.
func (ep *EventPublisher) Shutdown(ctx context.Context) error {
	if ep == nil || !ep.config.Enabled {
		return nil
	}

	// Signal shutdown
	ep.cancel()

	// Wait for processing to complete with timeout
	done := make(chan struct{})
	go func() {
		ep.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("event publisher shutdown timeout")
	}
}

// Common event filters.

// FilterByLevel creates a filter that only allows events of a specific level or higher.
func FilterByLevel(minLevel string) EventFilter {
	levels := map[string]int{
		EventLevelInfo:    0,
		EventLevelWarning: 1,
		EventLevelError:   2,
	}

	minLevelValue := levels[minLevel]

	return func(event Event) bool {
		return levels[event.Level] >= minLevelValue
	}
}

// FilterByType creates a filter that only allows events of specific types.
func FilterByType(types ...string) EventFilter {
	typeSet := make(map[string]bool)
	for _, t := range types {
		typeSet[t] = true
	}

	return func(event Event) bool {
		return typeSet[event.Type]
	}
}

// FilterByLoadoutID creates a filter that only allows events for one loadout.
func FilterByLoadoutID(loadoutID string) EventFilter {
	return func(event Event) bool {
		return event.LoadoutID == loadoutID
	}
}
