// Package events provides a simple event bus for publish/subscribe patterns.
// The table editor publishes committed patches and focus requests on it;
// the live feed and metrics subscribe.
package events

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/artpar/gridpatch/domain/patch"
	"github.com/rs/zerolog"
)

// Event names published by the table editor.
const (
	TablePatched        = "table.patched"
	TableFocus          = "table.focus"
	TableConfirmPending = "table.confirm_pending"
	TableConfirmClosed  = "table.confirm_closed"
)

// Event represents a published event.
type Event struct {
	// Name is the event name (e.g., "table.patched").
	Name string `json:"name"`

	// DocumentID is the document the event concerns.
	DocumentID string `json:"document_id"`

	// Field is the table field within the document.
	Field string `json:"field,omitempty"`

	// Operation is the gesture that produced the event (e.g., "add_row").
	Operation string `json:"operation,omitempty"`

	// Rev is the document revision after a commit.
	Rev int64 `json:"rev,omitempty"`

	// Patch is the document-relative patch that was committed.
	Patch patch.Event `json:"patch,omitempty"`

	// Focus is the cell to focus, for table.focus events.
	Focus *Focus `json:"focus,omitempty"`

	// Message is the confirmation text, for confirmation events.
	Message string `json:"message,omitempty"`

	At time.Time `json:"at"`
}

// Focus addresses a cell by position and document-relative path.
type Focus struct {
	Row  int        `json:"row"`
	Cell int        `json:"cell"`
	Path patch.Path `json:"path"`
}

// Handler is a function that processes an event.
type Handler func(ctx context.Context, event Event) error

type subscription struct {
	id      uint64
	handler Handler
}

// Bus is a simple publish/subscribe event bus.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]subscription
	nextID   uint64
	logger   zerolog.Logger
}

// NewBus creates a new event bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		handlers: make(map[string][]subscription),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event and returns a function that
// removes it. Supports wildcard subscriptions:
//   - "table.patched" - exact match
//   - "table.*" - all table events
//   - "*" - all events
func (b *Bus) Subscribe(event string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[event] = append(b.handlers[event], subscription{id: id, handler: handler})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.handlers[event]
		for i, s := range subs {
			if s.id == id {
				b.handlers[event] = append(subs[:i:i], subs[i+1:]...)
				break
			}
		}
		if len(b.handlers[event]) == 0 {
			delete(b.handlers, event)
		}
	}
}

// Publish emits an event to all matching handlers.
// Handlers are called synchronously in registration order, exact matches
// first. Handler errors are logged and do not stop delivery.
func (b *Bus) Publish(ctx context.Context, event Event) {
	matched := b.match(event.Name)

	b.logger.Debug().
		Str("event", event.Name).
		Str("document", event.DocumentID).
		Str("operation", event.Operation).
		Int("handlers", len(matched)).
		Msg("event emitted")

	// handlers run outside the lock so they may subscribe or unsubscribe
	for _, handler := range matched {
		if err := handler(ctx, event); err != nil {
			b.logger.Error().
				Err(err).
				Str("event", event.Name).
				Msg("event handler error")
		}
	}
}

// HasSubscribers checks if any handlers would receive an event.
func (b *Bus) HasSubscribers(event string) bool {
	return len(b.match(event)) > 0
}

func (b *Bus) match(name string) []Handler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := []string{name}
	if prefix, _, ok := strings.Cut(name, "."); ok {
		keys = append(keys, prefix+".*")
	}
	keys = append(keys, "*")

	var matched []Handler
	for _, key := range keys {
		for _, s := range b.handlers[key] {
			matched = append(matched, s.handler)
		}
	}
	return matched
}
