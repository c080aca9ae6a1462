package ports

import (
	"context"

	"github.com/HARIPRASAD-2003/form-builder/internal/domain/events"
)

// EventHandler is a function that handles an event
type EventHandler func(ctx context.Context, payload interface{}) error

// EventPublisher provides event publishing capabilities.
type EventPublisher interface {
	// Subscribe registers a handler for a specific event type.
	// The returned function removes the handler.
	Subscribe(eventType events.EventType, handler EventHandler) func()

	// Publish dispatches an event to all registered handlers.
	// Returns an error if any handler fails.
	Publish(ctx context.Context, eventType events.EventType, payload interface{}) error

	// PublishAsync dispatches an event on its own goroutine; handler
	// errors are logged.
	PublishAsync(eventType events.EventType, payload interface{})
}
