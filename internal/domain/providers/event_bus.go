package providers

import (
	"context"

	"github.com/feedbackdesk/backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.FeedbackEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.FeedbackEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannelFeedbackUpdates carries every feedback create and delete
const EventChannelFeedbackUpdates = "feedback:updates"
