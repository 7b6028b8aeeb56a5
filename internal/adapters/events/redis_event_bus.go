package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/internal/domain/providers"
	redisclient "github.com/feedbackdesk/backend/internal/infrastructure/clients/redis"
)

const subscriberBuffer = 32

// RedisEventBus implements the EventBus interface using Redis Pub/Sub.
// One Redis subscription per channel is fanned out to every local subscriber.
type RedisEventBus struct {
	client        *redisclient.Client
	subscriptions map[string]*redis.PubSub
	subscribers   map[string]map[chan *entities.FeedbackEvent]struct{}
	mu            sync.RWMutex
	ctx           context.Context
	cancel        context.CancelFunc
}

// NewRedisEventBus creates a new Redis-based event bus
func NewRedisEventBus(client *redisclient.Client) providers.EventBus {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisEventBus{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
		subscribers:   make(map[string]map[chan *entities.FeedbackEvent]struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Publish publishes an event to all subscribers
func (b *RedisEventBus) Publish(ctx context.Context, channel string, event *entities.FeedbackEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Client().Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debug().Str("channel", channel).Str("event_id", event.ID).Str("type", string(event.EventType)).Msg("Published event")
	return nil
}

// Subscribe subscribes to events on a channel. The returned channel is
// closed when ctx is done or the bus is closed.
func (b *RedisEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.FeedbackEvent, error) {
	b.mu.Lock()
	if b.ctx.Err() != nil {
		b.mu.Unlock()
		return nil, errors.New("event bus is closed")
	}

	if _, exists := b.subscriptions[channel]; !exists {
		pubsub := b.client.Client().Subscribe(b.ctx, channel)
		b.subscriptions[channel] = pubsub
		go b.receiveMessages(channel, pubsub)
	}

	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.FeedbackEvent]struct{})
	}

	eventChan := make(chan *entities.FeedbackEvent, subscriberBuffer)
	b.subscribers[channel][eventChan] = struct{}{}
	subscriberCount := len(b.subscribers[channel])
	b.mu.Unlock()

	log.Info().Str("channel", channel).Int("subscribers", subscriberCount).Msg("Subscribed to channel")

	go func() {
		select {
		case <-ctx.Done():
		case <-b.ctx.Done():
		}
		b.removeSubscriber(channel, eventChan)
	}()

	return eventChan, nil
}

func (b *RedisEventBus) receiveMessages(channel string, pubsub *redis.PubSub) {
	ch := pubsub.Channel()
	for {
		select {
		case <-b.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.FeedbackEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("Failed to unmarshal event")
				continue
			}

			b.mu.RLock()
			for subscriber := range b.subscribers[channel] {
				select {
				case subscriber <- &event:
				default:
					log.Warn().Str("channel", channel).Str("event_id", event.ID).Msg("Subscriber channel full, skipping event")
				}
			}
			b.mu.RUnlock()
		}
	}
}

func (b *RedisEventBus) removeSubscriber(channel string, eventChan chan *entities.FeedbackEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers, exists := b.subscribers[channel]
	if !exists {
		return
	}
	if _, ok := subscribers[eventChan]; !ok {
		return
	}

	delete(subscribers, eventChan)
	close(eventChan)

	if len(subscribers) == 0 {
		if err := b.closeChannelLocked(channel); err != nil {
			log.Warn().Err(err).Str("channel", channel).Msg("Failed to close idle subscription")
		}
	}
}

// closeChannelLocked drops the Redis subscription for channel. Callers hold b.mu.
func (b *RedisEventBus) closeChannelLocked(channel string) error {
	for subscriber := range b.subscribers[channel] {
		close(subscriber)
	}
	delete(b.subscribers, channel)

	pubsub, ok := b.subscriptions[channel]
	if !ok {
		return nil
	}
	delete(b.subscriptions, channel)
	if err := pubsub.Close(); err != nil {
		return fmt.Errorf("failed to close subscription %s: %w", channel, err)
	}
	log.Info().Str("channel", channel).Msg("Closed subscription to channel")
	return nil
}

// Unsubscribe unsubscribes every local subscriber from a channel
func (b *RedisEventBus) Unsubscribe(ctx context.Context, channel string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeChannelLocked(channel)
}

// Close closes the event bus and all subscriptions
func (b *RedisEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cancel()

	var errs []error
	for channel := range b.subscriptions {
		if err := b.closeChannelLocked(channel); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing event bus: %w", errors.Join(errs...))
	}

	log.Info().Msg("Event bus closed")
	return nil
}
