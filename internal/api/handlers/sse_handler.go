package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/internal/domain/providers"
	"github.com/feedbackdesk/backend/internal/infrastructure/observability"
)

const heartbeatInterval = 30 * time.Second

// SSEHandler streams feedback change notifications as Server-Sent Events
type SSEHandler struct {
	eventBus  providers.EventBus
	heartbeat time.Duration
	clients   map[chan *entities.FeedbackEvent]struct{}
	mu        sync.RWMutex
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{
		eventBus:  eventBus,
		heartbeat: heartbeatInterval,
		clients:   make(map[chan *entities.FeedbackEvent]struct{}),
	}
}

// StreamFeedbackUpdates handles GET /api/feedback/stream
func (h *SSEHandler) StreamFeedbackUpdates(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	eventChan, err := h.eventBus.Subscribe(r.Context(), providers.EventChannelFeedbackUpdates)
	if err != nil {
		logger.Error().Err(err).Str("channel", providers.EventChannelFeedbackUpdates).Msg("Failed to subscribe to feedback updates")
		respondWithError(w, http.StatusServiceUnavailable, "event stream unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	clientChan := make(chan *entities.FeedbackEvent, 10)
	h.registerClient(clientChan)
	defer h.unregisterClient(clientChan)

	h.sendEvent(w, "connected", map[string]interface{}{
		"timestamp": time.Now().UTC(),
	})
	flusher.Flush()

	go h.forwardEvents(r.Context(), eventChan, clientChan)

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Msg("Client disconnected from feedback stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now().UTC(),
			})
			flusher.Flush()
		case event, ok := <-clientChan:
			if !ok {
				// Subscription ended, e.g. the event bus was closed.
				return
			}
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// forwardEvents copies events from the bus to a client, dropping them when the
// client lags. It closes clientChan when it returns.
func (h *SSEHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.FeedbackEvent, clientChan chan<- *entities.FeedbackEvent) {
	defer close(clientChan)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			select {
			case clientChan <- event:
			default:
			}
		}
	}
}

func (h *SSEHandler) registerClient(clientChan chan *entities.FeedbackEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[clientChan] = struct{}{}
}

func (h *SSEHandler) unregisterClient(clientChan chan *entities.FeedbackEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, clientChan)
}

func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// ClientCount returns the number of connected stream clients
func (h *SSEHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
