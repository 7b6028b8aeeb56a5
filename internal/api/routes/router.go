package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/feedbackdesk/backend/internal/api/handlers"
	"github.com/feedbackdesk/backend/internal/api/middleware"
	"github.com/feedbackdesk/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	feedbackHandler *handlers.FeedbackHandler
	sseHandler      *handlers.SSEHandler

	metrics *observability.Metrics
	ready   func(ctx context.Context) error
}

const readinessTimeout = 2 * time.Second

// NewRouter creates a new router. sseHandler may be nil when no event bus is configured.
func NewRouter(
	feedbackHandler *handlers.FeedbackHandler,
	sseHandler *handlers.SSEHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		feedbackHandler: feedbackHandler,
		sseHandler:      sseHandler,
		metrics:         metrics,
	}
}

// SetReadinessCheck makes GET /health/ready report the result of check.
func (r *Router) SetReadinessCheck(check func(ctx context.Context) error) {
	r.ready = check
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	r.mux.HandleFunc("GET /health/ready", r.readiness)

	// Feedback endpoints
	r.mux.HandleFunc("POST /api/feedback", r.feedbackHandler.SubmitFeedback)
	r.mux.HandleFunc("GET /api/feedback", r.feedbackHandler.ListFeedback)
	r.mux.HandleFunc("GET /api/feedback/stats", r.feedbackHandler.GetStats)
	r.mux.HandleFunc("DELETE /api/feedback/{id}", r.feedbackHandler.DeleteFeedback)

	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/feedback/stream", r.sseHandler.StreamFeedbackUpdates)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so preflight requests never reach the mux.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}

func (r *Router) readiness(w http.ResponseWriter, req *http.Request) {
	if r.ready != nil {
		ctx, cancel := context.WithTimeout(req.Context(), readinessTimeout)
		defer cancel()
		if err := r.ready(ctx); err != nil {
			observability.LoggerFromContext(req.Context()).Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "NOT READY", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("READY")); err != nil {
		return
	}
}
