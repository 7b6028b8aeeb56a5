// Command sse serves the feedback event stream on its own, so long-lived
// connections stay off the API process. It needs Redis but no record store.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/feedbackdesk/backend/internal/adapters/events"
	"github.com/feedbackdesk/backend/internal/api/handlers"
	"github.com/feedbackdesk/backend/internal/api/middleware"
	"github.com/feedbackdesk/backend/internal/infrastructure/clients/redis"
	"github.com/feedbackdesk/backend/internal/infrastructure/observability"
	"github.com/feedbackdesk/backend/pkg/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadClient()
	observability.InitLogger("feedback-stream", cfg.Env)

	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_HOST is required for the event stream")
	}

	redisClient, err := redis.NewClient(context.Background(), &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Redis client")
	}
	defer redisClient.Close()

	eventBus := events.NewRedisEventBus(redisClient)
	sseHandler := handlers.NewSSEHandler(eventBus)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})
	mux.HandleFunc("GET /api/feedback/stream", sseHandler.StreamFeedbackUpdates)
	mux.HandleFunc("GET /api/feedback/stream/stats", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"connectedClients": %d}`, sseHandler.ClientCount())
	})

	var handler http.Handler = mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	server := &http.Server{
		Addr:        cfg.Stream.Addr(),
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout for streaming responses.
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Stream server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Stream server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Stream server shutting down...")

	// Closing the bus first ends every open stream's subscription.
	if err := eventBus.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing event bus")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Stream server stopped")
}
