package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/feedbackdesk/backend/internal/adapters/database"
	"github.com/feedbackdesk/backend/internal/adapters/events"
	"github.com/feedbackdesk/backend/internal/api/handlers"
	"github.com/feedbackdesk/backend/internal/api/routes"
	"github.com/feedbackdesk/backend/internal/application/services"
	"github.com/feedbackdesk/backend/internal/domain/providers"
	"github.com/feedbackdesk/backend/internal/domain/repositories"
	"github.com/feedbackdesk/backend/internal/infrastructure/clients/mongo"
	"github.com/feedbackdesk/backend/internal/infrastructure/clients/postgres"
	"github.com/feedbackdesk/backend/internal/infrastructure/clients/redis"
	"github.com/feedbackdesk/backend/internal/infrastructure/observability"
	"github.com/feedbackdesk/backend/pkg/config"
	"github.com/feedbackdesk/backend/pkg/retry"
)

func main() {
	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	observability.InitLogger("feedback-api", appEnv(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized successfully")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	store, err := openStore(ctx, &cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the record store")
	}
	defer store.close()

	var eventBus providers.EventBus
	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable; feedback stream disabled")
		} else {
			defer redisClient.Close()
			eventBus = events.NewRedisEventBus(redisClient)
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Event bus initialized successfully")
		}
	}

	feedbackService := services.NewFeedbackService(store.repo)
	feedbackService.SetMetrics(metrics)

	var sseHandler *handlers.SSEHandler
	if eventBus != nil {
		feedbackService.SetEventBus(eventBus)
		sseHandler = handlers.NewSSEHandler(eventBus)
	}

	router := routes.NewRouter(handlers.NewFeedbackHandler(feedbackService), sseHandler, metrics)
	router.SetReadinessCheck(store.ping)

	server := &http.Server{
		Addr:        cfg.Server.Addr(),
		Handler:     router.SetupRoutes(),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would cut off the event stream.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	log.Info().Msg("Server stopped")
}

// recordStore is an open feedback store with its health check and teardown.
type recordStore struct {
	repo  repositories.FeedbackRepository
	ping  func(ctx context.Context) error
	close func()
}

// openStore connects to the store named by the URI scheme and makes sure its schema exists.
func openStore(ctx context.Context, cfg *config.StoreConfig) (*recordStore, error) {
	driver, err := cfg.Driver()
	if err != nil {
		return nil, err
	}

	switch driver {
	case config.DriverPostgres:
		var client *postgres.Client
		err := connect(ctx, "postgres", func(ctx context.Context) (err error) {
			client, err = postgres.NewClient(ctx, cfg)
			return err
		})
		if err != nil {
			return nil, err
		}
		adapter := database.NewFeedbackAdapter(client, cfg.Collection)
		if err := adapter.InitSchema(ctx); err != nil {
			client.Close()
			return nil, err
		}
		log.Info().Str("table", cfg.Collection).Msg("PostgreSQL store initialized successfully")
		return &recordStore{
			repo: adapter,
			ping: client.Ping,
			close: func() {
				if err := client.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing PostgreSQL client")
				}
			},
		}, nil

	default:
		var client *mongo.Client
		err := connect(ctx, "mongodb", func(ctx context.Context) (err error) {
			client, err = mongo.NewClient(ctx, cfg)
			return err
		})
		if err != nil {
			return nil, err
		}
		adapter := database.NewMongoFeedbackAdapter(client, cfg.Collection)
		if err := adapter.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to create feedback indexes")
		}
		log.Info().Str("database", cfg.Database).Str("collection", cfg.Collection).Msg("MongoDB store initialized successfully")
		return &recordStore{
			repo: adapter,
			ping: client.Ping,
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := client.Close(closeCtx); err != nil {
					log.Error().Err(err).Msg("Error closing MongoDB client")
				}
			},
		}, nil
	}
}

// connect retries fn while the store is still coming up.
func connect(ctx context.Context, store string, fn func(ctx context.Context) error) error {
	return retry.Do(ctx, retry.DefaultConfig(), fn, func(attempt int, err error, next time.Duration) {
		log.Warn().Err(err).
			Str("store", store).
			Int("attempt", attempt).
			Dur("retry_in", next).
			Msg("Store connection failed, retrying")
	})
}

func appEnv(cfg *config.Config) string {
	if cfg == nil {
		return os.Getenv("APP_ENV")
	}
	return cfg.Env
}
