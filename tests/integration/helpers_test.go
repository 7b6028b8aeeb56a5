//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feedbackdesk/backend/internal/adapters/database"
	"github.com/feedbackdesk/backend/internal/domain/repositories"
	"github.com/feedbackdesk/backend/internal/infrastructure/clients/mongo"
	"github.com/feedbackdesk/backend/internal/infrastructure/clients/postgres"
	"github.com/feedbackdesk/backend/internal/infrastructure/clients/redis"
	"github.com/feedbackdesk/backend/pkg/config"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// uniqueName keeps parallel runs from sharing a collection or table.
func uniqueName(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	cfg := &config.RedisConfig{
		Host:     getEnv("TEST_REDIS_HOST", "localhost"),
		Port:     getEnvAsInt("TEST_REDIS_PORT", 6379),
		Password: getEnv("TEST_REDIS_PASSWORD", ""),
		DB:       getEnvAsInt("TEST_REDIS_DB", 0),
	}

	client, err := redis.NewClient(context.Background(), cfg)
	require.NoError(t, err, "Failed to create redis client")
	return client
}

// newMongoRepository returns a repository on a fresh collection that is dropped after the test.
func newMongoRepository(t *testing.T) repositories.FeedbackRepository {
	t.Helper()

	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("Skipping integration test: TEST_MONGODB_URI not set")
	}

	cfg := &config.StoreConfig{
		URI:        uri,
		Database:   getEnv("TEST_MONGODB_DATABASE", "feedback_dashboard_test"),
		Collection: uniqueName("feedbacks"),
	}

	ctx := context.Background()
	client, err := mongo.NewClient(ctx, cfg)
	require.NoError(t, err, "Failed to create mongo client")

	adapter := database.NewMongoFeedbackAdapter(client, cfg.Collection)
	require.NoError(t, adapter.InitSchema(ctx))

	t.Cleanup(func() {
		_ = client.Collection(cfg.Collection).Drop(ctx)
		_ = client.Close(ctx)
	})
	return adapter
}

// newPostgresRepository returns a repository on a fresh table that is dropped after the test.
func newPostgresRepository(t *testing.T) repositories.FeedbackRepository {
	t.Helper()

	uri := os.Getenv("TEST_POSTGRES_URI")
	if uri == "" {
		t.Skip("Skipping integration test: TEST_POSTGRES_URI not set")
	}

	cfg := &config.StoreConfig{URI: uri, Collection: uniqueName("feedbacks")}

	ctx := context.Background()
	client, err := postgres.NewClient(ctx, cfg)
	require.NoError(t, err, "Failed to create postgres client")

	adapter := database.NewFeedbackAdapter(client, cfg.Collection)
	require.NoError(t, adapter.InitSchema(ctx))

	t.Cleanup(func() {
		_, _ = client.DB().ExecContext(ctx, "DROP TABLE IF EXISTS "+cfg.Collection)
		_ = client.Close()
	})
	return adapter
}
