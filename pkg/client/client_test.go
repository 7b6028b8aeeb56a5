package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackdesk/backend/internal/api/handlers"
	"github.com/feedbackdesk/backend/internal/api/routes"
	"github.com/feedbackdesk/backend/internal/application/services"
	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/pkg/client"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
	"github.com/feedbackdesk/backend/tests/mocks"
)

func newAPI(t *testing.T) (*client.Client, *mocks.MemoryFeedbackRepository) {
	t.Helper()
	repo := mocks.NewMemoryFeedbackRepository()
	router := routes.NewRouter(handlers.NewFeedbackHandler(services.NewFeedbackService(repo)), nil, nil)
	server := httptest.NewServer(router.SetupRoutes())
	t.Cleanup(server.Close)
	return client.New(server.URL + "/api/"), repo
}

func requireAPIError(t *testing.T, err error) *client.APIError {
	t.Helper()
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "expected *client.APIError, got %T", err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	return apiErr
}

func TestClient_RoundTrip(t *testing.T) {
	api, repo := newAPI(t)
	ctx := context.Background()

	created, err := api.CreateFeedback(ctx, client.CreateInput{Name: "Alice", Email: "alice@example.com", Message: "Great", Rating: 5})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Alice", created.Name)

	_, err = api.CreateFeedback(ctx, client.CreateInput{Name: "Bob", Message: "Meh & so-so", Rating: 2})
	require.NoError(t, err)

	all, err := api.ListFeedback(ctx, entities.FeedbackFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Bob", all[0].Name)

	rating := 5
	filtered, err := api.ListFeedback(ctx, entities.FeedbackFilter{Rating: &rating})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, created.ID, filtered[0].ID)

	searched, err := api.ListFeedback(ctx, entities.FeedbackFilter{Search: "so-so"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, "Bob", searched[0].Name)

	stats, err := api.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.FeedbackStats{TotalFeedbacks: 2, AverageRating: 3.5, PositiveRatings: 1, NegativeRatings: 1}, *stats)

	require.NoError(t, api.DeleteFeedback(ctx, created.ID))
	assert.Equal(t, 1, repo.Len())
}

func TestClient_ServerErrorMessages(t *testing.T) {
	api, _ := newAPI(t)
	ctx := context.Background()

	_, err := api.CreateFeedback(ctx, client.CreateInput{Name: "Alice", Message: "Hi"})
	apiErr := requireAPIError(t, err)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, services.MsgRatingRange, apiErr.Error())

	err = api.DeleteFeedback(ctx, "missing")
	apiErr = requireAPIError(t, err)
	assert.Equal(t, "Feedback not found", apiErr.Message)
	assert.True(t, client.IsNotFound(err))
}

func TestClient_StorageFailureShowsGenericMessage(t *testing.T) {
	api, repo := newAPI(t)
	repo.Err = errors.New("connection reset")

	_, err := api.ListFeedback(context.Background(), entities.FeedbackFilter{})
	apiErr := requireAPIError(t, err)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, handlers.MsgServerError, apiErr.Message)
}

func TestClient_FallbackMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream unavailable"))
	}))
	t.Cleanup(server.Close)

	api := client.New(server.URL)
	ctx := context.Background()

	_, err := api.CreateFeedback(ctx, client.CreateInput{Name: "A", Message: "B", Rating: 1})
	assert.Equal(t, client.MsgSubmitFailed, requireAPIError(t, err).Message)

	_, err = api.ListFeedback(ctx, entities.FeedbackFilter{})
	assert.Equal(t, client.MsgFetchFailed, requireAPIError(t, err).Message)

	_, err = api.GetStats(ctx)
	assert.Equal(t, client.MsgStatsFailed, requireAPIError(t, err).Message)

	err = api.DeleteFeedback(ctx, "x")
	apiErr := requireAPIError(t, err)
	assert.Equal(t, client.MsgDeleteFailed, apiErr.Message)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := client.New(url).GetStats(context.Background())
	apiErr := requireAPIError(t, err)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, client.MsgStatsFailed, apiErr.Message)
}
