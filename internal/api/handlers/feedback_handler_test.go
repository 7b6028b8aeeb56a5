package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackdesk/backend/internal/api/handlers"
	"github.com/feedbackdesk/backend/internal/application/services"
	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/tests/mocks"
)

type envelope struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newFeedbackHandler(t *testing.T) (*handlers.FeedbackHandler, *mocks.MemoryFeedbackRepository) {
	t.Helper()
	repo := mocks.NewMemoryFeedbackRepository()
	return handlers.NewFeedbackHandler(services.NewFeedbackService(repo)), repo
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func submit(t *testing.T, handler *handlers.FeedbackHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.SubmitFeedback(w, req)
	return w
}

func list(t *testing.T, handler *handlers.FeedbackHandler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/feedback"+query, nil)
	w := httptest.NewRecorder()
	handler.ListFeedback(w, req)
	return w
}

func TestFeedbackHandler_SubmitFeedback_Success(t *testing.T) {
	handler, repo := newFeedbackHandler(t)

	w := submit(t, handler, `{"name":"Alice","email":"alice@example.com","message":"Great service","rating":5}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	body := decodeEnvelope(t, w)
	assert.True(t, body.Success)
	assert.Equal(t, "Feedback submitted successfully", body.Message)

	var feedback entities.Feedback
	require.NoError(t, json.Unmarshal(body.Data, &feedback))
	assert.NotEmpty(t, feedback.ID)
	assert.Equal(t, "Alice", feedback.Name)
	assert.Equal(t, 5, feedback.Rating)
	assert.False(t, feedback.CreatedAt.IsZero())
	assert.Equal(t, 1, repo.Len())
}

func TestFeedbackHandler_SubmitFeedback_RatingAsString(t *testing.T) {
	handler, _ := newFeedbackHandler(t)

	w := submit(t, handler, `{"name":"Bob","message":"ok","rating":"4"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	var feedback entities.Feedback
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &feedback))
	assert.Equal(t, 4, feedback.Rating)
	assert.Empty(t, feedback.Email)
}

func TestFeedbackHandler_SubmitFeedback_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"malformed json", `{"name":`, http.StatusBadRequest, "Invalid request payload"},
		{"missing name", `{"message":"hi","rating":3}`, http.StatusBadRequest, services.MsgRequiredFields},
		{"missing message", `{"name":"Bob","rating":3}`, http.StatusBadRequest, services.MsgRequiredFields},
		{"missing rating", `{"name":"Bob","message":"hi"}`, http.StatusBadRequest, services.MsgRatingRange},
		{"rating out of range", `{"name":"Bob","message":"hi","rating":9}`, http.StatusBadRequest, services.MsgRatingRange},
		{"fractional rating", `{"name":"Bob","message":"hi","rating":4.5}`, http.StatusBadRequest, services.MsgRatingRange},
		{"non numeric rating", `{"name":"Bob","message":"hi","rating":"great"}`, http.StatusBadRequest, services.MsgRatingRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := newFeedbackHandler(t)

			w := submit(t, handler, tt.body)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decodeEnvelope(t, w).Error)
			assert.Equal(t, 0, repo.Len())
		})
	}
}

func TestFeedbackHandler_ListFeedback(t *testing.T) {
	handler, _ := newFeedbackHandler(t)
	submit(t, handler, `{"name":"Alice","message":"first","rating":5}`)
	submit(t, handler, `{"name":"Bob","email":"bob@example.com","message":"second","rating":2}`)
	submit(t, handler, `{"name":"Carol","message":"third from alice's friend","rating":5}`)

	t.Run("all records newest first", func(t *testing.T) {
		w := list(t, handler, "")
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeEnvelope(t, w)
		assert.True(t, body.Success)
		assert.Equal(t, 3, body.Count)

		var feedbacks []entities.Feedback
		require.NoError(t, json.Unmarshal(body.Data, &feedbacks))
		require.Len(t, feedbacks, 3)
		assert.Equal(t, "Carol", feedbacks[0].Name)
		assert.Equal(t, "Alice", feedbacks[2].Name)
	})

	t.Run("rating filter", func(t *testing.T) {
		body := decodeEnvelope(t, list(t, handler, "?rating=5"))
		assert.Equal(t, 2, body.Count)
	})

	t.Run("search filter", func(t *testing.T) {
		body := decodeEnvelope(t, list(t, handler, "?search=ALICE"))
		assert.Equal(t, 2, body.Count)
	})

	t.Run("rating and search combined", func(t *testing.T) {
		body := decodeEnvelope(t, list(t, handler, "?rating=2&search=bob"))
		assert.Equal(t, 1, body.Count)
	})

	t.Run("no matches returns an empty array", func(t *testing.T) {
		body := decodeEnvelope(t, list(t, handler, "?search=nobody"))
		assert.Equal(t, 0, body.Count)
		assert.JSONEq(t, `[]`, string(body.Data))
	})

	t.Run("non numeric rating is rejected", func(t *testing.T) {
		w := list(t, handler, "?rating=five")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Rating filter must be a number", decodeEnvelope(t, w).Error)
	})
}

func TestFeedbackHandler_GetStats(t *testing.T) {
	handler, _ := newFeedbackHandler(t)

	t.Run("empty store", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.GetStats(w, httptest.NewRequest(http.MethodGet, "/api/feedback/stats", nil))

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeEnvelope(t, w)
		assert.True(t, body.Success)
		assert.JSONEq(t, `{"totalFeedbacks":0,"averageRating":0,"positiveRatings":0,"negativeRatings":0}`, string(body.Data))
	})

	t.Run("aggregates", func(t *testing.T) {
		submit(t, handler, `{"name":"A","message":"m","rating":5}`)
		submit(t, handler, `{"name":"B","message":"m","rating":4}`)
		submit(t, handler, `{"name":"C","message":"m","rating":4}`)

		w := httptest.NewRecorder()
		handler.GetStats(w, httptest.NewRequest(http.MethodGet, "/api/feedback/stats", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"totalFeedbacks":3,"averageRating":4.33,"positiveRatings":3,"negativeRatings":0}`, string(decodeEnvelope(t, w).Data))
	})
}

func TestFeedbackHandler_DeleteFeedback(t *testing.T) {
	handler, repo := newFeedbackHandler(t)

	var created entities.Feedback
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, submit(t, handler, `{"name":"A","message":"m","rating":1}`)).Data, &created))

	deleteReq := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodDelete, "/api/feedback/"+id, nil)
		req.SetPathValue("id", id)
		w := httptest.NewRecorder()
		handler.DeleteFeedback(w, req)
		return w
	}

	t.Run("unknown id", func(t *testing.T) {
		w := deleteReq("missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Feedback not found", decodeEnvelope(t, w).Error)
		assert.Equal(t, 1, repo.Len())
	})

	t.Run("existing id", func(t *testing.T) {
		w := deleteReq(created.ID)
		require.Equal(t, http.StatusOK, w.Code)
		body := decodeEnvelope(t, w)
		assert.True(t, body.Success)
		assert.Equal(t, "Feedback deleted successfully", body.Message)
		assert.Equal(t, 0, repo.Len())
	})

	t.Run("second delete is not found", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, deleteReq(created.ID).Code)
	})
}

func TestFeedbackHandler_StorageFailureIsGeneric(t *testing.T) {
	handler, repo := newFeedbackHandler(t)
	repo.Err = errors.New("dial tcp 10.0.0.5:27017: connection refused")

	w := submit(t, handler, `{"name":"A","message":"m","rating":3}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, handlers.MsgServerError, decodeEnvelope(t, w).Error)

	w = list(t, handler, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	w = httptest.NewRecorder()
	handler.GetStats(w, httptest.NewRequest(http.MethodGet, "/api/feedback/stats", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
