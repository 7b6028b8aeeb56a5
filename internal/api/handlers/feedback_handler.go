package handlers

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/feedbackdesk/backend/internal/domain/entities"
)

// FeedbackService defines the feedback operations used by the handler.
type FeedbackService interface {
	Create(ctx context.Context, input entities.FeedbackInput) (*entities.Feedback, error)
	List(ctx context.Context, filter entities.FeedbackFilter) ([]*entities.Feedback, error)
	Stats(ctx context.Context) (*entities.FeedbackStats, error)
	Delete(ctx context.Context, id string) error
}

// FeedbackHandler exposes the feedback service over REST.
type FeedbackHandler struct {
	service FeedbackService
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(service FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

type feedbackRequest struct {
	Name    string        `json:"name"`
	Email   string        `json:"email"`
	Message string        `json:"message"`
	Rating  requestRating `json:"rating"`
}

// requestRating accepts a rating sent either as a JSON number or a numeric
// string. Anything else decodes to 0, which fails range validation.
type requestRating int

func (r *requestRating) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = 0
	switch v := raw.(type) {
	case float64:
		if v == math.Trunc(v) && v >= math.MinInt32 && v <= math.MaxInt32 {
			*r = requestRating(v)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*r = requestRating(n)
		}
	}
	return nil
}

type feedbackResponse struct {
	Success bool               `json:"success"`
	Data    *entities.Feedback `json:"data"`
	Message string             `json:"message"`
}

type feedbackListResponse struct {
	Success bool                 `json:"success"`
	Count   int                  `json:"count"`
	Data    []*entities.Feedback `json:"data"`
}

type feedbackStatsResponse struct {
	Success bool                    `json:"success"`
	Data    *entities.FeedbackStats `json:"data"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubmitFeedback handles POST /api/feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var payload feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	feedback, err := h.service.Create(r.Context(), entities.FeedbackInput{
		Name:    payload.Name,
		Email:   payload.Email,
		Message: payload.Message,
		Rating:  int(payload.Rating),
	})
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, feedbackResponse{
		Success: true,
		Data:    feedback,
		Message: "Feedback submitted successfully",
	})
}

// ListFeedback handles GET /api/feedback?rating=&search=
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var filter entities.FeedbackFilter
	if raw := strings.TrimSpace(query.Get("rating")); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Rating filter must be a number")
			return
		}
		filter.Rating = &rating
	}
	filter.Search = query.Get("search")

	feedbacks, err := h.service.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, feedbackListResponse{
		Success: true,
		Count:   len(feedbacks),
		Data:    feedbacks,
	})
}

// GetStats handles GET /api/feedback/stats
func (h *FeedbackHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, feedbackStatsResponse{
		Success: true,
		Data:    stats,
	})
}

// DeleteFeedback handles DELETE /api/feedback/{id}
func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Feedback deleted successfully",
	})
}
