package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/internal/domain/providers"
	"github.com/feedbackdesk/backend/internal/domain/repositories"
	"github.com/feedbackdesk/backend/internal/infrastructure/observability"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

// Validation messages returned to clients.
const (
	MsgRequiredFields = "Name and message are required fields"
	MsgRatingRange    = "Rating must be between 1 and 5"
	MsgNotFound       = "Feedback not found"
)

// FeedbackService handles feedback submissions, listings, statistics and deletion.
type FeedbackService struct {
	repo     repositories.FeedbackRepository
	eventBus providers.EventBus
	metrics  *observability.Metrics
	now      func() time.Time
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(repo repositories.FeedbackRepository) *FeedbackService {
	return &FeedbackService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// SetEventBus enables change notifications after every create and delete
func (s *FeedbackService) SetEventBus(eventBus providers.EventBus) {
	s.eventBus = eventBus
}

// SetMetrics enables store operation metrics
func (s *FeedbackService) SetMetrics(metrics *observability.Metrics) {
	s.metrics = metrics
}

// Create validates input and persists a new feedback record.
func (s *FeedbackService) Create(ctx context.Context, input entities.FeedbackInput) (*entities.Feedback, error) {
	ctx, span := observability.StartSpan(ctx, "FeedbackService.Create")
	defer span.End()

	feedback := &entities.Feedback{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Message: strings.TrimSpace(input.Message),
		Rating:  input.Rating,
	}

	if err := validateFeedback(feedback); err != nil {
		return nil, err
	}

	// Millisecond precision is what every store keeps, so the returned
	// timestamp matches the one later listed.
	feedback.CreatedAt = s.now()

	start := time.Now()
	err := s.repo.Create(ctx, feedback)
	observability.RecordStoreMetric(ctx, s.metrics, "create", time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return nil, storageError("failed to create feedback", err)
	}

	observability.SetSpanAttributes(span, attribute.String("feedback.id", feedback.ID))
	s.publish(ctx, feedback.ID, entities.FeedbackEventTypeCreated)
	return feedback, nil
}

// List returns feedback matching filter, newest first. The result is never nil.
func (s *FeedbackService) List(ctx context.Context, filter entities.FeedbackFilter) ([]*entities.Feedback, error) {
	ctx, span := observability.StartSpan(ctx, "FeedbackService.List")
	defer span.End()

	start := time.Now()
	feedbacks, err := s.repo.List(ctx, filter)
	observability.RecordStoreMetric(ctx, s.metrics, "list", time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return nil, storageError("failed to list feedback", err)
	}

	if feedbacks == nil {
		feedbacks = []*entities.Feedback{}
	}
	return feedbacks, nil
}

// Stats computes aggregate statistics over all stored feedback.
func (s *FeedbackService) Stats(ctx context.Context) (*entities.FeedbackStats, error) {
	ctx, span := observability.StartSpan(ctx, "FeedbackService.Stats")
	defer span.End()

	start := time.Now()
	feedbacks, err := s.repo.List(ctx, entities.FeedbackFilter{})
	observability.RecordStoreMetric(ctx, s.metrics, "stats", time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		return nil, storageError("failed to compute feedback stats", err)
	}

	stats := ComputeStats(feedbacks)
	return &stats, nil
}

// Delete removes the feedback record with the given id.
func (s *FeedbackService) Delete(ctx context.Context, id string) error {
	ctx, span := observability.StartSpan(ctx, "FeedbackService.Delete")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return apperrors.NewNotFoundError(MsgNotFound)
	}

	start := time.Now()
	err := s.repo.Delete(ctx, id)
	observability.RecordStoreMetric(ctx, s.metrics, "delete", time.Since(start))
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return apperrors.NewNotFoundError(MsgNotFound)
		}
		observability.RecordError(span, err)
		return storageError("failed to delete feedback", err)
	}

	s.publish(ctx, id, entities.FeedbackEventTypeDeleted)
	return nil
}

// ComputeStats derives the aggregate statistics for a set of records.
// A rating of 3 counts as neither positive nor negative.
func ComputeStats(feedbacks []*entities.Feedback) entities.FeedbackStats {
	stats := entities.FeedbackStats{TotalFeedbacks: len(feedbacks)}
	if len(feedbacks) == 0 {
		return stats
	}

	sum := 0
	for _, feedback := range feedbacks {
		sum += feedback.Rating
		switch {
		case feedback.Rating >= 4:
			stats.PositiveRatings++
		case feedback.Rating < 3:
			stats.NegativeRatings++
		}
	}

	average := float64(sum) / float64(len(feedbacks))
	stats.AverageRating = math.Round(average*100) / 100
	return stats
}

func validateFeedback(feedback *entities.Feedback) error {
	if feedback.Name == "" || feedback.Message == "" {
		return apperrors.NewValidationError(MsgRequiredFields)
	}
	if feedback.Rating < entities.MinRating || feedback.Rating > entities.MaxRating {
		return apperrors.NewValidationError(MsgRatingRange)
	}
	return nil
}

// storageError keeps typed errors from the store and wraps everything else.
func storageError(message string, err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.NewStorageError(message, err)
}

func (s *FeedbackService) publish(ctx context.Context, feedbackID string, eventType entities.FeedbackEventType) {
	if s.eventBus == nil {
		return
	}

	event := entities.NewFeedbackEvent(feedbackID, eventType)
	if err := s.eventBus.Publish(ctx, providers.EventChannelFeedbackUpdates, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("feedback_id", feedbackID).
			Str("event_type", string(eventType)).
			Msg("Failed to publish feedback event")
	}
}
