package repositories

import (
	"context"

	"github.com/feedbackdesk/backend/internal/domain/entities"
)

// FeedbackRepository defines the record store operations for feedback.
// Implementations assign feedback.ID on Create, return results newest first
// from List, and return a NOT_FOUND AppError from Delete when no record matches.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entities.Feedback) error
	List(ctx context.Context, filter entities.FeedbackFilter) ([]*entities.Feedback, error)
	Delete(ctx context.Context, id string) error
}
