// Package dashboard renders the feedback dashboard on top of the feedback API.
package dashboard

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/pkg/client"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

// FlashSubmitted is shown after a successful submission.
const FlashSubmitted = "Thank you for your feedback!"

// FeedbackAPI is the subset of the API client the dashboard needs
type FeedbackAPI interface {
	CreateFeedback(ctx context.Context, input client.CreateInput) (*entities.Feedback, error)
	ListFeedback(ctx context.Context, filter entities.FeedbackFilter) ([]*entities.Feedback, error)
	GetStats(ctx context.Context) (*entities.FeedbackStats, error)
	DeleteFeedback(ctx context.Context, id string) error
}

// Status is the load state of a Store
type Status int

const (
	StatusLoading Status = iota
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Store holds the state of one dashboard view. Fields change only through
// its methods, and a Store is not safe for concurrent use.
type Store struct {
	api FeedbackAPI

	Status    Status
	Feedbacks []*entities.Feedback
	Stats     entities.FeedbackStats
	Filter    entities.FeedbackFilter
	Err       string
	Flash     string
}

// NewStore creates a Store in the loading state
func NewStore(api FeedbackAPI) *Store {
	return &Store{
		api:       api,
		Status:    StatusLoading,
		Feedbacks: []*entities.Feedback{},
	}
}

// Load fetches the list for the current filter and the stats concurrently.
func (s *Store) Load(ctx context.Context) error {
	s.Status = StatusLoading

	var (
		feedbacks []*entities.Feedback
		stats     *entities.FeedbackStats
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		feedbacks, err = s.api.ListFeedback(gctx, s.Filter)
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.api.GetStats(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.Status = StatusError
		s.Err = errorMessage(err, client.MsgFetchFailed)
		return err
	}

	if feedbacks == nil {
		feedbacks = []*entities.Feedback{}
	}
	s.Feedbacks = feedbacks
	if stats != nil {
		s.Stats = *stats
	}
	s.Status = StatusReady
	s.Err = ""
	return nil
}

// ApplyFilter replaces the filter and reloads.
func (s *Store) ApplyFilter(ctx context.Context, filter entities.FeedbackFilter) error {
	s.Filter = filter
	return s.Load(ctx)
}

// Submit validates and creates a feedback record, then reloads. An invalid
// draft is rejected without calling the API.
func (s *Store) Submit(ctx context.Context, draft Draft) error {
	s.Flash = ""
	if err := draft.Validate(); err != nil {
		return err
	}

	if _, err := s.api.CreateFeedback(ctx, draft.Input()); err != nil {
		return err
	}

	s.Flash = FlashSubmitted
	return s.Load(ctx)
}

// Delete removes a record once the user has confirmed, then reloads.
// Without confirmation nothing happens.
func (s *Store) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return nil
	}

	if err := s.api.DeleteFeedback(ctx, id); err != nil {
		s.Err = errorMessage(err, client.MsgDeleteFailed)
		return err
	}
	return s.Load(ctx)
}

// errorMessage picks the text to show for err. Only API and form validation
// messages are meant for users.
func errorMessage(err error, fallback string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
		return appErr.Message
	}
	return fallback
}
