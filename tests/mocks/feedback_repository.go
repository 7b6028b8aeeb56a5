package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

// MemoryFeedbackRepository is an in-memory FeedbackRepository for tests.
// Set Err to make every operation fail with a storage error.
type MemoryFeedbackRepository struct {
	mu      sync.Mutex
	records []*entities.Feedback
	nextID  int
	Err     error
}

// NewMemoryFeedbackRepository creates an empty repository
func NewMemoryFeedbackRepository() *MemoryFeedbackRepository {
	return &MemoryFeedbackRepository{}
}

func (r *MemoryFeedbackRepository) Create(ctx context.Context, feedback *entities.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return apperrors.NewStorageError("failed to create feedback", r.Err)
	}

	r.nextID++
	feedback.ID = fmt.Sprintf("fb-%03d", r.nextID)
	stored := *feedback
	r.records = append(r.records, &stored)
	return nil
}

func (r *MemoryFeedbackRepository) List(ctx context.Context, filter entities.FeedbackFilter) ([]*entities.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, apperrors.NewStorageError("failed to list feedback", r.Err)
	}

	search := strings.ToLower(filter.Search)
	result := make([]*entities.Feedback, 0, len(r.records))
	// walk newest insertion first so equal timestamps keep that order
	for i := len(r.records) - 1; i >= 0; i-- {
		record := r.records[i]
		if filter.Rating != nil && record.Rating != *filter.Rating {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(record.Name), search) &&
			!strings.Contains(strings.ToLower(record.Email), search) &&
			!strings.Contains(strings.ToLower(record.Message), search) {
			continue
		}
		copied := *record
		result = append(result, &copied)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryFeedbackRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return apperrors.NewStorageError("failed to delete feedback", r.Err)
	}

	for i, record := range r.records {
		if record.ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError("Feedback not found")
}

// Len returns the number of stored records
func (r *MemoryFeedbackRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}
