package entities

import "time"

// Rating bounds accepted for a feedback submission.
const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a single customer-submitted rating and comment.
type Feedback struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Message   string    `json:"message" db:"message"`
	Rating    int       `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// FeedbackInput carries the fields a client submits.
type FeedbackInput struct {
	Name    string
	Email   string
	Message string
	Rating  int
}

// FeedbackFilter narrows a feedback listing. A nil Rating and empty Search match everything.
type FeedbackFilter struct {
	Rating *int
	Search string
}

// IsEmpty reports whether the filter matches every record
func (f FeedbackFilter) IsEmpty() bool {
	return f.Rating == nil && f.Search == ""
}

// FeedbackStats are aggregates computed over all stored feedback at query time.
type FeedbackStats struct {
	TotalFeedbacks  int     `json:"totalFeedbacks"`
	AverageRating   float64 `json:"averageRating"`
	PositiveRatings int     `json:"positiveRatings"`
	NegativeRatings int     `json:"negativeRatings"`
}
