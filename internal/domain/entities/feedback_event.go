package entities

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackEventType represents the type of feedback change
type FeedbackEventType string

const (
	FeedbackEventTypeCreated FeedbackEventType = "feedback.created"
	FeedbackEventTypeDeleted FeedbackEventType = "feedback.deleted"
)

// FeedbackEvent notifies subscribers that the stored feedback changed and
// any list or stats they hold is stale.
type FeedbackEvent struct {
	ID         string            `json:"id"`
	EventType  FeedbackEventType `json:"type"`
	FeedbackID string            `json:"feedbackId"`
	Timestamp  time.Time         `json:"timestamp"`
}

// NewFeedbackEvent creates a new feedback event
func NewFeedbackEvent(feedbackID string, eventType FeedbackEventType) *FeedbackEvent {
	return &FeedbackEvent{
		ID:         uuid.NewString(),
		EventType:  eventType,
		FeedbackID: feedbackID,
		Timestamp:  time.Now().UTC(),
	}
}
