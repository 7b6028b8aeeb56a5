package dashboard

import (
	"strconv"
	"strings"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/pkg/client"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

// Form validation messages.
const (
	MsgDraftRequired = "Name and message are required"
	MsgDraftRating   = "Please select a rating"
)

// Draft is the unsubmitted content of the feedback form. Rating 0 means unselected.
type Draft struct {
	Name    string
	Email   string
	Message string
	Rating  int
}

// DraftFromForm reads a draft from submitted form values. A missing or
// malformed rating reads as unselected.
func DraftFromForm(get func(string) string) Draft {
	rating, err := strconv.Atoi(strings.TrimSpace(get("rating")))
	if err != nil || rating < 0 || rating > entities.MaxRating {
		rating = 0
	}

	return Draft{
		Name:    get("name"),
		Email:   get("email"),
		Message: get("message"),
		Rating:  rating,
	}
}

// Validate applies the form checks made before anything is sent.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" || strings.TrimSpace(d.Message) == "" {
		return apperrors.NewValidationError(MsgDraftRequired)
	}
	if d.Rating == 0 {
		return apperrors.NewValidationError(MsgDraftRating)
	}
	return nil
}

// Input converts the draft into an API payload.
func (d Draft) Input() client.CreateInput {
	return client.CreateInput{
		Name:    d.Name,
		Email:   d.Email,
		Message: d.Message,
		Rating:  d.Rating,
	}
}
