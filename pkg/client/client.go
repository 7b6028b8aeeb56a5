// Package client calls the feedback REST API.
//
// Every method fails with *APIError. Its message is the server's error text
// when the response carried one, and otherwise a fixed fallback for the call.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

// Fallback messages used when the server gives no error text.
const (
	MsgSubmitFailed = "Failed to submit feedback"
	MsgFetchFailed  = "Failed to fetch feedbacks"
	MsgStatsFailed  = "Failed to fetch statistics"
	MsgDeleteFailed = "Failed to delete feedback"
)

const defaultTimeout = 10 * time.Second

// APIError is returned by every Client method. It unwraps to an
// EXTERNAL *apperrors.AppError.
type APIError struct {
	// StatusCode is zero when no response was received.
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Client is an HTTP client for the feedback API
type Client struct {
	rest *resty.Client
}

// New creates a client for the API rooted at baseURL, e.g. http://localhost:5000/api
func New(baseURL string) *Client {
	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(defaultTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{rest: rest}
}

// CreateInput is the payload for CreateFeedback
type CreateInput struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message"`
	Rating  int    `json:"rating"`
}

type errorBody struct {
	Error string `json:"error"`
}

type feedbackEnvelope struct {
	Success bool               `json:"success"`
	Data    *entities.Feedback `json:"data"`
	Message string             `json:"message"`
}

type listEnvelope struct {
	Success bool                 `json:"success"`
	Count   int                  `json:"count"`
	Data    []*entities.Feedback `json:"data"`
}

type statsEnvelope struct {
	Success bool                    `json:"success"`
	Data    *entities.FeedbackStats `json:"data"`
}

// CreateFeedback submits a new feedback record and returns it as stored
func (c *Client) CreateFeedback(ctx context.Context, input CreateInput) (*entities.Feedback, error) {
	var result feedbackEnvelope
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBody(input).
		SetResult(&result).
		SetError(&errorBody{}).
		Post("/feedback")
	if err := check(resp, err, MsgSubmitFailed); err != nil {
		return nil, err
	}
	if result.Data == nil {
		return nil, newStatusError(resp.StatusCode(), MsgSubmitFailed)
	}
	return result.Data, nil
}

// ListFeedback returns the records matching filter, newest first
func (c *Client) ListFeedback(ctx context.Context, filter entities.FeedbackFilter) ([]*entities.Feedback, error) {
	req := c.rest.R().SetContext(ctx)
	if filter.Rating != nil {
		req.SetQueryParam("rating", strconv.Itoa(*filter.Rating))
	}
	if filter.Search != "" {
		req.SetQueryParam("search", filter.Search)
	}

	var result listEnvelope
	resp, err := req.
		SetResult(&result).
		SetError(&errorBody{}).
		Get("/feedback")
	if err := check(resp, err, MsgFetchFailed); err != nil {
		return nil, err
	}
	if result.Data == nil {
		result.Data = []*entities.Feedback{}
	}
	return result.Data, nil
}

// GetStats returns the aggregate statistics over all records
func (c *Client) GetStats(ctx context.Context) (*entities.FeedbackStats, error) {
	var result statsEnvelope
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&result).
		SetError(&errorBody{}).
		Get("/feedback/stats")
	if err := check(resp, err, MsgStatsFailed); err != nil {
		return nil, err
	}
	if result.Data == nil {
		return &entities.FeedbackStats{}, nil
	}
	return result.Data, nil
}

// DeleteFeedback removes the record with the given id
func (c *Client) DeleteFeedback(ctx context.Context, id string) error {
	resp, err := c.rest.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetError(&errorBody{}).
		Delete("/feedback/{id}")
	return check(resp, err, MsgDeleteFailed)
}

// check turns a transport failure or non-2xx response into an *APIError.
func check(resp *resty.Response, err error, fallback string) error {
	if err != nil {
		return &APIError{Message: fallback, Err: apperrors.NewExternalError(fallback, err)}
	}
	if !resp.IsError() {
		if resp.StatusCode() >= http.StatusMultipleChoices {
			return newStatusError(resp.StatusCode(), fallback)
		}
		return nil
	}

	message := fallback
	if body, ok := resp.Error().(*errorBody); ok && body.Error != "" {
		message = body.Error
	}
	return newStatusError(resp.StatusCode(), message)
}

func newStatusError(statusCode int, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Message:    message,
		Err:        apperrors.NewExternalError(message, fmt.Errorf("unexpected status %d", statusCode)),
	}
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
