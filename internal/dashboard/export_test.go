package dashboard_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackdesk/backend/internal/dashboard"
	"github.com/feedbackdesk/backend/internal/domain/entities"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2024, 3, 9, 14, 5, 0, 0, time.UTC)
	feedbacks := []*entities.Feedback{
		{Name: `A"B`, Email: "ab@example.com", Rating: 5, Message: `said "hi", then left`, CreatedAt: created},
		{Name: "Carol", Rating: 2, Message: "line one\nline two", CreatedAt: created.Add(-time.Hour)},
	}

	var buf bytes.Buffer
	require.NoError(t, dashboard.WriteCSV(&buf, feedbacks))

	expected := "Name,Email,Rating,Message,Created At\n" +
		`"A""B","ab@example.com","5","said ""hi"", then left","2024-03-09T14:05:00Z"` + "\n" +
		`"Carol","","2","line one` + "\n" + `line two","2024-03-09T13:05:00Z"` + "\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	err := dashboard.WriteCSV(&buf, nil)

	require.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	assert.Equal(t, dashboard.MsgNothingToExport, err.(*apperrors.AppError).Message)
	assert.Zero(t, buf.Len())
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "feedbacks_2025-01-31.csv", dashboard.ExportFilename(now))
}

func TestDraftFromForm(t *testing.T) {
	values := map[string]string{"name": "Ann", "email": "a@b.c", "message": "hello", "rating": "4"}
	draft := dashboard.DraftFromForm(func(key string) string { return values[key] })
	assert.Equal(t, dashboard.Draft{Name: "Ann", Email: "a@b.c", Message: "hello", Rating: 4}, draft)
	require.NoError(t, draft.Validate())

	values["rating"] = "seven"
	assert.Equal(t, 0, dashboard.DraftFromForm(func(key string) string { return values[key] }).Rating)

	values["rating"] = "9"
	assert.Equal(t, 0, dashboard.DraftFromForm(func(key string) string { return values[key] }).Rating)
}
