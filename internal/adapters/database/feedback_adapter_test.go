package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbackdesk/backend/internal/adapters/database"
	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

func setupFeedbackAdapter(t *testing.T) (*database.FeedbackAdapter, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return database.NewFeedbackAdapter(postgres.NewClientFromDB(mockDB), "feedbacks"), mock
}

func TestFeedbackAdapter_Create(t *testing.T) {
	adapter, mock := setupFeedbackAdapter(t)

	mock.ExpectExec(`INSERT INTO "feedbacks"`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	feedback := &entities.Feedback{
		Name:      "Alice",
		Message:   "Great service",
		Rating:    5,
		CreatedAt: time.Now().UTC(),
	}
	err := adapter.Create(context.Background(), feedback)
	require.NoError(t, err)

	_, parseErr := uuid.Parse(feedback.ID)
	assert.NoError(t, parseErr, "store should assign a UUID")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackAdapter_Create_StorageError(t *testing.T) {
	adapter, mock := setupFeedbackAdapter(t)

	mock.ExpectExec(`INSERT INTO "feedbacks"`).WillReturnError(errors.New("connection refused"))

	feedback := &entities.Feedback{Name: "Alice", Message: "Hi", Rating: 4, CreatedAt: time.Now()}
	err := adapter.Create(context.Background(), feedback)

	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeStorage))
	assert.Empty(t, feedback.ID)
}

func TestFeedbackAdapter_List_WithFilter(t *testing.T) {
	adapter, mock := setupFeedbackAdapter(t)

	newer := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	older := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "email", "message", "rating", "created_at"}).
		AddRow("id-2", "Alice", nil, "second", 5, newer).
		AddRow("id-1", "Bob", "alice@example.com", "first", 5, older)

	mock.ExpectQuery(`SELECT (.+) FROM "feedbacks" WHERE (.+) ORDER BY "created_at" DESC`).
		WithArgs(int64(5), "%alice%", "%alice%", "%alice%").
		WillReturnRows(rows)

	rating := 5
	feedbacks, err := adapter.List(context.Background(), entities.FeedbackFilter{Rating: &rating, Search: "alice"})
	require.NoError(t, err)
	require.Len(t, feedbacks, 2)

	assert.Equal(t, "id-2", feedbacks[0].ID)
	assert.Empty(t, feedbacks[0].Email)
	assert.Equal(t, "alice@example.com", feedbacks[1].Email)
	assert.True(t, feedbacks[0].CreatedAt.After(feedbacks[1].CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackAdapter_List_EscapesLikePattern(t *testing.T) {
	adapter, mock := setupFeedbackAdapter(t)

	mock.ExpectQuery(`SELECT (.+) FROM "feedbacks"`).
		WithArgs(`%50\%%`, `%50\%%`, `%50\%%`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "message", "rating", "created_at"}))

	feedbacks, err := adapter.List(context.Background(), entities.FeedbackFilter{Search: "50%"})
	require.NoError(t, err)
	assert.NotNil(t, feedbacks)
	assert.Empty(t, feedbacks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackAdapter_Delete(t *testing.T) {
	t.Run("removes existing record", func(t *testing.T) {
		adapter, mock := setupFeedbackAdapter(t)
		mock.ExpectExec(`DELETE FROM "feedbacks"`).
			WithArgs("id-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, adapter.Delete(context.Background(), "id-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing was deleted", func(t *testing.T) {
		adapter, mock := setupFeedbackAdapter(t)
		mock.ExpectExec(`DELETE FROM "feedbacks"`).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Delete(context.Background(), "missing")
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}
