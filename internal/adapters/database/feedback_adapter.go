package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/internal/domain/repositories"
	"github.com/feedbackdesk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

// FeedbackAdapter implements feedback persistence in Postgres.
type FeedbackAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	table  string
}

// NewFeedbackAdapter creates a new feedback adapter.
func NewFeedbackAdapter(client *postgres.Client, table string) *FeedbackAdapter {
	return &FeedbackAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
		table:  table,
	}
}

var _ repositories.FeedbackRepository = (*FeedbackAdapter)(nil)

// InitSchema creates the feedback table when it does not exist yet.
func (a *FeedbackAdapter) InitSchema(ctx context.Context) error {
	table := pq.QuoteIdentifier(a.table)
	index := pq.QuoteIdentifier(a.table + "_created_at_idx")
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL CHECK (name <> ''),
			email      TEXT,
			message    TEXT NOT NULL CHECK (message <> ''),
			rating     INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS %s ON %s (created_at DESC);`, table, index, table)

	if _, err := a.client.DB().ExecContext(ctx, ddl); err != nil {
		return apperrors.NewStorageError("failed to create feedback table", err)
	}
	return nil
}

// Create inserts a feedback record.
func (a *FeedbackAdapter) Create(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return apperrors.NewInternalError("feedback is nil", fmt.Errorf("feedback is nil"))
	}

	id := uuid.NewString()
	record := goqu.Record{
		"id":         id,
		"name":       feedback.Name,
		"email":      sql.NullString{String: feedback.Email, Valid: feedback.Email != ""},
		"message":    feedback.Message,
		"rating":     feedback.Rating,
		"created_at": feedback.CreatedAt,
	}

	query, args, err := a.db.Insert(a.table).Prepared(true).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewStorageError("failed to create feedback", err)
	}

	feedback.ID = id
	return nil
}

// List returns the records matching filter, newest first.
func (a *FeedbackAdapter) List(ctx context.Context, filter entities.FeedbackFilter) ([]*entities.Feedback, error) {
	ds := a.db.From(a.table).Prepared(true).
		Select("id", "name", "email", "message", "rating", "created_at").
		Order(goqu.C("created_at").Desc())

	if filter.Rating != nil {
		ds = ds.Where(goqu.C("rating").Eq(*filter.Rating))
	}
	if filter.Search != "" {
		pattern := "%" + escapeLike(filter.Search) + "%"
		ds = ds.Where(goqu.Or(
			goqu.C("name").ILike(pattern),
			goqu.C("email").ILike(pattern),
			goqu.C("message").ILike(pattern),
		))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build feedback list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list feedback", err)
	}
	defer rows.Close()

	feedbacks := make([]*entities.Feedback, 0)
	for rows.Next() {
		var (
			feedback entities.Feedback
			email    sql.NullString
		)
		if err := rows.Scan(&feedback.ID, &feedback.Name, &email, &feedback.Message, &feedback.Rating, &feedback.CreatedAt); err != nil {
			return nil, apperrors.NewStorageError("failed to scan feedback", err)
		}
		feedback.Email = email.String
		feedback.CreatedAt = feedback.CreatedAt.UTC()
		feedbacks = append(feedbacks, &feedback)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("failed to list feedback", err)
	}

	return feedbacks, nil
}

// Delete removes the record with the given ID.
func (a *FeedbackAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete(a.table).Prepared(true).Where(goqu.C("id").Eq(id)).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewStorageError("failed to delete feedback", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError("failed to delete feedback", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("Feedback not found")
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
