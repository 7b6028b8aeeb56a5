package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/internal/domain/repositories"
	mongoclient "github.com/feedbackdesk/backend/internal/infrastructure/clients/mongo"
	apperrors "github.com/feedbackdesk/backend/pkg/errors"
)

// feedbackDocument is the stored shape of a feedback record
type feedbackDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Message   string             `bson:"message"`
	Rating    int                `bson:"rating"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *feedbackDocument) toEntity() *entities.Feedback {
	return &entities.Feedback{
		ID:        d.ID.Hex(),
		Name:      d.Name,
		Email:     d.Email,
		Message:   d.Message,
		Rating:    d.Rating,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// MongoFeedbackAdapter implements feedback persistence in a MongoDB collection.
type MongoFeedbackAdapter struct {
	collection *mongo.Collection
}

// NewMongoFeedbackAdapter creates a new feedback adapter backed by MongoDB.
func NewMongoFeedbackAdapter(client *mongoclient.Client, collection string) *MongoFeedbackAdapter {
	return &MongoFeedbackAdapter{collection: client.Collection(collection)}
}

var _ repositories.FeedbackRepository = (*MongoFeedbackAdapter)(nil)

// InitSchema ensures the index backing the newest-first listing exists.
func (a *MongoFeedbackAdapter) InitSchema(ctx context.Context) error {
	_, err := a.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create createdAt index: %w", err)
	}
	return nil
}

// Create inserts a feedback record and sets its store-assigned ID.
func (a *MongoFeedbackAdapter) Create(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return apperrors.NewInternalError("feedback is nil", fmt.Errorf("feedback is nil"))
	}

	doc := feedbackDocument{
		Name:      feedback.Name,
		Email:     feedback.Email,
		Message:   feedback.Message,
		Rating:    feedback.Rating,
		CreatedAt: feedback.CreatedAt,
	}

	result, err := a.collection.InsertOne(ctx, doc)
	if err != nil {
		return apperrors.NewStorageError("failed to create feedback", err)
	}

	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return apperrors.NewStorageError("failed to create feedback", fmt.Errorf("unexpected inserted id type %T", result.InsertedID))
	}
	feedback.ID = id.Hex()

	return nil
}

// List returns the records matching filter, newest first.
func (a *MongoFeedbackAdapter) List(ctx context.Context, filter entities.FeedbackFilter) ([]*entities.Feedback, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := a.collection.Find(ctx, buildFeedbackQuery(filter), opts)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to list feedback", err)
	}
	defer cursor.Close(ctx)

	var docs []feedbackDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperrors.NewStorageError("failed to decode feedback", err)
	}

	feedbacks := make([]*entities.Feedback, 0, len(docs))
	for i := range docs {
		feedbacks = append(feedbacks, docs[i].toEntity())
	}
	return feedbacks, nil
}

// Delete removes the record with the given ID.
func (a *MongoFeedbackAdapter) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// an id that can never have been assigned is simply absent
		return apperrors.NewNotFoundError("Feedback not found")
	}

	result, err := a.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return apperrors.NewStorageError("failed to delete feedback", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.NewNotFoundError("Feedback not found")
	}
	return nil
}

// buildFeedbackQuery translates a filter into a Mongo query document.
// The search text is matched literally and case-insensitively.
func buildFeedbackQuery(filter entities.FeedbackFilter) bson.M {
	query := bson.M{}

	if filter.Rating != nil {
		query["rating"] = *filter.Rating
	}

	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"message": pattern},
		}
	}

	return query
}
