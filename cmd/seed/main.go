// Command seed submits sample feedback through the public API.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/feedbackdesk/backend/internal/domain/entities"
	"github.com/feedbackdesk/backend/internal/infrastructure/observability"
	"github.com/feedbackdesk/backend/pkg/client"
	"github.com/feedbackdesk/backend/pkg/config"
)

var samples = []client.CreateInput{
	{Name: "Ada Obi", Email: "ada@example.com", Message: "Checkout was quick and painless.", Rating: 5},
	{Name: "Tunde Bakare", Email: "tunde@example.com", Message: "Support answered within minutes.", Rating: 4},
	{Name: "Grace Lin", Message: "The app froze twice while uploading.", Rating: 2},
	{Name: "Marco Rossi", Email: "marco@example.com", Message: "Average experience, nothing special.", Rating: 3},
	{Name: "Priya Nair", Email: "priya@example.com", Message: "Pricing page is \"confusing\" on mobile.", Rating: 1},
	{Name: "Sam Carter", Message: "Love the new dashboard layout!", Rating: 5},
}

func main() {
	reset := flag.Bool("reset", false, "delete every existing record before seeding")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.LoadClient()
	observability.InitLogger("feedback-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	api := client.New(cfg.Client.BaseURL)

	if *reset {
		existing, err := api.ListFeedback(ctx, entities.FeedbackFilter{})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list existing feedback")
		}
		for _, feedback := range existing {
			if err := api.DeleteFeedback(ctx, feedback.ID); err != nil && !client.IsNotFound(err) {
				log.Fatal().Err(err).Str("id", feedback.ID).Msg("Failed to delete feedback")
			}
		}
		log.Info().Int("deleted", len(existing)).Msg("Existing feedback removed")
	}

	created := 0
	for _, sample := range samples {
		feedback, err := api.CreateFeedback(ctx, sample)
		if err != nil {
			log.Error().Err(err).Str("name", sample.Name).Msg("Failed to create feedback")
			continue
		}
		created++
		log.Debug().Str("id", feedback.ID).Msg("Feedback created")
	}

	stats, err := api.GetStats(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to fetch statistics")
	}
	log.Info().
		Int("created", created).
		Int("total", stats.TotalFeedbacks).
		Float64("average_rating", stats.AverageRating).
		Msg("Seeding complete")
}
