package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/feedbackdesk/backend/internal/dashboard"
	"github.com/feedbackdesk/backend/internal/infrastructure/observability"
	"github.com/feedbackdesk/backend/pkg/client"
	"github.com/feedbackdesk/backend/pkg/config"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadClient()
	observability.InitLogger("feedback-dashboard", cfg.Env)

	server, err := dashboard.NewServer(client.New(cfg.Client.BaseURL))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load dashboard templates")
	}

	httpServer := &http.Server{
		Addr:         cfg.Dashboard.Addr(),
		Handler:      server.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Str("api", cfg.Client.BaseURL).Msg("Dashboard starting")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Dashboard failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Error during dashboard shutdown")
	}
	log.Info().Msg("Dashboard stopped")
}
