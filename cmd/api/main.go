package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethanbaker/office-assistant/internal/api"
	"github.com/ethanbaker/office-assistant/internal/app"
	"github.com/ethanbaker/office-assistant/internal/assistant"
	"github.com/ethanbaker/office-assistant/pkg/agent"
	"github.com/ethanbaker/office-assistant/pkg/logger"
	"github.com/rs/zerolog/log"
)

// Start the API server
func main() {
	cfg := agent.LoadAgentConfig(assistant.Name)
	logger.Init(logger.ConfigFrom(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Tokens are granted up front with cmd/authorize, never mid-request
	application, err := app.New(ctx, cfg, app.WithAuthorizer(app.NewServerAuthorizer()))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize office assistant")
	}
	defer application.Close()

	// Keep stored Google tokens fresh between requests
	keeper, err := application.Keeper()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to schedule token refresh")
	}
	keeper.Start()
	defer keeper.Stop()

	err = api.Start(ctx, cfg, api.Services{
		Registry:  application.Registry,
		Assistant: application.Assistant,
		Sessions:  application.Sessions,
		Customers: application.Customers,
	})
	if err != nil {
		log.Error().Err(err).Msg("api server stopped")
	}
}
