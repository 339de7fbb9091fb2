package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/ethanbaker/office-assistant/internal/app"
	"github.com/ethanbaker/office-assistant/internal/assistant"
	"github.com/ethanbaker/office-assistant/pkg/agent"
	"github.com/ethanbaker/office-assistant/pkg/logger"
	"github.com/rs/zerolog/log"
)

// Obtain and store Google tokens for every configured scope-set
func main() {
	only := flag.String("scope", "", "authorize a single scope set instead of all of them")
	flag.Parse()

	cfg := agent.LoadAgentConfig(assistant.Name)
	logger.Init(logger.ConfigFrom(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := app.NewCredentials(cfg, app.NewAuthorizer(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load scope sets")
	}

	names := store.ScopeSetNames()
	if *only != "" {
		names = []string{*only}
	}

	failed := false
	for _, name := range names {
		scope, ok := store.ScopeSet(name)
		if !ok {
			log.Error().Str("scope_set", name).Msg("unknown scope set")
			failed = true
			continue
		}

		if _, err := store.Client(ctx, scope); err != nil {
			log.Error().Err(err).Str("scope_set", name).Msg("authorization failed")
			failed = true
			continue
		}

		fmt.Printf("%s: token stored in %s\n", name, scope.TokenPath)
	}

	if failed {
		stop()
		os.Exit(1)
	}
}
