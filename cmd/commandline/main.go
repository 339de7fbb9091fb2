package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/ethanbaker/office-assistant/internal/app"
	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/ethanbaker/office-assistant/internal/assistant"
	"github.com/ethanbaker/office-assistant/pkg/agent"
	"github.com/ethanbaker/office-assistant/pkg/logger"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := agent.LoadAgentConfig(assistant.Name)
	logger.Init(logger.ConfigFrom(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize office assistant")
	}
	defer application.Close()

	if err := startInteractiveSession(ctx, application); err != nil {
		log.Fatal().Err(err).Msg("interactive session failed")
	}
}

// startInteractiveSession reads user turns from stdin until exit or EOF
func startInteractiveSession(ctx context.Context, application *app.App) error {
	sess, err := application.Sessions.CreateSession(ctx, "cli")
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	log.Debug().Str("session", sess.SessionID(ctx)).Msg("session created")

	fmt.Println("Office assistant started. Type 'exit' to quit.")
	fmt.Printf("\nAssistant: %s\n", assistant.Greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "exit" {
			break
		}
		if input == "" {
			continue
		}

		response, err := application.Assistant.Respond(ctx, sess, input)
		if errors.Is(err, context.Canceled) {
			break
		} else if err != nil {
			reportError(err)
			continue
		}

		fmt.Printf("Assistant: %s\n", response)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

// reportError prints a short explanation of a failed turn
func reportError(err error) {
	if errors.Is(err, apperrors.ErrAuthentication) {
		fmt.Println("Error: Google authorization failed. Run the authorize command and try again.")
	} else {
		fmt.Printf("Error: %v\n", err)
	}
	log.Error().Err(err).Msg("turn failed")
}
