package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethanbaker/office-assistant/internal/actions"
	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/ethanbaker/office-assistant/pkg/agent"
	"github.com/ethanbaker/office-assistant/pkg/utils"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/nlpodyssey/openai-agents-go/memory"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Name identifies the assistant agent
const Name = "office-assistant"

// Greeting is spoken when a conversation starts
const Greeting = "Hey, how can I help you today!"

// DefaultInstructions is used when no system prompt file is configured
const DefaultInstructions = "You are a voice assistant for a small office. Your interface with users will be voice. " +
	"You should use short and concise responses, and avoid unpronounceable punctuation. " +
	"After the speaker has finished speaking, start executing their commands immediately."

// Assistant answers user turns with the office actions as tools
type Assistant struct {
	agent    *agents.Agent
	config   *utils.Config
	prompt   string
	location *time.Location
	now      func() time.Time
	logger   zerolog.Logger
}

// New creates the assistant agent with every action of the registry as a tool
func New(cfg *utils.Config, registry *actions.Registry) (*Assistant, error) {
	if registry == nil {
		return nil, errors.New("assistant requires an action registry")
	}

	tz := cfg.GetWithDefault("DEFAULT_TIMEZONE", actions.DefaultTimeZone)
	location, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", tz, err)
	}

	a := &Assistant{
		config:   cfg,
		prompt:   utils.LoadPromptWithFallback(cfg.Get("ASSISTANT_SYSPROMPT_PATH"), DefaultInstructions),
		location: location,
		now:      time.Now,
		logger:   log.With().Str("component", "assistant").Logger(),
	}

	a.agent = agents.New(Name).
		WithModel(cfg.Get("MODEL")).
		WithInstructionsFunc(a.instructions).
		WithTools(registry.Tools()...)

	return a, nil
}

// Agent returns the underlying openai-agents-go instance
func (a *Assistant) Agent() *agents.Agent {
	return a.agent
}

// ID returns the agent identifier
func (a *Assistant) ID() string {
	return Name
}

// Config returns the agent configuration
func (a *Assistant) Config() *utils.Config {
	return a.config
}

// ShouldDryRun determines if the agent should run in dry-run mode
func (a *Assistant) ShouldDryRun(ctx context.Context) bool {
	return a.config.GetBool("DRY_RUN")
}

// Respond runs one user turn against the session and returns the final reply
func (a *Assistant) Respond(ctx context.Context, session memory.Session, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", apperrors.New(apperrors.ErrValidation, "empty input")
	}

	runner := agents.Runner{
		Config: agents.RunConfig{
			Session: session,
		},
	}

	started := a.now()
	result, err := runner.Run(ctx, a.agent, input)
	if err != nil {
		a.logger.Error().Err(err).Msg("agent run failed")
		return "", fmt.Errorf("agent execution failed: %w", err)
	}

	a.logger.Debug().Dur("took", a.now().Sub(started)).Msg("agent run finished")
	return fmt.Sprint(result.FinalOutput), nil
}

// instructions builds the system prompt with the current date and time
func (a *Assistant) instructions(ctx context.Context, _ *agents.Agent) (string, error) {
	now := a.now().In(a.location)

	builder := agent.NewPromptBuilder(a.prompt)
	builder.AddFact("Today", now.Format("January 2, 2006"))
	builder.AddFact("Current time", now.Format("15:04 MST"))
	builder.AddFact("Default time zone", a.location.String())

	return builder.Build(), nil
}

var _ agent.CustomAgent = (*Assistant)(nil)
