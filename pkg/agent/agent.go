package agent

import (
	"context"

	"github.com/ethanbaker/office-assistant/pkg/utils"
	"github.com/nlpodyssey/openai-agents-go/agents"
)

// CustomAgent is implemented by the conversational front-ends of the assistant
type CustomAgent interface {
	// Agent returns the underlying openai-agents-go instance
	Agent() *agents.Agent

	// ID returns the unique identifier for this agent
	ID() string

	// Config returns the configuration for this agent
	Config() *utils.Config

	// ShouldDryRun reports whether tools describe their effect instead of acting
	ShouldDryRun(ctx context.Context) bool
}
