// Package actions is the capability table the orchestrator calls into: every
// action has a stable name, description and parameter schema plus a handler
package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/ethanbaker/office-assistant/pkg/utils"
	"github.com/nlpodyssey/openai-agents-go/agents"
	"github.com/openai/openai-go/v2/packages/param"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ParamType is the JSON schema type of a parameter
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeInteger ParamType = "integer"
)

// Param describes one action parameter. A nil Default makes it required
type Param struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Description string    `json:"description"`
	Default     any       `json:"default,omitempty"`
}

// Required reports whether callers must supply the parameter
func (p Param) Required() bool {
	return p.Default == nil
}

// Handler runs an action with validated arguments. The only error a handler
// returns is an authentication failure; everything else is a result
type Handler func(ctx context.Context, args Arguments) (any, error)

// Action is one entry of the capability table
type Action struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler

	// Intent completes "DRY RUN: Would ..." when dry runs are enabled
	Intent string
}

// Schema returns the JSON schema of the action's parameters
func (a Action) Schema() map[string]any {
	properties := make(map[string]any, len(a.Params))
	required := []string{}

	for _, p := range a.Params {
		property := map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.Required() {
			required = append(required, p.Name)
		} else {
			property["default"] = p.Default
		}
		properties[p.Name] = property
	}

	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
		"required":             required,
	}
}

// Strict reports whether the schema qualifies for strict mode, which only
// allows objects whose properties are all required
func (a Action) Strict() bool {
	for _, p := range a.Params {
		if !p.Required() {
			return false
		}
	}
	return true
}

// Registry holds actions in registration order
type Registry struct {
	actions []Action
	index   map[string]int
	config  *utils.Config
	logger  zerolog.Logger
}

// New creates an empty registry. The config is consulted for DRY_RUN on every
// invocation and may be nil
func New(cfg *utils.Config) *Registry {
	return &Registry{
		index:  make(map[string]int),
		config: cfg,
		logger: log.With().Str("component", "actions").Logger(),
	}
}

// Register adds actions to the table, rejecting duplicate names and
// malformed parameter lists
func (r *Registry) Register(actions ...Action) error {
	for _, action := range actions {
		if action.Name == "" {
			return errors.New("action name cannot be empty")
		}
		if action.Handler == nil {
			return fmt.Errorf("action %s has no handler", action.Name)
		}
		if _, exists := r.index[action.Name]; exists {
			return fmt.Errorf("action %s is already registered", action.Name)
		}

		params := make([]Param, len(action.Params))
		seen := map[string]bool{}
		for i, p := range action.Params {
			if p.Name == "" || seen[p.Name] {
				return fmt.Errorf("action %s: invalid or duplicate parameter %q", action.Name, p.Name)
			}
			seen[p.Name] = true

			if p.Default != nil {
				converted, err := convert(p.Type, p.Default)
				if err != nil {
					return fmt.Errorf("action %s: default of %s: %w", action.Name, p.Name, err)
				}
				p.Default = converted
			} else if p.Type != TypeString && p.Type != TypeInteger {
				return fmt.Errorf("action %s: unsupported parameter type %q", action.Name, p.Type)
			}
			params[i] = p
		}
		action.Params = params

		r.index[action.Name] = len(r.actions)
		r.actions = append(r.actions, action)
	}

	return nil
}

// List returns the actions in registration order
func (r *Registry) List() []Action {
	return append([]Action(nil), r.actions...)
}

// Get returns an action by name
func (r *Registry) Get(name string) (Action, bool) {
	i, ok := r.index[name]
	if !ok {
		return Action{}, false
	}
	return r.actions[i], true
}

// dryRun reports whether actions should only describe what they would do
func (r *Registry) dryRun() bool {
	return r.config != nil && r.config.GetBool("DRY_RUN")
}

// Invoke runs an action with JSON-encoded arguments. Unknown names and
// invalid arguments are errors; handler results are returned as is
func (r *Registry) Invoke(ctx context.Context, name, arguments string) (any, error) {
	action, ok := r.Get(name)
	if !ok {
		return nil, apperrors.New(apperrors.ErrUnknownAction, "%s", name)
	}

	args, err := decodeArguments(action.Params, arguments)
	if err != nil {
		r.logger.Warn().Err(err).Str("action", name).Msg("rejected action arguments")
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if r.dryRun() {
		intent := action.Intent
		if intent == "" {
			intent = "run " + action.Name
		}
		return fmt.Sprintf("DRY RUN: Would %s with args: %s", intent, args.JSON()), nil
	}

	started := time.Now()
	result, err := action.Handler(ctx, args)

	event := r.logger.Info()
	if err != nil {
		event = r.logger.Error().Err(err)
	}
	event.Str("action", name).Dur("took", time.Since(started)).Msg("action invoked")

	return result, err
}

// Tools exposes every action as a function tool for the agents runtime
func (r *Registry) Tools() []agents.Tool {
	tools := make([]agents.Tool, 0, len(r.actions))

	for _, action := range r.actions {
		name := action.Name
		tools = append(tools, agents.FunctionTool{
			Name:             name,
			Description:      action.Description,
			ParamsJSONSchema: action.Schema(),
			StrictJSONSchema: param.NewOpt(action.Strict()),
			OnInvokeTool: func(ctx context.Context, arguments string) (any, error) {
				result, err := r.Invoke(ctx, name, arguments)
				if errors.Is(err, apperrors.ErrAuthentication) {
					return nil, err
				} else if err != nil {
					return toolFailure(err), nil
				}
				return toolOutput(result), nil
			},
			// Errors reaching the runtime end the run so authentication
			// failures surface to the caller
			FailureErrorFunction: &propagateToolErrors,
			IsEnabled:            agents.FunctionToolEnabled(),
		})
	}

	return tools
}

// propagateToolErrors is a nil error handler, which makes the runtime return
// tool errors instead of reporting them to the model
var propagateToolErrors agents.ToolErrorFunction

// toolFailure tells the model why a call was rejected so it can retry
func toolFailure(err error) string {
	return fmt.Sprintf("An error occurred while running the tool. Please try again. Error: %s", err)
}

// toolOutput renders structured results as JSON so the model sees fields
// rather than Go formatting
func toolOutput(result any) any {
	if _, ok := result.(string); ok || result == nil {
		return result
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprint(result)
	}
	return string(encoded)
}
