package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethanbaker/office-assistant/internal/actions"
	"github.com/ethanbaker/office-assistant/internal/assistant"
	"github.com/ethanbaker/office-assistant/internal/credentials"
	"github.com/ethanbaker/office-assistant/internal/customers"
	"github.com/ethanbaker/office-assistant/internal/mailbox"
	"github.com/ethanbaker/office-assistant/internal/schedule"
	"github.com/ethanbaker/office-assistant/internal/stores/session"
	"github.com/ethanbaker/office-assistant/pkg/utils"
	"google.golang.org/api/option"
)

// App holds the wired components shared by the commands
type App struct {
	Config      *utils.Config
	Credentials *credentials.Store
	Customers   *customers.Repository
	Registry    *actions.Registry
	Sessions    session.Store
	Assistant   *assistant.Assistant
}

// Option customises how the App is wired
type Option func(*options)

type options struct {
	authorizer    credentials.Authorizer
	googleOptions []option.ClientOption
}

// WithAuthorizer replaces the loopback consent flow
func WithAuthorizer(authorizer credentials.Authorizer) Option {
	return func(o *options) {
		o.authorizer = authorizer
	}
}

// WithGoogleOptions passes extra client options to the calendar and gmail services
func WithGoogleOptions(opts ...option.ClientOption) Option {
	return func(o *options) {
		o.googleOptions = append(o.googleOptions, opts...)
	}
}

// NewAuthorizer builds the loopback consent flow from OAUTH_* settings
func NewAuthorizer(cfg *utils.Config) *credentials.LoopbackAuthorizer {
	return &credentials.LoopbackAuthorizer{
		Port:    cfg.GetIntWithDefault("OAUTH_REDIRECT_PORT", 0),
		Timeout: cfg.GetDurationWithDefault("OAUTH_FLOW_TIMEOUT", credentials.DefaultFlowTimeout),
		Open:    credentials.OpenBrowser,
	}
}

// NewServerAuthorizer refuses consent flows so server requests fail fast
// when a token is missing; operators grant access with the authorize command
func NewServerAuthorizer() credentials.Authorizer {
	return credentials.OfflineAuthorizer{Hint: "run the authorize command to grant Google access"}
}

// NewCredentials builds the credential store for the configured scope-sets
func NewCredentials(cfg *utils.Config, authorizer credentials.Authorizer) (*credentials.Store, error) {
	scopeSets, err := credentials.LoadScopeSets(cfg)
	if err != nil {
		return nil, err
	}
	return credentials.NewStore(authorizer, scopeSets), nil
}

// New wires every component of the office assistant
func New(ctx context.Context, cfg *utils.Config, opts ...Option) (*App, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.authorizer == nil {
		o.authorizer = NewAuthorizer(cfg)
	}

	store, err := NewCredentials(cfg, o.authorizer)
	if err != nil {
		return nil, fmt.Errorf("failed to load scope sets: %w", err)
	}

	calendarScope, ok := store.ScopeSet(credentials.CalendarScopeSet)
	if !ok {
		return nil, fmt.Errorf("scope set %q is not configured", credentials.CalendarScopeSet)
	}
	gmailScope, ok := store.ScopeSet(credentials.GmailScopeSet)
	if !ok {
		return nil, fmt.Errorf("scope set %q is not configured", credentials.GmailScopeSet)
	}

	repo, err := customers.New(ctx, cfg.GetWithDefault("CUSTOMER_DB_PATH", customers.DefaultPath))
	if err != nil {
		return nil, err
	}

	registry, err := actions.NewRegistry(actions.Dependencies{
		Calendar:  schedule.NewService(store, calendarScope, cfg.GetWithDefault("CALENDAR_ID", schedule.DefaultCalendarID), o.googleOptions...),
		Mailer:    mailbox.NewService(store, gmailScope, o.googleOptions...),
		Customers: repo,
		Config:    cfg,
	})
	if err != nil {
		return nil, err
	}

	sessions, err := session.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	assistantAgent, err := assistant.New(cfg, registry)
	if err != nil {
		return nil, errors.Join(err, sessions.Close())
	}

	return &App{
		Config:      cfg,
		Credentials: store,
		Customers:   repo,
		Registry:    registry,
		Sessions:    sessions,
		Assistant:   assistantAgent,
	}, nil
}

// Keeper creates the background token refresher from TOKEN_REFRESH_CRON
func (a *App) Keeper() (*credentials.Keeper, error) {
	return credentials.NewKeeper(
		a.Credentials,
		a.Config.GetWithDefault("TOKEN_REFRESH_CRON", credentials.DefaultRefreshSpec),
		a.Config.GetDurationWithDefault("TOKEN_REFRESH_WINDOW", credentials.DefaultRefreshWindow),
	)
}

// Close releases the session store
func (a *App) Close() error {
	return a.Sessions.Close()
}
