// Package mailbox drafts and sends plain-text mail through the Gmail API
package mailbox

import (
	"context"
	"net/http"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/ethanbaker/office-assistant/internal/credentials"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// currentUser addresses the mailbox of the authorized account
const currentUser = "me"

// ClientProvider hands out HTTP clients authorized for a scope-set
type ClientProvider interface {
	Client(ctx context.Context, scope credentials.ScopeSet) (*http.Client, error)
}

// Mailer is what the mail actions need from a mail provider
type Mailer interface {
	CreateDraft(ctx context.Context, msg Message) (*gmail.Draft, error)
	Send(ctx context.Context, msg Message) (*gmail.Message, error)
}

// Service implements Mailer against the Gmail v1 API
type Service struct {
	clients ClientProvider
	scope   credentials.ScopeSet
	options []option.ClientOption
	logger  zerolog.Logger
}

// NewService creates a mail service. Extra options are appended after the
// authorized HTTP client
func NewService(clients ClientProvider, scope credentials.ScopeSet, opts ...option.ClientOption) *Service {
	return &Service{
		clients: clients,
		scope:   scope,
		options: opts,
		logger:  log.With().Str("component", "mailbox").Logger(),
	}
}

// api builds an authorized gmail handle, passing credential errors through
func (s *Service) api(ctx context.Context) (*gmail.Service, error) {
	client, err := s.clients.Client(ctx, s.scope)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.options...)
	service, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProvider, err, "create gmail service")
	}

	return service, nil
}

// CreateDraft stores the message as a draft in the user's mailbox
func (s *Service) CreateDraft(ctx context.Context, msg Message) (*gmail.Draft, error) {
	raw, err := msg.RawDraft()
	if err != nil {
		return nil, err
	}

	service, err := s.api(ctx)
	if err != nil {
		return nil, err
	}

	draft, err := service.Users.Drafts.Create(currentUser, &gmail.Draft{
		Message: &gmail.Message{Raw: raw},
	}).Context(ctx).Do()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProvider, err, "create draft")
	}

	s.logger.Info().Str("draft_id", draft.Id).Msg("draft created")
	return draft, nil
}

// Send delivers the message immediately
func (s *Service) Send(ctx context.Context, msg Message) (*gmail.Message, error) {
	raw, err := msg.Raw()
	if err != nil {
		return nil, err
	}

	service, err := s.api(ctx)
	if err != nil {
		return nil, err
	}

	sent, err := service.Users.Messages.Send(currentUser, &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProvider, err, "send message")
	}

	s.logger.Info().Str("message_id", sent.Id).Msg("message sent")
	return sent, nil
}
