// Package schedule talks to Google Calendar on behalf of the event actions
package schedule

import (
	"context"
	"time"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/ethanbaker/office-assistant/internal/credentials"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// DefaultCalendarID is the signed-in user's main calendar
const DefaultCalendarID = "primary"

// Service implements Calendar against the Google Calendar v3 API. A fresh API
// handle is built for every call so that credentials are checked each time
type Service struct {
	clients    ClientProvider
	scope      credentials.ScopeSet
	calendarID string
	options    []option.ClientOption
	logger     zerolog.Logger
}

// NewService creates a calendar service. Extra options are appended after the
// authorized HTTP client (tests point option.WithEndpoint at a fake server)
func NewService(clients ClientProvider, scope credentials.ScopeSet, calendarID string, opts ...option.ClientOption) *Service {
	if calendarID == "" {
		calendarID = DefaultCalendarID
	}

	return &Service{
		clients:    clients,
		scope:      scope,
		calendarID: calendarID,
		options:    opts,
		logger:     log.With().Str("component", "schedule").Logger(),
	}
}

// api builds an authorized calendar handle. Credential errors are returned
// unchanged so that authentication failures keep their kind
func (s *Service) api(ctx context.Context) (*calendar.Service, error) {
	client, err := s.clients.Client(ctx, s.scope)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.options...)
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProvider, err, "create calendar service")
	}

	return service, nil
}

// InsertEvent creates an event and returns its HTML link
func (s *Service) InsertEvent(ctx context.Context, req EventRequest) (string, error) {
	if req.Start.IsZero() || req.End.IsZero() {
		return "", apperrors.New(apperrors.ErrValidation, "event needs a start and an end")
	}
	if !req.End.After(req.Start) {
		return "", apperrors.New(apperrors.ErrValidation, "event ends at %s, not after its start %s",
			req.End.Format(time.RFC3339), req.Start.Format(time.RFC3339))
	}

	service, err := s.api(ctx)
	if err != nil {
		return "", err
	}

	event := &calendar.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: req.TimeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.End.Format(time.RFC3339),
			TimeZone: req.TimeZone,
		},
	}

	created, err := service.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrProvider, err, "insert event")
	}

	s.logger.Info().Str("event_id", created.Id).Msg("event created")
	return created.HtmlLink, nil
}

// ListUpcoming returns up to maxResults events starting at or after from,
// recurring events expanded, ordered by start time
func (s *Service) ListUpcoming(ctx context.Context, from time.Time, maxResults int64) ([]*calendar.Event, error) {
	service, err := s.api(ctx)
	if err != nil {
		return nil, err
	}

	events, err := service.Events.List(s.calendarID).
		TimeMin(from.UTC().Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrProvider, err, "list events")
	}

	return events.Items, nil
}
