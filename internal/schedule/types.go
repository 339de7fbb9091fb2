package schedule

import (
	"context"
	"net/http"
	"time"

	"github.com/ethanbaker/office-assistant/internal/credentials"
	"google.golang.org/api/calendar/v3"
)

// ClientProvider hands out HTTP clients authorized for a scope-set
type ClientProvider interface {
	Client(ctx context.Context, scope credentials.ScopeSet) (*http.Client, error)
}

// Calendar is what the actions need from a calendar provider
type Calendar interface {
	InsertEvent(ctx context.Context, req EventRequest) (string, error)
	ListUpcoming(ctx context.Context, from time.Time, maxResults int64) ([]*calendar.Event, error)
}

// EventRequest describes an event to create. Start and End are absolute
// instants; TimeZone is the IANA zone the provider should display them in
type EventRequest struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// UpcomingEvent is the part of a listed event reported back to the user
type UpcomingEvent struct {
	Start   string `json:"start"`
	Summary string `json:"summary"`
}
