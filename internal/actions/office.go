package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/ethanbaker/office-assistant/internal/customers"
	"github.com/ethanbaker/office-assistant/internal/mailbox"
	"github.com/ethanbaker/office-assistant/internal/schedule"
	"github.com/ethanbaker/office-assistant/pkg/utils"
	"github.com/rs/zerolog"
)

// DefaultTimeZone is used by create_event when no timezone is given
const DefaultTimeZone = "Europe/Vienna"

// DefaultMaxResults is how many events get_upcoming_events lists by default
const DefaultMaxResults = 10

// Result strings spoken back to the user
const (
	msgEventCreated      = "Event created: %s"
	msgCreateEventFailed = "Failed to create event."
	msgNoUpcomingEvents  = "No upcoming events found."
	msgFetchEventsFailed = "Failed to fetch events."
	msgInvalidEventData  = "Invalid event data format."
	msgCreateDraftFailed = "Failed to create draft."
	msgSendMailFailed    = "Failed to send mail."
	msgCustomerAdded     = "Customer %s added successfully."
	msgCustomerExists    = "Customer %s already exists."
	msgAddCustomerFailed = "Failed to add customer."
	msgCustomerFound     = "Customer Name: %s, Email: %s"
	msgCustomerNotFound  = "Customer %s not found."
	msgGetCustomerFailed = "Failed to get customer."
)

// CustomerStore is what the customer actions need from the repository
type CustomerStore interface {
	Add(ctx context.Context, name, email string) error
	Find(ctx context.Context, name string) (*customers.Customer, error)
}

// Dependencies are the collaborators behind the office actions
type Dependencies struct {
	Calendar  schedule.Calendar
	Mailer    mailbox.Mailer
	Customers CustomerStore
	Config    *utils.Config

	// Now defaults to time.Now
	Now func() time.Time
}

// office binds the action handlers to their collaborators
type office struct {
	deps            Dependencies
	defaultTimeZone string
	logger          zerolog.Logger
}

// NewRegistry builds the office assistant's capability table
func NewRegistry(deps Dependencies) (*Registry, error) {
	if deps.Calendar == nil || deps.Mailer == nil || deps.Customers == nil {
		return nil, errors.New("calendar, mailer and customer store are required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	defaultTimeZone := DefaultTimeZone
	if deps.Config != nil {
		defaultTimeZone = deps.Config.GetWithDefault("DEFAULT_TIMEZONE", DefaultTimeZone)
	}

	registry := New(deps.Config)
	o := &office{
		deps:            deps,
		defaultTimeZone: defaultTimeZone,
		logger:          registry.logger,
	}

	if err := registry.Register(o.actions()...); err != nil {
		return nil, err
	}
	return registry, nil
}

// actions lists the office actions in the order they are offered
func (o *office) actions() []Action {
	mailParams := []Param{
		{Name: "recipient", Type: TypeString, Description: "Email recipient"},
		{Name: "subject", Type: TypeString, Description: "Email subject"},
		{Name: "body", Type: TypeString, Description: "Email body"},
	}

	return []Action{
		{
			Name:        "create_event",
			Description: "Create a new event in Google Calendar.",
			Params: []Param{
				{Name: "summary", Type: TypeString, Description: "Title of the event"},
				{Name: "description", Type: TypeString, Description: "Description of the event"},
				{Name: "start", Type: TypeString, Description: "Start date and time, e.g. 2025-05-01 10:00"},
				{Name: "end", Type: TypeString, Description: "End date and time, e.g. 2025-05-01 11:00"},
				{Name: "timezone", Type: TypeString, Description: "IANA time zone of start and end", Default: o.defaultTimeZone},
			},
			Handler: o.createEvent,
			Intent:  "create a calendar event",
		},
		{
			Name:        "get_upcoming_events",
			Description: "Retrieve upcoming Google Calendar events.",
			Params: []Param{
				{Name: "max_results", Type: TypeInteger, Description: "Maximum number of events to return", Default: DefaultMaxResults},
			},
			Handler: o.getUpcomingEvents,
			Intent:  "list upcoming calendar events",
		},
		{
			Name:        "gmail_create_draft",
			Description: "Create a new draft in Google Mail.",
			Params:      mailParams,
			Handler:     o.createDraft,
			Intent:      "create a mail draft",
		},
		{
			Name:        "gmail_send_message",
			Description: "Send a new mail in Google Mail.",
			Params:      mailParams,
			Handler:     o.sendMessage,
			Intent:      "send a mail",
		},
		{
			Name:        "add_customer",
			Description: "Add a customer to the database",
			Params: []Param{
				{Name: "name", Type: TypeString, Description: "Customer name"},
				{Name: "email", Type: TypeString, Description: "Customer email address"},
			},
			Handler: o.addCustomer,
			Intent:  "add a customer",
		},
		{
			Name:        "get_customer",
			Description: "Get customer information",
			Params: []Param{
				{Name: "name", Type: TypeString, Description: "Exact customer name"},
			},
			Handler: o.getCustomer,
			Intent:  "look up a customer",
		},
	}
}

// authFailure reports whether err has to reach the orchestrator
func authFailure(err error) bool {
	return errors.Is(err, apperrors.ErrAuthentication)
}

func (o *office) createEvent(ctx context.Context, args Arguments) (any, error) {
	zone := args.String("timezone")
	location, err := time.LoadLocation(zone)
	if err != nil {
		o.logger.Error().Err(err).Str("timezone", zone).Msg("unknown time zone")
		return msgCreateEventFailed, nil
	}

	start, err := parseWhen(args.String("start"), location, o.deps.Now())
	if err != nil {
		o.logger.Error().Err(err).Str("start", args.String("start")).Msg("could not parse start")
		return msgCreateEventFailed, nil
	}

	end, err := parseWhen(args.String("end"), location, o.deps.Now())
	if err != nil {
		o.logger.Error().Err(err).Str("end", args.String("end")).Msg("could not parse end")
		return msgCreateEventFailed, nil
	}

	if !end.After(start) {
		o.logger.Error().Time("start", start).Time("end", end).Msg("event does not end after it starts")
		return msgCreateEventFailed, nil
	}

	link, err := o.deps.Calendar.InsertEvent(ctx, schedule.EventRequest{
		Summary:     args.String("summary"),
		Description: args.String("description"),
		Start:       start,
		End:         end,
		TimeZone:    zone,
	})
	if authFailure(err) {
		return nil, err
	} else if err != nil {
		o.logger.Error().Err(err).Msg("failed to create event")
		return msgCreateEventFailed, nil
	}

	return fmt.Sprintf(msgEventCreated, link), nil
}

func (o *office) getUpcomingEvents(ctx context.Context, args Arguments) (any, error) {
	maxResults := args.Int("max_results")
	if maxResults <= 0 {
		return msgNoUpcomingEvents, nil
	}

	events, err := o.deps.Calendar.ListUpcoming(ctx, o.deps.Now(), maxResults)
	if authFailure(err) {
		return nil, err
	} else if err != nil {
		o.logger.Error().Err(err).Msg("failed to fetch events")
		return msgFetchEventsFailed, nil
	}

	if len(events) == 0 {
		return msgNoUpcomingEvents, nil
	}

	upcoming, err := schedule.Summarize(events)
	if err != nil {
		o.logger.Error().Err(err).Msg("missing key in event data")
		return msgInvalidEventData, nil
	}

	return schedule.FormatUpcoming(upcoming), nil
}

// message builds the mail from the shared mail parameters
func message(args Arguments) mailbox.Message {
	return mailbox.Message{
		Recipient: args.String("recipient"),
		Subject:   args.String("subject"),
		Body:      args.String("body"),
	}
}

func (o *office) createDraft(ctx context.Context, args Arguments) (any, error) {
	draft, err := o.deps.Mailer.CreateDraft(ctx, message(args))
	if authFailure(err) {
		return nil, err
	} else if err != nil {
		o.logger.Error().Err(err).Msg("failed to create draft")
		return msgCreateDraftFailed, nil
	}

	return draft, nil
}

func (o *office) sendMessage(ctx context.Context, args Arguments) (any, error) {
	sent, err := o.deps.Mailer.Send(ctx, message(args))
	if authFailure(err) {
		return nil, err
	} else if err != nil {
		o.logger.Error().Err(err).Msg("failed to send mail")
		return msgSendMailFailed, nil
	}

	return sent, nil
}

func (o *office) addCustomer(ctx context.Context, args Arguments) (any, error) {
	name := args.String("name")

	err := o.deps.Customers.Add(ctx, name, args.String("email"))
	switch {
	case err == nil:
		return fmt.Sprintf(msgCustomerAdded, name), nil
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return fmt.Sprintf(msgCustomerExists, name), nil
	default:
		o.logger.Error().Err(err).Msg("failed to add customer")
		return msgAddCustomerFailed, nil
	}
}

func (o *office) getCustomer(ctx context.Context, args Arguments) (any, error) {
	name := args.String("name")

	customer, err := o.deps.Customers.Find(ctx, name)
	if err != nil {
		o.logger.Error().Err(err).Msg("failed to get customer")
		return msgGetCustomerFailed, nil
	}
	if customer == nil {
		return fmt.Sprintf(msgCustomerNotFound, name), nil
	}

	return fmt.Sprintf(msgCustomerFound, customer.Name, customer.Email), nil
}
