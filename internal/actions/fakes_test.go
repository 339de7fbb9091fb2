package actions

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethanbaker/office-assistant/internal/customers"
	"github.com/ethanbaker/office-assistant/internal/mailbox"
	"github.com/ethanbaker/office-assistant/internal/schedule"
	"github.com/ethanbaker/office-assistant/pkg/utils"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/gmail/v1"
)

// fakeCalendar records inserted events and serves canned listings
type fakeCalendar struct {
	inserted  []schedule.EventRequest
	listCalls []int64
	listFrom  []time.Time
	events    []*calendar.Event
	err       error
}

func (f *fakeCalendar) InsertEvent(ctx context.Context, req schedule.EventRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.inserted = append(f.inserted, req)
	return "https://www.google.com/calendar/event?eid=abc123", nil
}

func (f *fakeCalendar) ListUpcoming(ctx context.Context, from time.Time, maxResults int64) ([]*calendar.Event, error) {
	f.listCalls = append(f.listCalls, maxResults)
	f.listFrom = append(f.listFrom, from)
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}

// fakeMailer records messages and returns canned provider objects
type fakeMailer struct {
	drafts []mailbox.Message
	sent   []mailbox.Message
	err    error
}

func (f *fakeMailer) CreateDraft(ctx context.Context, msg mailbox.Message) (*gmail.Draft, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.drafts = append(f.drafts, msg)
	return &gmail.Draft{Id: "draft-1", Message: &gmail.Message{Id: "msg-1"}}, nil
}

func (f *fakeMailer) Send(ctx context.Context, msg mailbox.Message) (*gmail.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, msg)
	return &gmail.Message{Id: "msg-2", LabelIds: []string{"SENT"}}, nil
}

// failingCustomers simulates a broken database
type failingCustomers struct {
	err error
}

func (f failingCustomers) Add(ctx context.Context, name, email string) error {
	return f.err
}

func (f failingCustomers) Find(ctx context.Context, name string) (*customers.Customer, error) {
	return nil, f.err
}

// testEnv bundles a registry with its fakes and a real customer database
type testEnv struct {
	registry *Registry
	calendar *fakeCalendar
	mailer   *fakeMailer
	config   *utils.Config
	now      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := customers.New(context.Background(), filepath.Join(t.TempDir(), "customer_data.db"))
	require.NoError(t, err)

	env := &testEnv{
		calendar: &fakeCalendar{},
		mailer:   &fakeMailer{},
		config:   utils.NewConfig(nil),
		now:      time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC),
	}

	env.registry, err = NewRegistry(Dependencies{
		Calendar:  env.calendar,
		Mailer:    env.mailer,
		Customers: repo,
		Config:    env.config,
		Now:       func() time.Time { return env.now },
	})
	require.NoError(t, err)

	return env
}

// invoke calls an action and fails the test on error
func (e *testEnv) invoke(t *testing.T, name, arguments string) any {
	t.Helper()

	result, err := e.registry.Invoke(context.Background(), name, arguments)
	require.NoError(t, err)
	return result
}
