package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ethanbaker/api/pkg/api_types"
	"github.com/ethanbaker/office-assistant/internal/actions"
	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/ethanbaker/office-assistant/internal/credentials"
	"github.com/ethanbaker/office-assistant/internal/customers"
	"github.com/ethanbaker/office-assistant/internal/mailbox"
	"github.com/ethanbaker/office-assistant/internal/schedule"
	"github.com/ethanbaker/office-assistant/internal/stores/session"
	"github.com/ethanbaker/office-assistant/pkg/sdk"
	"github.com/ethanbaker/office-assistant/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/nlpodyssey/openai-agents-go/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-key"

// echoResponder replies with the input and records the session it was given
type echoResponder struct {
	sessions []string
	err      error
}

func (e *echoResponder) Respond(ctx context.Context, sess memory.Session, input string) (string, error) {
	e.sessions = append(e.sessions, sess.SessionID(ctx))
	if e.err != nil {
		return "", e.err
	}
	return "echo: " + input, nil
}

type testEnv struct {
	engine    *gin.Engine
	customers *customers.Repository
	responder *echoResponder
	sessions  session.Store
}

func newTestEnv(t *testing.T, values map[string]string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if values == nil {
		values = map[string]string{}
	}
	values["API_KEY"] = testKey
	cfg := utils.NewConfig(values)

	repo, err := customers.New(context.Background(), filepath.Join(t.TempDir(), "customers.db"))
	require.NoError(t, err)

	registry, err := actions.NewRegistry(actions.Dependencies{
		Calendar:  schedule.NewService(nil, credentials.ScopeSet{Name: credentials.CalendarScopeSet}, schedule.DefaultCalendarID),
		Mailer:    mailbox.NewService(nil, credentials.ScopeSet{Name: credentials.GmailScopeSet}),
		Customers: repo,
		Config:    cfg,
	})
	require.NoError(t, err)

	env := &testEnv{
		customers: repo,
		responder: &echoResponder{},
		sessions:  session.NewInMemoryStore(),
	}

	env.engine, err = NewEngine(cfg, Services{
		Registry:  registry,
		Assistant: env.responder,
		Sessions:  env.sessions,
		Customers: repo,
	})
	require.NoError(t, err)

	return env
}

func (env *testEnv) do(method, path string, body any, key string) *httptest.ResponseRecorder {
	var reqBody []byte
	switch b := body.(type) {
	case nil:
	case string:
		reqBody = []byte(b)
	default:
		reqBody, _ = json.Marshal(b)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-API-KEY", key)
	}

	w := httptest.NewRecorder()
	env.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) sdk.ApiResponse[T] {
	t.Helper()

	var out sdk.ApiResponse[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestNewEngineRequiresAPIKey(t *testing.T) {
	_, err := NewEngine(utils.NewConfig(nil), Services{
		Registry:  &actions.Registry{},
		Assistant: &echoResponder{},
		Sessions:  session.NewInMemoryStore(),
		Customers: &customers.Repository{},
	})
	assert.Error(t, err)

	_, err = NewEngine(utils.NewConfig(map[string]string{"API_KEY": "k"}), Services{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api_types.StatusSuccess, decode[any](t, w).Status)
}

func TestNoRoute(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/nothing-here", nil, testKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActionsRequireKey(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/actions", nil, "")
	assert.GreaterOrEqual(t, w.Code, http.StatusBadRequest)

	w = env.do(http.MethodPost, "/api/actions/add_customer", map[string]any{"name": "Bob", "email": "bob@example.com"}, "wrong")
	assert.GreaterOrEqual(t, w.Code, http.StatusBadRequest)

	found, err := env.customers.Find(context.Background(), "Bob")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestListActions(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/actions", nil, testKey)
	require.Equal(t, http.StatusOK, w.Code)

	out := decode[[]sdk.Action](t, w)
	names := make([]string, 0, len(out.Data))
	for _, action := range out.Data {
		names = append(names, action.Name)
		assert.Equal(t, "object", action.Parameters["type"])
	}

	assert.Equal(t, []string{
		"create_event", "get_upcoming_events", "gmail_create_draft",
		"gmail_send_message", "add_customer", "get_customer",
	}, names)
}

func TestInvokeAction(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/actions/add_customer", map[string]any{"name": "Bob", "email": "bob@example.com"}, testKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	out := decode[sdk.InvokeActionResponse](t, w)
	assert.Equal(t, "add_customer", out.Data.Action)
	assert.Equal(t, "Customer Bob added successfully.", out.Data.Result)

	w = env.do(http.MethodPost, "/api/actions/get_customer", `{"name":"Bob"}`, testKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Customer Name: Bob, Email: bob@example.com", decode[sdk.InvokeActionResponse](t, w).Data.Result)
}

func TestInvokeActionErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"unknown action", "/api/actions/fly_to_moon", `{}`, http.StatusNotFound},
		{"missing parameter", "/api/actions/get_customer", `{}`, http.StatusBadRequest},
		{"unknown parameter", "/api/actions/get_customer", `{"name":"Bob","age":3}`, http.StatusBadRequest},
		{"not an object", "/api/actions/get_customer", `[1,2]`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, tt.path, tt.body, testKey)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, api_types.StatusFail, decode[any](t, w).Status)
		})
	}
}

func TestInvokeActionDryRun(t *testing.T) {
	env := newTestEnv(t, map[string]string{"DRY_RUN": "true"})

	w := env.do(http.MethodPost, "/api/actions/add_customer", map[string]any{"name": "Bob", "email": "bob@example.com"}, testKey)
	require.Equal(t, http.StatusOK, w.Code)

	result, ok := decode[sdk.InvokeActionResponse](t, w).Data.Result.(string)
	require.True(t, ok)
	assert.Contains(t, result, "DRY RUN: Would")

	found, err := env.customers.Find(context.Background(), "Bob")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestListCustomers(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/customers", nil, testKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]sdk.Customer](t, w).Data)

	require.NoError(t, env.customers.Add(context.Background(), "Alice", "alice@example.com"))
	require.NoError(t, env.customers.Add(context.Background(), "Bob", "bob@example.com"))

	w = env.do(http.MethodGet, "/api/customers", nil, testKey)
	require.Equal(t, http.StatusOK, w.Code)

	out := decode[[]sdk.Customer](t, w)
	require.Len(t, out.Data, 2)
	assert.Equal(t, "Alice", out.Data[0].Name)
	assert.Equal(t, "bob@example.com", out.Data[1].Email)

	w = env.do(http.MethodGet, "/api/customers", nil, "wrong")
	assert.GreaterOrEqual(t, w.Code, http.StatusBadRequest)
}

func TestAssistantSessions(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/assistant/sessions", nil, testKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	created := decode[sdk.Session](t, w).Data
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "api", created.Channel)
	assert.Equal(t, "Hey, how can I help you today!", created.Greeting)

	w = env.do(http.MethodPost, "/api/assistant/sessions/"+created.ID+"/message", sdk.PostMessageRequest{Content: "hello"}, testKey)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "echo: hello", decode[sdk.PostMessageResponse](t, w).Data.FinalOutput)
	assert.Equal(t, []string{created.ID}, env.responder.sessions)

	w = env.do(http.MethodPost, "/api/assistant/sessions/"+created.ID+"/message", `{}`, testKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodDelete, "/api/assistant/sessions/"+created.ID, nil, testKey)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodDelete, "/api/assistant/sessions/"+created.ID, nil, testKey)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/api/assistant/sessions/"+created.ID+"/message", sdk.PostMessageRequest{Content: "hello"}, testKey)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAssistantSessionChannel(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/assistant/sessions", sdk.CreateSessionRequest{Channel: "voice"}, testKey)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "voice", decode[sdk.Session](t, w).Data.Channel)
}

func TestAssistantErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodPost, "/api/assistant/sessions/not-a-uuid/message", sdk.PostMessageRequest{Content: "hi"}, testKey)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	sess, err := env.sessions.CreateSession(context.Background(), "api")
	require.NoError(t, err)

	env.responder.err = apperrors.New(apperrors.ErrAuthentication, "calendar token")
	w = env.do(http.MethodPost, "/api/assistant/sessions/"+sess.ID().String()+"/message", sdk.PostMessageRequest{Content: "hi"}, testKey)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, api_types.StatusError, decode[any](t, w).Status)
}
