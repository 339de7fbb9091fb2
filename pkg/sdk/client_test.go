package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(srv.URL+"/", "secret")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListActions(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/actions", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))

		writeJSON(w, http.StatusOK, NewSuccessResponse("ok", []Action{
			{Name: "get_customer", Description: "Get customer", Parameters: map[string]any{"type": "object"}},
		}))
	})

	actions, err := client.ListActions(context.Background())
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "get_customer", actions[0].Name)
	assert.Equal(t, "object", actions[0].Parameters["type"])
}

func TestInvokeAction(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/actions/add_customer", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Bob", body["name"])

		writeJSON(w, http.StatusOK, NewSuccessResponse("ok", InvokeActionResponse{
			Action: "add_customer",
			Result: "Customer Bob added successfully.",
		}))
	})

	resp, err := client.InvokeAction(context.Background(), "add_customer", map[string]any{"name": "Bob", "email": "bob@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Customer Bob added successfully.", resp.Result)

	var text string
	require.NoError(t, resp.DecodeResult(&text))
	assert.Equal(t, "Customer Bob added successfully.", text)
}

func TestListCustomers(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/customers", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-API-KEY"))

		writeJSON(w, http.StatusOK, NewSuccessResponse("ok", []Customer{
			{ID: 1, Name: "Alice", Email: "alice@example.com"},
		}))
	})

	list, err := client.ListCustomers(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, Customer{ID: 1, Name: "Alice", Email: "alice@example.com"}, list[0])
}

func TestErrorEnvelope(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, NewFailResponse(http.StatusNotFound, "Unknown action"))
	})

	_, err := client.InvokeAction(context.Background(), "fly", nil)
	require.Error(t, err)

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusNotFound, backendErr.StatusCode)
	assert.Equal(t, "Unknown action", backendErr.Message)
}

func TestNonJSONError(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := client.Health(context.Background())

	var backendErr *Error
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusBadGateway, backendErr.StatusCode)
	assert.Equal(t, "bad gateway", backendErr.Message)
}

func TestSessionLifecycle(t *testing.T) {
	const id = "0b6f3c52-7f4e-4a43-9d8e-0d6f0b6f3c52"

	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/assistant/sessions":
			writeJSON(w, http.StatusOK, NewSuccessResponse("created", Session{ID: id, Channel: "api", Greeting: "hello"}))
		case r.Method == http.MethodPost && r.URL.Path == "/api/assistant/sessions/"+id+"/message":
			var req PostMessageRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			writeJSON(w, http.StatusOK, NewSuccessResponse("sent", PostMessageResponse{FinalOutput: "echo: " + req.Content}))
		case r.Method == http.MethodDelete && r.URL.Path == "/api/assistant/sessions/"+id:
			writeJSON(w, http.StatusOK, NewSuccessResponse[any]("deleted", nil))
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	})

	ctx := context.Background()

	sess, err := client.CreateSession(ctx, &CreateSessionRequest{Channel: "api"})
	require.NoError(t, err)
	assert.Equal(t, id, sess.ID)
	assert.Equal(t, "hello", sess.Greeting)

	reply, err := client.SendMessage(ctx, sess.ID, &PostMessageRequest{Content: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", reply.FinalOutput)

	require.NoError(t, client.DeleteSession(ctx, sess.ID))
}

func TestCreateSessionWithoutID(t *testing.T) {
	client := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, NewSuccessResponse("created", Session{}))
	})

	_, err := client.CreateSession(context.Background(), &CreateSessionRequest{})
	assert.Error(t, err)
}
