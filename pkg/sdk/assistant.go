package sdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// CreateSession opens a new conversation with the assistant
func (c *Client) CreateSession(ctx context.Context, req *CreateSessionRequest) (*Session, error) {
	var out ApiResponse[Session]
	if err := c.newRequest(ctx, http.MethodPost, "/api/assistant/sessions", req, &out).withApiKey().doJSON(); err != nil {
		return nil, err
	}

	if err := checkStatus(out, "create session"); err != nil {
		return nil, err
	}

	if out.Data.ID == "" {
		return nil, errors.New("no id returned")
	}
	return &out.Data, nil
}

// SendMessage sends one user turn to a session provided by UUID
func (c *Client) SendMessage(ctx context.Context, uuid string, msg *PostMessageRequest) (*PostMessageResponse, error) {
	path := "/api/assistant/sessions/" + url.PathEscape(uuid) + "/message"

	var out ApiResponse[PostMessageResponse]
	if err := c.newRequest(ctx, http.MethodPost, path, msg, &out).withApiKey().doJSON(); err != nil {
		return nil, err
	}

	if err := checkStatus(out, "send message"); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DeleteSession removes an existing session by UUID
func (c *Client) DeleteSession(ctx context.Context, uuid string) error {
	path := "/api/assistant/sessions/" + url.PathEscape(uuid)

	var out ApiResponse[any]
	if err := c.newRequest(ctx, http.MethodDelete, path, nil, &out).withApiKey().doJSON(); err != nil {
		return err
	}
	return checkStatus(out, "delete session")
}
