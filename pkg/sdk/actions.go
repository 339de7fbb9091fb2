package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Health reports whether the backend is reachable
func (c *Client) Health(ctx context.Context) error {
	var out ApiResponse[any]
	if err := c.newRequest(ctx, http.MethodGet, "/api/health", nil, &out).doJSON(); err != nil {
		return err
	}
	return checkStatus(out, "check health")
}

// ListActions returns the capability table
func (c *Client) ListActions(ctx context.Context) ([]Action, error) {
	var out ApiResponse[[]Action]
	if err := c.newRequest(ctx, http.MethodGet, "/api/actions", nil, &out).withApiKey().doJSON(); err != nil {
		return nil, err
	}

	if err := checkStatus(out, "list actions"); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// InvokeAction runs an action directly with the given arguments
func (c *Client) InvokeAction(ctx context.Context, name string, args map[string]any) (*InvokeActionResponse, error) {
	path := "/api/actions/" + url.PathEscape(name)

	if args == nil {
		args = map[string]any{}
	}

	var out ApiResponse[InvokeActionResponse]
	if err := c.newRequest(ctx, http.MethodPost, path, args, &out).withApiKey().doJSON(); err != nil {
		return nil, err
	}

	if err := checkStatus(out, "invoke "+name); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// DecodeResult unmarshals an action result into v
func (r *InvokeActionResponse) DecodeResult(v any) error {
	b, err := json.Marshal(r.Result)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
