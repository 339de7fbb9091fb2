package sdk

import (
	"context"
	"net/http"
)

// ListCustomers returns every stored customer
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	var out ApiResponse[[]Customer]
	if err := c.newRequest(ctx, http.MethodGet, "/api/customers", nil, &out).withApiKey().doJSON(); err != nil {
		return nil, err
	}

	if err := checkStatus(out, "list customers"); err != nil {
		return nil, err
	}
	return out.Data, nil
}
