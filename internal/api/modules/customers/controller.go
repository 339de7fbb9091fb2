package customers

import (
	"context"
	"net/http"

	"github.com/ethanbaker/office-assistant/internal/customers"
	"github.com/ethanbaker/office-assistant/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// Lister reads the customer table
type Lister interface {
	List(ctx context.Context) ([]customers.Customer, error)
}

type controller struct {
	lister Lister
}

// listCustomers handles GET requests for the stored customers
func (ctrl *controller) listCustomers(c *gin.Context) {
	all, err := ctrl.lister.List(c.Request.Context())
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Could not list customers", err).AsGinResponse())
		return
	}

	resp := make([]sdk.Customer, 0, len(all))
	for _, customer := range all {
		resp = append(resp, sdk.Customer{
			ID:    customer.ID,
			Name:  customer.Name,
			Email: customer.Email,
		})
	}

	c.JSON(sdk.NewSuccessResponse("Customers retrieved successfully", resp).AsGinResponse())
}
