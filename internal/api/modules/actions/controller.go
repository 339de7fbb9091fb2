package actions

import (
	"net/http"

	"github.com/ethanbaker/office-assistant/internal/actions"
	"github.com/ethanbaker/office-assistant/internal/apperrors"
	"github.com/ethanbaker/office-assistant/pkg/sdk"
	"github.com/gin-gonic/gin"
)

type controller struct {
	registry *actions.Registry
}

// listActions handles GET requests for the capability table
func (ctrl *controller) listActions(c *gin.Context) {
	list := ctrl.registry.List()

	resp := make([]sdk.Action, 0, len(list))
	for _, action := range list {
		resp = append(resp, sdk.Action{
			Name:        action.Name,
			Description: action.Description,
			Parameters:  action.Schema(),
		})
	}

	c.JSON(sdk.NewSuccessResponse("Actions retrieved successfully", resp).AsGinResponse())
}

// invokeAction handles POST requests running an action with the JSON body as arguments
func (ctrl *controller) invokeAction(c *gin.Context) {
	name := c.Param("name")

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not read request body", err).AsGinResponse())
		return
	}

	result, err := ctrl.registry.Invoke(c.Request.Context(), name, string(body))
	if err != nil {
		status := apperrors.HTTPStatus(err)
		if status < http.StatusInternalServerError {
			c.JSON(sdk.NewFailResponse(status, err.Error()).AsGinResponse())
			return
		}
		c.JSON(sdk.NewErrorResponse(status, "Action failed", err).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Action invoked successfully", sdk.InvokeActionResponse{
		Action: name,
		Result: result,
	}).AsGinResponse())
}
