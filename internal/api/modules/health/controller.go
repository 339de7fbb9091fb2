package health

import (
	"github.com/ethanbaker/office-assistant/pkg/sdk"
	"github.com/gin-gonic/gin"
)

// Return status of the API
func getStatus(c *gin.Context) {
	res := sdk.NewSuccessResponse[any]("OK", nil)
	c.JSON(res.AsGinResponse())
}
