package actions

import (
	"github.com/ethanbaker/office-assistant/internal/actions"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the routes for the actions module
func RegisterRoutes(g *gin.RouterGroup, registry *actions.Registry, middleware ...gin.HandlerFunc) {
	ctrl := &controller{registry: registry}

	group := g.Group("/actions", middleware...)
	group.GET("", ctrl.listActions)         // Capability table
	group.POST("/:name", ctrl.invokeAction) // Run a single action
}
