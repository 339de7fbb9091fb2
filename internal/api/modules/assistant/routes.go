package assistant

import (
	"github.com/ethanbaker/office-assistant/internal/stores/session"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the routes for the assistant module
func RegisterRoutes(g *gin.RouterGroup, responder Responder, sessions session.Store, middleware ...gin.HandlerFunc) {
	ctrl := &controller{responder: responder, sessions: sessions}

	group := g.Group("/assistant", middleware...)
	group.POST("/sessions", ctrl.createSession)             // Create a new session
	group.POST("/sessions/:uuid/message", ctrl.postMessage) // Send a user turn to a session
	group.DELETE("/sessions/:uuid", ctrl.deleteSession)     // Delete an existing session
}
