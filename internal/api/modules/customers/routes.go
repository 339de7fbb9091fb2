package customers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the routes for the customers module
func RegisterRoutes(g *gin.RouterGroup, lister Lister, middleware ...gin.HandlerFunc) {
	ctrl := &controller{lister: lister}

	group := g.Group("/customers", middleware...)
	group.GET("", ctrl.listCustomers) // Every stored customer
}
