package routes

import (
	"github.com/gin-gonic/gin"

	"gridbase/internal/handlers"
	"gridbase/internal/middlewares"
)

type UserRoutes struct {
	handler *handlers.UserHandler
	auth    gin.HandlerFunc
}

func NewUserRoutes(handler *handlers.UserHandler, auth gin.HandlerFunc) *UserRoutes {
	return &UserRoutes{handler: handler, auth: auth}
}

func (r *UserRoutes) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(r.auth)
	{
		users.GET("/me", r.handler.Me)

		// Admin-only account management
		users.GET("", middlewares.RequireAdmin, r.handler.List)
		users.GET("/:id", middlewares.RequireAdmin, r.handler.Get)
		users.DELETE("/:id", middlewares.RequireAdmin, r.handler.Delete)
	}
}
