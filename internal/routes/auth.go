package routes

import (
	"github.com/gin-gonic/gin"

	"gridbase/internal/handlers"
)

type AuthRoutes struct {
	handler *handlers.AuthHandler
	auth    gin.HandlerFunc
}

func NewAuthRoutes(handler *handlers.AuthHandler, auth gin.HandlerFunc) *AuthRoutes {
	return &AuthRoutes{handler: handler, auth: auth}
}

func (r *AuthRoutes) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		// Public routes
		auth.POST("/register", r.handler.Register)
		auth.POST("/login", r.handler.Login)
		auth.POST("/refresh", r.handler.Refresh)

		// Protected routes
		protected := auth.Group("/")
		protected.Use(r.auth)
		protected.POST("/logout", r.handler.Logout)
	}
}
