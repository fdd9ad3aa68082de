package routes

import (
	"github.com/gin-gonic/gin"

	"gridbase/internal/handlers"
)

type BaseRoutes struct {
	handler *handlers.BaseHandler
	auth    gin.HandlerFunc
}

func NewBaseRoutes(handler *handlers.BaseHandler, auth gin.HandlerFunc) *BaseRoutes {
	return &BaseRoutes{handler: handler, auth: auth}
}

func (r *BaseRoutes) RegisterRoutes(router *gin.RouterGroup) {
	bases := router.Group("/bases")
	bases.Use(r.auth)
	{
		bases.POST("", r.handler.Create)
		bases.GET("", r.handler.List)
		bases.GET("/:id", r.handler.Get)
		bases.PUT("/:id", r.handler.Update)
		bases.DELETE("/:id", r.handler.Delete)
		bases.GET("/:id/tables", r.handler.ListTables)

		bases.POST("/:id/members", r.handler.AddMember)
		bases.GET("/:id/members", r.handler.ListMembers)
		bases.DELETE("/:id/members/:userId", r.handler.RemoveMember)
	}
}
