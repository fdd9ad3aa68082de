package routes

import (
	"github.com/gin-gonic/gin"

	"gridbase/internal/handlers"
)

type TableRoutes struct {
	tables  *handlers.TableHandler
	columns *handlers.ColumnHandler
	records *handlers.RecordHandler
	auth    gin.HandlerFunc
}

func NewTableRoutes(
	tables *handlers.TableHandler,
	columns *handlers.ColumnHandler,
	records *handlers.RecordHandler,
	auth gin.HandlerFunc,
) *TableRoutes {
	return &TableRoutes{tables: tables, columns: columns, records: records, auth: auth}
}

func (r *TableRoutes) RegisterRoutes(router *gin.RouterGroup) {
	tables := router.Group("/tables")
	tables.Use(r.auth)
	{
		tables.POST("", r.tables.Create)
		tables.GET("", r.tables.List)
		tables.GET("/:id", r.tables.Get)
		tables.PUT("/:id", r.tables.Update)
		tables.DELETE("/:id", r.tables.Delete)

		tables.POST("/:id/columns", r.columns.Create)
		tables.GET("/:id/columns", r.columns.List)
		tables.PUT("/:id/columns/reorder", r.columns.Reorder)
		tables.PUT("/:id/columns/:columnId", r.columns.Update)
		tables.DELETE("/:id/columns/:columnId", r.columns.Delete)
		tables.GET("/:id/columns/:columnId/lookup-data", r.columns.LookupData)
		tables.GET("/:id/columns/:columnId/linked-data", r.columns.LookupData)
		tables.POST("/:id/formula/validate", r.columns.ValidateFormula)

		tables.POST("/:id/records", r.records.Create)
		tables.POST("/:id/records/bulk", r.records.BulkCreate)
		tables.GET("/:id/records", r.records.List)
		tables.GET("/:id/records/:recordId", r.records.Get)
		tables.PUT("/:id/records/:recordId", r.records.Update)
		tables.DELETE("/:id/records/:recordId", r.records.Delete)
	}
}
