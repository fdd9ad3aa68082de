package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridbase/internal/responses"
	"gridbase/internal/services"
	"gridbase/internal/utils"
)

type ColumnHandler struct {
	columnService *services.ColumnService
	lookupService *services.LookupService
	tableService  *services.TableService
}

func NewColumnHandler(columnService *services.ColumnService, lookupService *services.LookupService, tableService *services.TableService) *ColumnHandler {
	return &ColumnHandler{
		columnService: columnService,
		lookupService: lookupService,
		tableService:  tableService,
	}
}

func (h *ColumnHandler) Create(c *gin.Context) {
	tableID, ok := requireTableEdit(c, h.tableService)
	if !ok {
		return
	}

	var req services.CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	column, err := h.columnService.Create(tableID, &req)
	if err != nil {
		failFromError(c, err, "Could not create column")
		return
	}
	responses.Success(c, http.StatusCreated, column, "Column created successfully")
}

func (h *ColumnHandler) List(c *gin.Context) {
	tableID, ok := requireTableAccess(c, h.tableService)
	if !ok {
		return
	}

	columns, err := h.columnService.List(tableID)
	if err != nil {
		failFromError(c, err, "Could not list columns")
		return
	}
	responses.Success(c, http.StatusOK, columns, "")
}

func (h *ColumnHandler) Update(c *gin.Context) {
	if _, ok := requireTableEdit(c, h.tableService); !ok {
		return
	}
	columnID, err := utils.ParseUUID(c.Param("columnId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid column id")
		return
	}

	var req services.UpdateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.columnService.Update(columnID, &req)
	if err != nil {
		failFromError(c, err, "Could not update column")
		return
	}
	responses.Success(c, http.StatusOK, result, "Column updated successfully")
}

// Delete drops the column definition and its stored data, so only table
// owners may call it.
func (h *ColumnHandler) Delete(c *gin.Context) {
	if _, ok := requireTableOwner(c, h.tableService); !ok {
		return
	}
	columnID, err := utils.ParseUUID(c.Param("columnId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid column id")
		return
	}

	if err := h.columnService.Delete(columnID); err != nil {
		failFromError(c, err, "Could not delete column")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Column deleted successfully")
}

func (h *ColumnHandler) Reorder(c *gin.Context) {
	tableID, ok := requireTableEdit(c, h.tableService)
	if !ok {
		return
	}

	var req struct {
		ColumnIDs []uuid.UUID `json:"columnIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	columns, err := h.columnService.Reorder(tableID, req.ColumnIDs)
	if err != nil {
		failFromError(c, err, "Could not reorder columns")
		return
	}
	responses.Success(c, http.StatusOK, columns, "Columns reordered successfully")
}

func (h *ColumnHandler) ValidateFormula(c *gin.Context) {
	tableID, ok := requireTableAccess(c, h.tableService)
	if !ok {
		return
	}

	var req struct {
		Formula string `json:"formula" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	result, err := h.columnService.ValidateFormula(tableID, req.Formula)
	if err != nil {
		failFromError(c, err, "Could not validate formula")
		return
	}
	responses.Success(c, http.StatusOK, result, "")
}

// LookupData lists the selectable rows behind a linked_table or lookup
// column. Supports search, page and limit query params.
func (h *ColumnHandler) LookupData(c *gin.Context) {
	if _, ok := requireTableAccess(c, h.tableService); !ok {
		return
	}
	columnID, err := utils.ParseUUID(c.Param("columnId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid column id")
		return
	}

	column, err := h.columnService.Get(columnID)
	if err != nil {
		failFromError(c, err, "Could not fetch column")
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	options, err := h.lookupService.ResolveOptions(column, c.Query("search"), page, limit)
	if err != nil {
		failFromError(c, err, "Could not resolve lookup data")
		return
	}
	responses.Success(c, http.StatusOK, options, "")
}
