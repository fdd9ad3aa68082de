package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridbase/internal/middlewares"
	"gridbase/internal/models"
	"gridbase/internal/responses"
	"gridbase/internal/services"
	"gridbase/internal/utils"
)

type TableHandler struct {
	tableService *services.TableService
}

func NewTableHandler(tableService *services.TableService) *TableHandler {
	return &TableHandler{tableService: tableService}
}

func (h *TableHandler) Create(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var req services.CreateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	summary, err := h.tableService.Create(user.ID, &req)
	if err != nil {
		failFromError(c, err, "Could not create table")
		return
	}
	responses.Success(c, http.StatusCreated, summary, "Table created successfully")
}

func (h *TableHandler) List(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	tables, err := h.tableService.ListForUser(user.ID)
	if err != nil {
		failFromError(c, err, "Could not list tables")
		return
	}
	responses.Success(c, http.StatusOK, tables, "")
}

func (h *TableHandler) Get(c *gin.Context) {
	summary, ok := h.accessibleTable(c)
	if !ok {
		return
	}
	responses.Success(c, http.StatusOK, summary, "")
}

func (h *TableHandler) Update(c *gin.Context) {
	summary, ok := h.editableTable(c)
	if !ok {
		return
	}

	var req services.UpdateTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	table, err := h.tableService.Update(summary.Table.ID, &req)
	if err != nil {
		failFromError(c, err, "Could not update table")
		return
	}
	responses.Success(c, http.StatusOK, table, "Table updated successfully")
}

func (h *TableHandler) Delete(c *gin.Context) {
	summary, ok := h.editableTable(c)
	if !ok {
		return
	}

	if err := h.tableService.Delete(summary.Table.ID); err != nil {
		failFromError(c, err, "Could not delete table")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Table deleted successfully")
}

// accessibleTable loads the table from the :id param and enforces read
// access for the current user.
func (h *TableHandler) accessibleTable(c *gin.Context) (*services.TableSummary, bool) {
	return h.loadTable(c, h.tableService.CanAccess)
}

// editableTable enforces structural-edit access.
func (h *TableHandler) editableTable(c *gin.Context) (*services.TableSummary, bool) {
	return h.loadTable(c, h.tableService.CanEditStructure)
}

func (h *TableHandler) loadTable(c *gin.Context, check func(*models.User, *models.Table) (bool, error)) (*services.TableSummary, bool) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid table id")
		return nil, false
	}

	summary, err := h.tableService.Get(id)
	if err != nil {
		failFromError(c, err, "Could not fetch table")
		return nil, false
	}

	user := middlewares.CurrentUser(c)
	ok, err := check(user, summary.Table)
	if err != nil {
		failFromError(c, err, "Could not check permissions")
		return nil, false
	}
	if !ok {
		responses.Fail(c, http.StatusForbidden, nil, "Insufficient permissions")
		return nil, false
	}

	return summary, true
}

// TableIDParam resolves the :id route param, shared by the nested column
// and record routes.
func TableIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid table id")
		return uuid.Nil, false
	}
	return id, true
}
