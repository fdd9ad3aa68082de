package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridbase/internal/middlewares"
	"gridbase/internal/responses"
	"gridbase/internal/services"
	"gridbase/internal/utils"
)

type BaseHandler struct {
	baseService  *services.BaseService
	tableService *services.TableService
}

func NewBaseHandler(baseService *services.BaseService, tableService *services.TableService) *BaseHandler {
	return &BaseHandler{baseService: baseService, tableService: tableService}
}

func (h *BaseHandler) Create(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	var req services.CreateBaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	base, err := h.baseService.Create(user.ID, &req)
	if err != nil {
		failFromError(c, err, "Could not create base")
		return
	}
	responses.Success(c, http.StatusCreated, base, "Base created successfully")
}

func (h *BaseHandler) List(c *gin.Context) {
	user := middlewares.CurrentUser(c)

	bases, err := h.baseService.ListForUser(user.ID)
	if err != nil {
		failFromError(c, err, "Could not list bases")
		return
	}
	responses.Success(c, http.StatusOK, bases, "")
}

func (h *BaseHandler) Get(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid base id")
		return
	}
	base, err := h.baseService.Get(id)
	if err != nil {
		failFromError(c, err, "Could not fetch base")
		return
	}
	responses.Success(c, http.StatusOK, base, "")
}

func (h *BaseHandler) Update(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid base id")
		return
	}
	if !h.requireManager(c, id) {
		return
	}

	var req services.UpdateBaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	base, err := h.baseService.Update(id, &req)
	if err != nil {
		failFromError(c, err, "Could not update base")
		return
	}
	responses.Success(c, http.StatusOK, base, "Base updated successfully")
}

func (h *BaseHandler) Delete(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid base id")
		return
	}
	if !h.requireManager(c, id) {
		return
	}

	if err := h.baseService.Delete(id); err != nil {
		failFromError(c, err, "Could not delete base")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Base deleted successfully")
}

func (h *BaseHandler) ListTables(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid base id")
		return
	}
	tables, err := h.tableService.ListForBase(id)
	if err != nil {
		failFromError(c, err, "Could not list tables")
		return
	}
	responses.Success(c, http.StatusOK, tables, "")
}

func (h *BaseHandler) AddMember(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid base id")
		return
	}
	if !h.requireManager(c, id) {
		return
	}

	var req services.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	member, err := h.baseService.AddMember(id, &req)
	if err != nil {
		failFromError(c, err, "Could not add member")
		return
	}
	responses.Success(c, http.StatusCreated, member, "Member added successfully")
}

func (h *BaseHandler) ListMembers(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid base id")
		return
	}
	members, err := h.baseService.ListMembers(id)
	if err != nil {
		failFromError(c, err, "Could not list members")
		return
	}
	responses.Success(c, http.StatusOK, members, "")
}

func (h *BaseHandler) RemoveMember(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid base id")
		return
	}
	userID, err := utils.ParseUUID(c.Param("userId"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid user id")
		return
	}
	if !h.requireManager(c, id) {
		return
	}

	if err := h.baseService.RemoveMember(id, userID); err != nil {
		failFromError(c, err, "Could not remove member")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Member removed successfully")
}

func (h *BaseHandler) requireManager(c *gin.Context, baseID uuid.UUID) bool {
	user := middlewares.CurrentUser(c)
	ok, err := h.baseService.IsManager(baseID, user)
	if err != nil {
		failFromError(c, err, "Could not check permissions")
		return false
	}
	if !ok {
		responses.Fail(c, http.StatusForbidden, nil, "Insufficient permissions")
		return false
	}
	return true
}
