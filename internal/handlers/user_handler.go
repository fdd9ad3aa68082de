package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gridbase/internal/middlewares"
	"gridbase/internal/responses"
	"gridbase/internal/services"
	"gridbase/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Me(c *gin.Context) {
	user := middlewares.CurrentUser(c)
	if user == nil {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}
	responses.Success(c, http.StatusOK, user, "")
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List()
	if err != nil {
		failFromError(c, err, "Could not list users")
		return
	}
	responses.Success(c, http.StatusOK, users, "")
}

func (h *UserHandler) Get(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid user id")
		return
	}
	user, err := h.userService.Get(id)
	if err != nil {
		failFromError(c, err, "Could not fetch user")
		return
	}
	responses.Success(c, http.StatusOK, user, "")
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := utils.ParseUUID(c.Param("id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid user id")
		return
	}
	if err := h.userService.Delete(id); err != nil {
		failFromError(c, err, "Could not delete user")
		return
	}
	responses.Success(c, http.StatusOK, nil, "User deleted successfully")
}
