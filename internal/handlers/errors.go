package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gridbase/internal/apperrors"
	"gridbase/internal/responses"
)

// failFromError maps service errors to HTTP statuses.
func failFromError(c *gin.Context, err error, message string) {
	switch {
	case apperrors.IsValidation(err):
		responses.Fail(c, http.StatusBadRequest, err, message)
	case apperrors.IsAuthorization(err):
		responses.Fail(c, http.StatusForbidden, err, message)
	case errors.Is(err, apperrors.ErrNotFound):
		responses.Fail(c, http.StatusNotFound, err, message)
	default:
		responses.Fail(c, http.StatusInternalServerError, err, message)
	}
}
