package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gridbase/internal/middlewares"
	"gridbase/internal/models"
	"gridbase/internal/responses"
	"gridbase/internal/services"
)

// Access helpers for routes nested under /tables/:id. Each one resolves
// the table from the route param, runs the permission predicate for the
// current user and writes the failure response itself.

func requireTableAccess(c *gin.Context, ts *services.TableService) (uuid.UUID, bool) {
	return checkTable(c, ts, ts.CanAccess)
}

func requireTableEdit(c *gin.Context, ts *services.TableService) (uuid.UUID, bool) {
	return checkTable(c, ts, ts.CanEditStructure)
}

func requireTableOwner(c *gin.Context, ts *services.TableService) (uuid.UUID, bool) {
	return checkTable(c, ts, ts.IsOwner)
}

func checkTable(c *gin.Context, ts *services.TableService, predicate func(*models.User, *models.Table) (bool, error)) (uuid.UUID, bool) {
	tableID, ok := TableIDParam(c)
	if !ok {
		return uuid.Nil, false
	}

	summary, err := ts.Get(tableID)
	if err != nil {
		failFromError(c, err, "Could not fetch table")
		return uuid.Nil, false
	}

	user := middlewares.CurrentUser(c)
	allowed, err := predicate(user, summary.Table)
	if err != nil {
		failFromError(c, err, "Could not check permissions")
		return uuid.Nil, false
	}
	if !allowed {
		responses.Fail(c, http.StatusForbidden, nil, "Insufficient permissions")
		return uuid.Nil, false
	}

	return tableID, true
}
