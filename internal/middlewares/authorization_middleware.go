package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin rejects anyone without the admin role. Must run after
// Authenticate.
func RequireAdmin(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil || !user.IsSuperAdmin() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Admin access required"})
		return
	}
	c.Next()
}
