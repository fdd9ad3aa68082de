package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gridbase/internal/models"
	"gridbase/internal/repositories"
	"gridbase/internal/utils"
)

// Authenticate verifies the bearer token and loads the user into the
// context under "currentUser".
func Authenticate(userRepo *repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing Authorization header"})
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid Authorization format"})
			return
		}

		claims, err := utils.VerifyJWT(parts[1], utils.AccessTokenSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		userID, err := utils.ParseUUID(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token subject"})
			return
		}

		user, err := userRepo.FindUserByID(userID)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "User not found"})
			return
		}

		c.Set("userId", user.ID)
		c.Set("currentUser", user)

		c.Next()
	}
}

// CurrentUser pulls the authenticated user out of the context.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get("currentUser")
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}
