package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"user-management-server/internal/auth"
	"user-management-server/internal/models"
	"user-management-server/internal/utils"
)

const currentUserKey = "currentUser"

// AuthMiddleware creates a middleware that requires a valid bearer access
// token and resolves it to an active user via the session manager.
func AuthMiddleware(manager *auth.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		user, err := manager.ResolveCurrentUser(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrKeyUnavailable) {
				utils.InternalServerError(c, err.Error())
			} else {
				utils.Unauthorized(c, err.Error())
			}
			c.Abort()
			return
		}

		// Set the resolved user in context for downstream handlers
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// AdminMiddleware restricts a route to admin users. It must be used after
// AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			utils.InternalServerError(c, "User not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}
		if !user.IsAdmin {
			utils.Forbidden(c, "You do not have permission to access this resource.")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetCurrentUser returns the authenticated user stored in the context.
func GetCurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}
