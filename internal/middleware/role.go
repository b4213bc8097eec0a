package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/pizza-delivery-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole is a middleware that checks if the user has the required role.
func RequireRole(requiredRole models.AccountType) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get user info from context (set by SessionAuth middleware)
		if _, exists := c.Get("userID"); !exists {
			abortWithError(c, http.StatusUnauthorized, models.ErrUnauthorized, "User not authenticated")
			return
		}

		if c.GetString("userRole") != string(requiredRole) {
			abortWithError(c, http.StatusForbidden, models.ErrForbidden, "Access denied: "+string(requiredRole)+" role required")
			return
		}

		c.Next()
	}
}
