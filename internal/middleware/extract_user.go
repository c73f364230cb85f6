package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UmarRehanShaikh/pronttera-time-off/internal/shared/response"
)

// ExtractUserID re-checks the authenticated identity and publishes it under
// user_id_validated, the key the idempotency layer scopes its cache by.
func ExtractUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User is not authenticated", nil)
			c.Abort()
			return
		}

		userIDStr, ok := userID.(string)
		if !ok || userIDStr == "" {
			response.Error(c, http.StatusUnauthorized, "INVALID_USER_ID", "Invalid user_id format", nil)
			c.Abort()
			return
		}

		c.Set("user_id_validated", userIDStr)
		c.Next()
	}
}
