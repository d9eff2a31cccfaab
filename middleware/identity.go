// middleware/identity.go

package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	UserIDHeader = "X-User-ID"
	userIDKey    = "userID"
)

// Identity copies the caller's user id from the request header into the
// gin context. Authentication happens upstream of this service.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader(UserIDHeader); userID != "" {
			c.Set(userIDKey, userID)
		}
		c.Next()
	}
}
