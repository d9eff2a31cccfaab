// util/http_util.go
package util

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/echo-cache/logging"
)

var ErrMissingUser = errors.New("request carries no user id")

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", ErrMissingUser
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", ErrMissingUser
	}
	return id, nil
}
