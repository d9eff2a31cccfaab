package helper_util

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// GetIDListParam splits a comma separated query parameter, dropping blanks.
func GetIDListParam(c *gin.Context, name string) []string {
	var ids []string
	for _, id := range strings.Split(c.Query(name), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
