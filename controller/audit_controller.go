// controller/audit_controller.go
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dev-mohitbeniwal/echo-cache/audit"
	"github.com/dev-mohitbeniwal/echo-cache/util"
	helper_util "github.com/dev-mohitbeniwal/echo-cache/util/helper"
)

type AuditController struct {
	auditService audit.Service
}

func NewAuditController(auditService audit.Service) *AuditController {
	return &AuditController{auditService: auditService}
}

func (ac *AuditController) RegisterRoutes(r gin.IRouter) {
	r.GET("/audit", ac.QueryLogs)
}

// QueryLogs endpoint: GET /audit?kind=widget&entity_id=1&from=...&to=...
// The window defaults to the last 24 hours.
func (ac *AuditController) QueryLogs(c *gin.Context) {
	now := time.Now().UTC()
	from, err := helper_util.ParseTimeOr(c.Query("from"), now.Add(-24*time.Hour))
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid from timestamp", err)
		return
	}
	to, err := helper_util.ParseTimeOr(c.Query("to"), now)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid to timestamp", err)
		return
	}

	logs, err := ac.auditService.QueryLogs(c.Request.Context(), from, to, c.Query("kind"), c.Query("entity_id"))
	if errors.Is(err, audit.ErrInvalidQuery) {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid audit query", err)
		return
	}
	if err != nil {
		util.RespondWithError(c, http.StatusBadGateway, "Failed to query audit logs", err)
		return
	}

	c.JSON(http.StatusOK, logs)
}
