// controller/controllers.go
package controller

import (
	"github.com/dev-mohitbeniwal/echo-cache/audit"
	"github.com/dev-mohitbeniwal/echo-cache/service"
)

type Controllers struct {
	Widget *WidgetController
	Audit  *AuditController
}

func InitializeControllers(services *service.Services, auditService audit.Service) *Controllers {
	return &Controllers{
		Widget: NewWidgetController(services.Widget),
		Audit:  NewAuditController(auditService),
	}
}
