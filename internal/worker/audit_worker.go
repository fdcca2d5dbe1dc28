package worker

import (
	"github.com/pequemaths/pequemaths-api/internal/service"
)

// StartAuditWorker registers audit handlers on the event dispatcher.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
