package worker

import (
	"context"

	"github.com/spec-kit/intranet-portal/internal/service"
)

// StartAuditWorker registers the audit handlers on the event dispatcher and
// starts webhook delivery. Delivery stops when ctx is done.
func StartAuditWorker(ctx context.Context, audit *service.AuditService) {
	if audit == nil {
		return
	}
	audit.RegisterHandlers()
	go audit.Run(ctx)
}
