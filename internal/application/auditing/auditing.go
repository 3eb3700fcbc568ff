// Package auditing appends audit entries on behalf of use cases. Audit
// storage failures never fail the operation being audited.
package auditing

import (
	"context"

	"github.com/orris-inc/orrisdesk/internal/domain/audit"
	"github.com/orris-inc/orrisdesk/internal/shared/biztime"
	"github.com/orris-inc/orrisdesk/internal/shared/logger"
)

// Record appends e and logs a failure instead of returning it. A nil
// recorder is a no-op.
func Record(ctx context.Context, rec audit.Recorder, log logger.Interface, e *audit.Entry) {
	if rec == nil {
		return
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = biztime.NowUTC()
	}
	if err := rec.Record(ctx, e); err != nil {
		log.Warnw("failed to record audit entry",
			"action", e.Action,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
			"error", err,
		)
	}
}
