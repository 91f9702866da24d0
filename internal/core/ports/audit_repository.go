package ports

import (
	"context"

	"github.com/platformlab/identity-service/internal/core/domain"
)

// AuditRepository persists authentication events for the audit trail.
type AuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
