// Package audit records security-relevant changes (role and membership
// mutations, registrations) as structured log events on the "audit" logger.
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/rolbazli/internal/observability/logger"
)

// Event names.
const (
	RoleCreated    = "role.created"
	RoleRenamed    = "role.renamed"
	RoleDeleted    = "role.deleted"
	RoleAssigned   = "role.assigned"
	RoleRevoked    = "role.revoked"
	UserRegistered = "user.registered"
)

// Log writes one audit event. actor is the subject that made the change,
// empty for anonymous requests.
func Log(ctx context.Context, event, actor string, fields ...zap.Field) {
	l := logger.From(ctx).Named("audit")
	if actor == "" {
		actor = "anonymous"
	}
	l.Info(event, append([]zap.Field{zap.String("event", event), zap.String("actor", actor)}, fields...)...)
}
