package sessiongate

import (
	"context"

	"github.com/coursedesk/sessiongate/internal/audit"
)

// AccessDecision is the outcome of a route guard check as reported back to the manager.
type AccessDecision uint8

const (
	AccessDeferred AccessDecision = iota
	AccessAllowed
	AccessDenied
)

func (d AccessDecision) String() string {
	switch d {
	case AccessAllowed:
		return "allow"
	case AccessDenied:
		return "deny"
	default:
		return "defer"
	}
}

// RecordAccess counts a guard decision. A denial is also audited and surfaced to the
// visitor as a notification.
func (m *Manager) RecordAccess(ctx context.Context, d AccessDecision, path string) {
	switch d {
	case AccessAllowed:
		m.metrics.Inc(MetricAccessAllowed)
	case AccessDenied:
		m.metrics.Inc(MetricAccessDenied)
		st := m.State()
		m.emitAudit(ctx, audit.Event{
			EventType: AuditAccessDenied,
			Subject:   profileID(st.Profile),
			Role:      st.Role.String(),
			Path:      path,
			Success:   false,
		})
		m.log.Debug("access denied", "role", st.Role, "path", path)
		m.notifier.Notify(ctx, Notification{Level: LevelError, Message: "You do not have access to that page."})
	default:
		m.metrics.Inc(MetricAccessDeferred)
	}
}
