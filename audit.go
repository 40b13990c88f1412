package sessiongate

import (
	"io"

	"github.com/coursedesk/sessiongate/internal/audit"
)

type (
	AuditEvent     = audit.Event
	AuditSink      = audit.Sink
	AuditSinkFunc  = audit.SinkFunc
	NoOpSink       = audit.NoOpSink
	ChannelSink    = audit.ChannelSink
	JSONWriterSink = audit.JSONWriterSink
)

// Audit event types emitted by the manager and the route guard.
const (
	AuditSessionRestored = "session.restored"
	AuditSessionRejected = "session.rejected"
	AuditLoginSuccess    = "login.success"
	AuditLoginFailure    = "login.failure"
	AuditLogout          = "logout"
	AuditProfileUpdated  = "profile.updated"
	AuditAccessDenied    = "access.denied"
)

func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}
