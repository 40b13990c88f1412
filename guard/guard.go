package guard

import (
	"context"

	"github.com/coursedesk/sessiongate"
	"github.com/coursedesk/sessiongate/policy"
	"github.com/coursedesk/sessiongate/role"
)

// Decision is the result of an access check.
type Decision uint8

const (
	// Defer means no role is known yet; render nothing guarded and do not redirect.
	Defer Decision = iota
	Allow
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "defer"
	}
}

func (d Decision) access() sessiongate.AccessDecision {
	switch d {
	case Allow:
		return sessiongate.AccessAllowed
	case Deny:
		return sessiongate.AccessDenied
	default:
		return sessiongate.AccessDeferred
	}
}

// Check decides access for current against required.
func Check(required role.Set, current role.Role) Decision {
	if current == role.None {
		return Defer
	}
	if required.Has(current) {
		return Allow
	}
	return Deny
}

// Session is the read side of the session manager.
type Session interface {
	State() sessiongate.State
	Ready() <-chan struct{}
}

// Recorder receives guard decisions. *sessiongate.Manager implements it.
type Recorder interface {
	RecordAccess(ctx context.Context, d sessiongate.AccessDecision, path string)
}

// Controller applies Check to the live session.
type Controller struct {
	session  Session
	recorder Recorder
}

// NewController returns a Controller reading sess. When sess also implements Recorder,
// decisions are reported to it.
func NewController(sess Session) *Controller {
	c := &Controller{session: sess}
	if r, ok := sess.(Recorder); ok {
		c.recorder = r
	}
	return c
}

// Session returns the session the controller reads.
func (c *Controller) Session() Session {
	return c.session
}

// Enforce checks the live role against required. While the session is loading it
// returns Defer. On Deny it navigates to the unauthorized screen. Guarded content may
// render only when the result is Allow.
func (c *Controller) Enforce(ctx context.Context, required role.Set, nav sessiongate.Navigator) Decision {
	return c.enforce(ctx, required, "", nav)
}

// EnforceSubtree is Enforce with the requirement of s.
func (c *Controller) EnforceSubtree(ctx context.Context, s policy.Subtree, nav sessiongate.Navigator) Decision {
	return c.enforce(ctx, policy.Requirement(s), s.Prefix(), nav)
}

func (c *Controller) enforce(ctx context.Context, required role.Set, path string, nav sessiongate.Navigator) Decision {
	st := c.session.State()
	d := Defer
	if !st.Loading {
		d = Check(required, st.Role)
	}

	if d == Deny && nav != nil {
		nav.Navigate(ctx, policy.UnauthorizedPath)
	}
	c.record(ctx, d, path)
	return d
}

func (c *Controller) record(ctx context.Context, d Decision, path string) {
	if c.recorder != nil {
		c.recorder.RecordAccess(ctx, d.access(), path)
	}
}
