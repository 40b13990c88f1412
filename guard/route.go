package guard

import (
	"context"

	"github.com/coursedesk/sessiongate"
	"github.com/coursedesk/sessiongate/policy"
	"github.com/coursedesk/sessiongate/role"
)

// OutcomeKind tells a renderer what to do with a top-level route.
type OutcomeKind uint8

const (
	// Loading means render the loading placeholder.
	Loading OutcomeKind = iota
	Render
	Redirect
	NotFound
)

func (k OutcomeKind) String() string {
	switch k {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	default:
		return "loading"
	}
}

// Outcome is the resolved fate of a path.
type Outcome struct {
	Kind     OutcomeKind
	Route    policy.Route
	Decision Decision
	// Target is set when Kind is Redirect.
	Target string
}

// Route resolves path against the top-level route table. Every route shows the loading
// placeholder until the session resolves. Guest routes then render. Guarded routes
// redirect to the login screen without a role, and otherwise go through Enforce.
func (c *Controller) Route(ctx context.Context, path string, nav sessiongate.Navigator) Outcome {
	r, ok := policy.Resolve(path)
	if !ok {
		return Outcome{Kind: NotFound}
	}

	st := c.session.State()
	if st.Loading {
		if r.Kind == policy.Guarded {
			c.record(ctx, Defer, r.Path)
		}
		return Outcome{Kind: Loading, Route: r}
	}

	if r.Kind == policy.Guest {
		return Outcome{Kind: Render, Route: r}
	}

	if st.Role == role.None {
		if nav != nil {
			nav.Navigate(ctx, policy.LoginPath)
		}
		return Outcome{Kind: Redirect, Route: r, Decision: Defer, Target: policy.LoginPath}
	}

	d := c.enforce(ctx, policy.Requirement(r.Subtree), r.Path, nav)
	switch d {
	case Allow:
		return Outcome{Kind: Render, Route: r, Decision: d}
	case Deny:
		return Outcome{Kind: Redirect, Route: r, Decision: d, Target: policy.UnauthorizedPath}
	default:
		return Outcome{Kind: Loading, Route: r, Decision: d}
	}
}
