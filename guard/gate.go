package guard

import "context"

// Gate holds back role-agnostic screens until the session has resolved. It never looks
// at the role.
type Gate struct {
	session Session
}

func NewGate(sess Session) *Gate {
	return &Gate{session: sess}
}

// Pass reports whether wrapped content may render.
func (g *Gate) Pass() bool {
	return !g.session.State().Loading
}

// Wait blocks until the session resolves or ctx ends.
func (g *Gate) Wait(ctx context.Context) error {
	if g.Pass() {
		return nil
	}
	select {
	case <-g.session.Ready():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
