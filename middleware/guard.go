package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coursedesk/sessiongate/guard"
	"github.com/coursedesk/sessiongate/policy"
)

// LoadingPage answers 503 with Retry-After so clients poll until the session resolves.
func LoadingPage(c echo.Context) error {
	c.Response().Header().Set("Retry-After", "1")
	return c.String(http.StatusServiceUnavailable, "loading")
}

// redirectRecorder captures the navigation requested by the controller so it can be
// replayed as an HTTP redirect.
type redirectRecorder struct {
	target string
}

func (r *redirectRecorder) Navigate(_ context.Context, path string) {
	if r.target == "" {
		r.target = path
	}
}

// Gate holds back guest screens while the session is loading.
func Gate(g *guard.Gate, loading echo.HandlerFunc) echo.MiddlewareFunc {
	if loading == nil {
		loading = LoadingPage
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !g.Pass() {
				return loading(c)
			}
			return next(c)
		}
	}
}

// RequireSubtree admits requests only when the current role may enter s. Without a role
// the visitor is sent to the login screen; on denial to the unauthorized screen.
func RequireSubtree(ctrl *guard.Controller, s policy.Subtree, loading echo.HandlerFunc) echo.MiddlewareFunc {
	if loading == nil {
		loading = LoadingPage
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			st := ctrl.Session().State()
			if st.Loading {
				ctrl.EnforceSubtree(ctx, s, nil)
				return loading(c)
			}

			rec := &redirectRecorder{}
			switch ctrl.EnforceSubtree(ctx, s, rec) {
			case guard.Allow:
				return next(c)
			case guard.Deny:
				target := rec.target
				if target == "" {
					target = policy.UnauthorizedPath
				}
				return c.Redirect(http.StatusFound, target)
			default:
				return c.Redirect(http.StatusFound, policy.LoginPath)
			}
		}
	}
}

// Screens are the handlers rendered for each entry of the route table. Nil handlers get
// a plain-text placeholder naming the screen.
type Screens struct {
	Loading      echo.HandlerFunc
	Home         echo.HandlerFunc
	Login        echo.HandlerFunc
	Unauthorized echo.HandlerFunc
	Subtrees     map[policy.Subtree]echo.HandlerFunc
}

func placeholder(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.String(http.StatusOK, name)
	}
}

func orPlaceholder(h echo.HandlerFunc, name string) echo.HandlerFunc {
	if h != nil {
		return h
	}
	return placeholder(name)
}

// Mount registers the top-level route table on e.
func Mount(e *echo.Echo, ctrl *guard.Controller, gate *guard.Gate, screens Screens) {
	loading := screens.Loading
	if loading == nil {
		loading = LoadingPage
	}
	gated := Gate(gate, loading)

	for _, r := range policy.Routes() {
		switch r.Kind {
		case policy.Guest:
			var h echo.HandlerFunc
			switch r.Path {
			case policy.RootPath:
				h = orPlaceholder(screens.Home, "home")
			case policy.LoginPath:
				h = orPlaceholder(screens.Login, "login")
			case policy.UnauthorizedPath:
				h = orPlaceholder(screens.Unauthorized, "unauthorized")
			default:
				h = placeholder(r.Path)
			}
			e.GET(r.Path, h, gated)
		case policy.Guarded:
			h := orPlaceholder(screens.Subtrees[r.Subtree], r.Subtree.String())
			g := e.Group(r.Path, RequireSubtree(ctrl, r.Subtree, loading))
			g.GET("", h)
			g.GET("/*", h)
		}
	}
}
