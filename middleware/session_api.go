package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/coursedesk/sessiongate"
)

type stateResponse struct {
	Status  string               `json:"status"`
	Role    string               `json:"role,omitempty"`
	Loading bool                 `json:"loading"`
	Profile *sessiongate.Profile `json:"profile,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func toStateResponse(st sessiongate.State) stateResponse {
	return stateResponse{
		Status:  st.Status.String(),
		Role:    st.Role.String(),
		Loading: st.Loading,
		Profile: st.Profile,
	}
}

// RegisterSessionAPI exposes the manager under prefix:
//
//	GET  {prefix}         current state
//	POST {prefix}/login   {email,password}
//	POST {prefix}/logout
func RegisterSessionAPI(e *echo.Echo, prefix string, mgr *sessiongate.Manager) {
	g := e.Group(prefix)

	g.GET("", func(c echo.Context) error {
		return c.JSON(http.StatusOK, toStateResponse(mgr.State()))
	})

	g.POST("/login", func(c echo.Context) error {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if _, err := mgr.Login(c.Request().Context(), req.Email, req.Password); err != nil {
			return echo.NewHTTPError(loginStatus(err), err.Error())
		}
		return c.JSON(http.StatusOK, toStateResponse(mgr.State()))
	})

	g.POST("/logout", func(c echo.Context) error {
		if err := mgr.Logout(c.Request().Context()); err != nil {
			if errors.Is(err, sessiongate.ErrNotReady) {
				return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, toStateResponse(mgr.State()))
	})
}

func loginStatus(err error) int {
	switch {
	case errors.Is(err, sessiongate.ErrInvalidCredentials):
		return http.StatusBadRequest
	case errors.Is(err, sessiongate.ErrCredentialsRejected), errors.Is(err, sessiongate.ErrRoleInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, sessiongate.ErrAlreadyAuthenticated):
		return http.StatusConflict
	case errors.Is(err, sessiongate.ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
