// Package auth is the request-level identity gate. Sessions resolves the
// browser's session cookie into state for every route; RequireLogin
// short-circuits anonymous requests before they reach cart or checkout
// handlers.
package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trishadairy/storefront/internal/session"
)

const (
	stateKey = "session_state"
	tokenKey = "session_token"
)

// Sessions loads the session state for the request, absent cookie included:
// an unknown or missing token resolves to a fresh empty state, never an
// error, so anonymous browsing always works.
func Sessions(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ""
			if cookie, err := c.Cookie(session.CookieName); err == nil {
				token = cookie.Value
			}

			state, err := store.Get(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable, try again")
			}

			c.Set(tokenKey, token)
			c.Set(stateKey, state)
			return next(c)
		}
	}
}

// RequireLogin bounces requests with no established identity to the login
// page. It must run after Sessions.
func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !State(c).LoggedIn() {
			return c.Redirect(http.StatusSeeOther, "/login.html")
		}
		return next(c)
	}
}

func State(c echo.Context) *session.State {
	if s, ok := c.Get(stateKey).(*session.State); ok {
		return s
	}
	return &session.State{}
}

func Token(c echo.Context) string {
	if t, ok := c.Get(tokenKey).(string); ok {
		return t
	}
	return ""
}
