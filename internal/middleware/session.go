package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/quiz-event-console/internal/model"
	"github.com/iliyamo/quiz-event-console/internal/session"
)

const sessionKey = "session"

// RequireSession validates the token cookie on every request that
// crosses a protected boundary, not just at login. A missing cookie
// denies immediately; a malformed or expired token additionally clears
// the cookie. On the first valid request after a restart the in-memory
// session is hydrated from the decoded claims. The response carries a
// redirect hint so the frontend can route to the login entry point.
func RequireSession(mgr *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var token string
			if ck, err := c.Cookie(session.CookieName); err == nil {
				token = ck.Value
			}

			sess, err := mgr.Resolve(token)
			if err != nil {
				if !errors.Is(err, session.ErrNoToken) {
					// Malformed and expired tokens are treated alike:
					// remove the stored token before denying.
					ClearTokenCookie(c)
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error":    "authentication required",
					"redirect": "/login",
				})
			}

			c.Set(sessionKey, sess)

			// The refresh interceptor may rotate or clear the session
			// token while the handler talks upstream; mirror whatever
			// it did onto the cookie before the response body goes out.
			presented := token
			c.Response().Before(func() {
				cur := mgr.Get(sess.UserID)
				switch {
				case cur == nil:
					ClearTokenCookie(c)
				case cur.Token != presented:
					SetTokenCookie(c, cur.Token)
				}
			})
			return next(c)
		}
	}
}

// CurrentSession returns the hydrated session stored by
// RequireSession, or nil on an unprotected route.
func CurrentSession(c echo.Context) *model.Session {
	if s, ok := c.Get(sessionKey).(*model.Session); ok {
		return s
	}
	return nil
}

// SetTokenCookie writes the bearer token cookie, path-scoped to the
// whole application. Only the session layer and the refresh paths go
// through here.
func SetTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie expires the bearer token cookie.
func ClearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}
