package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/quiz-event-console/internal/access"
)

// RequireRole returns a middleware that enforces the allowed-role set
// declared for a route. An empty set means any authenticated role may
// enter. Denial renders the authorization-denied view in place with a
// 403: the route still resolves, only the content differs, so the URL
// stays put instead of bouncing to an error page. It assumes
// RequireSession already hydrated the session.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := CurrentSession(c)
			role := ""
			if sess != nil {
				role = sess.Role
			}
			if !access.CanAccess(role, roles) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":   "unauthorized",
					"message": "You are not authorized to view this page",
				})
			}
			return next(c)
		}
	}
}
