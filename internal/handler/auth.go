package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/quiz-event-console/internal/importer"
	mw "github.com/iliyamo/quiz-event-console/internal/middleware"
	"github.com/iliyamo/quiz-event-console/internal/session"
	"github.com/iliyamo/quiz-event-console/internal/upstream"
)

// AuthHandler proxies credential operations to the backend and owns
// the console side of the session lifecycle: writing the token cookie
// on login and tearing everything down on logout.
type AuthHandler struct {
	Sessions *session.Manager
	Upstream *upstream.Registry
	Staging  *importer.Store
}

func NewAuthHandler(s *session.Manager, u *upstream.Registry, st *importer.Store) *AuthHandler {
	return &AuthHandler{Sessions: s, Upstream: u, Staging: st}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// Login forwards credentials to the backend. A 401 from the login
// endpoint is a real credential error and is surfaced as such, never
// routed through the refresh flow. On success the raw token lands in
// the cookie and the in-memory session is hydrated from its claims.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Upstream.Anonymous().Login(ctx, req.Email, req.Password)
	if err != nil {
		var apiErr *upstream.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "login failed"})
	}

	claims, err := session.DecodeClaims(res.Token)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "unusable token from backend"})
	}

	mw.SetTokenCookie(c, res.Token)
	sess := h.Sessions.Hydrate(res.Token, claims)

	return c.JSON(http.StatusOK, echo.Map{
		"user": userPart{UserID: sess.UserID, Role: sess.Role, Status: sess.Status},
	})
}

// Logout destroys the in-memory session, the operator's staged import
// and the upstream client, then expires the cookie. It accepts any
// cookie state so a half-expired session can still log out cleanly.
func (h *AuthHandler) Logout(c echo.Context) error {
	if ck, err := c.Cookie(session.CookieName); err == nil && ck.Value != "" {
		if claims, err := session.DecodeClaims(ck.Value); err == nil {
			h.Sessions.Drop(claims.UserID)
			h.Staging.Drop(claims.UserID)
			h.Upstream.Drop(claims.UserID)
		}
	}
	mw.ClearTokenCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// Me returns the hydrated identity for the current session.
func (h *AuthHandler) Me(c echo.Context) error {
	sess := mw.CurrentSession(c)
	return c.JSON(http.StatusOK, echo.Map{
		"user": userPart{UserID: sess.UserID, Role: sess.Role, Status: sess.Status},
	})
}
