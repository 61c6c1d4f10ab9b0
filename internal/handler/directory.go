package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	mw "github.com/iliyamo/quiz-event-console/internal/middleware"
	"github.com/iliyamo/quiz-event-console/internal/session"
	"github.com/iliyamo/quiz-event-console/internal/upstream"
)

// DirectoryHandler proxies the admin-only collection pages: schools,
// users, deleted users and the per-stage results. These views pass the
// backend payload through untouched.
type DirectoryHandler struct {
	Upstream *upstream.Registry
	Sessions *session.Manager
}

func NewDirectoryHandler(u *upstream.Registry, s *session.Manager) *DirectoryHandler {
	return &DirectoryHandler{Upstream: u, Sessions: s}
}

func (h *DirectoryHandler) list(c echo.Context, path, key string) error {
	sess := mw.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	client := h.Upstream.For(sess.UserID, h.Sessions.TokenStore(sess.UserID))
	data, total, err := client.ListRaw(ctx, path)
	if err != nil {
		return proxyErr(c, err)
	}
	if len(data) == 0 {
		data = json.RawMessage("[]")
	}
	return c.JSON(http.StatusOK, echo.Map{key: data, "total": total})
}

func (h *DirectoryHandler) Schools(c echo.Context) error {
	return h.list(c, "/schools", "schools")
}

func (h *DirectoryHandler) Users(c echo.Context) error {
	return h.list(c, "/users", "users")
}

func (h *DirectoryHandler) DeletedUsers(c echo.Context) error {
	return h.list(c, "/users/deleted", "users")
}

// Results lists results for one quiz stage.
func (h *DirectoryHandler) Results(c echo.Context) error {
	stage := c.Param("stage")
	if stage == "" {
		stage = "1"
	}
	return h.list(c, "/results/stage/"+stage, "results")
}
