package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/quiz-event-console/internal/access"
	mw "github.com/iliyamo/quiz-event-console/internal/middleware"
	"github.com/iliyamo/quiz-event-console/internal/model"
	"github.com/iliyamo/quiz-event-console/internal/session"
	"github.com/iliyamo/quiz-event-console/internal/upstream"
)

// MenuHandler renders the sidebar: the role-filtered item list plus the
// badge counts next to the participant and directory entries.
type MenuHandler struct {
	Upstream *upstream.Registry
	Sessions *session.Manager
	Log      zerolog.Logger
}

func NewMenuHandler(u *upstream.Registry, s *session.Manager, log zerolog.Logger) *MenuHandler {
	return &MenuHandler{Upstream: u, Sessions: s, Log: log}
}

// Menu returns the items the operator's role may open, with counts.
// Counts are decoration: any backend failure leaves that count at zero
// rather than failing the whole menu.
func (h *MenuHandler) Menu(c echo.Context) error {
	sess := mw.CurrentSession(c)
	items := access.MenuFor(sess.Role)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 8*time.Second)
	defer cancel()
	client := h.Upstream.For(sess.UserID, h.Sessions.TokenStore(sess.UserID))

	counts := echo.Map{}
	if access.CanAccess(sess.Role, access.AdminModerator) {
		for _, status := range []string{"", model.StatusPending, model.StatusVerified, model.StatusInactive} {
			key := status
			if key == "" {
				key = "all"
			}
			counts["participants_"+key] = h.count(ctx, client, "/participants", status)
		}
	}
	if access.CanAccess(sess.Role, access.AdminOnly) {
		counts["schools"] = h.countRaw(ctx, client, "/schools")
		counts["users"] = h.countRaw(ctx, client, "/users")
		counts["deleted_users"] = h.countRaw(ctx, client, "/users/deleted")
	}

	return c.JSON(http.StatusOK, echo.Map{"items": items, "counts": counts})
}

func (h *MenuHandler) count(ctx context.Context, client *upstream.Client, base, status string) int {
	_, total, err := client.ListParticipants(ctx, status)
	if err != nil {
		h.Log.Debug().Err(err).Str("path", base).Str("status", status).Msg("menu count unavailable")
		return 0
	}
	return total
}

func (h *MenuHandler) countRaw(ctx context.Context, client *upstream.Client, path string) int {
	_, total, err := client.ListRaw(ctx, path)
	if err != nil {
		h.Log.Debug().Err(err).Str("path", path).Msg("menu count unavailable")
		return 0
	}
	return total
}
