package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	mw "github.com/iliyamo/quiz-event-console/internal/middleware"
	"github.com/iliyamo/quiz-event-console/internal/model"
	"github.com/iliyamo/quiz-event-console/internal/session"
	"github.com/iliyamo/quiz-event-console/internal/upstream"
)

// ParticipantHandler proxies the participant views and the verify and
// status-change actions to the backend through the operator's client,
// so every call gets the refresh interceptor for free.
type ParticipantHandler struct {
	Upstream *upstream.Registry
	Sessions *session.Manager
}

func NewParticipantHandler(u *upstream.Registry, s *session.Manager) *ParticipantHandler {
	return &ParticipantHandler{Upstream: u, Sessions: s}
}

func (h *ParticipantHandler) client(c echo.Context) (*upstream.Client, context.Context, context.CancelFunc) {
	sess := mw.CurrentSession(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	return h.Upstream.For(sess.UserID, h.Sessions.TokenStore(sess.UserID)), ctx, cancel
}

// proxyErr maps an upstream failure onto the console response. A 401
// here means the refresh already failed, so the session is gone and the
// browser must go back to the login page.
func proxyErr(c echo.Context, err error) error {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized {
			mw.ClearTokenCookie(c)
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error":    "authentication required",
				"redirect": "/login",
			})
		}
		return c.JSON(apiErr.Status, echo.Map{"error": apiErr.Message})
	}
	return c.JSON(http.StatusBadGateway, echo.Map{"error": "backend unavailable"})
}

// ListByStatus returns a list handler bound to one status filter; the
// empty status lists everyone.
func (h *ParticipantHandler) ListByStatus(status string) echo.HandlerFunc {
	return func(c echo.Context) error {
		client, ctx, cancel := h.client(c)
		defer cancel()

		rows, total, err := client.ListParticipants(ctx, status)
		if err != nil {
			return proxyErr(c, err)
		}
		if rows == nil {
			rows = []model.Participant{}
		}
		return c.JSON(http.StatusOK, echo.Map{"participants": rows, "total": total})
	}
}

// Verify marks one pending participant verified.
func (h *ParticipantHandler) Verify(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "participant id required"})
	}
	client, ctx, cancel := h.client(c)
	defer cancel()

	if err := client.VerifyParticipant(ctx, id); err != nil {
		return proxyErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": id})
}

type bulkVerifyReq struct {
	ParticipantIDs []string `json:"participantIds"`
}

// BulkVerify verifies a set of participants in one backend call.
func (h *ParticipantHandler) BulkVerify(c echo.Context) error {
	var req bulkVerifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.ParticipantIDs) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "0 records selected!"})
	}
	client, ctx, cancel := h.client(c)
	defer cancel()

	if err := client.BulkVerifyParticipants(ctx, req.ParticipantIDs); err != nil {
		return proxyErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"verified": len(req.ParticipantIDs)})
}

type bulkUpdateReq struct {
	Participants []upstream.StatusUpdate `json:"participants"`
}

// BulkUpdate applies status changes to many participants at once.
func (h *ParticipantHandler) BulkUpdate(c echo.Context) error {
	var req bulkUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if len(req.Participants) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "0 records selected!"})
	}
	for _, u := range req.Participants {
		switch u.Status {
		case model.StatusPending, model.StatusVerified, model.StatusInactive:
		default:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status: " + u.Status})
		}
	}
	client, ctx, cancel := h.client(c)
	defer cancel()

	if err := client.BulkUpdateParticipants(ctx, req.Participants); err != nil {
		return proxyErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"updated": len(req.Participants)})
}
