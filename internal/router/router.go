// Package router wires every console route to its handler and guards.
// Route gating reuses the same role sets the menu is built from, so a
// visible menu item always leads to a page its role may open.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/quiz-event-console/internal/access"
	"github.com/iliyamo/quiz-event-console/internal/config"
	"github.com/iliyamo/quiz-event-console/internal/handler"
	"github.com/iliyamo/quiz-event-console/internal/middleware"
	"github.com/iliyamo/quiz-event-console/internal/session"
)

// Deps carries everything the routes need, built once in main.
type Deps struct {
	Sessions     *session.Manager
	Auth         *handler.AuthHandler
	Menu         *handler.MenuHandler
	Import       *handler.ImportHandler
	Participants *handler.ParticipantHandler
	Directory    *handler.DirectoryHandler
	Redis        *redis.Client
	RateLimit    config.RateLimitConfig
	Cache        config.CacheConfig
}

// Register mounts all console routes on e.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Login carries its own rate limiter to slow credential stuffing;
	// logout stays open so a dead session can still be torn down.
	loginLimit := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	e.POST("/login", d.Auth.Login, loginLimit)
	e.POST("/logout", d.Auth.Logout)

	auth := e.Group("", middleware.RequireSession(d.Sessions))
	auth.GET("/me", d.Auth.Me)

	cached := middleware.NewResponseCache(d.Cache, d.Redis)
	auth.GET("/menu", d.Menu.Menu, cached)
	auth.GET("/admin", d.Menu.Menu, role("/admin"), cached)

	// CSV bulk-import workflow.
	bulk := auth.Group("/admin/bulk", role("/admin/bulk"))
	bulk.POST("", d.Import.Upload)
	bulk.GET("/rows", d.Import.Rows)
	bulk.POST("/rows/:index/toggle", d.Import.ToggleRow)
	bulk.POST("/select-all", d.Import.ToggleSelectAll)
	bulk.POST("/submit", d.Import.Submit)
	bulk.DELETE("", d.Import.Discard)
	bulk.GET("/history", d.Import.History)

	// Participant views and actions, shared by admin and moderator.
	p := auth.Group("/participants", role("/participants/all"))
	p.GET("/all", d.Participants.ListByStatus(""))
	p.GET("/pending", d.Participants.ListByStatus("pending"))
	p.GET("/verified", d.Participants.ListByStatus("verified"))
	p.GET("/inactive", d.Participants.ListByStatus("inactive"))
	p.PUT("/:id/verify", d.Participants.Verify)
	p.PUT("/bulk-verify", d.Participants.BulkVerify)
	p.PUT("/bulk-update", d.Participants.BulkUpdate)

	// Admin-only directory pages.
	auth.GET("/schools", d.Directory.Schools, role("/schools"))
	auth.GET("/users", d.Directory.Users, role("/users"))
	auth.GET("/users/deleted", d.Directory.DeletedUsers, role("/users"))
	auth.GET("/results", d.Directory.Results, role("/results"))
	auth.GET("/results/:stage", d.Directory.Results, role("/results"))
}

// role builds the role guard for a menu path, keeping the router and
// the sidebar on the same allowed-role sets.
func role(menuPath string) echo.MiddlewareFunc {
	return middleware.RequireRole(access.RolesFor(menuPath)...)
}
