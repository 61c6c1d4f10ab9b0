package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/quiz-event-console/internal/config"
)

// cachedResponse is the envelope stored in Redis: status plus the JSON
// body exactly as the handler produced it.
type cachedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// bodyCapture tees the response body into a buffer while forwarding it
// to the client, up to the configured limit.
type bodyCapture struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	limit  int
}

func (w *bodyCapture) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *bodyCapture) Write(b []byte) (int, error) {
	if w.buf.Len() < w.limit {
		remain := w.limit - w.buf.Len()
		if len(b) <= remain {
			w.buf.Write(b)
		} else {
			w.buf.Write(b[:remain])
		}
	}
	return w.ResponseWriter.Write(b)
}

// NewResponseCache caches successful GET responses in Redis. Meant for
// the menu and dashboard endpoints, whose counts fan out several
// upstream calls per render. The cache key includes the operator's
// role because the menu differs per role; it deliberately excludes the
// operator id so all admins share one entry.
func NewResponseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method != http.MethodGet {
				return next(c)
			}

			role := ""
			if sess := CurrentSession(c); sess != nil {
				role = sess.Role
			}
			key := cacheKey(cfg.Prefix, role, c)
			ctx := c.Request().Context()

			if raw, err := rdb.Get(ctx, key).Bytes(); err == nil {
				var cached cachedResponse
				if json.Unmarshal(raw, &cached) == nil && cached.Status != 0 {
					c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
					c.Response().Header().Set("X-Cache", "HIT")
					return c.JSONBlob(cached.Status, cached.Body)
				}
			}

			capture := &bodyCapture{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: cfg.MaxBodyBytes}
			c.Response().Writer = capture
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if capture.status == http.StatusOK && capture.buf.Len() < cfg.MaxBodyBytes {
				if raw, err := json.Marshal(cachedResponse{Status: capture.status, Body: capture.buf.Bytes()}); err == nil {
					// Detached context: the client may disconnect before the write lands.
					_ = rdb.SetEx(context.Background(), key, raw, cfg.TTL).Err()
				}
			}
			return nil
		}
	}
}

func cacheKey(prefix, role string, c echo.Context) string {
	tail := strings.Join([]string{"role", role, "route", c.Path(), "q", c.Request().URL.RawQuery}, ":")
	return fmt.Sprintf("%s:%x", prefix, sha1.Sum([]byte(tail)))
}
