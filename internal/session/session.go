// Package session derives and validates operator identity from the
// bearer token cookie. The cookie is the single durable store; the
// in-memory session is re-hydrated from it after every restart. Tokens
// are decoded without signature verification on this side of the trust
// boundary: the console cannot hold the signing secret, and the backend
// re-validates the signature on every forwarded request, so decoded
// role and status gate UI access only.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/quiz-event-console/internal/model"
)

// CookieName is the cookie that carries the raw bearer token, scoped to
// the whole application path.
const CookieName = "token"

var (
	// ErrNoToken means no cookie was presented.
	ErrNoToken = errors.New("no token")
	// ErrMalformedToken means the token payload could not be decoded.
	ErrMalformedToken = errors.New("malformed token")
	// ErrTokenExpired means the exp claim lies in the past.
	ErrTokenExpired = errors.New("token expired")
)

// DecodeClaims extracts the claims the console consumes from a bearer
// token without verifying its signature.
func DecodeClaims(token string) (model.Claims, error) {
	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, mapClaims); err != nil {
		return model.Claims{}, ErrMalformedToken
	}

	var c model.Claims
	if v, ok := mapClaims["userId"].(string); ok {
		c.UserID = v
	}
	if v, ok := mapClaims["role"].(string); ok {
		c.Role = v
	}
	if v, ok := mapClaims["status"].(string); ok {
		c.Status = v
	}
	switch exp := mapClaims["exp"].(type) {
	case float64:
		c.Exp = int64(exp)
	case int64:
		c.Exp = exp
	}
	if c.UserID == "" || c.Exp == 0 {
		return model.Claims{}, ErrMalformedToken
	}
	return c, nil
}

// Expired reports whether the claims' expiry lies before now. The
// comparison is done in milliseconds, matching the exp-seconds vs
// wall-clock check performed on every mount of a protected boundary.
func Expired(c model.Claims, now time.Time) bool {
	return c.Exp*1000 < now.UnixMilli()
}
