package session

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/quiz-event-console/internal/model"
)

var now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func operatorToken(t *testing.T, exp time.Time) string {
	return signToken(t, jwt.MapClaims{
		"userId": "op-1",
		"role":   model.RoleAdmin,
		"status": model.AccountVerified,
		"exp":    exp.Unix(),
	})
}

func testManager() *Manager {
	m := NewManager()
	m.now = func() time.Time { return now }
	return m
}

func TestDecodeClaims(t *testing.T) {
	t.Parallel()

	tok := operatorToken(t, now.Add(time.Hour))
	claims, err := DecodeClaims(tok)
	if err != nil {
		t.Fatalf("DecodeClaims: %v", err)
	}
	if claims.UserID != "op-1" || claims.Role != model.RoleAdmin || claims.Status != model.AccountVerified {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Exp != now.Add(time.Hour).Unix() {
		t.Fatalf("exp = %d", claims.Exp)
	}
}

func TestDecodeClaimsMalformed(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"garbage":        "not.a.token",
		"missing userId": signToken(t, jwt.MapClaims{"exp": now.Unix()}),
		"missing exp":    signToken(t, jwt.MapClaims{"userId": "op-1"}),
	}
	for name, tok := range cases {
		if _, err := DecodeClaims(tok); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("%s: err = %v, want ErrMalformedToken", name, err)
		}
	}
}

func TestExpired(t *testing.T) {
	t.Parallel()

	c := model.Claims{UserID: "op-1", Exp: now.Unix()}
	if Expired(c, now.Add(-time.Second)) {
		t.Error("token expiring now must still pass a second earlier")
	}
	if !Expired(c, now.Add(time.Second)) {
		t.Error("token must be expired a second after exp")
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	t.Run("no token", func(t *testing.T) {
		t.Parallel()
		if _, err := testManager().Resolve(""); !errors.Is(err, ErrNoToken) {
			t.Fatalf("err = %v, want ErrNoToken", err)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		if _, err := testManager().Resolve("zzz"); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("err = %v, want ErrMalformedToken", err)
		}
	})

	t.Run("expired drops session", func(t *testing.T) {
		t.Parallel()
		m := testManager()
		tok := operatorToken(t, now.Add(-time.Second))

		// Hydrate first so expiry detection has something to clean up.
		claims := model.Claims{UserID: "op-1", Role: model.RoleAdmin, Exp: now.Add(-time.Second).Unix()}
		m.Hydrate(tok, claims)

		if _, err := m.Resolve(tok); !errors.Is(err, ErrTokenExpired) {
			t.Fatalf("err = %v, want ErrTokenExpired", err)
		}
		if m.Get("op-1") != nil {
			t.Fatal("expired session must be dropped")
		}
	})

	t.Run("valid hydrates", func(t *testing.T) {
		t.Parallel()
		m := testManager()
		tok := operatorToken(t, now.Add(time.Hour))

		sess, err := m.Resolve(tok)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if sess.UserID != "op-1" || sess.Role != model.RoleAdmin || !sess.IsAuthenticated {
			t.Fatalf("session = %+v", sess)
		}
		if m.Get("op-1") != sess {
			t.Fatal("session must be registered under its operator id")
		}
	})
}

func TestTokenStore(t *testing.T) {
	t.Parallel()

	m := testManager()
	tok := operatorToken(t, now.Add(time.Hour))
	claims, _ := DecodeClaims(tok)
	m.Hydrate(tok, claims)

	store := m.TokenStore("op-1")
	if store.Token() != tok {
		t.Fatalf("Token() = %q", store.Token())
	}

	store.Store("rotated")
	if got := m.Get("op-1").Token; got != "rotated" {
		t.Fatalf("session token = %q after Store, want rotated", got)
	}

	store.Clear()
	if m.Get("op-1") != nil {
		t.Fatal("Clear must destroy the session")
	}
	if store.Token() != "" {
		t.Fatal("Token() after Clear must be empty")
	}
}
