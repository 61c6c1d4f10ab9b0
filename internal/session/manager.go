package session

import (
	"sync"
	"time"

	"github.com/iliyamo/quiz-event-console/internal/model"
)

// Manager tracks hydrated sessions by operator id. It is the only
// component, together with the upstream refresh path, allowed to
// change what token a session carries.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*model.Session), now: time.Now}
}

// Resolve validates the presented cookie token and returns the
// operator's session, hydrating the in-memory state from the decoded
// claims when this is the first request after a restart. The sentinel
// errors tell the caller whether to just deny (ErrNoToken) or to also
// clear the cookie (ErrMalformedToken, ErrTokenExpired).
func (m *Manager) Resolve(token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	claims, err := DecodeClaims(token)
	if err != nil {
		return nil, err
	}
	if Expired(claims, m.now()) {
		m.dropByToken(token)
		return nil, ErrTokenExpired
	}
	return m.Hydrate(token, claims), nil
}

// Hydrate stores (or refreshes) the in-memory session for the decoded
// claims. An existing authenticated session for the same operator is
// reused; a changed token overwrites the stored one.
func (m *Manager) Hydrate(token string, claims model.Claims) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[claims.UserID]
	if !ok {
		sess = &model.Session{}
		m.sessions[claims.UserID] = sess
	}
	sess.Token = token
	sess.UserID = claims.UserID
	sess.Role = claims.Role
	sess.Status = claims.Status
	sess.IsAuthenticated = true
	return sess
}

// Drop destroys the operator's in-memory session (logout or detected
// expiry). The cookie itself is cleared by the HTTP layer.
func (m *Manager) Drop(operatorID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, operatorID)
}

func (m *Manager) dropByToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		if s.Token == token {
			delete(m.sessions, id)
		}
	}
}

// Get returns the session for an operator id, or nil.
func (m *Manager) Get(operatorID string) *model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[operatorID]
}

// TokenStore binds an operator's session to the upstream client's
// token handling. Store and Clear are invoked only from the refresh
// interceptor's success and failure paths.
func (m *Manager) TokenStore(operatorID string) *TokenStore {
	return &TokenStore{mgr: m, operatorID: operatorID}
}

// TokenStore reads and mutates the token of one operator's session.
type TokenStore struct {
	mgr        *Manager
	operatorID string
}

// Token returns the session's current bearer token, or empty when the
// session is gone.
func (t *TokenStore) Token() string {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()
	if s, ok := t.mgr.sessions[t.operatorID]; ok {
		return s.Token
	}
	return ""
}

// Store replaces the session token after a successful refresh.
func (t *TokenStore) Store(token string) {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()
	if s, ok := t.mgr.sessions[t.operatorID]; ok {
		s.Token = token
	}
}

// Clear destroys the session after a terminal refresh failure.
func (t *TokenStore) Clear() {
	t.mgr.Drop(t.operatorID)
}
