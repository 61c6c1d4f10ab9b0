package upstream

import "sync"

// RefreshCoordinator serializes session refresh attempts for one
// client: at most one refresh request is ever in flight, and requests
// that hit an authorization failure while it runs park themselves on
// the coordinator until it settles. It replaces the module-level
// refreshing flag and callback queue of the original interceptor with
// an explicit state object so the single-flight behavior can be
// exercised per test instance.
type RefreshCoordinator struct {
	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

func NewRefreshCoordinator() *RefreshCoordinator {
	return &RefreshCoordinator{}
}

// Begin claims the refresh slot. The first caller becomes the leader
// (wait is nil) and must call Finish exactly once; every later caller
// gets a channel that receives the leader's outcome.
func (rc *RefreshCoordinator) Begin() (leader bool, wait <-chan error) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.refreshing {
		ch := make(chan error, 1)
		rc.waiters = append(rc.waiters, ch)
		return false, ch
	}
	rc.refreshing = true
	return true, nil
}

// Finish releases the slot unconditionally and drains the wait-list,
// handing every parked request the refresh outcome. Waiters replay
// only on a nil error; a refresh failure rejects them rather than
// leaving them parked forever.
func (rc *RefreshCoordinator) Finish(err error) {
	rc.mu.Lock()
	waiters := rc.waiters
	rc.waiters = nil
	rc.refreshing = false
	rc.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}
}
