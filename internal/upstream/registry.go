package upstream

import "sync"

// Registry hands out one client per operator session so refresh
// coordination stays scoped to the session whose token expired.
type Registry struct {
	mu      sync.Mutex
	cfg     Config
	clients map[string]*Client
}

func NewRegistry(cfg Config) *Registry {
	return &Registry{cfg: cfg, clients: make(map[string]*Client)}
}

// For returns the operator's client, building it lazily around the
// given token store.
func (r *Registry) For(operatorID string, tokens TokenStore) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	cl, ok := r.clients[operatorID]
	if !ok {
		cl = NewClient(r.cfg, tokens)
		r.clients[operatorID] = cl
	}
	return cl
}

// Drop forgets the operator's client, typically on logout.
func (r *Registry) Drop(operatorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, operatorID)
}

// Anonymous returns a client with no session attached, used for the
// login call itself.
func (r *Registry) Anonymous() *Client {
	return NewClient(r.cfg, nopTokens{})
}

type nopTokens struct{}

func (nopTokens) Token() string { return "" }
func (nopTokens) Store(string)  {}
func (nopTokens) Clear()        {}
