// Package upstream is the console's HTTP client for the quiz-event
// backend API. Every request carries the operator's bearer token, and
// an interceptor transparently recovers from a single expired-session
// condition: the first 401 triggers one refresh call, concurrent 401s
// park on the refresh coordinator, and each originating request is
// replayed at most once.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/quiz-event-console/internal/model"
)

// TokenStore supplies and persists the bearer token for one operator.
// Store and Clear are called only from the refresh interceptor's
// success and failure paths; everything else just reads.
type TokenStore interface {
	Token() string
	Store(token string)
	Clear()
}

// Config holds the client's connection settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client talks to the backend API on behalf of one operator session.
type Client struct {
	baseURL string
	hc      *http.Client
	tokens  TokenStore
	refresh *RefreshCoordinator
	log     zerolog.Logger
}

// NewClient builds a client around the given token store. Each client
// owns its refresh coordinator, so single-flight refresh is scoped to
// the session the tokens belong to.
func NewClient(cfg Config, tokens TokenStore) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
		tokens:  tokens,
		refresh: NewRefreshCoordinator(),
		log:     cfg.Logger,
	}
}

// retriedKey marks a request that has already been replayed once, so a
// second 401 on the same request can never loop.
type retriedKey struct{}

func wasRetried(req *http.Request) bool {
	return req.Context().Value(retriedKey{}) != nil
}

// exemptPath reports whether 401s from this path are real credential
// errors rather than session expiry.
func exemptPath(path string) bool {
	return strings.Contains(path, "/auth/login") || strings.Contains(path, "/auth/register")
}

func (c *Client) authorize(req *http.Request) {
	if tok := c.tokens.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// send executes the request with refresh interception.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	c.authorize(req)
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, c.report(fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err))
	}
	if resp.StatusCode != http.StatusUnauthorized || exemptPath(req.URL.Path) || wasRetried(req) {
		return resp, nil
	}
	drain(resp)

	leader, wait := c.refresh.Begin()
	if !leader {
		// Another request already triggered the refresh; park until it
		// settles and replay only on success.
		if err := <-wait; err != nil {
			return nil, c.report(err)
		}
		return c.resend(req)
	}
	if err := c.runRefresh(req.Context()); err != nil {
		return nil, c.report(err)
	}
	return c.resend(req)
}

// runRefresh performs the refresh call and releases the coordinator
// unconditionally, even if the call panics.
func (c *Client) runRefresh(ctx context.Context) (err error) {
	defer func() { c.refresh.Finish(err) }()
	return c.doRefresh(ctx)
}

func (c *Client) doRefresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", nil)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	c.authorize(req)
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		c.tokens.Clear()
		return fmt.Errorf("session refresh failed: %w", decodeAPIError(resp))
	}

	// The backend either rotates the session server-side or hands back
	// a fresh token; store it when present.
	var payload struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if json.NewDecoder(resp.Body).Decode(&payload) == nil && payload.Data.Token != "" {
		c.tokens.Store(payload.Data.Token)
	}
	return nil
}

// resend replays the originating request once, re-sent unchanged apart
// from the freshly stored token.
func (c *Client) resend(req *http.Request) (*http.Response, error) {
	clone := req.Clone(context.WithValue(req.Context(), retriedKey{}, true))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, c.report(fmt.Errorf("replay %s %s: %w", req.Method, req.URL.Path, err))
		}
		clone.Body = body
	}
	return c.send(clone)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Pagination *struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

// do runs one API call end to end: build, send through the
// interceptor, surface API errors through the report funnel and decode
// the success envelope.
func (c *Client) do(ctx context.Context, method, path string, body any, out *envelope) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.report(decodeAPIError(resp))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return c.report(fmt.Errorf("decode %s %s: %w", method, path, err))
		}
	} else {
		drainBody(resp)
	}
	return nil
}

func drainBody(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
}

// ----- operations -----

// LoginResult is the session material returned by a successful login.
type LoginResult struct {
	Token  string
	UserID string
	Role   string
	Status string
}

// Login exchanges credentials for a bearer token. 401 here means bad
// credentials and is never routed through the refresh flow.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var env envelope
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &env)
	if err != nil {
		return LoginResult{}, err
	}

	var data struct {
		Token string `json:"token"`
		User  struct {
			UserID string `json:"userId"`
			Role   string `json:"role"`
			Status string `json:"status"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return LoginResult{}, c.report(fmt.Errorf("decode login response: %w", err))
	}
	return LoginResult{
		Token:  data.Token,
		UserID: data.User.UserID,
		Role:   data.User.Role,
		Status: data.User.Status,
	}, nil
}

// BulkInsertParticipants submits staged rows as one bulk-create call.
func (c *Client) BulkInsertParticipants(ctx context.Context, rows []model.Participant) error {
	return c.do(ctx, http.MethodPost, "/participants/bulk-insert",
		map[string]any{"participants": rows}, nil)
}

// ListParticipants fetches participants, optionally filtered by status.
func (c *Client) ListParticipants(ctx context.Context, status string) ([]model.Participant, int, error) {
	path := "/participants"
	if status != "" {
		path += "/status/" + status
	}
	var env envelope
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, 0, err
	}
	var rows []model.Participant
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &rows); err != nil {
			return nil, 0, c.report(fmt.Errorf("decode participants: %w", err))
		}
	}
	total := len(rows)
	if env.Pagination != nil {
		total = env.Pagination.Total
	}
	return rows, total, nil
}

// VerifyParticipant marks a single participant verified.
func (c *Client) VerifyParticipant(ctx context.Context, participantID string) error {
	return c.do(ctx, http.MethodPut, "/participants/"+participantID+"/verify", nil, nil)
}

// BulkVerifyParticipants verifies many participants at once.
func (c *Client) BulkVerifyParticipants(ctx context.Context, participantIDs []string) error {
	return c.do(ctx, http.MethodPut, "/participants/bulk-verify",
		map[string]any{"participantIds": participantIDs}, nil)
}

// StatusUpdate pairs a participant with its new status for bulk-update.
type StatusUpdate struct {
	ParticipantID string `json:"participantId"`
	Status        string `json:"status"`
}

// BulkUpdateParticipants applies status changes to many participants.
func (c *Client) BulkUpdateParticipants(ctx context.Context, updates []StatusUpdate) error {
	return c.do(ctx, http.MethodPut, "/participants/bulk-update",
		map[string]any{"participants": updates}, nil)
}

// ListRaw fetches an arbitrary collection endpoint (schools, users,
// results stages) and returns the raw data plus the reported total.
func (c *Client) ListRaw(ctx context.Context, path string) (json.RawMessage, int, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, 0, err
	}
	total := 0
	if env.Pagination != nil {
		total = env.Pagination.Total
	}
	return env.Data, total, nil
}
