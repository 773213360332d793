// Package client talks to the planner HTTP API and keeps the administrator
// session between runs.
//
// A Client loads its session from the SessionStore when it is built, saves it
// on Login and forgets it on Logout or whenever the server answers 401.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Togather-Foundation/planner/internal/domain/events"
	"github.com/Togather-Foundation/planner/internal/domain/users"
	"github.com/rs/zerolog"
)

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 64 << 10
)

type Client struct {
	baseURL *url.URL
	http    *http.Client
	store   SessionStore
	logger  zerolog.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *Session
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithSessionStore(store SessionStore) Option {
	return func(c *Client) {
		if store != nil {
			c.store = store
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client for the server at baseURL. Without WithSessionStore the
// session lives only in memory.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
		store:   NewMemorySessionStore(),
		logger:  zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	session, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if session != nil && !session.Active(c.now()) {
		c.logger.Debug().Msg("stored session expired")
		if err := c.store.Clear(); err != nil {
			return nil, err
		}
		session = nil
	}
	c.session = session
	return c, nil
}

// Session returns a copy of the current session, or nil when logged out.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	copied := *c.session
	return &copied
}

func (c *Client) LoggedIn() bool {
	return c.Session().Active(c.now())
}

func (c *Client) setSession(s *Session) error {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	if s == nil {
		return c.store.Clear()
	}
	return c.store.Save(s)
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.Token
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request. Bodies are JSON; out may be nil or an io.Writer to
// receive the raw response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any, authenticated bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authenticated {
		token := c.token()
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", c.now().Sub(start)).
		Msg("api call")

	if resp.StatusCode == http.StatusUnauthorized {
		if err := c.setSession(nil); err != nil {
			c.logger.Warn().Err(err).Msg("clear session")
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	switch dst := out.(type) {
	case nil:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case io.Writer:
		if _, err := io.Copy(dst, resp.Body); err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
}

type problemBody struct {
	Type   string         `json:"type"`
	Title  string         `json:"title"`
	Status int            `json:"status"`
	Detail string         `json:"detail"`
	Errors map[string]any `json:"errors"`
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var p problemBody
	if err := json.Unmarshal(data, &p); err != nil {
		apiErr.Detail = strings.TrimSpace(string(data))
		return apiErr
	}
	apiErr.Type = p.Type
	apiErr.Title = p.Title
	apiErr.Detail = p.Detail
	if len(p.Errors) > 0 {
		apiErr.Fields = make(map[string]string, len(p.Errors))
		for field, msg := range p.Errors {
			apiErr.Fields[field] = fmt.Sprint(msg)
		}
	}
	return apiErr
}

// Status reports whether an administrator has been registered.
func (c *Client) Status(ctx context.Context) (bool, error) {
	var out struct {
		AdminExists bool `json:"adminExists"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/status", nil, nil, &out, false); err != nil {
		return false, err
	}
	return out.AdminExists, nil
}

// Register creates the administrator account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password, confirm string) (users.UserInfo, error) {
	in := map[string]string{
		"username":         username,
		"password":         password,
		"confirm_password": confirm,
	}
	var out struct {
		User users.UserInfo `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, in, &out, false); err != nil {
		return users.UserInfo{}, err
	}
	return out.User, nil
}

// Login exchanges credentials for a token and persists the new session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	in := map[string]string{"username": username, "password": password}
	var out struct {
		AccessToken string         `json:"access_token"`
		ExpiresAt   time.Time      `json:"expires_at"`
		User        users.UserInfo `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, in, &out, false); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, errors.New("login response carried no token")
	}

	session := &Session{Token: out.AccessToken, ExpiresAt: out.ExpiresAt, User: out.User}
	if err := c.setSession(session); err != nil {
		return nil, err
	}
	return c.Session(), nil
}

// Logout tells the server and then forgets the local session whatever the
// server said.
func (c *Client) Logout(ctx context.Context) error {
	callErr := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil, false)
	if err := c.setSession(nil); err != nil {
		return err
	}
	return callErr
}

// Me asks the server who the current token belongs to.
func (c *Client) Me(ctx context.Context) (users.UserInfo, error) {
	var out struct {
		User users.UserInfo `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out, true); err != nil {
		return users.UserInfo{}, err
	}
	return out.User, nil
}

func rangeQuery(start, end string) url.Values {
	q := url.Values{}
	if start != "" {
		q.Set("start", start)
	}
	if end != "" {
		q.Set("end", end)
	}
	return q
}

// ListEvents returns calendar entries between start and end (YYYY-MM-DD or
// ISO datetimes; either may be empty).
func (c *Client) ListEvents(ctx context.Context, start, end string) ([]events.CalendarEvent, error) {
	var out []events.CalendarEvent
	if err := c.do(ctx, http.MethodGet, "/api/events", rangeQuery(start, end), nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

func eventPath(id string, suffix string) string {
	return "/api/events/" + url.PathEscape(id) + suffix
}

func (c *Client) GetEvent(ctx context.Context, id string) (events.EventDetail, error) {
	var out events.EventDetail
	if err := c.do(ctx, http.MethodGet, eventPath(id, ""), nil, nil, &out, false); err != nil {
		return events.EventDetail{}, err
	}
	return out, nil
}

func (c *Client) CreateEvent(ctx context.Context, input events.EventInput) (events.CalendarEvent, error) {
	var out events.CalendarEvent
	if err := c.do(ctx, http.MethodPost, "/api/events", nil, input, &out, true); err != nil {
		return events.CalendarEvent{}, err
	}
	return out, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id string, input events.EventInput) (events.CalendarEvent, error) {
	var out events.CalendarEvent
	if err := c.do(ctx, http.MethodPut, eventPath(id, ""), nil, input, &out, true); err != nil {
		return events.CalendarEvent{}, err
	}
	return out, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, eventPath(id, ""), nil, nil, nil, true)
}

func (c *Client) AddVolunteer(ctx context.Context, id, name string) (events.CalendarEvent, error) {
	return c.changeRoster(ctx, http.MethodPost, id, name)
}

func (c *Client) RemoveVolunteer(ctx context.Context, id, name string) (events.CalendarEvent, error) {
	return c.changeRoster(ctx, http.MethodDelete, id, name)
}

func (c *Client) changeRoster(ctx context.Context, method, id, name string) (events.CalendarEvent, error) {
	var out events.CalendarEvent
	in := map[string]string{"name": name}
	if err := c.do(ctx, method, eventPath(id, "/volunteer"), nil, in, &out, false); err != nil {
		return events.CalendarEvent{}, err
	}
	return out, nil
}

// CalendarFeed copies the iCalendar feed for the range into w.
func (c *Client) CalendarFeed(ctx context.Context, start, end string, w io.Writer) error {
	return c.do(ctx, http.MethodGet, "/api/events.ics", rangeQuery(start, end), nil, w, false)
}
