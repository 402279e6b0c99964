// Package api talks to the task backend. Authenticated calls get their bearer
// token from an oauth2.TokenSource at request time, so the client never holds
// a copy of the token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/jask/taskpad/internal/logging"
)

// Client is a thin wrapper over the task REST API.
type Client struct {
	baseURL string
	anon    *http.Client
	authed  *http.Client
	log     *slog.Logger
}

type options struct {
	base    http.RoundTripper
	timeout time.Duration
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithTransport sets the underlying transport. Defaults to http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// WithTimeout bounds each request. Defaults to 10s.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New returns a client for baseURL. tokens supplies the bearer token for
// task calls; login and register never send one.
func New(baseURL string, tokens oauth2.TokenSource, opts ...Option) *Client {
	o := options{base: http.DefaultTransport, timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}
	log := logging.Component(o.log, "api")
	logged := &requestLogger{base: o.base, log: log}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anon:    &http.Client{Transport: logged, Timeout: o.timeout},
		authed: &http.Client{
			Transport: &oauth2.Transport{Source: tokens, Base: logged},
			Timeout:   o.timeout,
		},
		log: log,
	}
}

// TokenResponse is the body of a successful /login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for an access token. Rejected credentials
// return an error wrapping ErrAuthRejected.
func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return TokenResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	var out TokenResponse
	if err := c.do(c.anon, req, &out); err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			switch httpErr.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusUnprocessableEntity:
				return TokenResponse{}, fmt.Errorf("%w: %w", ErrAuthRejected, err)
			}
		}
		return TokenResponse{}, err
	}
	if out.AccessToken == "" {
		return TokenResponse{}, errors.New("api: login response has no access_token")
	}
	return out, nil
}

// Register creates an account. The user still has to log in afterwards.
func (c *Client) Register(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	req, err := c.jsonRequest(ctx, http.MethodPost, "/register", body)
	if err != nil {
		return err
	}
	return c.do(c.anon, req, nil)
}

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	req, err := c.jsonRequest(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, err
	}
	var out []Task
	if err := c.do(c.authed, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) (Task, error) {
	req, err := c.jsonRequest(ctx, http.MethodPost, "/tasks", in)
	if err != nil {
		return Task{}, err
	}
	var out Task
	if err := c.do(c.authed, req, &out); err != nil {
		return Task{}, err
	}
	return out, nil
}

func (c *Client) UpdateTask(ctx context.Context, id ID, in TaskInput) (Task, error) {
	req, err := c.jsonRequest(ctx, http.MethodPut, "/tasks/"+url.PathEscape(string(id)), in)
	if err != nil {
		return Task{}, err
	}
	var out Task
	if err := c.do(c.authed, req, &out); err != nil {
		return Task{}, err
	}
	return out, nil
}

func (c *Client) DeleteTask(ctx context.Context, id ID) error {
	req, err := c.jsonRequest(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(string(id)), nil)
	if err != nil {
		return err
	}
	return c.do(c.authed, req, nil)
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do sends req and decodes a 2xx JSON body into out when out is non-nil.
func (c *Client) do(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := readHTTPError(resp)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			if hc == c.authed {
				return fmt.Errorf("%w: %w", ErrUnauthorized, httpErr)
			}
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrNotFound, httpErr)
		}
		return httpErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// requestLogger tags each request with an X-Request-ID and logs its outcome.
// Headers and bodies are never logged.
type requestLogger struct {
	base http.RoundTripper
	log  *slog.Logger
}

func (t *requestLogger) RoundTrip(req *http.Request) (*http.Response, error) {
	id := uuid.NewString()
	r := req.Clone(req.Context())
	r.Header.Set("X-Request-ID", id)

	start := time.Now()
	resp, err := t.base.RoundTrip(r)
	attrs := []any{
		slog.String("request_id", id),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Duration("took", time.Since(start)),
	}
	if err != nil {
		t.log.Warn("request failed", append(attrs, slog.Any("err", err))...)
		return nil, err
	}
	t.log.Debug("request done", append(attrs, slog.Int("status", resp.StatusCode))...)
	return resp, nil
}
