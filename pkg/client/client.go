// Package client is a Go client for the listing API. It keeps the access token
// in a Session and renews it transparently through the refresh cookie.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrSessionExpired is returned when the access token could not be renewed.
// The session has been cleared by then.
var ErrSessionExpired = errors.New("session expired")

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

type retryKey struct{}

type Client struct {
	baseURL   string
	http      *http.Client
	session   *Session
	onExpired func()
	log       zerolog.Logger

	refreshGroup singleflight.Group
}

type Option func(*Client)

// WithHTTPClient replaces the transport client. A cookie jar is installed when
// it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithSession(s *Session) Option {
	return func(c *Client) {
		c.session = s
	}
}

// OnSessionExpired registers a callback run after a failed refresh, typically
// to send the user back to login.
func OnSessionExpired(fn func()) Option {
	return func(c *Client) {
		c.onExpired = fn
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New builds a client for the API mounted at baseURL, e.g. https://host/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	if c.session == nil {
		c.session = NewSession()
	}
	return c, nil
}

func (c *Client) Session() *Session {
	return c.session
}

// Do sends req with the held access token. On a 401 it renews the token once
// and replays the request; a 401 on the replay is returned as is. Requests
// with a body must have GetBody set to be replayed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	token := c.session.Token()
	resp, err := c.send(req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isRetry(req) || !replayable(req) {
		return resp, nil
	}
	drain(resp)

	fresh, err := c.renew(req.Context(), token)
	if err != nil {
		return nil, err
	}

	retry, err := retryRequest(req)
	if err != nil {
		return nil, err
	}
	return c.send(retry, fresh)
}

func (c *Client) send(req *http.Request, token string) (*http.Response, error) {
	out := req.Clone(req.Context())
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	} else {
		out.Header.Del("Authorization")
	}
	return c.http.Do(out)
}

// renew returns a token newer than stale. Concurrent callers share one
// refresh call; a caller whose token was already replaced gets the
// replacement without another refresh.
func (c *Client) renew(ctx context.Context, stale string) (string, error) {
	if current := c.session.Token(); current != "" && current != stale {
		return current, nil
	}

	v, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		if current := c.session.Token(); current != "" && current != stale {
			return current, nil
		}

		token, err := c.refresh(context.WithoutCancel(ctx))
		if err != nil {
			c.expire(err)
			return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}
		c.session.Set(token)
		return token, nil
	})
	if err != nil {
		return "", err
	}
	c.log.Debug().Bool("shared", shared).Msg("access token renewed")
	return v.(string), nil
}

func (c *Client) refresh(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode refresh: %w", err)
	}
	if body.Token == "" {
		return "", errors.New("refresh returned no token")
	}
	return body.Token, nil
}

func (c *Client) expire(cause error) {
	c.session.Clear()
	c.log.Info().Err(cause).Msg("session expired")
	if c.onExpired != nil {
		c.onExpired()
	}
}

func isRetry(req *http.Request) bool {
	marked, _ := req.Context().Value(retryKey{}).(bool)
	return marked
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func retryRequest(req *http.Request) (*http.Request, error) {
	retry := req.Clone(context.WithValue(req.Context(), retryKey{}, true))
	if req.Body != nil && req.Body != http.NoBody {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind body: %w", err)
		}
		retry.Body = body
	}
	return retry, nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err == nil {
		apiErr.Message = body.Message
	}
	return apiErr
}
