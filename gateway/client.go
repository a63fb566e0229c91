package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jrsteele09/gym-dashboard/authapi"
	"github.com/jrsteele09/gym-dashboard/internal/errors"
	"github.com/jrsteele09/gym-dashboard/internal/obs"
	"github.com/jrsteele09/gym-dashboard/notice"
	"github.com/rs/zerolog/log"
)

// Refresher renews the access token. It reports whether a new token is now current.
type Refresher interface {
	Refresh(ctx context.Context) bool
}

// TokenSource returns the current access token, or "" when logged out, and the
// generation of the session it belongs to.
type TokenSource interface {
	AccessToken() string
	Generation() uint64
}

// ExpireFunc ends the session of generation gen. It does nothing and reports false
// when that session has already been replaced.
type ExpireFunc func(ctx context.Context, gen uint64) bool

// RequestOptions describes an authenticated call. Body is kept as bytes so the
// request can be re-issued after a refresh.
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    []byte
}

// Response is a successful (2xx) backend response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return errors.Wrapf(errors.ErrMalformedResponse, "empty body")
	}
	return json.Unmarshal(r.Body, v)
}

// Client performs authenticated backend calls. A 401 on a call that carried a token
// triggers exactly one refresh and one retry; if either fails the session is ended.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	refresher  Refresher
	expire     ExpireFunc
	notifier   notice.Notifier
	inFlight   atomic.Int32
}

func NewClient(baseURL string, httpClient *http.Client, tokens TokenSource, refresher Refresher, expire ExpireFunc, notifier notice.Notifier) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		tokens:     tokens,
		refresher:  refresher,
		expire:     expire,
		notifier:   notifier,
	}
}

// Loading reports whether any call is in progress.
func (c *Client) Loading() bool {
	return c.inFlight.Load() > 0
}

// Call issues a JSON request. It returns (nil, nil) when the session expired: the user has
// been logged out and a "Session Expired" notice raised. A 401 for a session that was
// replaced while the call ran returns errors.ErrSessionExpired and leaves the new one alone.
// Non-OK responses return an *errors.APIError carrying the backend message or the generic
// status message.
func (c *Client) Call(ctx context.Context, endpoint string, opts *RequestOptions) (*Response, error) {
	resp, err := c.send(ctx, endpoint, opts)
	if err != nil || resp == nil {
		return nil, err
	}
	if len(resp.Body) > 0 && !json.Valid(resp.Body) {
		err := errors.Wrapf(errors.ErrMalformedResponse, "%s returned invalid JSON", endpoint)
		c.notify(notice.Error(err.Error()))
		obs.BackendCalls.WithLabelValues("malformed").Inc()
		return nil, err
	}
	return resp, nil
}

// Download fetches a non-JSON resource such as a CSV report with the same token handling as Call.
func (c *Client) Download(ctx context.Context, endpoint string) (*Response, error) {
	return c.send(ctx, endpoint, &RequestOptions{Method: http.MethodGet})
}

func (c *Client) send(ctx context.Context, endpoint string, opts *RequestOptions) (*Response, error) {
	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	if opts == nil {
		opts = &RequestOptions{}
	}
	url := c.resolve(endpoint)
	requestID := uuid.NewString()

	gen := c.tokens.Generation()
	token := c.tokens.AccessToken()
	status, header, body, err := c.do(ctx, url, opts, token, requestID)
	if err != nil {
		return nil, c.networkError(err)
	}

	if status == http.StatusUnauthorized && token != "" {
		log.Debug().Str("url", url).Str("request_id", requestID).Msg("[Client.send] unauthorized, refreshing token")
		if !c.refresher.Refresh(ctx) {
			return c.expireSession(ctx, url, gen, "refresh_failed")
		}

		status, header, body, err = c.do(ctx, url, opts, c.tokens.AccessToken(), requestID)
		if err != nil {
			return nil, c.networkError(err)
		}
		if status == http.StatusUnauthorized {
			return c.expireSession(ctx, url, gen, "retry_unauthorized")
		}
	}

	if status < 200 || status > 299 {
		apiErr := &errors.APIError{Status: status, Message: errorMessage(status, body)}
		log.Warn().Str("url", url).Int("status", status).Str("request_id", requestID).Msg(apiErr.Message)
		c.notify(notice.Error(apiErr.Message))
		obs.BackendCalls.WithLabelValues("api_error").Inc()
		return nil, apiErr
	}

	obs.BackendCalls.WithLabelValues("ok").Inc()
	return &Response{Status: status, Header: header, Body: body}, nil
}

func (c *Client) do(ctx context.Context, url string, opts *RequestOptions, token, requestID string) (int, http.Header, []byte, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var reqBody io.Reader
	if opts.Body != nil {
		reqBody = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(authapi.HeaderRequestID, requestID)
	for name, value := range opts.Headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, resp.Header, body, nil
}

// expireSession ends the session after an unrecoverable 401. The call resolves to no result.
func (c *Client) expireSession(ctx context.Context, url string, gen uint64, reason string) (*Response, error) {
	if !c.expire(ctx, gen) {
		log.Debug().Str("url", url).Str("reason", reason).Msg("[Client] unauthorized for a replaced session")
		obs.BackendCalls.WithLabelValues("stale_session").Inc()
		return nil, errors.Wrapf(errors.ErrSessionExpired, "%s", url)
	}

	log.Warn().Str("reason", reason).Msg("[Client] session expired, logged out")
	c.notify(notice.SessionExpired())
	obs.BackendCalls.WithLabelValues("session_expired").Inc()
	obs.ForcedLogouts.WithLabelValues("unauthorized").Inc()
	return nil, nil
}

func (c *Client) networkError(err error) error {
	log.Err(err).Msg("[Client] backend request failed")
	c.notify(notice.Error(err.Error()))
	obs.BackendCalls.WithLabelValues("network_error").Inc()
	return fmt.Errorf("backend request failed: %w", err)
}

func (c *Client) notify(n notice.Notice) {
	if c.notifier != nil {
		c.notifier.Notify(n)
	}
}

func (c *Client) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// errorMessage prefers the backend's envelope message.
func errorMessage(status int, body []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return errors.StatusMessage(status)
}
