// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package client is the Go client of the Taskflow API.

Every call goes through the [Gateway], which attaches the stored access token
and transparently renews it once when the server answers 401.

# Refresh Coordination

At most one refresh call is in flight per Gateway. A request that fails with
401 while a refresh is running waits for that refresh and replays itself with
the resulting token. A request is replayed at most once, and the refresh call
itself is never replayed. Every waiter receives the outcome of the same
refresh. When the server rejects the refresh credential, local credentials
are cleared and the logout hook fires; a network failure leaves them intact.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/taibuivan/taskflow/internal/client/storage"
	"github.com/taibuivan/taskflow/internal/platform/constants"
)

// RequestTimeout bounds every call, including time spent waiting on a refresh.
const RequestTimeout = 10 * time.Second

const (
	pathRefresh = "/api/auth/refresh"
	maxBody     = 1 << 20
)

// Config holds the construction parameters of a [Gateway].
type Config struct {
	// BaseURL is the server origin, e.g. "http://localhost:5000".
	BaseURL string

	// Store persists credentials. Defaults to an in-memory store.
	Store storage.Store

	// HTTPClient defaults to a client with [RequestTimeout].
	HTTPClient *http.Client

	// OnLogout runs after a rejected refresh cleared the credentials.
	OnLogout func()

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// refreshFlight is the single in-flight refresh. done is closed once token
// and err are final.
type refreshFlight struct {
	done  chan struct{}
	token string
	err   error
}

// Gateway sends authenticated requests and coordinates token renewal.
//
// # Concurrency
//
// A Gateway is safe for concurrent use.
type Gateway struct {
	baseURL  string
	http     *http.Client
	store    storage.Store
	onLogout func()
	log      *slog.Logger

	mu          sync.Mutex
	credentials storage.Credentials
	flight      *refreshFlight
}

// NewGateway creates a gateway and restores any stored credentials.
func NewGateway(context context.Context, cfg Config) (*Gateway, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: base url is required")
	}

	gateway := &Gateway{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     cfg.HTTPClient,
		store:    cfg.Store,
		onLogout: cfg.OnLogout,
		log:      cfg.Logger,
	}
	if gateway.http == nil {
		gateway.http = &http.Client{Timeout: RequestTimeout}
	}
	if gateway.store == nil {
		gateway.store = storage.NewMemory()
	}
	if gateway.log == nil {
		gateway.log = slog.Default()
	}

	stored, err := gateway.store.Load(context)
	switch {
	case err == nil:
		gateway.credentials = *stored
	case errors.Is(err, storage.ErrNotFound):
	default:
		return nil, fmt.Errorf("client: failed to load credentials: %w", err)
	}

	return gateway, nil
}

// # Credentials

// Credentials returns a snapshot of the current session state.
func (gateway *Gateway) Credentials() storage.Credentials {
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	return gateway.credentials
}

// Authenticated reports whether an access token is held.
func (gateway *Gateway) Authenticated() bool {
	return gateway.Credentials().AccessToken != ""
}

// SetSession stores a freshly issued access token and its user.
func (gateway *Gateway) SetSession(context context.Context, accessToken string, user storage.User) error {
	gateway.mu.Lock()
	gateway.credentials.AccessToken = accessToken
	gateway.credentials.User = user
	snapshot := gateway.credentials
	gateway.mu.Unlock()

	return gateway.store.Save(context, &snapshot)
}

// ClearSession forgets every credential locally.
func (gateway *Gateway) ClearSession(context context.Context) error {
	gateway.mu.Lock()
	gateway.credentials = storage.Credentials{}
	gateway.mu.Unlock()

	return gateway.store.Clear(context)
}

// # Requests

// call describes one request. The body is encoded once so replays resend it.
type call struct {
	method string
	path   string
	body   []byte

	// bearer attaches the access token. refreshable allows one renewal on 401.
	bearer      bool
	refreshable bool
}

/*
Do sends an authenticated request and decodes a successful JSON body into out.

Parameters:
  - context: context.Context
  - method: string
  - path: string (e.g. "/api/todos")
  - body: any (JSON-encoded when non-nil)
  - out: any (Optional decode target)

Returns:
  - error: *APIError for non-2xx responses, or transport failures
*/
func (gateway *Gateway) Do(context context.Context, method, path string, body, out any) error {
	return gateway.send(context, call{method: method, path: path, bearer: true, refreshable: path != pathRefresh}, body, out)
}

// DoPublic sends a request without a bearer token and never refreshes.
func (gateway *Gateway) DoPublic(context context.Context, method, path string, body, out any) error {
	return gateway.send(context, call{method: method, path: path}, body, out)
}

// doOnce sends the bearer token but never refreshes.
func (gateway *Gateway) doOnce(context context.Context, method, path string, body, out any) error {
	return gateway.send(context, call{method: method, path: path, bearer: true}, body, out)
}

func (gateway *Gateway) send(ctx context.Context, request call, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: failed to encode request: %w", err)
		}
		request.body = encoded
	}

	token := gateway.Credentials().AccessToken
	status, payload, err := gateway.roundTrip(ctx, request, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && request.refreshable {
		fresh, err := gateway.refresh(ctx, token)
		if err != nil {
			return err
		}

		// Replayed once. A second 401 is returned as is.
		status, payload, err = gateway.roundTrip(ctx, request, fresh)
		if err != nil {
			return err
		}
	}

	return decode(status, payload, out)
}

// roundTrip performs one HTTP exchange and captures the refresh cookie.
func (gateway *Gateway) roundTrip(ctx context.Context, request call, token string) (int, []byte, error) {
	var reader io.Reader
	if request.body != nil {
		reader = bytes.NewReader(request.body)
	}

	httpRequest, err := http.NewRequestWithContext(ctx, request.method, gateway.baseURL+request.path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("client: failed to build request: %w", err)
	}
	if request.body != nil {
		httpRequest.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}
	if request.bearer && token != "" {
		httpRequest.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	if cookie := gateway.Credentials().RefreshCookie; cookie != "" {
		httpRequest.AddCookie(&http.Cookie{Name: constants.RefreshTokenCookieName, Value: cookie})
	}

	response, err := gateway.http.Do(httpRequest)
	if err != nil {
		return 0, nil, fmt.Errorf("client: %s %s failed: %w", request.method, request.path, err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxBody))
	if err != nil {
		return 0, nil, fmt.Errorf("client: failed to read response: %w", err)
	}

	gateway.captureCookie(ctx, response)
	return response.StatusCode, payload, nil
}

func (gateway *Gateway) captureCookie(ctx context.Context, response *http.Response) {
	for _, cookie := range response.Cookies() {
		if cookie.Name != constants.RefreshTokenCookieName {
			continue
		}

		gateway.mu.Lock()
		if cookie.MaxAge < 0 || cookie.Value == "" {
			gateway.credentials.RefreshCookie = ""
		} else {
			gateway.credentials.RefreshCookie = cookie.Value
		}
		snapshot := gateway.credentials
		gateway.mu.Unlock()

		if err := gateway.store.Save(ctx, &snapshot); err != nil {
			gateway.log.Warn("client_credentials_save_failed", slog.String("error", err.Error()))
		}
	}
}

// # Refresh

/*
refresh returns an access token newer than stale.

When another caller already replaced stale, its token is returned without a
network call. When a refresh is running, the caller waits for it. Otherwise
the caller starts the refresh and every later 401 joins it.

The exchange itself runs detached from the starting caller, so that caller's
deadline or cancellation only ends its own wait.
*/
func (gateway *Gateway) refresh(ctx context.Context, stale string) (string, error) {
	gateway.mu.Lock()
	if flight := gateway.flight; flight != nil {
		gateway.mu.Unlock()
		return flight.wait(ctx)
	}
	current := gateway.credentials.AccessToken
	switch {
	case current != "" && current != stale:
		gateway.mu.Unlock()
		return current, nil
	case current == "" && stale != "":
		// Cleared by a failed refresh or a logout since the request was sent.
		gateway.mu.Unlock()
		return "", ErrSessionExpired
	}

	flight := &refreshFlight{done: make(chan struct{})}
	gateway.flight = flight
	gateway.mu.Unlock()

	go gateway.fly(context.WithoutCancel(ctx), flight)
	return flight.wait(ctx)
}

// fly runs the exchange for flight and releases the in-flight slot.
func (gateway *Gateway) fly(ctx context.Context, flight *refreshFlight) {
	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	defer func() {
		gateway.mu.Lock()
		gateway.flight = nil
		gateway.mu.Unlock()
		close(flight.done)
	}()

	flight.token, flight.err = gateway.exchange(ctx)
	if rejected(flight.err) {
		gateway.expire(ctx, flight.err)
	}
}

// rejected reports whether err means the server refused the refresh
// credential. Transport failures and timeouts keep the session.
func rejected(err error) bool {
	return errors.Is(err, ErrSessionExpired) || IsStatus(err, http.StatusUnauthorized)
}

func (flight *refreshFlight) wait(ctx context.Context) (string, error) {
	select {
	case <-flight.done:
		return flight.token, flight.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// exchange trades the refresh cookie for a new access token.
func (gateway *Gateway) exchange(ctx context.Context) (string, error) {
	if gateway.Credentials().RefreshCookie == "" {
		return "", ErrSessionExpired
	}

	status, payload, err := gateway.roundTrip(ctx, call{method: http.MethodPost, path: pathRefresh}, "")
	if err != nil {
		return "", err
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := decode(status, payload, &result); err != nil {
		return "", err
	}
	if result.Token == "" {
		return "", errors.New("client: refresh response carried no token")
	}

	gateway.mu.Lock()
	gateway.credentials.AccessToken = result.Token
	snapshot := gateway.credentials
	gateway.mu.Unlock()

	if err := gateway.store.Save(ctx, &snapshot); err != nil {
		gateway.log.Warn("client_credentials_save_failed", slog.String("error", err.Error()))
	}
	return result.Token, nil
}

// expire clears local state after a rejected refresh and fires the logout hook.
func (gateway *Gateway) expire(ctx context.Context, cause error) {
	gateway.log.Info("client_session_expired", slog.String("error", cause.Error()))

	if err := gateway.ClearSession(ctx); err != nil {
		gateway.log.Warn("client_credentials_clear_failed", slog.String("error", err.Error()))
	}
	if gateway.onLogout != nil {
		gateway.onLogout()
	}
}

// decode maps non-2xx statuses to *APIError and unmarshals the rest.
func decode(status int, payload []byte, out any) error {
	if status < 200 || status >= 300 {
		return newAPIError(status, payload)
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("client: failed to decode response: %w", err)
	}
	return nil
}
