// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/taskflow/internal/client/storage"
)

// ErrNotAuthenticated is returned by calls that need a stored session.
var ErrNotAuthenticated = errors.New("client: not logged in")

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  storage.User `json:"user"`
}

// Auth wraps the /api/auth endpoints.
type Auth struct {
	gateway *Gateway
	log     *slog.Logger
}

// NewAuth creates the auth API bound to gateway.
func NewAuth(gateway *Gateway) *Auth {
	return &Auth{gateway: gateway, log: gateway.log}
}

// Register creates an account and stores the new session.
func (auth *Auth) Register(context context.Context, email, password string) (*storage.User, error) {
	return auth.open(context, "/api/auth/register", email, password)
}

// Login authenticates and stores the new session.
func (auth *Auth) Login(context context.Context, email, password string) (*storage.User, error) {
	return auth.open(context, "/api/auth/login", email, password)
}

func (auth *Auth) open(context context.Context, path, email, password string) (*storage.User, error) {
	var response sessionResponse
	err := auth.gateway.DoPublic(context, http.MethodPost, path, credentialsRequest{Email: email, Password: password}, &response)
	if err != nil {
		return nil, err
	}

	if err := auth.gateway.SetSession(context, response.Token, response.User); err != nil {
		return nil, err
	}
	return &response.User, nil
}

/*
Logout revokes the session on the server and always clears it locally.

A server-side failure is logged, never returned: the client ends logged out
either way.
*/
func (auth *Auth) Logout(context context.Context) error {
	if auth.gateway.Authenticated() {
		if err := auth.gateway.doOnce(context, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
			auth.log.Warn("client_logout_failed", slog.String("error", err.Error()))
		}
	}
	return auth.gateway.ClearSession(context)
}

// Verify returns the user the stored access token belongs to, refreshing it
// when needed.
func (auth *Auth) Verify(context context.Context) (*storage.User, error) {
	if !auth.gateway.Authenticated() && auth.gateway.Credentials().RefreshCookie == "" {
		return nil, ErrNotAuthenticated
	}

	var response struct {
		User storage.User `json:"user"`
	}
	if err := auth.gateway.Do(context, http.MethodGet, "/api/auth/verify", nil, &response); err != nil {
		return nil, err
	}
	return &response.User, nil
}
