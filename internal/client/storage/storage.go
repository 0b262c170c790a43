// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package storage persists the command-line client's credentials between runs.

Two implementations exist: [Memory] for tests and one-shot sessions, and the
bbolt file store in the boltdb sub-package.
*/
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no credentials are stored.
var ErrNotFound = errors.New("storage: no stored credentials")

// User identifies the account a session belongs to.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Credentials is the client-side session state.
type Credentials struct {
	// AccessToken is sent as the bearer token on every request.
	AccessToken string `json:"accessToken"`

	// RefreshCookie is the raw value of the server's refresh cookie.
	RefreshCookie string `json:"refreshCookie"`

	User User `json:"user"`
}

// Store persists a single set of credentials.
type Store interface {

	// Load returns the stored credentials or ErrNotFound.
	Load(context context.Context) (*Credentials, error)

	// Save replaces the stored credentials.
	Save(context context.Context, credentials *Credentials) error

	// Clear removes the stored credentials. Clearing an empty store is not an error.
	Clear(context context.Context) error
}
