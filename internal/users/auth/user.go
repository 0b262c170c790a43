// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, Token) and the session core built
on them: the credential issuer, the session verifier, the refresh protocol and
the password recovery flow.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity.
*/
package auth

import (
	"time"

	"github.com/taibuivan/taskflow/internal/platform/sec"
)

// # Domain Entities

// User represents a registered account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	TokenSecret  string    `json:"-"` // Per-user signing secret. Never leaves the server.
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Public returns the client-facing projection of the user.
func (user *User) Public() PublicUser {
	return PublicUser{ID: user.ID, Email: user.Email}
}

// PublicUser is the `{id, email}` shape returned by authentication endpoints.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Token is a persisted record of an issued access or refresh token.
type Token struct {
	Value       string
	UserID      string
	Kind        sec.TokenKind
	ExpiresAt   time.Time
	Blacklisted bool

	// Family groups refresh tokens issued from one login. Empty for access tokens.
	Family string

	// KeyID is the 'kid' the token was signed under.
	KeyID string

	CreatedAt time.Time
}

// Session is the credential set handed to a client after register or login.
type Session struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
	User             *User
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldToken    = "token"
	FieldUser     = "user"
	FieldSuccess  = "success"
)
