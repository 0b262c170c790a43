// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/taskflow/internal/platform/sec"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given normalized email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: ErrDuplicateRegistration when the email is taken, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error
}

// # Token Data Access

// TokenRepository defines the data access contract for issued tokens.
type TokenRepository interface {

	/*
		Create persists a newly issued token record.

		Parameters:
		  - context: context.Context
		  - token: *Token

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, token *Token) error

	/*
		FindActive returns the record for value when it has the given kind,
		is not blacklisted and expires after now.

		Parameters:
		  - context: context.Context
		  - value: string (signed token)
		  - kind: sec.TokenKind
		  - now: time.Time

		Returns:
		  - *Token: Hydrated record
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindActive(context context.Context, value string, kind sec.TokenKind, now time.Time) (*Token, error)

	/*
		Blacklist permanently invalidates a single token.

		Parameters:
		  - context: context.Context
		  - value: string

		Returns:
		  - error: Persistence failures
	*/
	Blacklist(context context.Context, value string) error

	/*
		BlacklistUser invalidates every token issued to userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	BlacklistUser(context context.Context, userID string) error

	/*
		DeleteExpired physically removes records whose expiry is not after now.

		Parameters:
		  - context: context.Context
		  - now: time.Time

		Returns:
		  - int64: Number of purged rows
		  - error: Cleanup failures
	*/
	DeleteExpired(context context.Context, now time.Time) (int64, error)
}

// # Volatile Data Access

// ResetTokenRepository defines the contract for storing volatile password reset tokens.
//
// Implementations only ever see the SHA-256 hash of a reset token.
type ResetTokenRepository interface {

	/*
		Set stores a reset token hash associated with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - tokenHash: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, tokenHash string, userID string, ttl time.Duration) error

	/*
		Take atomically returns the userID stored under tokenHash and removes
		the entry, so a reset token can be redeemed at most once.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - string: UserID
		  - error: A 404 AppError when the entry is absent or expired
	*/
	Take(context context.Context, tokenHash string) (string, error)
}

// # Transactions

// Transactor runs fn against repositories bound to one storage transaction.
// An error returned by fn discards every write made through them.
type Transactor interface {
	WithinTx(context context.Context, fn func(users UserRepository, tokens TokenRepository) error) error
}

// # Collaborators

// CategorySeeder creates the starter categories of a new account.
type CategorySeeder interface {
	SeedDefaults(context context.Context, userID string) error
}
