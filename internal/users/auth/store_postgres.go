// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/taskflow/internal/platform/dberr"
	"github.com/taibuivan/taskflow/internal/platform/postgres"
	"github.com/taibuivan/taskflow/internal/platform/sec"
)

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	db postgres.DBTX
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(db postgres.DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

/*
Create persists a new user record into the auth.users table.

Description: A unique violation on the email index is reported as
[ErrDuplicateRegistration]; nothing is written in that case.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: ErrDuplicateRegistration or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO auth.users (id, email, passwordhash, tokensecret, createdat, updatedat)
		VALUES ($1, $2, $3, $4, $5, $6)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.db.Exec(context, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.TokenSecret,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicateRegistration.WithCause(err)
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindByEmail retrieves a user record by their unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	const query = `
		SELECT id, email, passwordhash, tokensecret, createdat, updatedat
		FROM auth.users
		WHERE LOWER(email) = LOWER($1)`

	return repository.findOne(context, query, email, "postgres_user_repo_find_by_email_failed")
}

/*
FindByID retrieves a user record by their unique ID.

Parameters:
  - context: context.Context
  - id: string (UUIDv7)

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	const query = `
		SELECT id, email, passwordhash, tokensecret, createdat, updatedat
		FROM auth.users
		WHERE id = $1`

	return repository.findOne(context, query, id, "postgres_user_repo_find_by_id_failed")
}

func (repository *PostgresUserRepository) findOne(context context.Context, query, argument, action string) (*User, error) {
	user := &User{}
	err := repository.db.QueryRow(context, query, argument).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.TokenSecret,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errUserMissing
		}
		return nil, fmt.Errorf("%s: %w", action, err)
	}

	return user, nil
}

/*
UpdatePassword updates only the password hash for a specific user.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `
		UPDATE auth.users
		SET passwordhash = $2, updatedat = $3
		WHERE id = $1`

	tag, err := repository.db.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errUserMissing
	}

	return nil
}

// # Token Repository

// PostgresTokenRepository implements the TokenRepository interface.
type PostgresTokenRepository struct {
	db postgres.DBTX
}

// NewTokenRepository creates a new PostgreSQL implementation of TokenRepository.
func NewTokenRepository(db postgres.DBTX) *PostgresTokenRepository {
	return &PostgresTokenRepository{db: db}
}

/*
Create persists a new token record into the auth.tokens table.

Parameters:
  - context: context.Context
  - token: *Token

Returns:
  - error: Storage failures
*/
func (repository *PostgresTokenRepository) Create(context context.Context, token *Token) error {
	const query = `
		INSERT INTO auth.tokens (token, userid, kind, expiresat, blacklisted, family, keyid, createdat)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`

	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	_, err := repository.db.Exec(context, query,
		token.Value,
		token.UserID,
		string(token.Kind),
		token.ExpiresAt,
		token.Blacklisted,
		token.Family,
		token.KeyID,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_token_repo_create_failed: %w", err)
	}

	return nil
}

/*
FindActive retrieves a usable token record.

Description: The expiry filter makes rows past their lifetime invisible even
before the janitor has purged them.

Parameters:
  - context: context.Context
  - value: string
  - kind: sec.TokenKind
  - now: time.Time

Returns:
  - *Token: Hydrated record
  - error: apperr.NotFound or execution errors
*/
func (repository *PostgresTokenRepository) FindActive(context context.Context, value string, kind sec.TokenKind, now time.Time) (*Token, error) {
	const query = `
		SELECT token, userid, kind, expiresat, blacklisted, COALESCE(family, ''), keyid, createdat
		FROM auth.tokens
		WHERE token = $1 AND kind = $2 AND blacklisted = FALSE AND expiresat > $3`

	var kindValue string
	token := &Token{}
	err := repository.db.QueryRow(context, query, value, string(kind), now).Scan(
		&token.Value,
		&token.UserID,
		&kindValue,
		&token.ExpiresAt,
		&token.Blacklisted,
		&token.Family,
		&token.KeyID,
		&token.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errTokenMissing
		}
		return nil, fmt.Errorf("postgres_token_repo_find_active_failed: %w", err)
	}

	token.Kind = sec.TokenKind(kindValue)
	return token, nil
}

/*
Blacklist marks a specific token as permanently invalid.

Parameters:
  - context: context.Context
  - value: string

Returns:
  - error: Revocation failures
*/
func (repository *PostgresTokenRepository) Blacklist(context context.Context, value string) error {
	const query = "UPDATE auth.tokens SET blacklisted = TRUE WHERE token = $1"
	_, err := repository.db.Exec(context, query, value)
	if err != nil {
		return fmt.Errorf("postgres_token_repo_blacklist_failed: %w", err)
	}
	return nil
}

/*
BlacklistUser marks every token of a user as permanently invalid.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Batch revocation failures
*/
func (repository *PostgresTokenRepository) BlacklistUser(context context.Context, userID string) error {
	const query = "UPDATE auth.tokens SET blacklisted = TRUE WHERE userid = $1 AND blacklisted = FALSE"
	_, err := repository.db.Exec(context, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_token_repo_blacklist_user_failed: %w", err)
	}
	return nil
}

/*
DeleteExpired permanently removes all tokens that have passed their expiration.

Parameters:
  - context: context.Context
  - now: time.Time

Returns:
  - int64: Purged rows
  - error: Cleanup failures
*/
func (repository *PostgresTokenRepository) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	const query = "DELETE FROM auth.tokens WHERE expiresat <= $1"
	tag, err := repository.db.Exec(context, query, now)
	if err != nil {
		return 0, fmt.Errorf("postgres_token_repo_delete_expired_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// # Transactions

// PostgresTransactor binds the user and token repositories to one pgx transaction.
type PostgresTransactor struct {
	db postgres.TxBeginner
}

// NewTransactor creates a [Transactor] over the given pool.
func NewTransactor(db postgres.TxBeginner) *PostgresTransactor {
	return &PostgresTransactor{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise.
func (transactor *PostgresTransactor) WithinTx(context context.Context, fn func(users UserRepository, tokens TokenRepository) error) error {
	return postgres.WithTx(context, transactor.db, func(tx postgres.DBTX) error {
		return fn(NewUserRepository(tx), NewTokenRepository(tx))
	})
}
