// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taibuivan/taskflow/internal/platform/apperr"
	"github.com/taibuivan/taskflow/internal/platform/sec"
)

// # Session Verifier

// Verifier resolves bearer access tokens to authenticated principals.
//
// A token passes only when its signature and expiry are valid AND the token
// store still holds an active record for it. The store check is what lets
// logout and password reset revoke a token before its natural expiry.
type Verifier struct {
	tokens     *sec.TokenService
	repository TokenRepository
	users      UserRepository
	now        sec.Clock
}

// NewVerifier creates a Verifier. A nil clock defaults to the token service's.
func NewVerifier(tokens *sec.TokenService, repository TokenRepository, users UserRepository, clock sec.Clock) *Verifier {
	return &Verifier{tokens: tokens, repository: repository, users: users, now: clock}
}

// errSubjectMissing signals from the key lookup that the token's user is gone.
var errSubjectMissing = errors.New("auth: token subject not found")

/*
Verify authenticates a raw bearer token.

Flow:
 1. Empty token: [ErrMissingToken].
 2. Signature and expiry: [ErrInvalidSignature] or [ErrTokenExpired].
    The per-user signing secret is resolved here, so a token whose user no
    longer exists fails with [ErrUserNotFound].
 3. Store record (access, not blacklisted, not expired): [ErrRevokedToken].
 4. Principal bound to the resolved user.
*/
func (verifier *Verifier) Verify(context context.Context, raw string) (*sec.Principal, error) {
	if raw == "" {
		return nil, ErrMissingToken
	}

	// The user is loaded inside the key lookup because its secret is part of
	// the HMAC key. A deleted user therefore reports USER_NOT_FOUND ahead of
	// the store check, even when the token was also revoked.
	var user *User
	claims, err := verifier.tokens.Parse(raw, sec.KindAccess, func(userID string) (string, error) {
		found, err := verifier.users.FindByID(context, userID)
		if err != nil {
			if errors.Is(err, errUserMissing) {
				return "", errSubjectMissing
			}
			return "", err
		}
		user = found
		return found.TokenSecret, nil
	})
	if err != nil {
		return nil, classifyParseError(err)
	}

	if _, err := verifier.repository.FindActive(context, raw, sec.KindAccess, verifier.clock()); err != nil {
		if errors.Is(err, errTokenMissing) {
			return nil, ErrRevokedToken
		}
		return nil, apperr.Internal(fmt.Errorf("auth_verifier_store_lookup_failed: %w", err))
	}

	if user == nil || user.ID != claims.UserID {
		return nil, ErrUserNotFound
	}

	return &sec.Principal{UserID: user.ID, Email: user.Email, TokenID: claims.ID}, nil
}

func (verifier *Verifier) clock() time.Time {
	if verifier.now != nil {
		return verifier.now()
	}
	return time.Now()
}

// classifyParseError maps token service failures onto the verification taxonomy.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, errSubjectMissing):
		return ErrUserNotFound
	case errors.Is(err, sec.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, sec.ErrTokenInvalid):
		return ErrInvalidSignature.WithCause(err)
	default:
		// Store failure while resolving the user secret.
		return apperr.Internal(fmt.Errorf("auth_verifier_user_lookup_failed: %w", err))
	}
}
