// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/taskflow/internal/platform/sec"
	"github.com/taibuivan/taskflow/internal/users/auth"
)

// # Registration

func TestService_Register(t *testing.T) {
	h := newHarness(t)

	session := h.register(t, "  Ada@Example.COM ")

	assert.Equal(t, "ada@example.com", session.User.Email)
	assert.Len(t, session.User.TokenSecret, auth.TokenSecretLength*2)
	assert.NotEqual(t, "secret-password", session.User.PasswordHash)
	assert.Equal(t, []string{session.User.ID}, h.seeder.users)

	access := h.records.get(session.AccessToken)
	require.NotNil(t, access)
	assert.Equal(t, sec.KindAccess, access.Kind)
	assert.Empty(t, access.Family)
	assert.Equal(t, h.ring.Current().ID, access.KeyID)

	refresh := h.records.get(session.RefreshToken)
	require.NotNil(t, refresh)
	assert.Equal(t, sec.KindRefresh, refresh.Kind)
	assert.NotEmpty(t, refresh.Family)
	assert.Equal(t, h.clock.Now().Add(sec.RefreshTokenTTL), refresh.ExpiresAt)
	assert.Equal(t, refresh.ExpiresAt, session.RefreshExpiresAt)
}

/*
TestService_RegisterDuplicate rejects a second registration for the same
email and writes neither a user nor a token for it.
*/
func TestService_RegisterDuplicate(t *testing.T) {
	h := newHarness(t)
	h.register(t, "ada@example.com")

	users, tokens := h.users.count(), h.records.count()

	_, err := h.service.Register(context.Background(), "ADA@example.com", "another-password")
	assert.ErrorIs(t, err, auth.ErrDuplicateRegistration)

	assert.Equal(t, users, h.users.count())
	assert.Equal(t, tokens, h.records.count())
	assert.Len(t, h.seeder.users, 1)
}

func TestService_RegisterSeedFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	h.seeder.err = errors.New("categories unavailable")

	session, err := h.service.Register(context.Background(), "ada@example.com", "secret-password")
	require.NoError(t, err)
	assert.NotEmpty(t, session.AccessToken)
}

// # Login

func TestService_RegisterRollsBackWhenIssuanceFails(t *testing.T) {
	h := newHarness(t)
	h.records.failCreates = errStoreDown

	_, err := h.service.Register(context.Background(), "ada@example.com", "secret-password")
	require.Error(t, err)
	assert.Zero(t, h.users.count())
	assert.Zero(t, h.records.count())
	assert.Empty(t, h.seeder.users)

	// The address is free again once the store recovers.
	h.records.failCreates = nil
	session := h.register(t, "ada@example.com")
	assert.Equal(t, "ada@example.com", session.User.Email)
}

func TestService_Login(t *testing.T) {
	h := newHarness(t)
	registered := h.register(t, "ada@example.com")
	ctx := context.Background()

	session, err := h.service.Login(ctx, "ADA@example.com", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	assert.NotEqual(t, registered.RefreshToken, session.RefreshToken)

	_, err = h.service.Login(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = h.service.Login(ctx, "nobody@example.com", "secret-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

// # Refresh Protocol

/*
TestService_RefreshRoundTrip exchanges a refresh token for an access token
that passes the session verifier on its own, and leaves the refresh token valid.
*/
func TestService_RefreshRoundTrip(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")
	ctx := context.Background()

	h.clock.Advance(20 * time.Minute)

	_, err := h.verifier.Verify(ctx, session.AccessToken)
	require.ErrorIs(t, err, auth.ErrTokenExpired)

	access, err := h.service.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)

	principal, err := h.verifier.Verify(ctx, access)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, principal.UserID)

	again, err := h.service.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, access, again)
}

func TestService_RefreshSurvivesKeyRotation(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")

	for range 5 {
		_, err := h.ring.Rotate()
		require.NoError(t, err)
	}

	_, err := h.service.Refresh(context.Background(), session.RefreshToken)
	assert.NoError(t, err)
}

func TestService_RefreshFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.service.Refresh(ctx, "")
		assert.ErrorIs(t, err, auth.ErrMissingRefreshToken)
	})

	t.Run("unknown", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.service.Refresh(ctx, "never-issued")
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("blacklisted", func(t *testing.T) {
		h := newHarness(t)
		session := h.register(t, "ada@example.com")
		require.NoError(t, h.records.Blacklist(ctx, session.RefreshToken))

		_, err := h.service.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("expired record", func(t *testing.T) {
		h := newHarness(t)
		session := h.register(t, "ada@example.com")
		h.clock.Advance(sec.RefreshTokenTTL + time.Second)

		_, err := h.service.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})

	t.Run("access token in the refresh slot", func(t *testing.T) {
		h := newHarness(t)
		session := h.register(t, "ada@example.com")

		// A record that claims refresh but carries an access-signed value.
		require.NoError(t, h.records.Create(ctx, &auth.Token{
			Value:     session.AccessToken,
			UserID:    session.User.ID,
			Kind:      sec.KindRefresh,
			ExpiresAt: h.clock.Now().Add(time.Hour),
		}))

		_, err := h.service.Refresh(ctx, session.AccessToken)
		assert.ErrorIs(t, err, auth.ErrRefreshTokenExpired)
	})

	t.Run("user removed", func(t *testing.T) {
		h := newHarness(t)
		session := h.register(t, "ada@example.com")
		h.users.remove(session.User.ID)

		_, err := h.service.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
	})
}

// # Logout

func TestService_Logout(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, h.service.Logout(ctx, session.RefreshToken, session.AccessToken))

	_, err := h.verifier.Verify(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)

	_, err = h.service.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)
}

func TestService_LogoutJoinsFailures(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")
	h.records.failWrites = errStoreDown

	err := h.service.Logout(context.Background(), session.RefreshToken, session.AccessToken)
	assert.ErrorIs(t, err, errStoreDown)

	assert.NoError(t, h.service.Logout(context.Background(), "", ""))
}

// # Password Recovery

func TestService_PasswordReset(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")
	ctx := context.Background()

	token, err := h.service.RequestPasswordReset(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = h.service.RequestPasswordReset(ctx, "ADA@example.com")
	require.NoError(t, err)
	require.Len(t, token, auth.ResetTokenLength*2)

	require.NoError(t, h.service.ResetPassword(ctx, token, "brand-new-password"))

	// Every token issued before the reset is revoked.
	_, err = h.verifier.Verify(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)
	_, err = h.service.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrInvalidRefreshToken)

	_, err = h.service.Login(ctx, "ada@example.com", "secret-password")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = h.service.Login(ctx, "ada@example.com", "brand-new-password")
	assert.NoError(t, err)

	err = h.service.ResetPassword(ctx, token, "third-password")
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
}

func TestService_PasswordResetIsSingleUseUnderConcurrency(t *testing.T) {
	h := newHarness(t)
	h.register(t, "ada@example.com")
	ctx := context.Background()

	token, err := h.service.RequestPasswordReset(ctx, "ada@example.com")
	require.NoError(t, err)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- h.service.ResetPassword(ctx, token, "brand-new-password")
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
	}
	assert.Equal(t, 1, succeeded)
}

func TestService_PasswordResetRollsBackWhenRevokeFails(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")
	ctx := context.Background()

	token, err := h.service.RequestPasswordReset(ctx, "ada@example.com")
	require.NoError(t, err)

	h.records.failWrites = errStoreDown
	require.Error(t, h.service.ResetPassword(ctx, token, "brand-new-password"))
	h.records.failWrites = nil

	// Neither the password nor the session changed.
	_, err = h.service.Login(ctx, "ada@example.com", "secret-password")
	assert.NoError(t, err)
	_, err = h.verifier.Verify(ctx, session.AccessToken)
	assert.NoError(t, err)

	// The token was consumed by the failed attempt.
	err = h.service.ResetPassword(ctx, token, "brand-new-password")
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
}

func TestService_PasswordResetExpires(t *testing.T) {
	h := newHarness(t)
	h.register(t, "ada@example.com")
	ctx := context.Background()

	token, err := h.service.RequestPasswordReset(ctx, "ada@example.com")
	require.NoError(t, err)

	h.clock.Advance(auth.ResetTokenTTL + time.Second)

	err = h.service.ResetPassword(ctx, token, "brand-new-password")
	assert.ErrorIs(t, err, auth.ErrInvalidResetToken)
}
