// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/taskflow/internal/platform/sec"
	"github.com/taibuivan/taskflow/internal/users/auth"
)

/*
TestVerifier_AccessLifecycle accepts a fresh access token and rejects it once
its 15-minute window has elapsed.
*/
func TestVerifier_AccessLifecycle(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")
	ctx := context.Background()

	principal, err := h.verifier.Verify(ctx, session.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, principal.UserID)
	assert.Equal(t, "ada@example.com", principal.Email)
	assert.NotEmpty(t, principal.TokenID)

	h.clock.Advance(14 * time.Minute)
	_, err = h.verifier.Verify(ctx, session.AccessToken)
	require.NoError(t, err)

	h.clock.Advance(2 * time.Minute)
	_, err = h.verifier.Verify(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

/*
TestVerifier_BlacklistedTokenIsRevoked rejects a token whose signature and
claimed expiry are still valid once its record is blacklisted.
*/
func TestVerifier_BlacklistedTokenIsRevoked(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")
	ctx := context.Background()

	require.NoError(t, h.records.Blacklist(ctx, session.AccessToken))

	_, err := h.tokens.Parse(session.AccessToken, sec.KindAccess, func(string) (string, error) {
		return session.User.TokenSecret, nil
	})
	require.NoError(t, err, "signature must remain valid")

	_, err = h.verifier.Verify(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)
}

func TestVerifier_Rejections(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")
	ctx := context.Background()

	unpersisted, err := h.tokens.IssueAccess(session.User.ID, session.User.TokenSecret)
	require.NoError(t, err)

	foreign, err := h.tokens.IssueAccess(session.User.ID, "another-secret")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", auth.ErrMissingToken},
		{"garbage", "not-a-jwt", auth.ErrInvalidSignature},
		{"wrong user secret", foreign.Value, auth.ErrInvalidSignature},
		{"refresh token as bearer", session.RefreshToken, auth.ErrInvalidSignature},
		{"unknown to the store", unpersisted.Value, auth.ErrRevokedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.verifier.Verify(ctx, tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerifier_UserRemoved(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")

	h.users.remove(session.User.ID)

	_, err := h.verifier.Verify(context.Background(), session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

/*
TestVerifier_KeyRotation keeps tokens signed under a retained key valid and
rejects them once the key has aged out of the ring.
*/
func TestVerifier_KeyRotation(t *testing.T) {
	h := newHarness(t)
	session := h.register(t, "ada@example.com")
	ctx := context.Background()

	for range 2 {
		_, err := h.ring.Rotate()
		require.NoError(t, err)

		_, err = h.verifier.Verify(ctx, session.AccessToken)
		require.NoError(t, err)
	}

	_, err := h.ring.Rotate()
	require.NoError(t, err)

	_, err = h.verifier.Verify(ctx, session.AccessToken)
	assert.ErrorIs(t, err, auth.ErrInvalidSignature)
}
