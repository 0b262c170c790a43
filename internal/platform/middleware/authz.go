// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"

	"github.com/taibuivan/taskflow/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/taskflow/internal/platform/request"
	"github.com/taibuivan/taskflow/internal/platform/respond"
	"github.com/taibuivan/taskflow/internal/platform/sec"
)

// SessionVerifier resolves a bearer token to an authenticated principal.
// The auth domain's Verifier is the production implementation.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*sec.Principal, error)
}

// Authenticate gates a route on a valid bearer access token.
//
// # Flow
//  1. Extract the token from 'Authorization: Bearer <token>' (may be empty).
//  2. Verify it via [SessionVerifier]; a missing token is the verifier's call.
//  3. On failure, respond with the verifier's error (401 family).
//  4. On success, inject [*sec.Principal] into the request context.
func Authenticate(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, req *http.Request) {
			principal, err := verifier.Verify(req.Context(), requestutil.BearerToken(req))
			if err != nil {
				respond.Error(writer, req, err)
				return
			}

			if slot := identitySlotFrom(req.Context()); slot != nil {
				slot.userID = principal.UserID
			}

			ctx := ctxutil.WithAuthUser(req.Context(), principal)
			next.ServeHTTP(writer, req.WithContext(ctx))
		})
	}
}

// identitySlot carries the verified user id back up to [StructuredLogger],
// whose context is created before the gate runs.
type identitySlot struct {
	userID string
}

type identitySlotKey struct{}

func withIdentitySlot(ctx context.Context, slot *identitySlot) context.Context {
	return context.WithValue(ctx, identitySlotKey{}, slot)
}

func identitySlotFrom(ctx context.Context) *identitySlot {
	slot, _ := ctx.Value(identitySlotKey{}).(*identitySlot)
	return slot
}
