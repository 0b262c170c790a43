// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/taskflow/internal/platform/constants"
	"github.com/taibuivan/taskflow/internal/platform/cookie"
	"github.com/taibuivan/taskflow/internal/platform/sec"
	"github.com/taibuivan/taskflow/internal/users/auth"
)

type httpHarness struct {
	*harness
	router http.Handler
	policy cookie.Policy
}

func newHTTPHarness(t *testing.T) *httpHarness {
	t.Helper()

	h := newHarness(t)
	policy := cookie.Policy{
		Name:   constants.RefreshTokenCookieName,
		Path:   constants.RefreshTokenCookiePath,
		MaxAge: sec.RefreshTokenTTL,
		Signer: cookie.NewSigner("default-secret"),
	}

	router := chi.NewRouter()
	handler := auth.NewHandler(h.service, h.verifier, policy, false)
	router.Mount("/api/auth", handler.Routes())

	return &httpHarness{harness: h, router: router, policy: policy}
}

func (h *httpHarness) do(t *testing.T, method, path, body string, mutate ...func(*http.Request)) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	for _, fn := range mutate {
		fn(request)
	}

	recorder := httptest.NewRecorder()
	h.router.ServeHTTP(recorder, request)

	payload := map[string]any{}
	if recorder.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	}
	return recorder, payload
}

func refreshCookie(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range recorder.Result().Cookies() {
		if c.Name == constants.RefreshTokenCookieName {
			return c
		}
	}
	t.Fatalf("response did not set %s", constants.RefreshTokenCookieName)
	return nil
}

func withCookie(c *http.Cookie) func(*http.Request) {
	return func(request *http.Request) { request.AddCookie(c) }
}

func withBearer(token string) func(*http.Request) {
	return func(request *http.Request) {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
}

const credentials = `{"email":"ada@example.com","password":"secret-password"}`

func TestHandler_Register(t *testing.T) {
	h := newHTTPHarness(t)

	recorder, payload := h.do(t, http.MethodPost, "/api/auth/register", credentials)
	require.Equal(t, http.StatusCreated, recorder.Code)

	assert.Equal(t, true, payload["success"])
	assert.NotEmpty(t, payload["token"])
	user := payload["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.NotEmpty(t, user["id"])
	assert.NotContains(t, user, "tokenSecret")

	c := refreshCookie(t, recorder)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int(sec.RefreshTokenTTL.Seconds()), c.MaxAge)
	assert.True(t, strings.HasPrefix(c.Value, "s:"))

	recorder, payload = h.do(t, http.MethodPost, "/api/auth/register", credentials)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "DUPLICATE_REGISTRATION", payload["code"])
	assert.Equal(t, false, payload["success"])
}

func TestHandler_RegisterValidation(t *testing.T) {
	h := newHTTPHarness(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"email":`},
		{"missing email", `{"password":"secret-password"}`},
		{"bad email", `{"email":"nope","password":"secret-password"}`},
		{"short password", `{"email":"ada@example.com","password":"12345"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, payload := h.do(t, http.MethodPost, "/api/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
			assert.Equal(t, "VALIDATION_ERROR", payload["code"])
		})
	}
	assert.Zero(t, h.users.count())
}

func TestHandler_LoginRefreshVerify(t *testing.T) {
	h := newHTTPHarness(t)
	h.do(t, http.MethodPost, "/api/auth/register", credentials)

	recorder, payload := h.do(t, http.MethodPost, "/api/auth/login", `{"email":"ada@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", payload["code"])

	recorder, _ = h.do(t, http.MethodPost, "/api/auth/login", credentials)
	require.Equal(t, http.StatusOK, recorder.Code)
	session := refreshCookie(t, recorder)

	recorder, payload = h.do(t, http.MethodPost, "/api/auth/refresh", "", withCookie(session))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, payload["success"])
	access := payload["token"].(string)

	recorder, payload = h.do(t, http.MethodGet, "/api/auth/verify", "", withBearer(access))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ada@example.com", payload["user"].(map[string]any)["email"])
}

func TestHandler_RefreshRejections(t *testing.T) {
	h := newHTTPHarness(t)
	recorder, _ := h.do(t, http.MethodPost, "/api/auth/register", credentials)
	issued := refreshCookie(t, recorder)

	tampered := *issued
	tampered.Value = h.policy.Signer.Sign("forged") + "x"

	unsigned := *issued
	unsigned.Value = strings.TrimPrefix(issued.Value, "s:")

	tests := []struct {
		name   string
		mutate []func(*http.Request)
	}{
		{"no cookie", nil},
		{"tampered signature", []func(*http.Request){withCookie(&tampered)}},
		{"unsigned value", []func(*http.Request){withCookie(&unsigned)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, payload := h.do(t, http.MethodPost, "/api/auth/refresh", "", tt.mutate...)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Equal(t, "MISSING_REFRESH_TOKEN", payload["code"])
			assert.Equal(t, false, payload["success"])
			assert.NotEmpty(t, payload["message"])
		})
	}

	forged := *issued
	forged.Value = h.policy.Signer.Sign("never-issued")
	recorder, payload := h.do(t, http.MethodPost, "/api/auth/refresh", "", withCookie(&forged))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", payload["code"])
}

func TestHandler_Logout(t *testing.T) {
	h := newHTTPHarness(t)
	recorder, payload := h.do(t, http.MethodPost, "/api/auth/register", credentials)
	session := refreshCookie(t, recorder)
	access := payload["token"].(string)

	recorder, payload = h.do(t, http.MethodPost, "/api/auth/logout", "", withCookie(session), withBearer(access))
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, payload["success"])
	assert.Less(t, refreshCookie(t, recorder).MaxAge, 0)

	recorder, payload = h.do(t, http.MethodGet, "/api/auth/verify", "", withBearer(access))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "REVOKED_TOKEN", payload["code"])

	recorder, _ = h.do(t, http.MethodPost, "/api/auth/refresh", "", withCookie(session))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHandler_LogoutStoreFailure still answers 200 and clears the cookie when
the token store cannot blacklist anything.
*/
func TestHandler_LogoutStoreFailure(t *testing.T) {
	h := newHTTPHarness(t)
	recorder, payload := h.do(t, http.MethodPost, "/api/auth/register", credentials)
	session := refreshCookie(t, recorder)
	access := payload["token"].(string)

	h.records.failWrites = errStoreDown

	recorder, payload = h.do(t, http.MethodPost, "/api/auth/logout", "", withCookie(session), withBearer(access))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, payload["success"])

	cleared := refreshCookie(t, recorder)
	assert.Empty(t, cleared.Value)
	assert.Less(t, cleared.MaxAge, 0)
}

func TestHandler_VerifyRequiresBearer(t *testing.T) {
	h := newHTTPHarness(t)

	recorder, payload := h.do(t, http.MethodGet, "/api/auth/verify", "")
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Equal(t, "MISSING_TOKEN", payload["code"])
}

func TestHandler_PasswordRecovery(t *testing.T) {
	h := newHTTPHarness(t)
	h.do(t, http.MethodPost, "/api/auth/register", credentials)

	unknown, unknownPayload := h.do(t, http.MethodPost, "/api/auth/forgot-password", `{"email":"nobody@example.com"}`)
	known, knownPayload := h.do(t, http.MethodPost, "/api/auth/forgot-password", `{"email":"ada@example.com"}`)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, unknownPayload, knownPayload)

	recorder, payload := h.do(t, http.MethodPost, "/api/auth/reset-password/not-a-token", `{"password":"brand-new-password"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INVALID_RESET_TOKEN", payload["code"])
}
