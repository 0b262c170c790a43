// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/taskflow/internal/platform/apperr"
	"github.com/taibuivan/taskflow/internal/platform/ctxutil"
	"github.com/taibuivan/taskflow/internal/platform/middleware"
	"github.com/taibuivan/taskflow/internal/platform/ratelimit"
	"github.com/taibuivan/taskflow/internal/platform/sec"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	return body
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "client-id")
	handler.ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "client-id", seen)
}

// # Rate Limiting

type stubLimiter struct {
	decision ratelimit.Decision
	err      error
}

func (s stubLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return s.decision, s.err
}

/*
TestRateLimit covers admission, rejection envelope and fail-open behavior.
*/
func TestRateLimit(t *testing.T) {
	tests := []struct {
		name       string
		limiter    stubLimiter
		wantStatus int
	}{
		{"allowed", stubLimiter{decision: ratelimit.Decision{Allowed: true}}, http.StatusOK},
		{"rejected", stubLimiter{decision: ratelimit.Decision{RetryAfter: 90 * time.Second}}, http.StatusTooManyRequests},
		{"backend_down", stubLimiter{err: errors.New("dial tcp: refused")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			middleware.RateLimit(tt.limiter)(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/todos", nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantStatus == http.StatusTooManyRequests {
				assert.Equal(t, "90", recorder.Header().Get("Retry-After"))
				body := decodeBody(t, recorder)
				assert.Equal(t, false, body["success"])
				assert.Equal(t, "RATE_LIMITED", body["code"])
				assert.Equal(t, "Too many requests, please try again later.", body["message"])
			}
		})
	}
}

func TestPanicRecovery(t *testing.T) {
	handler := middleware.PanicRecovery(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	body := decodeBody(t, recorder)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.NotContains(t, recorder.Body.String(), "boom")
}

func TestPanicRecovery_ExposesCauseInDevelopment(t *testing.T) {
	handler := middleware.ExposeErrors(true)(middleware.PanicRecovery(slog.Default())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.Equal(t, "panic: boom", decodeBody(t, recorder)["error"])
}

// # Transport Security

func TestCORS(t *testing.T) {
	handler := middleware.CORS([]string{"http://localhost:5173"})(okHandler)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Origin", "http://localhost:5173")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "http://localhost:5173", recorder.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", recorder.Header().Get("Access-Control-Allow-Credentials"))

	request = httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Origin", "https://evil.example")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))

	request = httptest.NewRequest(http.MethodOptions, "/", nil)
	request.Header.Set("Origin", "http://localhost:5173")
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestHTTPSRedirect(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "http://api.example/api/todos?x=1", nil)
	request.Header.Set("X-Forwarded-Proto", "http")

	recorder := httptest.NewRecorder()
	middleware.HTTPSRedirect(true)(okHandler).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusMovedPermanently, recorder.Code)
	assert.Equal(t, "https://api.example/api/todos?x=1", recorder.Header().Get("Location"))

	recorder = httptest.NewRecorder()
	middleware.HTTPSRedirect(false)(okHandler).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestSecureHeaders(t *testing.T) {
	recorder := httptest.NewRecorder()
	middleware.SecureHeaders()(okHandler).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", recorder.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", recorder.Header().Get("X-Frame-Options"))
	assert.Empty(t, recorder.Header().Get("Strict-Transport-Security"))
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:4000"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", middleware.RealIP(request))

	request.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", middleware.RealIP(request))
}

// # Session Gate

type stubVerifier struct {
	principal *sec.Principal
	err       error
	gotToken  string
}

func (s *stubVerifier) Verify(_ context.Context, token string) (*sec.Principal, error) {
	s.gotToken = token
	return s.principal, s.err
}

/*
TestAuthenticate verifies principal injection, error mapping and request logging.
*/
func TestAuthenticate(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		verifier := &stubVerifier{principal: &sec.Principal{UserID: "user-1", Email: "a@b.c"}}

		var logs bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&logs, nil))

		var seen *sec.Principal
		handler := middleware.StructuredLogger(logger)(middleware.Authenticate(verifier)(
			http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
				seen = ctxutil.GetAuthUser(request.Context())
			}),
		))

		request := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
		request.Header.Set("Authorization", "Bearer abc.def.ghi")
		handler.ServeHTTP(httptest.NewRecorder(), request)

		assert.Equal(t, "abc.def.ghi", verifier.gotToken)
		require.NotNil(t, seen)
		assert.Equal(t, "user-1", seen.UserID)
		assert.Contains(t, logs.String(), `"user_id":"user-1"`)
	})

	t.Run("rejected", func(t *testing.T) {
		verifier := &stubVerifier{err: apperr.New(http.StatusUnauthorized, "MISSING_TOKEN", "No token provided")}

		called := false
		handler := middleware.Authenticate(verifier)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			called = true
		}))

		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil))

		assert.False(t, called)
		assert.Equal(t, "", verifier.gotToken)
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		body := decodeBody(t, recorder)
		assert.Equal(t, "MISSING_TOKEN", body["code"])
		assert.Equal(t, false, body["success"])
	})
}
