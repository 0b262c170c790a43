// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/taskflow/internal/platform/apperr"
)

// # Error Taxonomy

// Session verification failures.
var (
	ErrMissingToken     = apperr.New(http.StatusUnauthorized, "MISSING_TOKEN", "No token provided")
	ErrInvalidSignature = apperr.New(http.StatusUnauthorized, "INVALID_SIGNATURE", "Invalid token")
	ErrTokenExpired     = apperr.New(http.StatusUnauthorized, "TOKEN_EXPIRED", "Token expired")
	ErrRevokedToken     = apperr.New(http.StatusUnauthorized, "REVOKED_TOKEN", "Token expired or invalid")
	ErrUserNotFound     = apperr.New(http.StatusUnauthorized, "USER_NOT_FOUND", "User not found")
)

// Refresh protocol failures.
var (
	ErrMissingRefreshToken = apperr.New(http.StatusUnauthorized, "MISSING_REFRESH_TOKEN", "No refresh token found")
	ErrInvalidRefreshToken = apperr.New(http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Invalid refresh token")
	ErrRefreshTokenExpired = apperr.New(http.StatusUnauthorized, "REFRESH_TOKEN_EXPIRED", "Refresh token expired")
)

// Account lifecycle failures.
var (
	ErrInvalidCredentials    = apperr.New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrDuplicateRegistration = apperr.New(http.StatusBadRequest, "DUPLICATE_REGISTRATION", "User already exists")
	ErrInvalidResetToken     = apperr.New(http.StatusBadRequest, "INVALID_RESET_TOKEN", "Invalid or expired token")
)

// Repository lookups that find nothing return these. Each carries its own
// code so that [errors.Is] never confuses one record kind for another.
var (
	errUserMissing  = apperr.New(http.StatusNotFound, "USER_RECORD_NOT_FOUND", "User not found")
	errTokenMissing = apperr.New(http.StatusNotFound, "TOKEN_RECORD_NOT_FOUND", "Token not found")
	errResetMissing = apperr.New(http.StatusNotFound, "RESET_RECORD_NOT_FOUND", "Reset token not found")
)
