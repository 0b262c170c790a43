// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// MinPasswordLength is the shortest accepted password.
	MinPasswordLength = 6

	// TokenSecretLength is the byte length of the per-user signing secret.
	TokenSecretLength = 32

	// FamilyLength is the byte length of a refresh token family identifier.
	FamilyLength = 16

	// ResetTokenTTL is the duration a password reset token remains valid.
	ResetTokenTTL = 10 * time.Minute

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32
)

// # Client Messages

const (
	messageLoggedOut     = "Logged out successfully"
	messageResetSent     = "If this email is registered, a password reset token has been sent."
	messageResetComplete = "Password reset successful"
)
