// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// Repository sentinels, for fakes and store tests in auth_test.
var (
	ErrUserMissing  = errUserMissing
	ErrTokenMissing = errTokenMissing
	ErrResetMissing = errResetMissing
)
