// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// Principal is the verified identity bound to an authenticated request.
type Principal struct {
	UserID string `json:"id"`
	Email  string `json:"email"`

	// TokenID is the 'jti' of the access token that authenticated the request.
	TokenID string `json:"-"`
}
