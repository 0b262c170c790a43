// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, key rotation, JWT
// signing) from the domain logic. The auth domain consumes it through the
// [TokenService] and [KeyRing] types.
//
// # Signing Keys
//
// Access tokens are signed with the current [KeyRing] secret and carry its id
// in the 'kid' header. Refresh tokens are signed with the static default secret
// under [constants.DefaultKeyID] so rotation never shortens their life. When a
// user has a per-user secret, the HMAC key is derived from both.
package sec

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/taibuivan/taskflow/internal/platform/constants"
)

// # Token Claims

// TokenKind distinguishes access from refresh tokens.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Lifetimes of issued tokens.
const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour

	accessNonceLength = 16
	accessIDLength    = 16
	refreshIDLength   = 8
)

// Token verification failures.
var (
	ErrTokenExpired = errors.New("sec: token expired")
	ErrTokenInvalid = errors.New("sec: token signature or claims invalid")
	ErrUnknownKey   = errors.New("sec: signing key unknown or evicted")
)

// Claims is the payload embedded inside access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims

	UserID string    `json:"id"`
	Kind   TokenKind `json:"type"`
	Nonce  string    `json:"nonce,omitempty"`
}

// SignedToken is a freshly issued token together with its decoded claims.
type SignedToken struct {
	Value  string
	KeyID  string
	Claims *Claims
}

// ExpiresAt returns the token's expiry instant.
func (token *SignedToken) ExpiresAt() time.Time {
	return token.Claims.ExpiresAt.Time
}

// SecretLookup resolves the per-user signing secret for a token's subject.
type SecretLookup func(userID string) (string, error)

// # Token Service

// TokenService handles generation and verification of HS256 tokens.
type TokenService struct {
	keys          *KeyRing
	defaultSecret []byte
	issuer        string
	now           Clock
	random        io.Reader
}

// NewTokenService creates a new TokenService.
//
// A missing default secret is a startup misconfiguration and returns an error.
func NewTokenService(keys *KeyRing, defaultSecret, issuer string, clock Clock) (*TokenService, error) {
	if keys == nil {
		return nil, errors.New("auth: key ring is required")
	}
	if defaultSecret == "" {
		return nil, errors.New("auth: default signing secret is required")
	}
	if clock == nil {
		clock = time.Now
	}

	return &TokenService{
		keys:          keys,
		defaultSecret: []byte(defaultSecret),
		issuer:        issuer,
		now:           clock,
		random:        rand.Reader,
	}, nil
}

// IssueAccess creates a 15-minute access token for userID.
func (service *TokenService) IssueAccess(userID, userSecret string) (*SignedToken, error) {
	nonce, err := service.randomHex(accessNonceLength)
	if err != nil {
		return nil, err
	}

	tokenID, err := service.randomHex(accessIDLength)
	if err != nil {
		return nil, err
	}

	key := service.keys.Current()
	claims := service.newClaims(userID, KindAccess, tokenID, AccessTokenTTL)
	claims.Nonce = nonce

	return service.sign(claims, key.ID, deriveKey(key.Secret, userSecret))
}

// IssueRefresh creates a 7-day refresh token for userID.
func (service *TokenService) IssueRefresh(userID, userSecret string) (*SignedToken, error) {
	tokenID, err := service.randomHex(refreshIDLength)
	if err != nil {
		return nil, err
	}

	claims := service.newClaims(userID, KindRefresh, tokenID, RefreshTokenTTL)
	return service.sign(claims, constants.DefaultKeyID, deriveKey(service.defaultSecret, userSecret))
}

// Parse verifies the signature, expiry and kind of tokenString.
//
// lookup resolves the per-user secret from the unverified subject claim; its
// errors are returned wrapped so callers can match them with [errors.Is].
func (service *TokenService) Parse(tokenString string, kind TokenKind, lookup SecretLookup) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(service.issuer),
		jwt.WithTimeFunc(service.now),
	)

	claims := &Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		keyID, _ := token.Header["kid"].(string)

		base, err := service.baseKey(kind, keyID)
		if err != nil {
			return nil, err
		}

		userSecret := ""
		if lookup != nil {
			userSecret, err = lookup(claims.UserID)
			if err != nil {
				return nil, err
			}
		}

		return deriveKey(base, userSecret), nil
	})

	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, ErrUnknownKey):
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		// Lookup failures surface unchanged for the caller to classify.
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token, got %q", ErrTokenInvalid, kind, claims.Kind)
	}

	return claims, nil
}

// # Internal Helpers

func (service *TokenService) newClaims(userID string, kind TokenKind, tokenID string, ttl time.Duration) *Claims {
	issuedAt := service.now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		UserID: userID,
		Kind:   kind,
	}
}

func (service *TokenService) sign(claims *Claims, keyID string, key []byte) (*SignedToken, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = keyID

	signed, err := token.SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return &SignedToken{Value: signed, KeyID: keyID, Claims: claims}, nil
}

// baseKey resolves the secret a token of kind must have been signed with.
func (service *TokenService) baseKey(kind TokenKind, keyID string) ([]byte, error) {
	if kind == KindRefresh {
		if keyID != constants.DefaultKeyID {
			return nil, ErrUnknownKey
		}
		return service.defaultSecret, nil
	}

	secret, ok := service.keys.Lookup(keyID)
	if !ok {
		return nil, ErrUnknownKey
	}
	return secret, nil
}

func (service *TokenService) randomHex(length int) (string, error) {
	buffer := make([]byte, length)
	if _, err := io.ReadFull(service.random, buffer); err != nil {
		return "", fmt.Errorf("auth: failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}

// deriveKey binds a base secret to a per-user secret. An empty user secret
// leaves the base unchanged.
func deriveKey(base []byte, userSecret string) []byte {
	if userSecret == "" {
		return base
	}
	mac := hmac.New(sha256.New, base)
	mac.Write([]byte(userSecret))
	return mac.Sum(nil)
}
