// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cookie writes and reads HMAC-signed HTTP cookies.

A signed value has the form 's:<value>.<signature>' where the signature is the
unpadded base64url HMAC-SHA256 of the value under the server secret. Values
whose signature does not match are reported as absent.
*/
package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const signedPrefix = "s:"

// # Signing

// Signer signs and verifies cookie values.
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer bound to secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the signed form of value.
func (signer *Signer) Sign(value string) string {
	return signedPrefix + value + "." + signer.signature(value)
}

// Unsign verifies signed and returns the embedded value.
func (signer *Signer) Unsign(signed string) (string, bool) {
	body, ok := strings.CutPrefix(signed, signedPrefix)
	if !ok {
		return "", false
	}

	dot := strings.LastIndexByte(body, '.')
	if dot < 0 {
		return "", false
	}

	value, signature := body[:dot], body[dot+1:]
	if !hmac.Equal([]byte(signature), []byte(signer.signature(value))) {
		return "", false
	}
	return value, true
}

func (signer *Signer) signature(value string) string {
	mac := hmac.New(sha256.New, signer.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// # Policy

// Policy describes where and how a signed cookie is written.
type Policy struct {
	Name   string
	Path   string
	MaxAge time.Duration

	// Production enables Secure and keeps SameSite=Strict when clearing.
	Production bool

	Signer *Signer
}

// Set writes value as a signed, HTTP-only, SameSite=Strict cookie.
func (policy Policy) Set(writer http.ResponseWriter, value string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     policy.Name,
		Value:    policy.Signer.Sign(value),
		Path:     policy.Path,
		MaxAge:   int(policy.MaxAge / time.Second),
		Expires:  time.Now().Add(policy.MaxAge),
		HttpOnly: true,
		Secure:   policy.Production,
		SameSite: http.SameSiteStrictMode,
	})
}

// Clear instructs the client to drop the cookie.
func (policy Policy) Clear(writer http.ResponseWriter) {
	sameSite := http.SameSiteLaxMode
	if policy.Production {
		sameSite = http.SameSiteStrictMode
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     policy.Name,
		Value:    "",
		Path:     policy.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   policy.Production,
		SameSite: sameSite,
	})
}

// Read returns the verified value of the cookie, or false when it is missing
// or its signature does not match.
func (policy Policy) Read(request *http.Request) (string, bool) {
	raw, err := request.Cookie(policy.Name)
	if err != nil || raw.Value == "" {
		return "", false
	}
	return policy.Signer.Unsign(raw.Value)
}
