// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"

	"github.com/taibuivan/taskflow/internal/platform/sec"
)

// # Credential Issuer

// Issuer mints signed tokens for a user and records every issuance in the
// token store, so that logout and password reset can revoke them early.
type Issuer struct {
	tokens     *sec.TokenService
	repository TokenRepository
}

// NewIssuer creates an Issuer backed by the given token service and store.
func NewIssuer(tokens *sec.TokenService, repository TokenRepository) *Issuer {
	return &Issuer{tokens: tokens, repository: repository}
}

// with returns a copy of the issuer that records into repository.
func (issuer *Issuer) with(repository TokenRepository) *Issuer {
	return &Issuer{tokens: issuer.tokens, repository: repository}
}

// IssueAccess signs a 15-minute access token and persists its record.
func (issuer *Issuer) IssueAccess(context context.Context, user *User) (*sec.SignedToken, error) {
	signed, err := issuer.tokens.IssueAccess(user.ID, user.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("auth_issuer_sign_access_failed: %w", err)
	}

	if err := issuer.persist(context, user.ID, signed, ""); err != nil {
		return nil, err
	}

	return signed, nil
}

// IssueRefresh signs a 7-day refresh token and persists its record under a
// fresh family identifier.
func (issuer *Issuer) IssueRefresh(context context.Context, user *User) (*sec.SignedToken, error) {
	signed, err := issuer.tokens.IssueRefresh(user.ID, user.TokenSecret)
	if err != nil {
		return nil, fmt.Errorf("auth_issuer_sign_refresh_failed: %w", err)
	}

	family, err := sec.GenerateSecureToken(FamilyLength)
	if err != nil {
		return nil, fmt.Errorf("auth_issuer_family_failed: %w", err)
	}

	if err := issuer.persist(context, user.ID, signed, family); err != nil {
		return nil, err
	}

	return signed, nil
}

// IssueSession produces the access + refresh pair handed out on register and login.
func (issuer *Issuer) IssueSession(context context.Context, user *User) (*Session, error) {
	access, err := issuer.IssueAccess(context, user)
	if err != nil {
		return nil, err
	}

	refresh, err := issuer.IssueRefresh(context, user)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:      access.Value,
		RefreshToken:     refresh.Value,
		RefreshExpiresAt: refresh.ExpiresAt(),
		User:             user,
	}, nil
}

func (issuer *Issuer) persist(context context.Context, userID string, signed *sec.SignedToken, family string) error {
	record := &Token{
		Value:     signed.Value,
		UserID:    userID,
		Kind:      signed.Claims.Kind,
		ExpiresAt: signed.ExpiresAt(),
		Family:    family,
		KeyID:     signed.KeyID,
		CreatedAt: signed.Claims.IssuedAt.Time,
	}

	if err := issuer.repository.Create(context, record); err != nil {
		return fmt.Errorf("auth_issuer_persist_%s_failed: %w", record.Kind, err)
	}
	return nil
}
