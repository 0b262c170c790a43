// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/taskflow/internal/platform/apperr"
	"github.com/taibuivan/taskflow/internal/platform/ctxutil"
	"github.com/taibuivan/taskflow/internal/platform/sec"
	"github.com/taibuivan/taskflow/pkg/text"
	"github.com/taibuivan/taskflow/pkg/uuid"
)

// # Contracts & Types

// Service implements the account lifecycle and the refresh protocol.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// token issuance or revocation must be reviewed by the security team.
type Service struct {
	userRepository       UserRepository
	tokenRepository      TokenRepository
	resetTokenRepository ResetTokenRepository
	transactor           Transactor
	issuer               *Issuer
	tokens               *sec.TokenService
	seeder               CategorySeeder
	now                  sec.Clock
}

// NewService constructs a new [Service] with necessary dependencies.
//
// seeder may be nil, in which case new accounts start without categories.
// transactor may be nil, in which case multi-step writes run directly against
// the repositories without a shared transaction.
func NewService(
	userRepo UserRepository,
	tokenRepo TokenRepository,
	resetRepo ResetTokenRepository,
	transactor Transactor,
	issuer *Issuer,
	tokens *sec.TokenService,
	seeder CategorySeeder,
	clock sec.Clock,
) *Service {
	if clock == nil {
		clock = time.Now
	}
	if transactor == nil {
		transactor = directTransactor{users: userRepo, tokens: tokenRepo}
	}
	return &Service{
		userRepository:       userRepo,
		tokenRepository:      tokenRepo,
		resetTokenRepository: resetRepo,
		transactor:           transactor,
		issuer:               issuer,
		tokens:               tokens,
		seeder:               seeder,
		now:                  clock,
	}
}

// directTransactor hands out the plain repositories.
type directTransactor struct {
	users  UserRepository
	tokens TokenRepository
}

func (transactor directTransactor) WithinTx(context context.Context, fn func(users UserRepository, tokens TokenRepository) error) error {
	return fn(transactor.users, transactor.tokens)
}

// # Registration Flow

/*
Register validates, hashes, and persists a brand new user account.

Description: Rejects a taken email before anything is written and generates
the per-user signing secret. The account row and its first access + refresh
pair are written in one transaction, so a failed issuance leaves no account
behind. Default categories are seeded after the commit.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Session: Credentials of the new account
  - error: ErrDuplicateRegistration or storage errors
*/
func (service *Service) Register(context context.Context, email, password string) (*Session, error) {
	email = text.Email(email)

	// Verify email uniqueness before hashing or writing anything.
	_, err := service.userRepository.FindByEmail(context, email)
	switch {
	case err == nil:
		return nil, ErrDuplicateRegistration
	case !errors.Is(err, errUserMissing):
		return nil, apperr.Internal(fmt.Errorf("auth_service_register_lookup_failed: %w", err))
	}

	hashedPassword, err := sec.HashPassword(password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	tokenSecret, err := sec.GenerateSecureToken(TokenSecretLength)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_token_secret_failed: %w", err))
	}

	now := service.now()
	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		TokenSecret:  tokenSecret,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var session *Session
	err = service.transactor.WithinTx(context, func(users UserRepository, tokens TokenRepository) error {
		if err := users.Create(context, user); err != nil {
			return err
		}
		session, err = service.issuer.with(tokens).IssueSession(context, user)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateRegistration) {
			return nil, err
		}
		return nil, apperr.Internal(fmt.Errorf("auth_service_register_failed: %w", err))
	}

	// Starter categories are a convenience. Their failure never blocks sign-up.
	if service.seeder != nil {
		if err := service.seeder.SeedDefaults(context, user.ID); err != nil {
			ctxutil.GetLogger(context).WarnContext(context, "default_categories_seed_failed",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return session, nil
}

// # Authentication Flow

/*
Login validates user credentials and issues security tokens.

Parameters:
  - context: context.Context
  - email: string
  - password: string

Returns:
  - *Session: Transport-ready credentials
  - error: ErrInvalidCredentials or internal failures
*/
func (service *Service) Login(context context.Context, email, password string) (*Session, error) {
	user, err := service.userRepository.FindByEmail(context, text.Email(email))
	if err != nil {
		if errors.Is(err, errUserMissing) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal(fmt.Errorf("auth_service_login_lookup_failed: %w", err))
	}

	// bcrypt compares in constant time.
	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return service.openSession(context, user)
}

func (service *Service) openSession(context context.Context, user *User) (*Session, error) {
	session, err := service.issuer.IssueSession(context, user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return session, nil
}

/*
Logout blacklists the refresh token and the access token of a session.

Description: Either token may be empty. Every non-empty token is attempted
even when an earlier one fails; the failures are joined.

Parameters:
  - context: context.Context
  - refreshToken: string
  - accessToken: string

Returns:
  - error: Joined revocation failures
*/
func (service *Service) Logout(context context.Context, refreshToken, accessToken string) error {
	var errs []error

	for _, token := range []string{refreshToken, accessToken} {
		if token == "" {
			continue
		}
		if err := service.tokenRepository.Blacklist(context, token); err != nil {
			errs = append(errs, fmt.Errorf("auth_service_logout_failed: %w", err))
		}
	}

	return errors.Join(errs...)
}

// # Refresh Protocol

/*
Refresh exchanges a refresh token for a new access token.

Description: The token store is consulted first; only an active refresh
record proceeds to signature verification. The refresh token itself stays
valid and is not rotated.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - string: Newly issued access token
  - error: ErrMissingRefreshToken, ErrInvalidRefreshToken or ErrRefreshTokenExpired
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrMissingRefreshToken
	}

	record, err := service.tokenRepository.FindActive(context, refreshToken, sec.KindRefresh, service.now())
	if err != nil {
		if errors.Is(err, errTokenMissing) {
			return "", ErrInvalidRefreshToken
		}
		return "", apperr.Internal(fmt.Errorf("auth_service_refresh_lookup_failed: %w", err))
	}

	user, err := service.userRepository.FindByID(context, record.UserID)
	if err != nil {
		if errors.Is(err, errUserMissing) {
			return "", ErrInvalidRefreshToken
		}
		return "", apperr.Internal(fmt.Errorf("auth_service_refresh_user_failed: %w", err))
	}

	// Re-verify the signature independently of the store record.
	claims, err := service.tokens.Parse(refreshToken, sec.KindRefresh, func(string) (string, error) {
		return user.TokenSecret, nil
	})
	if err != nil {
		return "", ErrRefreshTokenExpired.WithCause(err)
	}
	if claims.UserID != record.UserID {
		return "", ErrInvalidRefreshToken
	}

	access, err := service.issuer.IssueAccess(context, user)
	if err != nil {
		return "", apperr.Internal(err)
	}

	return access.Value, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and stores only its SHA-256 hash.
Unknown emails yield an empty token and no error to prevent enumeration.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Raw reset token, empty when the email is unknown
  - error: Generation or storage errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	user, err := service.userRepository.FindByEmail(context, text.Email(email))
	if err != nil {
		if errors.Is(err, errUserMissing) {
			return "", nil
		}
		return "", apperr.Internal(fmt.Errorf("auth_service_reset_lookup_failed: %w", err))
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("auth_service_generate_reset_token_failed: %w", err))
	}

	if err := service.resetTokenRepository.Set(context, sec.HashToken(token), user.ID, ResetTokenTTL); err != nil {
		return "", apperr.Internal(fmt.Errorf("auth_service_save_reset_token_failed: %w", err))
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Consumes the reset record in one atomic step, so a token works
at most once even under concurrent use. The new password hash and the
blacklisting of every token issued to the user commit together.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - error: ErrInvalidResetToken or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {
	tokenHash := sec.HashToken(token)

	userID, err := service.resetTokenRepository.Take(context, tokenHash)
	if err != nil {
		if errors.Is(err, errResetMissing) {
			return ErrInvalidResetToken
		}
		return apperr.Internal(fmt.Errorf("auth_service_reset_take_failed: %w", err))
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_reset_password_hash_failed: %w", err))
	}

	err = service.transactor.WithinTx(context, func(users UserRepository, tokens TokenRepository) error {
		if err := users.UpdatePassword(context, userID, hashedPassword); err != nil {
			return err
		}
		// Every session opened with the old password ends here.
		return tokens.BlacklistUser(context, userID)
	})
	if err != nil {
		if errors.Is(err, errUserMissing) {
			return ErrInvalidResetToken
		}
		return apperr.Internal(fmt.Errorf("auth_service_reset_password_failed: %w", err))
	}

	return nil
}
