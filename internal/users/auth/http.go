// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/taskflow/internal/platform/cookie"
	"github.com/taibuivan/taskflow/internal/platform/ctxutil"
	"github.com/taibuivan/taskflow/internal/platform/middleware"
	requestutil "github.com/taibuivan/taskflow/internal/platform/request"
	"github.com/taibuivan/taskflow/internal/platform/respond"
	"github.com/taibuivan/taskflow/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler owns the refresh cookie: it is written on register and login,
// read on refresh and logout, and cleared on logout.
type Handler struct {
	authService *Service
	verifier    middleware.SessionVerifier
	cookie      cookie.Policy

	// exposeResetToken logs raw reset tokens. Development only.
	exposeResetToken bool
}

// NewHandler constructs a new [Handler] with its dependencies.
func NewHandler(service *Service, verifier middleware.SessionVerifier, policy cookie.Policy, exposeResetToken bool) *Handler {
	return &Handler{
		authService:      service,
		verifier:         verifier,
		cookie:           policy,
		exposeResetToken: exposeResetToken,
	}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register               : Creates an account and opens a session.
//   - POST /login                  : Opens a session.
//   - POST /refresh                : Exchanges the refresh cookie for an access token.
//   - POST /logout                 : Blacklists the session tokens and clears the cookie.
//   - GET  /verify                 : Returns the bearer token's user.
//   - POST /forgot-password        : Issues a password reset token.
//   - POST /reset-password/{token} : Sets a new password.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password/{token}", handler.resetPassword)

	router.With(middleware.Authenticate(handler.verifier)).Get("/verify", handler.verify)

	return router
}

// # Request Payloads

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// # Response Payloads

type sessionResponse struct {
	Success bool       `json:"success"`
	Token   string     `json:"token"`
	User    PublicUser `json:"user"`
}

type refreshResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type verifyResponse struct {
	User PublicUser `json:"user"`
}

func (input credentialsRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)
	return validator.Err()
}

/*
Register handles the creation of a new user account.

POST /api/auth/register

Request:
  - Body: credentialsRequest (Email, Password)

Response:
  - 201: sessionResponse, refresh cookie set
  - 400: Validation failure or DUPLICATE_REGISTRATION
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookie.Set(writer, session.RefreshToken)
	respond.Created(writer, sessionResponse{Success: true, Token: session.AccessToken, User: session.User.Public()})
}

/*
Login authenticates a user and establishes a session.

POST /api/auth/login

Request:
  - Body: credentialsRequest (Email, Password)

Response:
  - 200: sessionResponse, refresh cookie set
  - 401: INVALID_CREDENTIALS
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input credentialsRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.cookie.Set(writer, session.RefreshToken)
	respond.JSON(writer, http.StatusOK, sessionResponse{Success: true, Token: session.AccessToken, User: session.User.Public()})
}

/*
Refresh issues a new access token using the refresh cookie.

POST /api/auth/refresh

Description: The cookie is the only accepted transport for refresh tokens.
A cookie with a bad signature counts as missing.

Response:
  - 200: refreshResponse
  - 401: MISSING_REFRESH_TOKEN, INVALID_REFRESH_TOKEN or REFRESH_TOKEN_EXPIRED
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	refreshToken, _ := handler.cookie.Read(request)

	token, err := handler.authService.Refresh(request.Context(), refreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, refreshResponse{Success: true, Token: token})
}

/*
Logout terminates the current session.

POST /api/auth/logout

Description: Blacklists the refresh cookie token and the bearer token when
present. Store failures are logged and never reach the client.

Response:
  - 200: Message, cookie cleared
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	refreshToken, _ := handler.cookie.Read(request)
	accessToken := requestutil.BearerToken(request)

	if err := handler.authService.Logout(request.Context(), refreshToken, accessToken); err != nil {
		ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "logout_blacklist_failed",
			slog.String("error", err.Error()),
		)
	}

	handler.cookie.Clear(writer)
	respond.Message(writer, messageLoggedOut)
}

/*
Verify reports the user behind the bearer token.

GET /api/auth/verify

Response:
  - 200: verifyResponse
  - 401: Session verification failure
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	principal := requestutil.Principal(request)
	respond.JSON(writer, http.StatusOK, verifyResponse{
		User: PublicUser{ID: principal.UserID, Email: principal.Email},
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/auth/forgot-password

Request:
  - Body: forgotPasswordRequest (Email)

Response:
  - 200: Generic message, whether or not the email is registered
  - 400: Invalid email format
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token, err := handler.authService.RequestPasswordReset(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Mail delivery is not wired; development builds log the token instead.
	if token != "" {
		attrs := []any{slog.String(FieldEmail, input.Email)}
		if handler.exposeResetToken {
			attrs = append(attrs, slog.String(FieldToken, token))
		}
		ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "password_reset_requested", attrs...)
	}

	respond.Message(writer, messageResetSent)
}

/*
ResetPassword completes the password recovery flow.

POST /api/auth/reset-password/{token}

Request:
  - Body: resetPasswordRequest (Password)

Response:
  - 200: Message
  - 400: INVALID_RESET_TOKEN or weak password
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	token := requestutil.Param(request, FieldToken)

	validator := &validate.Validator{}
	validator.Required(FieldToken, token).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, messageResetComplete)
}
