package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/authflow/internal/account"
	"github.com/redmonkez12/authflow/internal/httputil"
	"github.com/redmonkez12/authflow/internal/logging"
)

const msgServerError = "Server error"

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service *Service
	cookies CookieOptions
}

func NewHandler(service *Service, cookies CookieOptions) *Handler {
	return &Handler{
		service: service,
		cookies: cookies,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailRequest accepts the code as a JSON string or number
type VerifyEmailRequest struct {
	Code json.Number `json:"code" swaggertype:"string"`
}

// ForgotPasswordRequest represents the forgot password request body
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest carries the new password; the token is a path parameter
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// AccountResponse is the public view of an account
type AccountResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	IsVerified bool      `json:"isVerified"`
	LastLogin  time.Time `json:"lastLogin"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EnvelopeResponse documents the response shape for Swagger
type EnvelopeResponse struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	User    *AccountResponse `json:"user,omitempty"`
}

func newAccountResponse(acc *account.Account) *AccountResponse {
	return &AccountResponse{
		ID:         acc.ID,
		Email:      acc.Email,
		Name:       acc.Name,
		IsVerified: acc.IsVerified,
		LastLogin:  acc.LastLoginAt,
		CreatedAt:  acc.CreatedAt,
		UpdatedAt:  acc.UpdatedAt,
	}
}

// Signup handles account creation
// @Summary      Sign up
// @Description  Create an unverified account, start a session and email a 6-digit verification code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup data"
// @Success      201 {object} EnvelopeResponse
// @Failure      400 {object} EnvelopeResponse "Missing fields, invalid email or account exists"
// @Failure      500 {object} EnvelopeResponse "Server error"
// @Router       /api/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid signup request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	acc, session, err := h.service.Signup(r.Context(), req.Email, req.Name, req.Password)
	if session != nil {
		SetSessionCookie(w, h.cookies, session.Token)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired):
			httputil.RespondError(w, "All fields are required", http.StatusBadRequest)
		case errors.Is(err, ErrInvalidEmailFormat):
			httputil.RespondError(w, "Invalid email address", http.StatusBadRequest)
		case errors.Is(err, account.ErrDuplicateEmail):
			logger.Warn("signup failed: account exists")
			httputil.RespondError(w, "User already exists", http.StatusBadRequest)
		default:
			logger.Error("signup failed", "error", err.Error())
			httputil.RespondError(w, msgServerError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("account created", "account_id", acc.ID)
	httputil.RespondSuccess(w, "User created successfully", newAccountResponse(acc), http.StatusCreated)
}

// VerifyEmail handles email verification
// @Summary      Verify email address
// @Description  Verify the account holding a non-expired verification code.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyEmailRequest true "Verification code"
// @Success      200 {object} EnvelopeResponse
// @Failure      400 {object} EnvelopeResponse "Invalid or expired code"
// @Failure      500 {object} EnvelopeResponse "Server error"
// @Router       /api/auth/verify-email [post]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid verify email request body", "error", err.Error())
		httputil.RespondError(w, "Invalid or expired verification code", http.StatusBadRequest)
		return
	}

	acc, err := h.service.VerifyEmail(r.Context(), req.Code.String())
	if err != nil {
		if errors.Is(err, ErrInvalidVerificationCode) {
			logger.Warn("email verification failed: invalid or expired code")
			httputil.RespondError(w, "Invalid or expired verification code", http.StatusBadRequest)
			return
		}
		logger.Error("email verification failed", "error", err.Error())
		httputil.RespondError(w, msgServerError, http.StatusInternalServerError)
		return
	}

	logger.Info("email verified", "account_id", acc.ID)
	httputil.RespondSuccess(w, "Email verified successfully", newAccountResponse(acc), http.StatusOK)
}

// Login handles credential login
// @Summary      Log in
// @Description  Authenticate with email and password; the session token is set as an HTTP-only cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} EnvelopeResponse
// @Failure      400 {object} EnvelopeResponse "Missing fields or invalid credentials"
// @Failure      500 {object} EnvelopeResponse "Server error"
// @Router       /api/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid login request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	acc, session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrFieldsRequired):
			httputil.RespondError(w, "All fields are required", http.StatusBadRequest)
		case errors.Is(err, ErrInvalidCredentials):
			logger.Warn("login failed: invalid credentials")
			httputil.RespondError(w, "Invalid credentials", http.StatusBadRequest)
		default:
			logger.Error("login failed", "error", err.Error())
			httputil.RespondError(w, msgServerError, http.StatusInternalServerError)
		}
		return
	}

	SetSessionCookie(w, h.cookies, session.Token)

	logger.Info("logged in", "account_id", acc.ID)
	httputil.RespondSuccess(w, "Logged in successfully", newAccountResponse(acc), http.StatusOK)
}

// Logout handles logout
// @Summary      Log out
// @Description  Clear the session cookie and revoke the session when one is presented.
// @Tags         auth
// @Produce      json
// @Success      200 {object} EnvelopeResponse
// @Router       /api/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if token, err := GetSessionTokenFromCookie(r, h.cookies.Name); err == nil {
		if err := h.service.Logout(r.Context(), token); err != nil {
			logger.Warn("failed to revoke session", "error", err.Error())
		}
	}

	ClearSessionCookie(w, h.cookies)

	httputil.RespondSuccess(w, "Logged out successfully", nil, http.StatusOK)
}

// ForgotPassword handles password reset requests
// @Summary      Request password reset
// @Description  Email a reset link valid for one hour.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Email address"
// @Success      200 {object} EnvelopeResponse
// @Failure      400 {object} EnvelopeResponse "Email missing"
// @Failure      404 {object} EnvelopeResponse "Unknown email"
// @Failure      500 {object} EnvelopeResponse "Server error"
// @Router       /api/auth/forgot-password [post]
func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid forgot password request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	logger = logger.WithFields(map[string]any{"email": req.Email})

	if err := h.service.ForgotPassword(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, ErrEmailRequired):
			httputil.RespondError(w, "Email is required", http.StatusBadRequest)
		case errors.Is(err, ErrAccountNotFound):
			logger.Warn("password reset requested for unknown email")
			httputil.RespondError(w, "User not found", http.StatusNotFound)
		default:
			logger.Error("forgot password failed", "error", err.Error())
			httputil.RespondError(w, msgServerError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password reset link sent")
	httputil.RespondSuccess(w, "Password reset link sent to your email", nil, http.StatusOK)
}

// ResetPassword handles password reset with token
// @Summary      Reset password
// @Description  Set a new password using the token from the reset link. All sessions are revoked.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token path string true "Reset token"
// @Param        request body ResetPasswordRequest true "New password"
// @Success      200 {object} EnvelopeResponse
// @Failure      400 {object} EnvelopeResponse "Password missing or token invalid/expired"
// @Failure      500 {object} EnvelopeResponse "Server error"
// @Router       /api/auth/reset-password/{token} [post]
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid reset password request body", "error", err.Error())
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	acc, err := h.service.ResetPassword(r.Context(), chi.URLParam(r, "token"), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondError(w, "Password is required", http.StatusBadRequest)
		case errors.Is(err, ErrInvalidResetToken):
			logger.Warn("password reset failed: invalid or expired token")
			httputil.RespondError(w, "Invalid or expired reset token", http.StatusBadRequest)
		default:
			logger.Error("password reset failed", "error", err.Error())
			httputil.RespondError(w, msgServerError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("password reset", "account_id", acc.ID)
	httputil.RespondSuccess(w, "Password reset successfully", newAccountResponse(acc), http.StatusOK)
}

// CheckAuth returns the authenticated account
// @Summary      Check session
// @Description  Return the account behind the session cookie.
// @Tags         auth
// @Produce      json
// @Success      200 {object} EnvelopeResponse
// @Failure      401 {object} EnvelopeResponse "No or invalid session"
// @Failure      404 {object} EnvelopeResponse "Account no longer exists"
// @Failure      500 {object} EnvelopeResponse "Server error"
// @Router       /api/auth/check-auth [get]
func (h *Handler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Unauthorized - no token provided", http.StatusUnauthorized)
		return
	}

	acc, err := h.service.CheckAuth(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			httputil.RespondError(w, "User not found", http.StatusNotFound)
			return
		}
		logger.Error("check auth failed", "error", err.Error())
		httputil.RespondError(w, msgServerError, http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, "", newAccountResponse(acc), http.StatusOK)
}

// ResendVerification sends a fresh verification code
// @Summary      Resend verification code
// @Description  Issue a new 24-hour verification code to the signed-in, unverified account.
// @Tags         auth
// @Produce      json
// @Success      200 {object} EnvelopeResponse
// @Failure      400 {object} EnvelopeResponse "Already verified"
// @Failure      401 {object} EnvelopeResponse "No or invalid session"
// @Failure      404 {object} EnvelopeResponse "Account no longer exists"
// @Failure      500 {object} EnvelopeResponse "Server error"
// @Router       /api/auth/resend-verification [post]
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	accountID, ok := GetAccountIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Unauthorized - no token provided", http.StatusUnauthorized)
		return
	}

	if err := h.service.ResendVerification(r.Context(), accountID); err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyVerified):
			httputil.RespondError(w, "Email already verified", http.StatusBadRequest)
		case errors.Is(err, ErrAccountNotFound):
			httputil.RespondError(w, "User not found", http.StatusNotFound)
		default:
			logger.Error("resend verification failed", "error", err.Error())
			httputil.RespondError(w, msgServerError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondSuccess(w, "Verification code sent", nil, http.StatusOK)
}
