package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/authflow/internal/account"
	"github.com/redmonkez12/authflow/internal/logging"
)

var (
	ErrFieldsRequired          = errors.New("all fields are required")
	ErrEmailRequired           = errors.New("email is required")
	ErrPasswordRequired        = errors.New("password is required")
	ErrInvalidEmailFormat      = errors.New("invalid email format")
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrInvalidVerificationCode = errors.New("invalid or expired verification code")
	ErrInvalidResetToken       = errors.New("invalid or expired reset token")
	ErrEmailAlreadyVerified    = errors.New("email already verified")
	ErrAccountNotFound         = errors.New("account not found")
	// ErrMailDelivery wraps mail failures that happen after state was committed
	ErrMailDelivery = errors.New("mail delivery failed")
)

const (
	verificationCodeTTL = 24 * time.Hour
	resetTokenTTL       = 1 * time.Hour
	maxCodeAttempts     = 5
)

// Session is an issued session token and its expiry
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Identity is the authenticated caller resolved from a session token
type Identity struct {
	AccountID uuid.UUID
	SessionID string
}

// Service handles authentication business logic
type Service struct {
	accounts        AccountRepository
	sessions        SessionStore
	tokens          TokenService
	mailer          Mailer
	logger          *logging.Logger
	sessionDuration time.Duration
	now             func() time.Time
	newCode         func() (string, error)
}

func NewService(
	accounts AccountRepository,
	sessions SessionStore,
	tokens TokenService,
	mailer Mailer,
	logger *logging.Logger,
	sessionDuration time.Duration,
) *Service {
	return &Service{
		accounts:        accounts,
		sessions:        sessions,
		tokens:          tokens,
		mailer:          mailer,
		logger:          logger,
		sessionDuration: sessionDuration,
		now:             time.Now,
		newCode:         generateVerificationCode,
	}
}

// Signup creates an unverified account, opens a session and sends the verification code.
// When only the email fails, the account and session are still returned alongside an
// error wrapping ErrMailDelivery.
func (s *Service) Signup(ctx context.Context, email, name, password string) (*account.Account, *Session, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)

	if email == "" || name == "" || password == "" {
		return nil, nil, ErrFieldsRequired
	}
	if len(email) > 254 {
		return nil, nil, ErrInvalidEmailFormat
	}
	// display-name forms such as "Name <a@b.com>" parse but are not a bare address
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, nil, ErrInvalidEmailFormat
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, nil, account.ErrDuplicateEmail
	} else if !errors.Is(err, account.ErrNotFound) {
		return nil, nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := s.unusedVerificationCode(ctx)
	if err != nil {
		return nil, nil, err
	}

	acc, err := s.accounts.Create(ctx, email, name, passwordHash, code, s.now().Add(verificationCodeTTL))
	if err != nil {
		if errors.Is(err, account.ErrDuplicateEmail) {
			return nil, nil, account.ErrDuplicateEmail
		}
		return nil, nil, fmt.Errorf("failed to create account: %w", err)
	}

	session, err := s.issueSession(ctx, acc.ID)
	if err != nil {
		return nil, nil, err
	}

	if err := s.mailer.SendVerificationEmail(ctx, acc.Email, code); err != nil {
		return acc, session, fmt.Errorf("%w: verification email: %w", ErrMailDelivery, err)
	}

	return acc, session, nil
}

// VerifyEmail consumes a verification code and sends the welcome email
func (s *Service) VerifyEmail(ctx context.Context, code string) (*account.Account, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrInvalidVerificationCode
	}

	acc, err := s.accounts.GetByVerificationCode(ctx, code, s.now())
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrInvalidVerificationCode
		}
		return nil, fmt.Errorf("failed to find account by code: %w", err)
	}

	if err := s.accounts.MarkVerified(ctx, acc.ID, code); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrInvalidVerificationCode
		}
		return nil, fmt.Errorf("failed to verify account: %w", err)
	}

	acc.IsVerified = true
	acc.VerificationCode = nil
	acc.VerificationCodeExpiresAt = nil

	if err := s.mailer.SendWelcomeEmail(ctx, acc.Email, acc.Name); err != nil {
		return acc, fmt.Errorf("%w: welcome email: %w", ErrMailDelivery, err)
	}

	return acc, nil
}

// Login checks credentials, opens a session and records the login time.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*account.Account, *Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil, ErrFieldsRequired
	}

	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			verifyPassword(dummyHash, password)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to get account: %w", err)
	}

	if !verifyPassword(acc.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.issueSession(ctx, acc.ID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if err := s.accounts.UpdateLastLogin(ctx, acc.ID, now); err != nil {
		return nil, nil, fmt.Errorf("failed to update last login: %w", err)
	}
	acc.LastLoginAt = now

	return acc, session, nil
}

// Logout revokes the session behind token, if any. Unparseable tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil
	}

	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return nil
}

// ForgotPassword stores a fresh reset token and emails the reset link
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}

	acc, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("failed to generate reset token: %w", err)
	}

	if err := s.accounts.SetResetToken(ctx, acc.ID, hashToken(token), s.now().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, acc.Email, token); err != nil {
		return fmt.Errorf("%w: password reset email: %w", ErrMailDelivery, err)
	}

	return nil
}

// ResetPassword consumes a reset token, stores the new password and revokes all sessions
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) (*account.Account, error) {
	if newPassword == "" {
		return nil, ErrPasswordRequired
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidResetToken
	}

	tokenHash := hashToken(token)

	acc, err := s.accounts.GetByResetTokenHash(ctx, tokenHash, s.now())
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to find account by reset token: %w", err)
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accounts.ResetPassword(ctx, acc.ID, tokenHash, passwordHash); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to reset password: %w", err)
	}

	acc.PasswordHash = passwordHash
	acc.ResetTokenHash = nil
	acc.ResetTokenExpiresAt = nil

	if err := s.sessions.DeleteAllForAccount(ctx, acc.ID); err != nil {
		s.logger.Warn("failed to revoke sessions after password reset", "account_id", acc.ID, "error", err)
	}

	if err := s.mailer.SendResetSuccessEmail(ctx, acc.Email); err != nil {
		return acc, fmt.Errorf("%w: reset success email: %w", ErrMailDelivery, err)
	}

	return acc, nil
}

// CheckAuth loads the account of an authenticated caller
func (s *Service) CheckAuth(ctx context.Context, accountID uuid.UUID) (*account.Account, error) {
	acc, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return acc, nil
}

// ResendVerification issues a new code to an unverified account
func (s *Service) ResendVerification(ctx context.Context, accountID uuid.UUID) error {
	acc, err := s.CheckAuth(ctx, accountID)
	if err != nil {
		return err
	}
	if acc.IsVerified {
		return ErrEmailAlreadyVerified
	}

	code, err := s.unusedVerificationCode(ctx)
	if err != nil {
		return err
	}

	if err := s.accounts.UpdateVerificationCode(ctx, acc.ID, code, s.now().Add(verificationCodeTTL)); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return ErrEmailAlreadyVerified
		}
		return fmt.Errorf("failed to update verification code: %w", err)
	}

	if err := s.mailer.SendVerificationEmail(ctx, acc.Email, code); err != nil {
		return fmt.Errorf("%w: verification email: %w", ErrMailDelivery, err)
	}

	return nil
}

// Authenticate resolves a session token to the caller identity.
// The token must verify and its session record must still exist.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.tokens.VerifyToken(token)
	if err != nil {
		return nil, err
	}

	accountID, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	owner, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if owner != accountID {
		return nil, ErrInvalidToken
	}

	return &Identity{AccountID: accountID, SessionID: claims.SessionID}, nil
}

// unusedVerificationCode draws codes until one is not held by another unexpired account,
// since verification looks accounts up by code alone.
func (s *Service) unusedVerificationCode(ctx context.Context) (string, error) {
	for range maxCodeAttempts {
		code, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("failed to generate verification code: %w", err)
		}

		inUse, err := s.accounts.VerificationCodeInUse(ctx, code, s.now())
		if err != nil {
			return "", fmt.Errorf("failed to check verification code: %w", err)
		}
		if !inUse {
			return code, nil
		}
	}

	return "", fmt.Errorf("no unused verification code after %d attempts", maxCodeAttempts)
}

// issueSession stores a session record and signs a token referencing it
func (s *Service) issueSession(ctx context.Context, accountID uuid.UUID) (*Session, error) {
	sessionID, err := s.sessions.Create(ctx, accountID, s.sessionDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.CreateToken(accountID, sessionID, s.sessionDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create session token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: s.now().Add(s.sessionDuration)}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
