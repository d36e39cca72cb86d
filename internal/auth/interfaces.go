package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/authflow/internal/account"
)

// TokenService defines the interface for session token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(accountID uuid.UUID, sessionID string, duration time.Duration) (string, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// AccountRepository is the persistence the auth flow needs; *account.Repository satisfies it
type AccountRepository interface {
	Create(ctx context.Context, email, name, passwordHash, verificationCode string, codeExpiresAt time.Time) (*account.Account, error)
	GetByEmail(ctx context.Context, email string) (*account.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	GetByVerificationCode(ctx context.Context, code string, now time.Time) (*account.Account, error)
	GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*account.Account, error)
	VerificationCodeInUse(ctx context.Context, code string, now time.Time) (bool, error)
	MarkVerified(ctx context.Context, id uuid.UUID, code string) error
	UpdateVerificationCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ResetPassword(ctx context.Context, id uuid.UUID, tokenHash, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// SessionStore keeps server-side session records referenced by session tokens
type SessionStore interface {
	Create(ctx context.Context, accountID uuid.UUID, ttl time.Duration) (string, error)
	Get(ctx context.Context, sessionID string) (uuid.UUID, error)
	Delete(ctx context.Context, sessionID string) error
	DeleteAllForAccount(ctx context.Context, accountID uuid.UUID) error
}

// Mailer sends the account lifecycle emails
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, code string) error
	SendWelcomeEmail(ctx context.Context, toEmail, name string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
	SendResetSuccessEmail(ctx context.Context, toEmail string) error
}
