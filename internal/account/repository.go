package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/authflow/internal/database"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles account persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new unverified account
func (r *Repository) Create(ctx context.Context, email, name, passwordHash, verificationCode string, codeExpiresAt time.Time) (*Account, error) {
	now := time.Now().UTC()
	expiresAt := codeExpiresAt.UTC()

	dbAccount := &database.Account{
		ID:                        uuid.New(),
		Email:                     email,
		Name:                      name,
		PasswordHash:              passwordHash,
		IsVerified:                false,
		VerificationCode:          &verificationCode,
		VerificationCodeExpiresAt: &expiresAt,
		LastLoginAt:               now,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}

	if _, err := r.db.NewInsert().Model(dbAccount).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return mapDBAccountToModel(dbAccount), nil
}

// GetByEmail retrieves an account by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return r.getOne(ctx, "get account by email", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("email = ?", email)
	})
}

// GetByID retrieves an account by ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return r.getOne(ctx, "get account by id", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id)
	})
}

// GetByVerificationCode retrieves an account holding code with an expiry after now
func (r *Repository) GetByVerificationCode(ctx context.Context, code string, now time.Time) (*Account, error) {
	return r.getOne(ctx, "get account by verification code", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("verification_code = ?", code).
			Where("verification_code_expires_at > ?", now.UTC()).
			OrderExpr("verification_code_expires_at DESC").
			Limit(1)
	})
}

// GetByResetTokenHash retrieves an account holding the reset token hash with an expiry after now
func (r *Repository) GetByResetTokenHash(ctx context.Context, tokenHash string, now time.Time) (*Account, error) {
	return r.getOne(ctx, "get account by reset token", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("reset_token_hash = ?", tokenHash).
			Where("reset_token_expires_at > ?", now.UTC())
	})
}

// VerificationCodeInUse reports whether an unexpired verification code is already held by an account
func (r *Repository) VerificationCodeInUse(ctx context.Context, code string, now time.Time) (bool, error) {
	exists, err := r.db.NewSelect().
		Model((*database.Account)(nil)).
		Where("verification_code = ?", code).
		Where("verification_code_expires_at > ?", now.UTC()).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check verification code: %w", err)
	}
	return exists, nil
}

// MarkVerified flags the account as verified and clears the code, provided
// the code is still the one stored. A concurrent consumer gets ErrNotFound.
func (r *Repository) MarkVerified(ctx context.Context, id uuid.UUID, code string) error {
	result, err := r.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("is_verified = ?", true).
		Set("verification_code = NULL").
		Set("verification_code_expires_at = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("verification_code = ?", code).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}

	return expectRows(result)
}

// UpdateVerificationCode replaces the code of an unverified account
func (r *Repository) UpdateVerificationCode(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("verification_code = ?", code).
		Set("verification_code_expires_at = ?", expiresAt.UTC()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("is_verified = ?", false).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update verification code: %w", err)
	}

	return expectRows(result)
}

// SetResetToken stores a password reset token hash, replacing any previous one
func (r *Repository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("reset_token_hash = ?", tokenHash).
		Set("reset_token_expires_at = ?", expiresAt.UTC()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	return expectRows(result)
}

// ResetPassword stores the new password hash and clears the reset token,
// provided tokenHash is still the stored one.
func (r *Repository) ResetPassword(ctx context.Context, id uuid.UUID, tokenHash, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("reset_token_hash = NULL").
		Set("reset_token_expires_at = NULL").
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("reset_token_hash = ?", tokenHash).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	return expectRows(result)
}

// UpdateLastLogin records a successful login
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.NewUpdate().
		Model((*database.Account)(nil)).
		Set("last_login_at = ?", at.UTC()).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return expectRows(result)
}

func (r *Repository) getOne(ctx context.Context, op string, where func(*bun.SelectQuery) *bun.SelectQuery) (*Account, error) {
	dbAccount := new(database.Account)
	err := where(r.db.NewSelect().Model(dbAccount)).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	return mapDBAccountToModel(dbAccount), nil
}

func expectRows(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	// sqlite reports constraint failures only through the message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// mapDBAccountToModel converts database model to domain model
func mapDBAccountToModel(dba *database.Account) *Account {
	return &Account{
		ID:                        dba.ID,
		Email:                     dba.Email,
		Name:                      dba.Name,
		PasswordHash:              dba.PasswordHash,
		IsVerified:                dba.IsVerified,
		VerificationCode:          dba.VerificationCode,
		VerificationCodeExpiresAt: dba.VerificationCodeExpiresAt,
		ResetTokenHash:            dba.ResetTokenHash,
		ResetTokenExpiresAt:       dba.ResetTokenExpiresAt,
		LastLoginAt:               dba.LastLoginAt,
		CreatedAt:                 dba.CreatedAt,
		UpdatedAt:                 dba.UpdatedAt,
	}
}
