package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Account is the bun model for the accounts table.
// Nullable pointer fields are written as NULL once the code or token they hold is consumed.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID                        uuid.UUID  `bun:"id,pk"`
	Email                     string     `bun:"email,notnull,unique"`
	Name                      string     `bun:"name,notnull"`
	PasswordHash              string     `bun:"password_hash,notnull"`
	IsVerified                bool       `bun:"is_verified,notnull,default:false"`
	VerificationCode          *string    `bun:"verification_code"`
	VerificationCodeExpiresAt *time.Time `bun:"verification_code_expires_at"`
	ResetTokenHash            *string    `bun:"reset_token_hash"`
	ResetTokenExpiresAt       *time.Time `bun:"reset_token_expires_at"`
	LastLoginAt               time.Time  `bun:"last_login_at,notnull"`
	CreatedAt                 time.Time  `bun:"created_at,notnull"`
	UpdatedAt                 time.Time  `bun:"updated_at,notnull"`
}
