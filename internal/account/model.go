package account

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID                        uuid.UUID
	Email                     string
	Name                      string
	PasswordHash              string
	IsVerified                bool
	VerificationCode          *string
	VerificationCodeExpiresAt *time.Time
	ResetTokenHash            *string
	ResetTokenExpiresAt       *time.Time
	LastLoginAt               time.Time
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}
