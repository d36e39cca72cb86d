package account

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/authflow/internal/database/dbtest"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(dbtest.NewSQLite(t))
}

func createAccount(t *testing.T, repo *Repository, email, code string, expiresAt time.Time) *Account {
	t.Helper()
	acc, err := repo.Create(context.Background(), email, "Jane", "hash", code, expiresAt)
	require.NoError(t, err)
	return acc
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	created := createAccount(t, repo, "jane@example.com", "123456", time.Now().Add(24*time.Hour))
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.False(t, created.IsVerified)

	byEmail, err := repo.GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	assert.Equal(t, "Jane", byEmail.Name)
	require.NotNil(t, byEmail.VerificationCode)
	assert.Equal(t, "123456", *byEmail.VerificationCode)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", byID.Email)
}

func TestRepository_CreateDuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)

	createAccount(t, repo, "dup@example.com", "111111", time.Now().Add(time.Hour))

	_, err := repo.Create(context.Background(), "dup@example.com", "Other", "hash", "222222", time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRepository_GetMissing(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_VerificationCodeExpiry(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	createAccount(t, repo, "fresh@example.com", "654321", now.Add(time.Hour))
	createAccount(t, repo, "stale@example.com", "999999", now.Add(-time.Hour))

	got, err := repo.GetByVerificationCode(ctx, "654321", now)
	require.NoError(t, err)
	assert.Equal(t, "fresh@example.com", got.Email)

	_, err = repo.GetByVerificationCode(ctx, "999999", now)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.GetByVerificationCode(ctx, "000000", now)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_MarkVerifiedClearsCode(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	acc := createAccount(t, repo, "v@example.com", "123123", time.Now().Add(time.Hour))

	require.NoError(t, repo.MarkVerified(ctx, acc.ID, "123123"))

	got, err := repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, got.IsVerified)
	assert.Nil(t, got.VerificationCode)
	assert.Nil(t, got.VerificationCodeExpiresAt)

	// second consumer of the same code loses
	assert.ErrorIs(t, repo.MarkVerified(ctx, acc.ID, "123123"), ErrNotFound)
}

func TestRepository_UpdateVerificationCodeOnlyWhenUnverified(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	acc := createAccount(t, repo, "r@example.com", "100000", time.Now().Add(time.Hour))

	require.NoError(t, repo.UpdateVerificationCode(ctx, acc.ID, "200000", time.Now().Add(time.Hour)))
	_, err := repo.GetByVerificationCode(ctx, "200000", time.Now())
	require.NoError(t, err)

	require.NoError(t, repo.MarkVerified(ctx, acc.ID, "200000"))
	assert.ErrorIs(t, repo.UpdateVerificationCode(ctx, acc.ID, "300000", time.Now().Add(time.Hour)), ErrNotFound)
}

func TestRepository_VerificationCodeInUse(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	acc := createAccount(t, repo, "held@example.com", "654321", now.Add(time.Hour))

	inUse, err := repo.VerificationCodeInUse(ctx, "654321", now)
	require.NoError(t, err)
	assert.True(t, inUse)

	inUse, err = repo.VerificationCodeInUse(ctx, "654321", now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, inUse, "expired codes can be reissued")

	inUse, err = repo.VerificationCodeInUse(ctx, "000000", now)
	require.NoError(t, err)
	assert.False(t, inUse)

	require.NoError(t, repo.MarkVerified(ctx, acc.ID, "654321"))
	inUse, err = repo.VerificationCodeInUse(ctx, "654321", now)
	require.NoError(t, err)
	assert.False(t, inUse, "consumed codes are free")
}

func TestRepository_ResetTokenLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	now := time.Now()

	acc := createAccount(t, repo, "reset@example.com", "123456", now.Add(time.Hour))

	require.NoError(t, repo.SetResetToken(ctx, acc.ID, "tokenhash", now.Add(time.Hour)))

	got, err := repo.GetByResetTokenHash(ctx, "tokenhash", now)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	_, err = repo.GetByResetTokenHash(ctx, "tokenhash", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.ResetPassword(ctx, acc.ID, "tokenhash", "newhash"))

	got, err = repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.PasswordHash)
	assert.Nil(t, got.ResetTokenHash)
	assert.Nil(t, got.ResetTokenExpiresAt)

	_, err = repo.GetByResetTokenHash(ctx, "tokenhash", now)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.ResetPassword(ctx, acc.ID, "tokenhash", "otherhash"), ErrNotFound)
}

func TestRepository_UpdateLastLogin(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	acc := createAccount(t, repo, "login@example.com", "123456", time.Now().Add(time.Hour))
	at := time.Now().Add(3 * time.Hour).UTC().Truncate(time.Second)

	require.NoError(t, repo.UpdateLastLogin(ctx, acc.ID, at))

	got, err := repo.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.True(t, at.Equal(got.LastLoginAt), "want %v got %v", at, got.LastLoginAt)

	assert.ErrorIs(t, repo.UpdateLastLogin(ctx, uuid.New(), at), ErrNotFound)
}
