package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avieira/tourbase-be/internal/auth"
	"github.com/avieira/tourbase-be/internal/database"
)

func newTestUserService(t *testing.T) (*UserService, *sql.DB) {
	t.Helper()
	db, err := database.New(":memory:")
	require.NoError(t, err)
	// A second pool connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	hasher := auth.NewPasswordHasher(bcrypt.MinCost, 4)
	return NewUserService(db, hasher), db
}

func TestUserService_CreateAndGet(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "Alice", "Alice@Example.COM", "longpassword1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "alice@example.com", user.Email, "email must be lowercased")
	assert.Equal(t, "user", user.Role)

	got, err := svc.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.PasswordHash, "default reads omit the password hash")

	byEmail, err := svc.GetByEmail("ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserService_CreateValidation(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Bob", "not-an-email", "longpassword1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.Create(ctx, "Bob", "bob@example.com", "short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestUserService_DuplicateEmail(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "Alice", "alice@example.com", "longpassword1")
	require.NoError(t, err)

	_, err = svc.Create(ctx, "Other Alice", "ALICE@example.com", "longpassword2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserService_SecretFieldOptIn(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "Alice", "alice@example.com", "longpassword1")
	require.NoError(t, err)

	withSecrets, err := svc.GetByEmailWithPassword("alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, withSecrets.PasswordHash)
	assert.True(t, svc.hasher.Verify(ctx, "longpassword1", withSecrets.PasswordHash))

	byID, err := svc.GetByIDWithPassword(user.ID)
	require.NoError(t, err)
	assert.Equal(t, withSecrets.PasswordHash, byID.PasswordHash)
}

func TestUserService_SoftDelete(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "Alice", "alice@example.com", "longpassword1")
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(user.ID))

	_, err = svc.GetByID(user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByEmail("alice@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetByEmailWithPassword("alice@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	users, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, users)

	// Deactivating twice reports not found.
	assert.ErrorIs(t, svc.Deactivate(user.ID), ErrNotFound)
}

func TestUserService_ResetTokenLifecycle(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "Alice", "alice@example.com", "longpassword1")
	require.NoError(t, err)

	digest := auth.HashResetToken("some-cleartext-token")
	require.NoError(t, svc.SetResetToken(user.ID, digest, time.Now().Add(10*time.Minute)))

	found, err := svc.FindByResetToken(digest)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, svc.ClearResetToken(user.ID))
	_, err = svc.FindByResetToken(digest)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_ResetTokenExpiry(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "Alice", "alice@example.com", "longpassword1")
	require.NoError(t, err)

	digest := auth.HashResetToken("expired-token")
	require.NoError(t, svc.SetResetToken(user.ID, digest, time.Now().Add(-time.Minute)))

	_, err = svc.FindByResetToken(digest)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_UpdatePassword(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "Alice", "alice@example.com", "longpassword1")
	require.NoError(t, err)

	// A pending reset token must be invalidated by the password change.
	digest := auth.HashResetToken("pending-token")
	require.NoError(t, svc.SetResetToken(user.ID, digest, time.Now().Add(10*time.Minute)))

	require.NoError(t, svc.UpdatePassword(ctx, user.ID, "newlongpassword2"))

	updated, err := svc.GetByIDWithPassword(user.ID)
	require.NoError(t, err)
	assert.False(t, svc.hasher.Verify(ctx, "longpassword1", updated.PasswordHash))
	assert.True(t, svc.hasher.Verify(ctx, "newlongpassword2", updated.PasswordHash))
	require.NotNil(t, updated.PasswordChangedAt)
	assert.WithinDuration(t, time.Now(), *updated.PasswordChangedAt, 5*time.Second)

	_, err = svc.FindByResetToken(digest)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.UpdatePassword(ctx, user.ID, "short"), ErrPasswordTooShort)
	assert.ErrorIs(t, svc.UpdatePassword(ctx, "missing-id", "newlongpassword2"), ErrNotFound)
}

func TestUserService_PurgeExpiredResetTokens(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	expired, err := svc.Create(ctx, "Alice", "alice@example.com", "longpassword1")
	require.NoError(t, err)
	pending, err := svc.Create(ctx, "Bob", "bob@example.com", "longpassword1")
	require.NoError(t, err)

	require.NoError(t, svc.SetResetToken(expired.ID, auth.HashResetToken("dead"), time.Now().Add(-time.Minute)))
	pendingDigest := auth.HashResetToken("alive")
	require.NoError(t, svc.SetResetToken(pending.ID, pendingDigest, time.Now().Add(10*time.Minute)))

	n, err := svc.PurgeExpiredResetTokens()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// The unexpired token survives the purge.
	_, err = svc.FindByResetToken(pendingDigest)
	assert.NoError(t, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	svc, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, "Alice", "alice@example.com", "longpassword1")
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(user.ID, "Alice B.", "Alice.B@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", updated.Name)
	assert.Equal(t, "alice.b@example.com", updated.Email)

	_, err = svc.UpdateProfile(user.ID, "Alice", "nonsense")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.UpdateProfile("missing-id", "Nobody", "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
