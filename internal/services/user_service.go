package services

import (
	"context"
	"database/sql"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/avieira/tourbase-be/internal/auth"
	"github.com/avieira/tourbase-be/internal/models"
)

// Sentinel errors the handlers map onto the HTTP error taxonomy.
var (
	ErrNotFound         = errors.New("user not found")
	ErrDuplicateEmail   = errors.New("email is already registered")
	ErrInvalidEmail     = errors.New("email address is not well-formed")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
)

const minPasswordLen = 8

// UserServiceProvider defines the interface for the credential store.
// Default reads exclude soft-deleted records and never return secret
// columns; the WithPassword variants are the explicit opt-in for
// password-bearing reads.
type UserServiceProvider interface {
	GetByID(id string) (models.User, error)
	GetByIDWithPassword(id string) (models.User, error)
	GetByEmail(email string) (models.User, error)
	GetByEmailWithPassword(email string) (models.User, error)
	List() ([]models.User, error)
	Create(ctx context.Context, name, email, password string) (models.User, error)
	UpdateProfile(id, name, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id, newPassword string) error
	SetResetToken(id, digest string, expires time.Time) error
	FindByResetToken(digest string) (models.User, error)
	ClearResetToken(id string) error
	PurgeExpiredResetTokens() (int64, error)
	Deactivate(id string) error
}

// UserService provides credential storage backed by database/sql.
type UserService struct {
	db     *sql.DB
	hasher *auth.PasswordHasher
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, hasher *auth.PasswordHasher) *UserService {
	return &UserService{db: db, hasher: hasher}
}

const publicColumns = "id, name, email, role, password_changed_at, created_at"
const secretColumns = publicColumns + ", password_hash"

// GetByID retrieves an active user by ID, secret fields omitted.
func (s *UserService) GetByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+publicColumns+" FROM users WHERE id = ? AND active = 1", id)
	return scanUser(row)
}

// GetByIDWithPassword retrieves an active user by ID including the password
// hash and change timestamp.
func (s *UserService) GetByIDWithPassword(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+secretColumns+" FROM users WHERE id = ? AND active = 1", id)
	return scanUserWithSecrets(row)
}

// GetByEmail retrieves an active user by email, secret fields omitted.
func (s *UserService) GetByEmail(email string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+publicColumns+" FROM users WHERE email = ? AND active = 1", normalizeEmail(email))
	return scanUser(row)
}

// GetByEmailWithPassword retrieves an active user by email including the
// password hash. This is the login read path.
func (s *UserService) GetByEmailWithPassword(email string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+secretColumns+" FROM users WHERE email = ? AND active = 1", normalizeEmail(email))
	return scanUserWithSecrets(row)
}

// List returns all active users.
func (s *UserService) List() ([]models.User, error) {
	rows, err := s.db.Query("SELECT " + publicColumns + " FROM users WHERE active = 1 ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		var changedAt sql.NullTime
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &changedAt, &u.CreatedAt); err != nil {
			return nil, err
		}
		if changedAt.Valid {
			t := changedAt.Time
			u.PasswordChangedAt = &t
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Create validates and inserts a new user. Hashing happens here; callers
// never handle the hash. The role always starts as "user".
func (s *UserService) Create(ctx context.Context, name, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, ErrInvalidEmail
	}
	if len(password) < minPasswordLen {
		return models.User{}, ErrPasswordTooShort
	}

	hashed, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Role:      models.RoleUser,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, name, email, role, password_hash, created_at) VALUES(?, ?, ?, ?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(user.ID, user.Name, user.Email, user.Role, hashed, user.CreatedAt); err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return user, nil
}

// UpdateProfile updates a user's non-sensitive information.
func (s *UserService) UpdateProfile(id, name, email string) (models.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return models.User{}, ErrInvalidEmail
	}

	res, err := s.db.Exec("UPDATE users SET name = ?, email = ? WHERE id = ? AND active = 1", name, email, id)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.User{}, ErrNotFound
	}
	return s.GetByID(id)
}

// UpdatePassword hashes and stores a new password. The change timestamp is
// backdated one second so a session token issued in the same instant is not
// rejected as stale, and any pending reset token is invalidated in the same
// write.
func (s *UserService) UpdatePassword(ctx context.Context, id, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}
	hashed, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return err
	}

	changedAt := time.Now().UTC().Add(-time.Second)
	res, err := s.db.Exec(
		"UPDATE users SET password_hash = ?, password_changed_at = ?, reset_token_hash = NULL, reset_token_expires = NULL WHERE id = ? AND active = 1",
		hashed, changedAt, id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResetToken persists a pending reset token digest and expiry. This is a
// token-only write; no profile validation runs.
func (s *UserService) SetResetToken(id, digest string, expires time.Time) error {
	res, err := s.db.Exec(
		"UPDATE users SET reset_token_hash = ?, reset_token_expires = ? WHERE id = ? AND active = 1",
		digest, expires.UTC(), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByResetToken looks up the active user holding an unexpired reset
// token with the given digest.
func (s *UserService) FindByResetToken(digest string) (models.User, error) {
	row := s.db.QueryRow(
		"SELECT "+publicColumns+" FROM users WHERE reset_token_hash = ? AND reset_token_expires > ? AND active = 1",
		digest, time.Now().UTC(),
	)
	return scanUser(row)
}

// ClearResetToken removes a pending reset token, making it unredeemable.
func (s *UserService) ClearResetToken(id string) error {
	_, err := s.db.Exec("UPDATE users SET reset_token_hash = NULL, reset_token_expires = NULL WHERE id = ?", id)
	return err
}

// PurgeExpiredResetTokens nulls reset-token columns whose expiry passed.
// Redemption is already expiry-gated; this keeps dead secrets from
// lingering at rest.
func (s *UserService) PurgeExpiredResetTokens() (int64, error) {
	res, err := s.db.Exec(
		"UPDATE users SET reset_token_hash = NULL, reset_token_expires = NULL WHERE reset_token_expires IS NOT NULL AND reset_token_expires <= ?",
		time.Now().UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Deactivate soft-deletes a user. The record stays but disappears from all
// default reads.
func (s *UserService) Deactivate(id string) error {
	res, err := s.db.Exec("UPDATE users SET active = 0 WHERE id = ? AND active = 1", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(row *sql.Row) (models.User, error) {
	var u models.User
	var changedAt sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &changedAt, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	if changedAt.Valid {
		t := changedAt.Time
		u.PasswordChangedAt = &t
	}
	u.Active = true
	return u, nil
}

func scanUserWithSecrets(row *sql.Row) (models.User, error) {
	var u models.User
	var changedAt sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &changedAt, &u.CreatedAt, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	if changedAt.Valid {
		t := changedAt.Time
		u.PasswordChangedAt = &t
	}
	u.Active = true
	return u, nil
}
