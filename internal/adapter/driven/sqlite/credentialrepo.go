package sqlite

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/ericfisherdev/soapmock/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

const usersTable = "users"

// CredentialRepo is the SQLite implementation of the CredentialStore port interface.
// Passwords are stored as hex-encoded SHA-256 digests.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// AddUser inserts username with the digest of password. An existing username
// is left untouched.
func (r *CredentialRepo) AddUser(ctx context.Context, username, password string) error {
	query, args, err := sq.Insert(usersTable).
		Options("OR IGNORE").
		Columns("username", "password_hash").
		Values(username, HashPassword(password)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build add user query: %w", err)
	}

	if _, err := r.db.Writer.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("add user %q: %w", username, err)
	}
	return nil
}

// Verify reports whether a user with the given name and password exists.
func (r *CredentialRepo) Verify(ctx context.Context, username, password string) (bool, error) {
	query, args, err := sq.Select("id").
		From(usersTable).
		Where(sq.Eq{"username": username, "password_hash": HashPassword(password)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build verify query: %w", err)
	}

	var id int64
	err = r.db.Reader.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify user %q: %w", username, err)
	}
	return true, nil
}

// Count returns the number of stored users.
func (r *CredentialRepo) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From(usersTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	var n int
	if err := r.db.Reader.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// HashPassword returns the hex-encoded SHA-256 digest of password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
