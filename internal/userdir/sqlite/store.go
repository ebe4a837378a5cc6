// Package sqlite provides a SQLite-backed user directory implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
	"github.com/louisbranch/crowdcue/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/crowdcue/internal/userdir"
	"github.com/louisbranch/crowdcue/internal/userdir/sqlite/migrations"
)

// Store persists user profiles in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite user store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateUser inserts one profile with a generated ID.
func (s *Store) CreateUser(ctx context.Context, username string) (userdir.User, error) {
	if err := ctx.Err(); err != nil {
		return userdir.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return userdir.User{}, fmt.Errorf("storage is not configured")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return userdir.User{}, apperrors.New(apperrors.CodeUsernameEmpty, "username is required")
	}

	user := userdir.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)",
		user.ID, user.Username, user.CreatedAt.UnixMilli(),
	); err != nil {
		return userdir.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetUser retrieves one profile by ID.
func (s *Store) GetUser(ctx context.Context, id string) (userdir.User, error) {
	if err := ctx.Err(); err != nil {
		return userdir.User{}, err
	}
	if s == nil || s.sqlDB == nil {
		return userdir.User{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return userdir.User{}, apperrors.New(apperrors.CodeUserNotFound, "user id is required")
	}

	var (
		user      userdir.User
		createdAt int64
	)
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, username, created_at FROM users WHERE id = ?", id,
	)
	if err := row.Scan(&user.ID, &user.Username, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return userdir.User{}, apperrors.WithMetadata(apperrors.CodeUserNotFound,
				"user not found", map[string]string{"user_id": id})
		}
		return userdir.User{}, fmt.Errorf("select user: %w", err)
	}
	user.CreatedAt = time.UnixMilli(createdAt).UTC()
	return user, nil
}
