package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	apperrors "github.com/louisbranch/crowdcue/internal/platform/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "users.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGetUser(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created, err := store.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected a creation timestamp")
	}

	got, err := store.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Username != "alice" {
		t.Fatalf("username = %q, want alice", got.Username)
	}
	if got.CreatedAt.UnixMilli() != created.CreatedAt.UnixMilli() {
		t.Fatalf("created_at mismatch: %v vs %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestCreateUserRejectsEmptyUsername(t *testing.T) {
	store := openTestStore(t)
	_, err := store.CreateUser(context.Background(), "  ")
	if !errors.Is(err, apperrors.New(apperrors.CodeUsernameEmpty, "")) {
		t.Fatalf("expected username empty error, got %v", err)
	}
}

func TestGetUserNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetUser(context.Background(), "missing")
	if !errors.Is(err, apperrors.New(apperrors.CodeUserNotFound, "")) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	user, err := store.CreateUser(context.Background(), "bob")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.GetUser(context.Background(), user.ID); err != nil {
		t.Fatalf("get user after reopen: %v", err)
	}
}
