package access_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/peterszarvas94/moneyapp-sub000/internal/access"
	"github.com/peterszarvas94/moneyapp-sub000/internal/directory"
	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage/sqlite"
)

func newResolver(t *testing.T) (*sqlite.SQLiteStore, *directory.Directory, *access.Resolver) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "moneyapp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	dir := directory.New(store)
	return store, dir, access.NewResolver(dir)
}

func TestResolve(t *testing.T) {
	store, dir, resolver := newResolver(t)
	ctx := context.Background()

	owner := &models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "x"}
	viewer := &models.User{Name: "Viewer", Email: "viewer@example.com", PasswordHash: "x"}
	stranger := &models.User{Name: "Stranger", Email: "stranger@example.com", PasswordHash: "x"}
	for _, u := range []*models.User{owner, viewer, stranger} {
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	account := &models.Account{Name: "Band fund", Currency: "HUF"}
	if err := store.CreateAccount(ctx, account, &models.Membership{UserID: owner.ID}); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	viewerMembership := &models.Membership{AccountID: account.ID, UserID: viewer.ID, Role: models.RoleViewer}
	if err := dir.Create(ctx, viewerMembership); err != nil {
		t.Fatalf("Create membership failed: %v", err)
	}

	tests := []struct {
		name   string
		userID string
		want   access.Level
	}{
		{"admin membership resolves to admin", owner.ID, access.Admin},
		{"viewer membership resolves to viewer", viewer.ID, access.Viewer},
		{"no membership resolves to denied", stranger.ID, access.Denied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(ctx, tt.userID, account.ID)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %s, want %s", got, tt.want)
			}
		})
	}

	t.Run("revocation takes effect on the next call", func(t *testing.T) {
		if err := dir.Delete(ctx, owner.ID, viewerMembership.ID); err != nil {
			t.Fatalf("Delete membership failed: %v", err)
		}
		got, err := resolver.Resolve(ctx, viewer.ID, account.ID)
		if err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if got != access.Denied {
			t.Errorf("Resolve after revocation = %s, want denied", got)
		}
	})
}

func TestLevelString(t *testing.T) {
	if access.Admin.String() != "admin" || access.Viewer.String() != "viewer" || access.Denied.String() != "denied" {
		t.Error("Level wire names drifted")
	}
}
