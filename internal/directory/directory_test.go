package directory_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/peterszarvas94/moneyapp-sub000/internal/directory"
	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage/sqlite"
)

type fixture struct {
	store *sqlite.SQLiteStore
	dir   *directory.Directory
}

func newFixture(t *testing.T) *fixture {
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

	return &fixture{store: store, dir: directory.New(store)}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, PasswordHash: "x"}
	if err := f.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

func (f *fixture) account(t *testing.T, owner *models.User) (*models.Account, *models.Membership) {
	t.Helper()
	a := &models.Account{Name: "Band fund", Currency: "HUF"}
	m := &models.Membership{UserID: owner.ID}
	if err := f.store.CreateAccount(context.Background(), a, m); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return a, m
}

func (f *fixture) member(t *testing.T, accountID string, user *models.User, role models.Role) *models.Membership {
	t.Helper()
	m := &models.Membership{AccountID: accountID, UserID: user.ID, Role: role}
	if err := f.dir.Create(context.Background(), m); err != nil {
		t.Fatalf("Create membership failed: %v", err)
	}
	return m
}

func TestCreateRejectsDuplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "owner@example.com")
	guest := f.user(t, "guest@example.com")
	account, _ := f.account(t, owner)

	f.member(t, account.ID, guest, models.RoleViewer)

	err := f.dir.Create(ctx, &models.Membership{
		AccountID: account.ID, UserID: guest.ID, Role: models.RoleAdmin,
	})
	if !errors.Is(err, directory.ErrDuplicateMembership) {
		t.Errorf("Expected ErrDuplicateMembership, got %v", err)
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	f := newFixture(t)

	owner := f.user(t, "owner@example.com")
	account, _ := f.account(t, owner)

	err := f.dir.Create(context.Background(), &models.Membership{
		AccountID: account.ID, UserID: owner.ID, Role: "owner",
	})
	if !errors.Is(err, directory.ErrInvalidRole) {
		t.Errorf("Expected ErrInvalidRole, got %v", err)
	}
}

func TestUpdateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "owner@example.com")
	guest := f.user(t, "guest@example.com")
	account, ownerMembership := f.account(t, owner)
	guestMembership := f.member(t, account.ID, guest, models.RoleViewer)

	t.Run("admin promotes a viewer", func(t *testing.T) {
		if err := f.dir.UpdateRole(ctx, owner.ID, guestMembership.ID, models.RoleAdmin); err != nil {
			t.Fatalf("UpdateRole failed: %v", err)
		}
		got, err := f.dir.Lookup(ctx, account.ID, guest.ID)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if got.Role != models.RoleAdmin {
			t.Errorf("Role = %s, want admin", got.Role)
		}
	})

	t.Run("changing one's own role is rejected", func(t *testing.T) {
		err := f.dir.UpdateRole(ctx, owner.ID, ownerMembership.ID, models.RoleViewer)
		if !errors.Is(err, directory.ErrSelfAction) {
			t.Errorf("Expected ErrSelfAction, got %v", err)
		}
	})

	t.Run("demoting the sole admin is rejected", func(t *testing.T) {
		// Demote guest back so owner is the sole admin again.
		if err := f.dir.UpdateRole(ctx, owner.ID, guestMembership.ID, models.RoleViewer); err != nil {
			t.Fatalf("UpdateRole failed: %v", err)
		}
		err := f.dir.UpdateRole(ctx, guest.ID, ownerMembership.ID, models.RoleViewer)
		if !errors.Is(err, directory.ErrLastAdmin) {
			t.Errorf("Expected ErrLastAdmin, got %v", err)
		}
	})
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	owner := f.user(t, "owner@example.com")
	guest := f.user(t, "guest@example.com")
	account, ownerMembership := f.account(t, owner)
	guestMembership := f.member(t, account.ID, guest, models.RoleViewer)

	t.Run("removing one's own membership is rejected", func(t *testing.T) {
		err := f.dir.Delete(ctx, owner.ID, ownerMembership.ID)
		if !errors.Is(err, directory.ErrSelfAction) {
			t.Errorf("Expected ErrSelfAction, got %v", err)
		}
	})

	t.Run("removing the sole admin is rejected", func(t *testing.T) {
		err := f.dir.Delete(ctx, guest.ID, ownerMembership.ID)
		if !errors.Is(err, directory.ErrLastAdmin) {
			t.Errorf("Expected ErrLastAdmin, got %v", err)
		}
	})

	t.Run("admin removes another member", func(t *testing.T) {
		if err := f.dir.Delete(ctx, owner.ID, guestMembership.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		got, err := f.dir.Lookup(ctx, account.ID, guest.ID)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if got != nil {
			t.Error("Membership still present after removal")
		}
	})
}

func TestLeave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("sole admin cannot leave", func(t *testing.T) {
		owner := f.user(t, "solo@example.com")
		account, _ := f.account(t, owner)

		err := f.dir.Leave(ctx, owner.ID, account.ID)
		if !errors.Is(err, directory.ErrLastAdmin) {
			t.Errorf("Expected ErrLastAdmin, got %v", err)
		}
	})

	t.Run("admin leaves once another admin exists", func(t *testing.T) {
		// A is sole admin; A invites C as admin, then A leaves. A's own
		// membership must be gone and C must still administer the account.
		a := f.user(t, "a@example.com")
		c := f.user(t, "c@example.com")
		account, _ := f.account(t, a)
		f.member(t, account.ID, c, models.RoleAdmin)

		if err := f.dir.Leave(ctx, a.ID, account.ID); err != nil {
			t.Fatalf("Leave failed: %v", err)
		}

		gone, err := f.dir.Lookup(ctx, account.ID, a.ID)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if gone != nil {
			t.Error("Membership still present after leaving")
		}

		remaining, err := f.dir.Lookup(ctx, account.ID, c.ID)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if remaining == nil || remaining.Role != models.RoleAdmin {
			t.Errorf("Expected remaining admin, got %+v", remaining)
		}
	})

	t.Run("viewer leaves freely", func(t *testing.T) {
		owner := f.user(t, "owner2@example.com")
		guest := f.user(t, "guest2@example.com")
		account, _ := f.account(t, owner)
		f.member(t, account.ID, guest, models.RoleViewer)

		if err := f.dir.Leave(ctx, guest.ID, account.ID); err != nil {
			t.Fatalf("Leave failed: %v", err)
		}
	})

	t.Run("leaving an account one is not in reports not found", func(t *testing.T) {
		owner := f.user(t, "owner3@example.com")
		stranger := f.user(t, "stranger@example.com")
		account, _ := f.account(t, owner)

		err := f.dir.Leave(ctx, stranger.ID, account.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}
