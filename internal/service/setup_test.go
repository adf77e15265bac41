package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/peterszarvas94/moneyapp-sub000/internal/access"
	"github.com/peterszarvas94/moneyapp-sub000/internal/auth"
	"github.com/peterszarvas94/moneyapp-sub000/internal/directory"
	"github.com/peterszarvas94/moneyapp-sub000/internal/gate"
	"github.com/peterszarvas94/moneyapp-sub000/internal/middleware"
	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
	"github.com/peterszarvas94/moneyapp-sub000/internal/notify"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage/sqlite"
)

// recordingSender captures invite notifications instead of sending mail.
type recordingSender struct {
	mu      sync.Mutex
	invites []string
}

var _ notify.Sender = (*recordingSender)(nil)

func (r *recordingSender) SendInvite(email, accountName, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invites = append(r.invites, email)
	return nil
}

// env wires every service over one temp SQLite database, the way main does.
type env struct {
	store    *sqlite.SQLiteStore
	dir      *directory.Directory
	sender   *recordingSender
	auth     *AuthService
	accounts *AccountService
	members  *MembershipService
	payees   *PayeeService
	events   *EventService
}

func newEnv(t *testing.T) *env {
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
	resolver := access.NewResolver(dir)
	g := gate.New(store, resolver)
	sender := &recordingSender{}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	return &env{
		store:    store,
		dir:      dir,
		sender:   sender,
		auth:     NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager),
		accounts: NewAccountService(store, g),
		members:  NewMembershipService(store, dir, resolver, g, sender),
		payees:   NewPayeeService(store, g),
		events:   NewEventService(store, g),
	}
}

// user registers a user directly in the store and returns it.
func (e *env) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Name: email, Email: email, PasswordHash: "x"}
	if err := e.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return u
}

// account creates an account with the given user as admin.
func (e *env) account(t *testing.T, owner *models.User) *models.Account {
	t.Helper()
	a := &models.Account{Name: "Band fund", Currency: "HUF"}
	if err := e.store.CreateAccount(context.Background(), a, &models.Membership{UserID: owner.ID}); err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	return a
}

// as builds the context the identity interceptor would produce for the
// given user's verified token.
func as(user *models.User) context.Context {
	return context.WithValue(context.Background(), middleware.SubjectKey, user.Subject)
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("Expected %s, got nil error", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("Code = %s, want %s (error: %v)", got, code, err)
	}
}
