// Package gate is the authorization gate wrapping every account-scoped
// operation. Handlers call exactly one tier — Identified, Accessed or
// AdminOnly, chosen by the operation's minimum required privilege — before
// running their body, and receive the resolved caller and role as an
// explicit value rather than fishing them out of ambient state.
package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/peterszarvas94/moneyapp-sub000/internal/access"
	"github.com/peterszarvas94/moneyapp-sub000/internal/middleware"
	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage"
)

var (
	// ErrUnauthenticated is returned when the request carries no verified
	// caller, or the verified subject matches no user record.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrForbidden is returned when the caller is identified but lacks
	// the required role on the account.
	ErrForbidden = errors.New("insufficient access to this account")

	// ErrAccountRequired is returned when an account-scoped operation is
	// called without an account id.
	ErrAccountRequired = errors.New("account id is required")
)

// Caller is an identified user, produced by the Identified tier.
type Caller struct {
	User *models.User
}

// Grant is a resolved access decision for one (caller, account) pair,
// produced by the Accessed and AdminOnly tiers and passed into operation
// bodies.
type Grant struct {
	Caller    *Caller
	AccountID string
	Level     access.Level
}

// Gate resolves callers and enforces the minimum privilege tier of each
// operation. It holds no per-request state and caches nothing: every check
// re-reads the membership directory.
type Gate struct {
	store    storage.Store
	resolver *access.Resolver
}

// New creates a Gate over the given store and resolver.
func New(store storage.Store, resolver *access.Resolver) *Gate {
	return &Gate{store: store, resolver: resolver}
}

// Identified requires a verified external subject in the request context
// and resolves it to a user record.
func (g *Gate) Identified(ctx context.Context) (*Caller, error) {
	subject := middleware.Subject(ctx)
	if subject == "" {
		return nil, ErrUnauthenticated
	}

	user, err := g.store.GetUserBySubject(ctx, subject)
	if errors.Is(err, storage.ErrNotFound) {
		// Valid token for a user that no longer exists.
		return nil, ErrUnauthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve caller: %w", err)
	}

	return &Caller{User: user}, nil
}

// Accessed requires an identified caller with any non-denied access to the
// account. The resolved role travels with the returned grant.
func (g *Gate) Accessed(ctx context.Context, accountID string) (*Grant, error) {
	caller, err := g.Identified(ctx)
	if err != nil {
		return nil, err
	}
	if accountID == "" {
		return nil, ErrAccountRequired
	}

	level, err := g.resolver.Resolve(ctx, caller.User.ID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve access: %w", err)
	}
	if level == access.Denied {
		return nil, ErrForbidden
	}

	return &Grant{Caller: caller, AccountID: accountID, Level: level}, nil
}

// AdminOnly requires an identified caller with admin access to the account.
func (g *Gate) AdminOnly(ctx context.Context, accountID string) (*Grant, error) {
	grant, err := g.Accessed(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if grant.Level != access.Admin {
		return nil, ErrForbidden
	}

	return grant, nil
}
