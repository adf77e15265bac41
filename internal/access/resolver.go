// Package access resolves, per request, whether a caller is an account
// administrator, a read-only viewer, or has no access at all.
package access

import (
	"context"

	"github.com/peterszarvas94/moneyapp-sub000/internal/directory"
	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
)

// Level is the single tagged result of a resolution. A caller is exactly
// one of denied, viewer or admin — never both, never neither.
type Level int

const (
	// Denied means the caller has no membership in the account.
	Denied Level = iota
	// Viewer grants read-only access.
	Viewer
	// Admin grants full access.
	Admin
)

// String returns the wire representation of the level.
func (l Level) String() string {
	switch l {
	case Admin:
		return "admin"
	case Viewer:
		return "viewer"
	default:
		return "denied"
	}
}

// Resolver maps (caller, account) pairs to access levels by querying the
// membership directory. It is stateless: every call re-reads current
// state, so a revoked membership takes effect on the very next call.
type Resolver struct {
	dir *directory.Directory
}

// NewResolver creates a Resolver over the given directory.
func NewResolver(dir *directory.Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve returns the caller's access level for the account. Absence of a
// membership maps to Denied; an unreadable directory is an error, never a
// silent Denied.
func (r *Resolver) Resolve(ctx context.Context, callerUserID, accountID string) (Level, error) {
	m, err := r.dir.Lookup(ctx, accountID, callerUserID)
	if err != nil {
		return Denied, err
	}
	if m == nil {
		return Denied, nil
	}

	switch m.Role {
	case models.RoleAdmin:
		return Admin, nil
	case models.RoleViewer:
		return Viewer, nil
	default:
		return Denied, nil
	}
}
