package models

// Role is the privilege tier a membership grants on an account.
// There are exactly two tiers; anything finer-grained is out of scope.
type Role string

const (
	// RoleAdmin may read and change everything under the account,
	// including other memberships.
	RoleAdmin Role = "admin"

	// RoleViewer may read the account's data but not change it.
	RoleViewer Role = "viewer"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// Membership is the join entity granting a user a role on an account.
//
// Invariants enforced by the directory layer:
//   - at most one membership per (account, user) pair
//   - every account retains at least one admin membership at all times
//   - a membership may not be deleted or re-roled by its own user
type Membership struct {
	// ID is the unique identifier for the membership (UUID format).
	ID string

	// AccountID is the account this membership grants access to.
	AccountID string

	// UserID is the user the membership belongs to.
	UserID string

	// Role is the granted privilege tier.
	Role Role

	// CreatedAt is the Unix timestamp when the membership was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last role change.
	UpdatedAt int64
}
