package models

// Payee is a party entitled to a share of an event's allocation. A payee
// may be linked to a platform user through a membership, but need not be:
// external parties are payees with MembershipID left empty.
//
// Invariant: at most one payee per (account, membership) when linked.
type Payee struct {
	// ID is the unique identifier for the payee (UUID format).
	ID string

	// AccountID is the owning account.
	AccountID string

	// Name is the display name of the payee.
	Name string

	// MembershipID optionally links the payee to a membership of the same
	// account. Empty when the payee is not a platform user.
	MembershipID string

	// CreatedAt is the Unix timestamp when the payee was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change.
	UpdatedAt int64
}
