// Package directory is the durable mapping of (account, user) to role.
// Every access decision in the system reads it; nothing else grants or
// revokes account access.
//
// The directory enforces the membership invariants itself, so no caller
// can bypass them:
//   - at most one membership per (account, user)
//   - an account always retains at least one admin
//   - nobody changes or removes their own membership through this path
package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage"
)

var (
	// ErrDuplicateMembership is returned when the (account, user) pair
	// already has a membership.
	ErrDuplicateMembership = errors.New("user is already a member of this account")

	// ErrSelfAction is returned when an actor tries to change or remove
	// their own membership.
	ErrSelfAction = errors.New("cannot change or remove your own membership")

	// ErrLastAdmin is returned when an action would leave the account
	// without any admin.
	ErrLastAdmin = errors.New("account must retain at least one admin")

	// ErrInvalidRole is returned for roles outside {admin, viewer}.
	ErrInvalidRole = errors.New("role must be admin or viewer")
)

// Directory exposes membership lookups and actor-aware mutations over the
// store.
type Directory struct {
	store storage.Store
}

// New creates a Directory backed by the given store.
func New(store storage.Store) *Directory {
	return &Directory{store: store}
}

// Lookup returns the membership for the (account, user) pair, or nil when
// the user has none. There is never more than one.
func (d *Directory) Lookup(ctx context.Context, accountID, userID string) (*models.Membership, error) {
	m, err := d.store.GetMembershipByAccountUser(ctx, accountID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByAccount returns all memberships of an account.
func (d *Directory) ListByAccount(ctx context.Context, accountID string) ([]*models.Membership, error) {
	return d.store.ListMembershipsByAccount(ctx, accountID)
}

// ListByUser returns all memberships of a user.
func (d *Directory) ListByUser(ctx context.Context, userID string) ([]*models.Membership, error) {
	return d.store.ListMembershipsByUser(ctx, userID)
}

// Create adds a membership for (m.AccountID, m.UserID). It fails with
// ErrDuplicateMembership when one already exists.
func (d *Directory) Create(ctx context.Context, m *models.Membership) error {
	if !m.Role.Valid() {
		return ErrInvalidRole
	}

	existing, err := d.Lookup(ctx, m.AccountID, m.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("account %s user %s: %w", m.AccountID, m.UserID, ErrDuplicateMembership)
	}

	return d.store.CreateMembership(ctx, m)
}

// UpdateRole changes the role of a membership on behalf of actorUserID.
// Changing one's own role is rejected, as is demoting the account's sole
// admin.
func (d *Directory) UpdateRole(ctx context.Context, actorUserID, membershipID string, role models.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	target, err := d.store.GetMembership(ctx, membershipID)
	if err != nil {
		return err
	}
	if target.UserID == actorUserID {
		return ErrSelfAction
	}
	if target.Role == role {
		return nil
	}

	if target.Role == models.RoleAdmin {
		admins, err := d.store.CountAdmins(ctx, target.AccountID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return d.store.UpdateMembershipRole(ctx, membershipID, role)
}

// Leave removes the actor's own membership of an account. This is the one
// sanctioned path for self-removal; it still refuses to drop the account's
// sole admin.
func (d *Directory) Leave(ctx context.Context, actorUserID, accountID string) error {
	m, err := d.store.GetMembershipByAccountUser(ctx, accountID, actorUserID)
	if err != nil {
		return err
	}

	if m.Role == models.RoleAdmin {
		admins, err := d.store.CountAdmins(ctx, accountID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return d.store.DeleteMembership(ctx, m.ID)
}

// Delete removes a membership on behalf of actorUserID. Removing one's own
// membership is rejected, as is removing the account's sole admin.
func (d *Directory) Delete(ctx context.Context, actorUserID, membershipID string) error {
	target, err := d.store.GetMembership(ctx, membershipID)
	if err != nil {
		return err
	}
	if target.UserID == actorUserID {
		return ErrSelfAction
	}

	if target.Role == models.RoleAdmin {
		admins, err := d.store.CountAdmins(ctx, target.AccountID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	return d.store.DeleteMembership(ctx, membershipID)
}
