package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
)

func TestResolveAccess(t *testing.T) {
	e := newEnv(t)

	owner := e.user(t, "owner@example.com")
	stranger := e.user(t, "stranger@example.com")
	account := e.account(t, owner)

	t.Run("admin resolves to admin", func(t *testing.T) {
		resp, err := e.members.ResolveAccess(as(owner), connect.NewRequest(&ResolveAccessRequest{AccountID: account.ID}))
		if err != nil {
			t.Fatalf("ResolveAccess failed: %v", err)
		}
		if resp.Msg.Access != "admin" {
			t.Errorf("Access = %s, want admin", resp.Msg.Access)
		}
	})

	t.Run("non-member resolves to denied, not an error", func(t *testing.T) {
		resp, err := e.members.ResolveAccess(as(stranger), connect.NewRequest(&ResolveAccessRequest{AccountID: account.ID}))
		if err != nil {
			t.Fatalf("ResolveAccess failed: %v", err)
		}
		if resp.Msg.Access != "denied" {
			t.Errorf("Access = %s, want denied", resp.Msg.Access)
		}
	})

	t.Run("anonymous caller is unauthenticated", func(t *testing.T) {
		_, err := e.members.ResolveAccess(context.Background(), connect.NewRequest(&ResolveAccessRequest{AccountID: account.ID}))
		wantCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestInvite(t *testing.T) {
	e := newEnv(t)

	owner := e.user(t, "owner@example.com")
	guest := e.user(t, "guest@example.com")
	account := e.account(t, owner)

	t.Run("admin invites a registered user by email", func(t *testing.T) {
		resp, err := e.members.Invite(as(owner), connect.NewRequest(&InviteRequest{
			AccountID: account.ID, Email: guest.Email, Role: "viewer",
		}))
		if err != nil {
			t.Fatalf("Invite failed: %v", err)
		}
		if resp.Msg.Membership.UserID != guest.ID || resp.Msg.Membership.Role != "viewer" {
			t.Errorf("Unexpected membership: %+v", resp.Msg.Membership)
		}

		// Notification is fire-and-forget, give it a moment.
		deadline := time.Now().Add(time.Second)
		for {
			e.sender.mu.Lock()
			n := len(e.sender.invites)
			e.sender.mu.Unlock()
			if n > 0 || time.Now().After(deadline) {
				break
			}
			time.Sleep(10 * time.Millisecond)
		}
	})

	t.Run("second invite for the same user conflicts", func(t *testing.T) {
		_, err := e.members.Invite(as(owner), connect.NewRequest(&InviteRequest{
			AccountID: account.ID, Email: guest.Email, Role: "admin",
		}))
		wantCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		_, err := e.members.Invite(as(owner), connect.NewRequest(&InviteRequest{
			AccountID: account.ID, Email: "nobody@example.com", Role: "viewer",
		}))
		wantCode(t, err, connect.CodeNotFound)
	})

	t.Run("viewer may not invite", func(t *testing.T) {
		_, err := e.members.Invite(as(guest), connect.NewRequest(&InviteRequest{
			AccountID: account.ID, Email: owner.Email, Role: "viewer",
		}))
		wantCode(t, err, connect.CodePermissionDenied)
	})

	t.Run("unknown role is invalid", func(t *testing.T) {
		third := e.user(t, "third@example.com")
		_, err := e.members.Invite(as(owner), connect.NewRequest(&InviteRequest{
			AccountID: account.ID, Email: third.Email, Role: "owner",
		}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})
}

func TestSetRoleAndRemove(t *testing.T) {
	e := newEnv(t)

	owner := e.user(t, "owner@example.com")
	guest := e.user(t, "guest@example.com")
	account := e.account(t, owner)

	inviteResp, err := e.members.Invite(as(owner), connect.NewRequest(&InviteRequest{
		AccountID: account.ID, Email: guest.Email, Role: "viewer",
	}))
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	guestMembershipID := inviteResp.Msg.Membership.ID

	ownerMembership, err := e.dir.Lookup(context.Background(), account.ID, owner.ID)
	if err != nil || ownerMembership == nil {
		t.Fatalf("Lookup owner membership failed: %v", err)
	}

	t.Run("changing one's own role is a failed precondition", func(t *testing.T) {
		_, err := e.members.SetRole(as(owner), connect.NewRequest(&SetRoleRequest{
			AccountID: account.ID, MembershipID: ownerMembership.ID, Role: "viewer",
		}))
		wantCode(t, err, connect.CodeFailedPrecondition)
	})

	t.Run("admin promotes the viewer", func(t *testing.T) {
		if _, err := e.members.SetRole(as(owner), connect.NewRequest(&SetRoleRequest{
			AccountID: account.ID, MembershipID: guestMembershipID, Role: "admin",
		})); err != nil {
			t.Fatalf("SetRole failed: %v", err)
		}
	})

	t.Run("membership of another account is hidden", func(t *testing.T) {
		other := e.account(t, guest)
		otherMembership, err := e.dir.Lookup(context.Background(), other.ID, guest.ID)
		if err != nil || otherMembership == nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		_, err = e.members.SetRole(as(owner), connect.NewRequest(&SetRoleRequest{
			AccountID: account.ID, MembershipID: otherMembership.ID, Role: "viewer",
		}))
		wantCode(t, err, connect.CodeNotFound)
	})

	t.Run("removing one's own membership is a failed precondition", func(t *testing.T) {
		_, err := e.members.Remove(as(owner), connect.NewRequest(&RemoveMembershipRequest{
			AccountID: account.ID, MembershipID: ownerMembership.ID,
		}))
		wantCode(t, err, connect.CodeFailedPrecondition)
	})

	t.Run("admin removes the other member", func(t *testing.T) {
		if _, err := e.members.Remove(as(owner), connect.NewRequest(&RemoveMembershipRequest{
			AccountID: account.ID, MembershipID: guestMembershipID,
		})); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
	})

	t.Run("removing the sole admin is a failed precondition", func(t *testing.T) {
		// guest is gone, owner is the only admin again; re-invite guest as
		// admin and have them try to remove owner after a demotion attempt.
		if _, err := e.members.Invite(as(owner), connect.NewRequest(&InviteRequest{
			AccountID: account.ID, Email: guest.Email, Role: "viewer",
		})); err != nil {
			t.Fatalf("Invite failed: %v", err)
		}
		_, err := e.members.Remove(as(guest), connect.NewRequest(&RemoveMembershipRequest{
			AccountID: account.ID, MembershipID: ownerMembership.ID,
		}))
		// guest is only a viewer, so the gate rejects before the directory.
		wantCode(t, err, connect.CodePermissionDenied)
	})
}

func TestLeaveAccount(t *testing.T) {
	e := newEnv(t)

	a := e.user(t, "a@example.com")
	c := e.user(t, "c@example.com")
	account := e.account(t, a)

	t.Run("sole admin cannot leave", func(t *testing.T) {
		_, err := e.members.Leave(as(a), connect.NewRequest(&LeaveAccountRequest{AccountID: account.ID}))
		wantCode(t, err, connect.CodeFailedPrecondition)
	})

	t.Run("admin leaves after promoting a successor", func(t *testing.T) {
		if _, err := e.members.Invite(as(a), connect.NewRequest(&InviteRequest{
			AccountID: account.ID, Email: c.Email, Role: "admin",
		})); err != nil {
			t.Fatalf("Invite failed: %v", err)
		}

		if _, err := e.members.Leave(as(a), connect.NewRequest(&LeaveAccountRequest{AccountID: account.ID})); err != nil {
			t.Fatalf("Leave failed: %v", err)
		}

		// The departed admin is denied on the very next call.
		resp, err := e.members.ResolveAccess(as(a), connect.NewRequest(&ResolveAccessRequest{AccountID: account.ID}))
		if err != nil {
			t.Fatalf("ResolveAccess failed: %v", err)
		}
		if resp.Msg.Access != "denied" {
			t.Errorf("Access after leaving = %s, want denied", resp.Msg.Access)
		}

		// The successor still administers the account.
		remaining, err := e.dir.Lookup(context.Background(), account.ID, c.ID)
		if err != nil {
			t.Fatalf("Lookup failed: %v", err)
		}
		if remaining == nil || remaining.Role != models.RoleAdmin {
			t.Errorf("Expected remaining admin, got %+v", remaining)
		}
	})
}

func TestListMemberships(t *testing.T) {
	e := newEnv(t)

	owner := e.user(t, "owner@example.com")
	guest := e.user(t, "guest@example.com")
	account := e.account(t, owner)

	if _, err := e.members.Invite(as(owner), connect.NewRequest(&InviteRequest{
		AccountID: account.ID, Email: guest.Email, Role: "viewer",
	})); err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	resp, err := e.members.List(as(guest), connect.NewRequest(&ListMembershipsRequest{AccountID: account.ID}))
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(resp.Msg.Memberships) != 2 {
		t.Fatalf("Memberships = %d, want 2", len(resp.Msg.Memberships))
	}
	for _, m := range resp.Msg.Memberships {
		if m.UserEmail == "" {
			t.Errorf("Membership %s missing joined user email", m.ID)
		}
	}
}
