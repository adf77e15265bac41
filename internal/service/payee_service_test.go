package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
)

func TestPayees(t *testing.T) {
	e := newEnv(t)

	owner := e.user(t, "owner@example.com")
	account := e.account(t, owner)

	ownerMembership, err := e.dir.Lookup(context.Background(), account.ID, owner.ID)
	if err != nil || ownerMembership == nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	t.Run("external payee needs no membership", func(t *testing.T) {
		resp, err := e.payees.Create(as(owner), connect.NewRequest(&CreatePayeeRequest{
			AccountID: account.ID, Name: "Sound tech",
		}))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if resp.Msg.Payee.MembershipID != "" {
			t.Errorf("Expected unlinked payee, got membership %s", resp.Msg.Payee.MembershipID)
		}
	})

	t.Run("linked payee is unique per membership", func(t *testing.T) {
		if _, err := e.payees.Create(as(owner), connect.NewRequest(&CreatePayeeRequest{
			AccountID: account.ID, Name: "Me", MembershipID: ownerMembership.ID,
		})); err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		_, err := e.payees.Create(as(owner), connect.NewRequest(&CreatePayeeRequest{
			AccountID: account.ID, Name: "Me again", MembershipID: ownerMembership.ID,
		}))
		wantCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("membership of another account is hidden", func(t *testing.T) {
		other := e.user(t, "other@example.com")
		otherAccount := e.account(t, other)
		otherMembership, err := e.dir.Lookup(context.Background(), otherAccount.ID, other.ID)
		if err != nil || otherMembership == nil {
			t.Fatalf("Lookup failed: %v", err)
		}

		_, err = e.payees.Create(as(owner), connect.NewRequest(&CreatePayeeRequest{
			AccountID: account.ID, Name: "Stowaway", MembershipID: otherMembership.ID,
		}))
		wantCode(t, err, connect.CodeNotFound)
	})

	t.Run("empty name is invalid", func(t *testing.T) {
		_, err := e.payees.Create(as(owner), connect.NewRequest(&CreatePayeeRequest{
			AccountID: account.ID,
		}))
		wantCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("list and delete", func(t *testing.T) {
		resp, err := e.payees.List(as(owner), connect.NewRequest(&ListPayeesRequest{AccountID: account.ID}))
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(resp.Msg.Payees) != 2 {
			t.Fatalf("Payees = %d, want 2", len(resp.Msg.Payees))
		}

		if _, err := e.payees.Delete(as(owner), connect.NewRequest(&DeletePayeeRequest{
			AccountID: account.ID, PayeeID: resp.Msg.Payees[0].ID,
		})); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		after, err := e.payees.List(as(owner), connect.NewRequest(&ListPayeesRequest{AccountID: account.ID}))
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(after.Msg.Payees) != 1 {
			t.Errorf("Payees after delete = %d, want 1", len(after.Msg.Payees))
		}
	})
}
