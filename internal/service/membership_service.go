package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/peterszarvas94/moneyapp-sub000/internal/access"
	"github.com/peterszarvas94/moneyapp-sub000/internal/directory"
	"github.com/peterszarvas94/moneyapp-sub000/internal/gate"
	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
	"github.com/peterszarvas94/moneyapp-sub000/internal/notify"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage"
)

// MembershipView is the wire representation of a membership.
type MembershipView struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
	Role      string `json:"role"`
	CreatedAt int64  `json:"created_at"`
}

type ResolveAccessRequest struct {
	AccountID string `json:"account_id"`
}

type ResolveAccessResponse struct {
	Access string `json:"access"`
}

type ListMembershipsRequest struct {
	AccountID string `json:"account_id"`
}

type ListMembershipsResponse struct {
	Memberships []MembershipView `json:"memberships"`
}

type InviteRequest struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

type InviteResponse struct {
	Membership MembershipView `json:"membership"`
}

type SetRoleRequest struct {
	AccountID    string `json:"account_id"`
	MembershipID string `json:"membership_id"`
	Role         string `json:"role"`
}

type SetRoleResponse struct{}

type RemoveMembershipRequest struct {
	AccountID    string `json:"account_id"`
	MembershipID string `json:"membership_id"`
}

type RemoveMembershipResponse struct{}

type LeaveAccountRequest struct {
	AccountID string `json:"account_id"`
}

type LeaveAccountResponse struct{}

// MembershipService exposes the membership directory over RPC, behind the
// authorization gate.
type MembershipService struct {
	store    storage.Store
	dir      *directory.Directory
	resolver *access.Resolver
	gate     *gate.Gate
	notifier notify.Sender
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(store storage.Store, dir *directory.Directory, resolver *access.Resolver, g *gate.Gate, notifier notify.Sender) *MembershipService {
	return &MembershipService{
		store:    store,
		dir:      dir,
		resolver: resolver,
		gate:     g,
		notifier: notifier,
	}
}

func membershipView(m *models.Membership) MembershipView {
	return MembershipView{
		ID:        m.ID,
		AccountID: m.AccountID,
		UserID:    m.UserID,
		Role:      string(m.Role),
		CreatedAt: m.CreatedAt,
	}
}

// ResolveAccess reports the caller's own access level for an account.
// Identified tier: callers with no membership get "denied", not an error.
func (s *MembershipService) ResolveAccess(ctx context.Context, req *connect.Request[ResolveAccessRequest]) (*connect.Response[ResolveAccessResponse], error) {
	caller, err := s.gate.Identified(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	if req.Msg.AccountID == "" {
		return nil, rpcError(gate.ErrAccountRequired)
	}

	level, err := s.resolver.Resolve(ctx, caller.User.ID, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	return connect.NewResponse(&ResolveAccessResponse{Access: level.String()}), nil
}

// List returns the memberships of an account for any member, with user
// names and emails joined in for display.
func (s *MembershipService) List(ctx context.Context, req *connect.Request[ListMembershipsRequest]) (*connect.Response[ListMembershipsResponse], error) {
	grant, err := s.gate.Accessed(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	memberships, err := s.dir.ListByAccount(ctx, grant.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	views := make([]MembershipView, len(memberships))
	for i, m := range memberships {
		views[i] = membershipView(m)
		if user, err := s.store.GetUserByID(ctx, m.UserID); err == nil {
			views[i].UserName = user.Name
			views[i].UserEmail = user.Email
		}
	}

	return connect.NewResponse(&ListMembershipsResponse{Memberships: views}), nil
}

// Invite grants a registered user, looked up by email, a membership in the
// account. The invite notification is fire-and-forget: a failed mail never
// fails the operation.
func (s *MembershipService) Invite(ctx context.Context, req *connect.Request[InviteRequest]) (*connect.Response[InviteResponse], error) {
	grant, err := s.gate.AdminOnly(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	slog.Info("Invite request", "account_id", grant.AccountID, "email", req.Msg.Email, "role", req.Msg.Role)

	user, err := s.store.GetUserByEmail(ctx, req.Msg.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Invite failed, no such user", "email", req.Msg.Email)
		}
		return nil, rpcError(err)
	}

	membership := &models.Membership{
		AccountID: grant.AccountID,
		UserID:    user.ID,
		Role:      models.Role(req.Msg.Role),
	}
	if err := s.dir.Create(ctx, membership); err != nil {
		slog.Warn("Invite rejected", "account_id", grant.AccountID, "email", req.Msg.Email, "error", err)
		return nil, rpcError(err)
	}

	account, err := s.store.GetAccount(ctx, grant.AccountID)
	if err == nil {
		go func() {
			if err := s.notifier.SendInvite(user.Email, account.Name, string(membership.Role)); err != nil {
				slog.Warn("Invite mail failed", "email", user.Email, "error", err)
			}
		}()
	}

	slog.Info("Member invited", "membership_id", membership.ID, "account_id", grant.AccountID)

	view := membershipView(membership)
	view.UserName = user.Name
	view.UserEmail = user.Email
	return connect.NewResponse(&InviteResponse{Membership: view}), nil
}

// SetRole changes another member's role. Self role-changes and demoting
// the sole admin are rejected by the directory.
func (s *MembershipService) SetRole(ctx context.Context, req *connect.Request[SetRoleRequest]) (*connect.Response[SetRoleResponse], error) {
	grant, err := s.gate.AdminOnly(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	target, err := s.store.GetMembership(ctx, req.Msg.MembershipID)
	if err != nil {
		return nil, rpcError(err)
	}
	if target.AccountID != grant.AccountID {
		// Hide memberships of other accounts.
		return nil, rpcError(storage.ErrNotFound)
	}

	if err := s.dir.UpdateRole(ctx, grant.Caller.User.ID, req.Msg.MembershipID, models.Role(req.Msg.Role)); err != nil {
		slog.Warn("SetRole rejected", "membership_id", req.Msg.MembershipID, "error", err)
		return nil, rpcError(err)
	}

	slog.Info("Role updated", "membership_id", req.Msg.MembershipID, "role", req.Msg.Role)
	return connect.NewResponse(&SetRoleResponse{}), nil
}

// Remove deletes another member's membership. Self-removal and removing
// the sole admin are rejected by the directory.
func (s *MembershipService) Remove(ctx context.Context, req *connect.Request[RemoveMembershipRequest]) (*connect.Response[RemoveMembershipResponse], error) {
	grant, err := s.gate.AdminOnly(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	target, err := s.store.GetMembership(ctx, req.Msg.MembershipID)
	if err != nil {
		return nil, rpcError(err)
	}
	if target.AccountID != grant.AccountID {
		return nil, rpcError(storage.ErrNotFound)
	}

	if err := s.dir.Delete(ctx, grant.Caller.User.ID, req.Msg.MembershipID); err != nil {
		slog.Warn("Remove rejected", "membership_id", req.Msg.MembershipID, "error", err)
		return nil, rpcError(err)
	}

	slog.Info("Member removed", "membership_id", req.Msg.MembershipID, "account_id", grant.AccountID)
	return connect.NewResponse(&RemoveMembershipResponse{}), nil
}

// Leave drops the caller's own membership, the one sanctioned self-removal
// path. Leaving as the sole admin is rejected.
func (s *MembershipService) Leave(ctx context.Context, req *connect.Request[LeaveAccountRequest]) (*connect.Response[LeaveAccountResponse], error) {
	grant, err := s.gate.Accessed(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	if err := s.dir.Leave(ctx, grant.Caller.User.ID, grant.AccountID); err != nil {
		slog.Warn("Leave rejected", "account_id", grant.AccountID, "user_id", grant.Caller.User.ID, "error", err)
		return nil, rpcError(err)
	}

	slog.Info("Member left account", "account_id", grant.AccountID, "user_id", grant.Caller.User.ID)
	return connect.NewResponse(&LeaveAccountResponse{}), nil
}
