package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/peterszarvas94/moneyapp-sub000/internal/gate"
	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage"
)

// PayeeView is the wire representation of a payee.
type PayeeView struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	Name         string `json:"name"`
	MembershipID string `json:"membership_id,omitempty"`
	CreatedAt    int64  `json:"created_at"`
}

type CreatePayeeRequest struct {
	AccountID string `json:"account_id"`
	Name      string `json:"name"`
	// MembershipID optionally links the payee to a member of the account.
	MembershipID string `json:"membership_id,omitempty"`
}

type CreatePayeeResponse struct {
	Payee PayeeView `json:"payee"`
}

type ListPayeesRequest struct {
	AccountID string `json:"account_id"`
}

type ListPayeesResponse struct {
	Payees []PayeeView `json:"payees"`
}

type DeletePayeeRequest struct {
	AccountID string `json:"account_id"`
	PayeeID   string `json:"payee_id"`
}

type DeletePayeeResponse struct{}

// PayeeService manages the payees an account can allocate to.
type PayeeService struct {
	store storage.Store
	gate  *gate.Gate
}

// NewPayeeService creates a new PayeeService.
func NewPayeeService(store storage.Store, g *gate.Gate) *PayeeService {
	return &PayeeService{store: store, gate: g}
}

func payeeView(p *models.Payee) PayeeView {
	return PayeeView{
		ID:           p.ID,
		AccountID:    p.AccountID,
		Name:         p.Name,
		MembershipID: p.MembershipID,
		CreatedAt:    p.CreatedAt,
	}
}

// Create adds a payee, optionally linked to a membership of the same
// account. A membership may back at most one payee.
func (s *PayeeService) Create(ctx context.Context, req *connect.Request[CreatePayeeRequest]) (*connect.Response[CreatePayeeResponse], error) {
	grant, err := s.gate.AdminOnly(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	if req.Msg.Name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("payee name is required"))
	}

	if req.Msg.MembershipID != "" {
		membership, err := s.store.GetMembership(ctx, req.Msg.MembershipID)
		if err != nil {
			return nil, rpcError(err)
		}
		if membership.AccountID != grant.AccountID {
			return nil, rpcError(storage.ErrNotFound)
		}

		existing, err := s.store.GetPayeeByMembership(ctx, grant.AccountID, req.Msg.MembershipID)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, rpcError(err)
		}
		if existing != nil {
			return nil, rpcError(fmt.Errorf("membership %s: %w", req.Msg.MembershipID, ErrDuplicatePayee))
		}
	}

	payee := &models.Payee{
		AccountID:    grant.AccountID,
		Name:         req.Msg.Name,
		MembershipID: req.Msg.MembershipID,
	}
	if err := s.store.CreatePayee(ctx, payee); err != nil {
		slog.Error("CreatePayee failed", "account_id", grant.AccountID, "error", err)
		return nil, rpcError(err)
	}

	slog.Info("Payee created", "payee_id", payee.ID, "account_id", grant.AccountID)
	return connect.NewResponse(&CreatePayeeResponse{Payee: payeeView(payee)}), nil
}

// List returns every payee of an account.
func (s *PayeeService) List(ctx context.Context, req *connect.Request[ListPayeesRequest]) (*connect.Response[ListPayeesResponse], error) {
	grant, err := s.gate.Accessed(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	payees, err := s.store.ListPayeesByAccount(ctx, grant.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	views := make([]PayeeView, len(payees))
	for i, p := range payees {
		views[i] = payeeView(p)
	}

	return connect.NewResponse(&ListPayeesResponse{Payees: views}), nil
}

// Delete removes a payee; its payments cascade away with it.
func (s *PayeeService) Delete(ctx context.Context, req *connect.Request[DeletePayeeRequest]) (*connect.Response[DeletePayeeResponse], error) {
	grant, err := s.gate.AdminOnly(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	payee, err := s.store.GetPayee(ctx, req.Msg.PayeeID)
	if err != nil {
		return nil, rpcError(err)
	}
	if payee.AccountID != grant.AccountID {
		return nil, rpcError(storage.ErrNotFound)
	}

	if err := s.store.DeletePayee(ctx, req.Msg.PayeeID); err != nil {
		return nil, rpcError(err)
	}

	slog.Info("Payee deleted", "payee_id", req.Msg.PayeeID, "account_id", grant.AccountID)
	return connect.NewResponse(&DeletePayeeResponse{}), nil
}
