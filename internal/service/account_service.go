package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/peterszarvas94/moneyapp-sub000/internal/gate"
	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage"
)

// AccountView is the wire representation of an account.
type AccountView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Currency    string `json:"currency"`
	CreatedAt   int64  `json:"created_at"`
}

type CreateAccountRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Currency    string `json:"currency"`
}

type CreateAccountResponse struct {
	Account AccountView `json:"account"`
}

type GetAccountRequest struct {
	AccountID string `json:"account_id"`
}

type GetAccountResponse struct {
	Account AccountView `json:"account"`
	// Access is the caller's resolved level, so clients can pick the
	// right affordances without a second round trip.
	Access string `json:"access"`
}

type UpdateAccountRequest struct {
	AccountID   string `json:"account_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Currency    string `json:"currency"`
}

type UpdateAccountResponse struct {
	Account AccountView `json:"account"`
}

type DeleteAccountRequest struct {
	AccountID string `json:"account_id"`
}

type DeleteAccountResponse struct{}

type ListAccountsRequest struct{}

type ListAccountsResponse struct {
	Accounts []AccountView `json:"accounts"`
}

// AccountService implements account CRUD behind the authorization gate.
type AccountService struct {
	store storage.Store
	gate  *gate.Gate
}

// NewAccountService creates a new AccountService.
func NewAccountService(store storage.Store, g *gate.Gate) *AccountService {
	return &AccountService{store: store, gate: g}
}

func accountView(a *models.Account) AccountView {
	return AccountView{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Currency:    a.Currency,
		CreatedAt:   a.CreatedAt,
	}
}

// Create makes a new account; the creator receives the admin membership in
// the same transaction, so the at-least-one-admin invariant holds from the
// first moment.
func (s *AccountService) Create(ctx context.Context, req *connect.Request[CreateAccountRequest]) (*connect.Response[CreateAccountResponse], error) {
	caller, err := s.gate.Identified(ctx)
	if err != nil {
		return nil, rpcError(err)
	}

	if req.Msg.Name == "" || req.Msg.Currency == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errNameAndCurrencyRequired)
	}

	account := &models.Account{
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		Currency:    req.Msg.Currency,
	}
	admin := &models.Membership{UserID: caller.User.ID}

	if err := s.store.CreateAccount(ctx, account, admin); err != nil {
		slog.Error("CreateAccount failed", "error", err)
		return nil, rpcError(err)
	}

	slog.Info("Account created", "account_id", account.ID, "user_id", caller.User.ID)
	return connect.NewResponse(&CreateAccountResponse{Account: accountView(account)}), nil
}

// Get returns one account for any member.
func (s *AccountService) Get(ctx context.Context, req *connect.Request[GetAccountRequest]) (*connect.Response[GetAccountResponse], error) {
	grant, err := s.gate.Accessed(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	account, err := s.store.GetAccount(ctx, grant.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	return connect.NewResponse(&GetAccountResponse{
		Account: accountView(account),
		Access:  grant.Level.String(),
	}), nil
}

// Update changes an account's name, description or currency.
func (s *AccountService) Update(ctx context.Context, req *connect.Request[UpdateAccountRequest]) (*connect.Response[UpdateAccountResponse], error) {
	grant, err := s.gate.AdminOnly(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	if req.Msg.Name == "" || req.Msg.Currency == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errNameAndCurrencyRequired)
	}

	account := &models.Account{
		ID:          grant.AccountID,
		Name:        req.Msg.Name,
		Description: req.Msg.Description,
		Currency:    req.Msg.Currency,
	}

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		slog.Error("UpdateAccount failed", "account_id", grant.AccountID, "error", err)
		return nil, rpcError(err)
	}

	slog.Info("Account updated", "account_id", account.ID)
	return connect.NewResponse(&UpdateAccountResponse{Account: accountView(account)}), nil
}

// Delete removes an account and everything it owns.
func (s *AccountService) Delete(ctx context.Context, req *connect.Request[DeleteAccountRequest]) (*connect.Response[DeleteAccountResponse], error) {
	grant, err := s.gate.AdminOnly(ctx, req.Msg.AccountID)
	if err != nil {
		return nil, rpcError(err)
	}

	if err := s.store.DeleteAccount(ctx, grant.AccountID); err != nil {
		slog.Error("DeleteAccount failed", "account_id", grant.AccountID, "error", err)
		return nil, rpcError(err)
	}

	slog.Info("Account deleted", "account_id", grant.AccountID)
	return connect.NewResponse(&DeleteAccountResponse{}), nil
}

// List returns every account the caller is a member of.
func (s *AccountService) List(ctx context.Context, req *connect.Request[ListAccountsRequest]) (*connect.Response[ListAccountsResponse], error) {
	caller, err := s.gate.Identified(ctx)
	if err != nil {
		return nil, rpcError(err)
	}

	accounts, err := s.store.ListAccountsByUser(ctx, caller.User.ID)
	if err != nil {
		return nil, rpcError(err)
	}

	views := make([]AccountView, len(accounts))
	for i, a := range accounts {
		views[i] = accountView(a)
	}

	return connect.NewResponse(&ListAccountsResponse{Accounts: views}), nil
}
