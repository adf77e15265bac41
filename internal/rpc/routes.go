// Package rpc registers the Connect unary handlers for every service
// procedure. Procedures follow the /moneyapp.v1.<Service>/<Method> naming
// scheme.
package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/peterszarvas94/moneyapp-sub000/internal/auth"
	"github.com/peterszarvas94/moneyapp-sub000/internal/middleware"
	"github.com/peterszarvas94/moneyapp-sub000/internal/service"
)

// Procedure names, one per operation.
const (
	AuthRegister = "/moneyapp.v1.AuthService/Register"
	AuthLogin    = "/moneyapp.v1.AuthService/Login"

	AccountCreate = "/moneyapp.v1.AccountService/Create"
	AccountGet    = "/moneyapp.v1.AccountService/Get"
	AccountUpdate = "/moneyapp.v1.AccountService/Update"
	AccountDelete = "/moneyapp.v1.AccountService/Delete"
	AccountList   = "/moneyapp.v1.AccountService/List"

	MembershipResolveAccess = "/moneyapp.v1.MembershipService/ResolveAccess"
	MembershipList          = "/moneyapp.v1.MembershipService/List"
	MembershipInvite        = "/moneyapp.v1.MembershipService/Invite"
	MembershipSetRole       = "/moneyapp.v1.MembershipService/SetRole"
	MembershipRemove        = "/moneyapp.v1.MembershipService/Remove"
	MembershipLeave         = "/moneyapp.v1.MembershipService/Leave"

	PayeeCreate = "/moneyapp.v1.PayeeService/Create"
	PayeeList   = "/moneyapp.v1.PayeeService/List"
	PayeeDelete = "/moneyapp.v1.PayeeService/Delete"

	EventCreate       = "/moneyapp.v1.EventService/Create"
	EventUpdate       = "/moneyapp.v1.EventService/Update"
	EventDelete       = "/moneyapp.v1.EventService/Delete"
	EventGet          = "/moneyapp.v1.EventService/Get"
	EventList         = "/moneyapp.v1.EventService/List"
	EventListPayments = "/moneyapp.v1.EventService/ListPayments"
)

// Services bundles everything the router exposes.
type Services struct {
	Auth        *service.AuthService
	Accounts    *service.AccountService
	Memberships *service.MembershipService
	Payees      *service.PayeeService
	Events      *service.EventService
}

// Register mounts every procedure on the mux. The interceptor chain is
// identity (token verification) first, so logging and metrics see the
// resolved subject.
func Register(mux *http.ServeMux, svcs Services, jwtManager *auth.JWTManager) {
	opts := []connect.HandlerOption{
		connect.WithCodec(jsonCodec{}),
		connect.WithInterceptors(
			middleware.Identity(jwtManager),
			middleware.LoggingInterceptor(),
			middleware.MetricsInterceptor(),
		),
	}

	handle(mux, AuthRegister, svcs.Auth.Register, opts)
	handle(mux, AuthLogin, svcs.Auth.Login, opts)

	handle(mux, AccountCreate, svcs.Accounts.Create, opts)
	handle(mux, AccountGet, svcs.Accounts.Get, opts)
	handle(mux, AccountUpdate, svcs.Accounts.Update, opts)
	handle(mux, AccountDelete, svcs.Accounts.Delete, opts)
	handle(mux, AccountList, svcs.Accounts.List, opts)

	handle(mux, MembershipResolveAccess, svcs.Memberships.ResolveAccess, opts)
	handle(mux, MembershipList, svcs.Memberships.List, opts)
	handle(mux, MembershipInvite, svcs.Memberships.Invite, opts)
	handle(mux, MembershipSetRole, svcs.Memberships.SetRole, opts)
	handle(mux, MembershipRemove, svcs.Memberships.Remove, opts)
	handle(mux, MembershipLeave, svcs.Memberships.Leave, opts)

	handle(mux, PayeeCreate, svcs.Payees.Create, opts)
	handle(mux, PayeeList, svcs.Payees.List, opts)
	handle(mux, PayeeDelete, svcs.Payees.Delete, opts)

	handle(mux, EventCreate, svcs.Events.Create, opts)
	handle(mux, EventUpdate, svcs.Events.Update, opts)
	handle(mux, EventDelete, svcs.Events.Delete, opts)
	handle(mux, EventGet, svcs.Events.Get, opts)
	handle(mux, EventList, svcs.Events.List, opts)
	handle(mux, EventListPayments, svcs.Events.ListPayments, opts)
}

func handle[Req, Res any](
	mux *http.ServeMux,
	procedure string,
	fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error),
	opts []connect.HandlerOption,
) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}
