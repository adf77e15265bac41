package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/peterszarvas94/moneyapp-sub000/internal/directory"
	"github.com/peterszarvas94/moneyapp-sub000/internal/gate"
	"github.com/peterszarvas94/moneyapp-sub000/internal/split"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage"
)

// ErrDuplicatePayee is returned when a membership already has a linked
// payee in the account.
var ErrDuplicatePayee = errors.New("membership already has a payee in this account")

var errNameAndCurrencyRequired = errors.New("name and currency are required")

// rpcError maps domain errors onto the connect error taxonomy. Every
// business-rule failure is detected before any mutation and surfaced
// verbatim; only genuinely unexpected failures become CodeInternal.
func rpcError(err error) error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return err
	}

	var validation *split.ValidationError
	switch {
	case errors.Is(err, gate.ErrUnauthenticated):
		return connect.NewError(connect.CodeUnauthenticated, err)
	case errors.Is(err, gate.ErrForbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, directory.ErrDuplicateMembership),
		errors.Is(err, ErrDuplicatePayee):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, directory.ErrSelfAction),
		errors.Is(err, directory.ErrLastAdmin):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.As(err, &validation),
		errors.Is(err, gate.ErrAccountRequired),
		errors.Is(err, directory.ErrInvalidRole),
		errors.Is(err, split.ErrSavingExceedsIncome),
		errors.Is(err, split.ErrNegativeAmount),
		errors.Is(err, split.ErrNameRequired),
		errors.Is(err, split.ErrBadDelivery):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
