// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
)

// ErrNotFound is returned when a referenced entity does not exist.
// Implementations wrap it with detail; callers match with errors.Is.
var ErrNotFound = errors.New("not found")

// Store defines the interface for persistence operations. This abstraction
// allows swapping storage backends (SQLite, PostgreSQL, etc.) without
// changing the service layer.
//
// The backend must provide read-committed isolation and an atomic multi-row
// commit primitive; CreateAccount and SaveEventWithPayments rely on it.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserBySubject(ctx context.Context, subject string) (*models.User, error)

	// Accounts. CreateAccount writes the account and the creator's admin
	// membership in one transaction so an account never exists without an
	// admin. DeleteAccount cascades to memberships, payees, events and
	// payments.
	CreateAccount(ctx context.Context, account *models.Account, admin *models.Membership) error
	GetAccount(ctx context.Context, id string) (*models.Account, error)
	UpdateAccount(ctx context.Context, account *models.Account) error
	DeleteAccount(ctx context.Context, id string) error
	ListAccountsByUser(ctx context.Context, userID string) ([]*models.Account, error)

	// Memberships
	CreateMembership(ctx context.Context, m *models.Membership) error
	GetMembership(ctx context.Context, id string) (*models.Membership, error)
	GetMembershipByAccountUser(ctx context.Context, accountID, userID string) (*models.Membership, error)
	ListMembershipsByAccount(ctx context.Context, accountID string) ([]*models.Membership, error)
	ListMembershipsByUser(ctx context.Context, userID string) ([]*models.Membership, error)
	UpdateMembershipRole(ctx context.Context, id string, role models.Role) error
	DeleteMembership(ctx context.Context, id string) error
	CountAdmins(ctx context.Context, accountID string) (int, error)

	// Payees
	CreatePayee(ctx context.Context, p *models.Payee) error
	GetPayee(ctx context.Context, id string) (*models.Payee, error)
	GetPayeeByMembership(ctx context.Context, accountID, membershipID string) (*models.Payee, error)
	ListPayeesByAccount(ctx context.Context, accountID string) ([]*models.Payee, error)
	DeletePayee(ctx context.Context, id string) error

	// Events and payments. SaveEventWithPayments commits the event row and
	// all of its payment rows atomically: all succeed or none are applied.
	// The payments passed in fully replace the event's previous payments.
	SaveEventWithPayments(ctx context.Context, event *models.Event, payments []*models.Payment) error
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListEventsByAccount(ctx context.Context, accountID string) ([]*models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	ListPaymentsByEvent(ctx context.Context, eventID string) ([]*models.Payment, error)

	// Close releases any resources held by the store.
	Close() error
}
