package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/peterszarvas94/moneyapp-sub000/internal/models"
	"github.com/peterszarvas94/moneyapp-sub000/internal/storage"
)

// CreateAccount writes the account and the creator's admin membership in a
// single transaction, so an account is never observable without an admin.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account, admin *models.Membership) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if account.CreatedAt == 0 {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	if admin.ID == "" {
		admin.ID = uuid.New().String()
	}
	admin.AccountID = account.ID
	admin.Role = models.RoleAdmin
	if admin.CreatedAt == 0 {
		admin.CreatedAt = now
	}
	admin.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (id, name, description, currency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		account.ID, account.Name, account.Description, account.Currency,
		account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memberships (id, account_id, user_id, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		admin.ID, admin.AccountID, admin.UserID, admin.Role,
		admin.CreatedAt, admin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert admin membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetAccount retrieves an account by ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account := &models.Account{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, currency, created_at, updated_at
		 FROM accounts WHERE id = ?`,
		id,
	).Scan(&account.ID, &account.Name, &account.Description, &account.Currency,
		&account.CreatedAt, &account.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// UpdateAccount updates an account's name, description and currency.
func (s *SQLiteStore) UpdateAccount(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now().Unix()

	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, description = ?, currency = ?, updated_at = ?
		 WHERE id = ?`,
		account.Name, account.Description, account.Currency, account.UpdatedAt, account.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s: %w", account.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteAccount removes an account. Memberships, payees, events and
// payments cascade via foreign keys.
func (s *SQLiteStore) DeleteAccount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM accounts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// ListAccountsByUser retrieves all accounts the user has a membership in.
func (s *SQLiteStore) ListAccountsByUser(ctx context.Context, userID string) ([]*models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.name, a.description, a.currency, a.created_at, a.updated_at
		 FROM accounts a
		 JOIN memberships m ON m.account_id = a.id
		 WHERE m.user_id = ?
		 ORDER BY a.name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by user: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account := &models.Account{}
		if err := rows.Scan(&account.ID, &account.Name, &account.Description,
			&account.Currency, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}
