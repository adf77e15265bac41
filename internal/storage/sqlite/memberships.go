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

// CreateMembership inserts a new membership.
func (s *SQLiteStore) CreateMembership(ctx context.Context, m *models.Membership) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if m.CreatedAt == 0 {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memberships (id, account_id, user_id, role, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.AccountID, m.UserID, m.Role, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", err)
	}

	return nil
}

// GetMembership retrieves a membership by ID.
func (s *SQLiteStore) GetMembership(ctx context.Context, id string) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, user_id, role, created_at, updated_at
		 FROM memberships WHERE id = ?`,
		id,
	).Scan(&m.ID, &m.AccountID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("membership %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return m, nil
}

// GetMembershipByAccountUser retrieves the membership for an
// (account, user) pair. There is at most one.
func (s *SQLiteStore) GetMembershipByAccountUser(ctx context.Context, accountID, userID string) (*models.Membership, error) {
	m := &models.Membership{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, user_id, role, created_at, updated_at
		 FROM memberships WHERE account_id = ? AND user_id = ?`,
		accountID, userID,
	).Scan(&m.ID, &m.AccountID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("membership for account %s user %s: %w", accountID, userID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership by account/user: %w", err)
	}

	return m, nil
}

// ListMembershipsByAccount retrieves all memberships of an account.
func (s *SQLiteStore) ListMembershipsByAccount(ctx context.Context, accountID string) ([]*models.Membership, error) {
	return s.listMemberships(ctx, "account_id", accountID)
}

// ListMembershipsByUser retrieves all memberships of a user.
func (s *SQLiteStore) ListMembershipsByUser(ctx context.Context, userID string) ([]*models.Membership, error) {
	return s.listMemberships(ctx, "user_id", userID)
}

func (s *SQLiteStore) listMemberships(ctx context.Context, column, value string) ([]*models.Membership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, user_id, role, created_at, updated_at
		 FROM memberships WHERE `+column+` = ? ORDER BY created_at`,
		value,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships by %s: %w", column, err)
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.ID, &m.AccountID, &m.UserID, &m.Role,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate memberships: %w", err)
	}

	return memberships, nil
}

// UpdateMembershipRole changes the role of a membership.
func (s *SQLiteStore) UpdateMembershipRole(ctx context.Context, id string, role models.Role) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE memberships SET role = ?, updated_at = ? WHERE id = ?",
		role, time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("membership %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// DeleteMembership removes a membership by ID.
func (s *SQLiteStore) DeleteMembership(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM memberships WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("membership %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// CountAdmins returns how many admin memberships an account has.
func (s *SQLiteStore) CountAdmins(ctx context.Context, accountID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM memberships WHERE account_id = ? AND role = ?",
		accountID, models.RoleAdmin,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}

	return count, nil
}
