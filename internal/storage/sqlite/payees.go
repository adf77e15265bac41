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

// CreatePayee inserts a new payee. An empty MembershipID is stored as NULL
// so the (account, membership) uniqueness only applies to linked payees.
func (s *SQLiteStore) CreatePayee(ctx context.Context, p *models.Payee) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	var membershipID interface{}
	if p.MembershipID != "" {
		membershipID = p.MembershipID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payees (id, account_id, name, membership_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.AccountID, p.Name, membershipID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payee: %w", err)
	}

	return nil
}

// GetPayee retrieves a payee by ID.
func (s *SQLiteStore) GetPayee(ctx context.Context, id string) (*models.Payee, error) {
	p := &models.Payee{}
	var membershipID sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, name, membership_id, created_at, updated_at
		 FROM payees WHERE id = ?`,
		id,
	).Scan(&p.ID, &p.AccountID, &p.Name, &membershipID, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payee %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payee: %w", err)
	}

	if membershipID.Valid {
		p.MembershipID = membershipID.String
	}

	return p, nil
}

// GetPayeeByMembership retrieves the payee linked to a membership within an
// account, if any.
func (s *SQLiteStore) GetPayeeByMembership(ctx context.Context, accountID, membershipID string) (*models.Payee, error) {
	p := &models.Payee{}
	var linked sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, name, membership_id, created_at, updated_at
		 FROM payees WHERE account_id = ? AND membership_id = ?`,
		accountID, membershipID,
	).Scan(&p.ID, &p.AccountID, &p.Name, &linked, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("payee for membership %s: %w", membershipID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payee by membership: %w", err)
	}

	if linked.Valid {
		p.MembershipID = linked.String
	}

	return p, nil
}

// ListPayeesByAccount retrieves all payees of an account.
func (s *SQLiteStore) ListPayeesByAccount(ctx context.Context, accountID string) ([]*models.Payee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, name, membership_id, created_at, updated_at
		 FROM payees WHERE account_id = ? ORDER BY name`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payees: %w", err)
	}
	defer rows.Close()

	var payees []*models.Payee
	for rows.Next() {
		p := &models.Payee{}
		var membershipID sql.NullString
		if err := rows.Scan(&p.ID, &p.AccountID, &p.Name, &membershipID,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payee: %w", err)
		}
		if membershipID.Valid {
			p.MembershipID = membershipID.String
		}
		payees = append(payees, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payees: %w", err)
	}

	return payees, nil
}

// DeletePayee removes a payee by ID. Its payments cascade.
func (s *SQLiteStore) DeletePayee(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM payees WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete payee: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payee %s: %w", id, storage.ErrNotFound)
	}

	return nil
}
