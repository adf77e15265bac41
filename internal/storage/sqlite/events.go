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

// SaveEventWithPayments commits the event row and all of its payment rows
// in one transaction. The given payments fully replace whatever payments
// the event had before. If anything fails, nothing is applied.
func (s *SQLiteStore) SaveEventWithPayments(ctx context.Context, event *models.Event, payments []*models.Payment) error {
	now := time.Now().Unix()
	creating := event.ID == ""
	if creating {
		event.ID = uuid.New().String()
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if creating {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO events (id, account_id, name, description, income, saving, delivery, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			event.ID, event.AccountID, event.Name, event.Description,
			event.Income, event.Saving, event.Delivery, event.CreatedAt, event.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx,
			`UPDATE events SET name = ?, description = ?, income = ?, saving = ?, delivery = ?, updated_at = ?
			 WHERE id = ? AND account_id = ?`,
			event.Name, event.Description, event.Income, event.Saving,
			event.Delivery, event.UpdatedAt, event.ID, event.AccountID,
		)
		if err != nil {
			return fmt.Errorf("failed to update event: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("event %s: %w", event.ID, storage.ErrNotFound)
		}

		// Replace the payment set wholesale; stale rows must not survive
		// an edit that removed their payee.
		if _, err := tx.ExecContext(ctx, "DELETE FROM payments WHERE event_id = ?", event.ID); err != nil {
			return fmt.Errorf("failed to clear payments: %w", err)
		}
	}

	for _, p := range payments {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.AccountID = event.AccountID
		p.EventID = event.ID
		if p.CreatedAt == 0 {
			p.CreatedAt = now
		}
		p.UpdatedAt = now

		_, err = tx.ExecContext(ctx,
			`INSERT INTO payments (id, account_id, event_id, payee_id, factor, extra, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.AccountID, p.EventID, p.PayeeID, p.Factor, p.Extra,
			p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment for payee %s: %w", p.PayeeID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetEvent retrieves an event by ID.
func (s *SQLiteStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event := &models.Event{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, account_id, name, description, income, saving, delivery, created_at, updated_at
		 FROM events WHERE id = ?`,
		id,
	).Scan(&event.ID, &event.AccountID, &event.Name, &event.Description,
		&event.Income, &event.Saving, &event.Delivery, &event.CreatedAt, &event.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("event %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return event, nil
}

// ListEventsByAccount retrieves all events of an account, newest delivery
// first.
func (s *SQLiteStore) ListEventsByAccount(ctx context.Context, accountID string) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, name, description, income, saving, delivery, created_at, updated_at
		 FROM events WHERE account_id = ? ORDER BY delivery DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event := &models.Event{}
		if err := rows.Scan(&event.ID, &event.AccountID, &event.Name, &event.Description,
			&event.Income, &event.Saving, &event.Delivery, &event.CreatedAt, &event.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

// DeleteEvent removes an event by ID. Its payments cascade.
func (s *SQLiteStore) DeleteEvent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("event %s: %w", id, storage.ErrNotFound)
	}

	return nil
}

// ListPaymentsByEvent retrieves all payments of an event.
func (s *SQLiteStore) ListPaymentsByEvent(ctx context.Context, eventID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, event_id, payee_id, factor, extra, created_at, updated_at
		 FROM payments WHERE event_id = ? ORDER BY created_at`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		p := &models.Payment{}
		if err := rows.Scan(&p.ID, &p.AccountID, &p.EventID, &p.PayeeID,
			&p.Factor, &p.Extra, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}
