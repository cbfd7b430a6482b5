package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/splitledger/splitledger/internal/models"
	"github.com/splitledger/splitledger/internal/money"
)

// execer covers both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AppendPayment appends a payment to the ledger. The payment's ID and
// CreatedAt fields are populated if unset.
func (s *SQLiteStore) AppendPayment(ctx context.Context, payment *models.Payment) error {
	return insertPayment(ctx, s.db, payment)
}

// AppendPayments appends a batch of payments in one transaction, so a
// multi-edge settlement is never partially visible to readers.
func (s *SQLiteStore) AppendPayments(ctx context.Context, payments []*models.Payment) error {
	if len(payments) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, payment := range payments {
		if err := insertPayment(ctx, tx, payment); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertPayment(ctx context.Context, db execer, payment *models.Payment) error {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt == 0 {
		payment.CreatedAt = time.Now().Unix()
	}
	if payment.Kind == "" {
		payment.Kind = models.PaymentManual
	}

	var note any
	if payment.Note != "" {
		note = payment.Note
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO payments (id, group_id, from_member, to_member, amount, kind, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID, payment.GroupID, payment.From, payment.To,
		int64(payment.Amount), string(payment.Kind), note, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	return nil
}

// ListPayments retrieves the group's payments, oldest first.
func (s *SQLiteStore) ListPayments(ctx context.Context, groupID string) ([]*models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, from_member, to_member, amount, kind, note, created_at
		 FROM payments WHERE group_id = ? ORDER BY created_at, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		var amount int64
		var kind string
		var note sql.NullString

		if err := rows.Scan(&payment.ID, &payment.GroupID, &payment.From, &payment.To,
			&amount, &kind, &note, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}

		payment.Amount = money.Amount(amount)
		payment.Kind = models.PaymentKind(kind)
		if note.Valid {
			payment.Note = note.String
		}
		payments = append(payments, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate payments: %w", err)
	}

	return payments, nil
}
