package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/duesbook/duesbook/internal/model"
)

// ListSplits returns a transaction's splits in insertion order.
func (s *Store) ListSplits(ctx context.Context, transactionID int64) ([]model.Split, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT sp.id, sp.transaction_id, sp.amount, sp.category_id,
		sp.member_id, sp.description, sp.notes, sp.created_at, c.name, m.business_name
		FROM transaction_splits sp
		LEFT JOIN categories c ON c.id = sp.category_id
		LEFT JOIN members m ON m.id = sp.member_id
		WHERE sp.transaction_id = ?
		ORDER BY sp.id`, transactionID)
	if err != nil {
		return nil, storeErr("list splits", err)
	}
	defer rows.Close()

	var splits []model.Split
	for rows.Next() {
		var (
			sp                       model.Split
			amount, created          string
			desc, notes              sql.NullString
			categoryName, memberName sql.NullString
			categoryID, memberID     sql.NullInt64
		)
		if err := rows.Scan(&sp.ID, &sp.TransactionID, &amount, &categoryID, &memberID,
			&desc, &notes, &created, &categoryName, &memberName); err != nil {
			return nil, storeErr("scan split", err)
		}
		if sp.Amount, err = parseAmount(amount); err != nil {
			return nil, storeErr("scan split", fmt.Errorf("split %d: %w", sp.ID, err))
		}
		sp.CategoryID = categoryID.Int64
		sp.MemberID = memberID.Int64
		sp.Description = desc.String
		sp.Notes = notes.String
		sp.CreatedAt = parseTimestamp(created)
		sp.CategoryName = categoryName.String
		sp.MemberName = memberName.String
		splits = append(splits, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list splits", err)
	}
	return splits, nil
}

// replaceSplits deletes a transaction's splits and inserts the given set.
// Callers run it inside withTx so a failure leaves the prior set untouched.
func (s *Store) replaceSplits(ctx context.Context, ex execer, transactionID int64, splits []model.Split) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM transaction_splits WHERE transaction_id = ?`, transactionID); err != nil {
		return fmt.Errorf("deleting splits: %w", err)
	}
	created := s.timestamp()
	for i, sp := range splits {
		if _, err := ex.ExecContext(ctx, `INSERT INTO transaction_splits
			(transaction_id, amount, category_id, member_id, description, notes, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			transactionID, sp.Amount.String(), nullID(sp.CategoryID), nullID(sp.MemberID),
			nullString(sp.Description), nullString(sp.Notes), created); err != nil {
			return fmt.Errorf("inserting split %d: %w", i+1, err)
		}
	}
	return nil
}
