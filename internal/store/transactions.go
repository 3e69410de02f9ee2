package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/duesbook/duesbook/internal/model"
)

const transactionSelect = `SELECT t.id, t.date, t.amount, t.description, t.payee_payer,
	t.category_id, t.member_id, t.transaction_type, t.payment_method, t.reference_number,
	t.notes, t.created_at, c.name, m.business_name,
	(SELECT COUNT(*) FROM transaction_splits s WHERE s.transaction_id = t.id)
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id
	LEFT JOIN members m ON m.id = t.member_id`

func scanTransaction(sc scanner) (model.Transaction, error) {
	var (
		t                               model.Transaction
		date, amount, typ, created      string
		desc, payee, method, ref, notes sql.NullString
		categoryName, memberName        sql.NullString
		categoryID, memberID            sql.NullInt64
	)
	if err := sc.Scan(&t.ID, &date, &amount, &desc, &payee, &categoryID, &memberID, &typ,
		&method, &ref, &notes, &created, &categoryName, &memberName, &t.SplitCount); err != nil {
		return model.Transaction{}, err
	}
	var err error
	if t.Date, err = model.ParseDate(date); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	if t.Amount, err = parseAmount(amount); err != nil {
		return model.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}
	t.Description = desc.String
	t.PayeePayer = payee.String
	t.CategoryID = categoryID.Int64
	t.MemberID = memberID.Int64
	t.Type = model.TransactionType(typ)
	t.PaymentMethod = method.String
	t.ReferenceNumber = ref.String
	t.Notes = notes.String
	t.CreatedAt = parseTimestamp(created)
	t.CategoryName = categoryName.String
	t.MemberName = memberName.String
	return t, nil
}

// ListTransactions returns transactions matching f, newest first, each
// annotated with its split count and joined category and member names.
func (s *Store) ListTransactions(ctx context.Context, f model.TransactionFilter) ([]model.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if !f.Start.IsZero() {
		where = append(where, "t.date >= ?")
		args = append(args, model.FormatDate(f.Start))
	}
	if !f.End.IsZero() {
		where = append(where, "t.date <= ?")
		args = append(args, model.FormatDate(f.End))
	}
	if f.Type != "" {
		where = append(where, "t.transaction_type = ?")
		args = append(args, string(f.Type))
	}
	if f.Uncategorized {
		where = append(where, "t.category_id IS NULL")
	} else if f.CategoryID != 0 {
		where = append(where, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.MemberID != 0 {
		where = append(where, "t.member_id = ?")
		args = append(args, f.MemberID)
	}

	query := transactionSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date DESC, t.created_at DESC, t.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list transactions", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, storeErr("scan transaction", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list transactions", err)
	}
	return txns, nil
}

// GetTransaction returns one transaction or a NotFoundError.
func (s *Store) GetTransaction(ctx context.Context, id int64) (model.Transaction, error) {
	t, err := scanTransaction(s.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, model.NotFoundError{Entity: "transaction", ID: id}
	}
	if err != nil {
		return model.Transaction{}, storeErr("get transaction", err)
	}
	return t, nil
}

// AddTransaction inserts a transaction without splits and returns its id.
func (s *Store) AddTransaction(ctx context.Context, t model.Transaction) (int64, error) {
	id, err := s.insertTransaction(ctx, s.db, t)
	if err != nil {
		return 0, storeErr("insert transaction", err)
	}
	return id, nil
}

// DeleteTransaction removes a transaction. Its splits cascade.
func (s *Store) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return 0, storeErr("delete transaction", err)
	}
	return affected(res), nil
}

// SaveTransaction inserts (ID 0) or updates t and replaces its split set
// with splits, all in one database transaction. An empty splits slice
// leaves the transaction unsplit.
func (s *Store) SaveTransaction(ctx context.Context, t model.Transaction, splits []model.Split) (int64, error) {
	id := t.ID
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if id == 0 {
			newID, err := s.insertTransaction(ctx, tx, t)
			if err != nil {
				return err
			}
			id = newID
		} else {
			n, err := s.updateTransaction(ctx, tx, t)
			if err != nil {
				return err
			}
			if n == 0 {
				return model.NotFoundError{Entity: "transaction", ID: id}
			}
		}
		return s.replaceSplits(ctx, tx, id, splits)
	})
	if err != nil {
		if model.IsNotFound(err) {
			return 0, err
		}
		return 0, storeErr("save transaction", err)
	}
	return id, nil
}

func (s *Store) insertTransaction(ctx context.Context, ex execer, t model.Transaction) (int64, error) {
	res, err := ex.ExecContext(ctx, `INSERT INTO transactions
		(date, amount, description, payee_payer, category_id, member_id, transaction_type,
		payment_method, reference_number, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		model.FormatDate(t.Date), t.Amount.String(), nullString(t.Description), nullString(t.PayeePayer),
		nullID(t.CategoryID), nullID(t.MemberID), string(t.Type), nullString(t.PaymentMethod),
		nullString(t.ReferenceNumber), nullString(t.Notes), s.timestamp())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) updateTransaction(ctx context.Context, ex execer, t model.Transaction) (int64, error) {
	res, err := ex.ExecContext(ctx, `UPDATE transactions SET
		date = ?, amount = ?, description = ?, payee_payer = ?, category_id = ?, member_id = ?,
		transaction_type = ?, payment_method = ?, reference_number = ?, notes = ?
		WHERE id = ?`,
		model.FormatDate(t.Date), t.Amount.String(), nullString(t.Description), nullString(t.PayeePayer),
		nullID(t.CategoryID), nullID(t.MemberID), string(t.Type), nullString(t.PaymentMethod),
		nullString(t.ReferenceNumber), nullString(t.Notes), t.ID)
	if err != nil {
		return 0, err
	}
	return affected(res), nil
}

// TypeTotals is the sum of transaction amounts per type over a date range.
type TypeTotals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// SummaryByType totals parent transaction amounts by type between start and
// end inclusive. Zero bounds are open. Splits do not change a parent's total.
func (s *Store) SummaryByType(ctx context.Context, start, end time.Time) (TypeTotals, error) {
	query := `SELECT transaction_type, amount FROM transactions WHERE 1 = 1`
	var args []any
	if !start.IsZero() {
		query += ` AND date >= ?`
		args = append(args, model.FormatDate(start))
	}
	if !end.IsZero() {
		query += ` AND date <= ?`
		args = append(args, model.FormatDate(end))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return TypeTotals{}, storeErr("summary by type", err)
	}
	defer rows.Close()

	totals := TypeTotals{Income: decimal.Zero, Expenses: decimal.Zero}
	for rows.Next() {
		var typ, amount string
		if err := rows.Scan(&typ, &amount); err != nil {
			return TypeTotals{}, storeErr("scan summary", err)
		}
		d, err := parseAmount(amount)
		if err != nil {
			return TypeTotals{}, storeErr("scan summary", err)
		}
		switch model.TransactionType(typ) {
		case model.Income:
			totals.Income = totals.Income.Add(d)
		case model.Expense:
			totals.Expenses = totals.Expenses.Add(d)
		}
	}
	if err := rows.Err(); err != nil {
		return TypeTotals{}, storeErr("summary by type", err)
	}
	return totals, nil
}

// Net is income minus expenses.
func (t TypeTotals) Net() decimal.Decimal {
	return t.Income.Sub(t.Expenses)
}
