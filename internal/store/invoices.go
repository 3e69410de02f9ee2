package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/duesbook/duesbook/internal/model"
)

const invoiceSelect = `SELECT i.id, i.invoice_number, i.member_id, i.issue_date, i.due_date,
	i.amount, i.description, i.status, i.paid_date, i.payment_method, i.notes, i.created_at,
	m.business_name, m.contact_person, m.email
	FROM invoices i
	LEFT JOIN members m ON m.id = i.member_id`

func scanInvoice(sc scanner) (model.Invoice, error) {
	var (
		inv                                 model.Invoice
		issue, due, amount, status, created string
		desc, paid, method, notes           sql.NullString
		name, contact, email                sql.NullString
	)
	if err := sc.Scan(&inv.ID, &inv.Number, &inv.MemberID, &issue, &due, &amount, &desc,
		&status, &paid, &method, &notes, &created, &name, &contact, &email); err != nil {
		return model.Invoice{}, err
	}
	var err error
	if inv.IssueDate, err = model.ParseDate(issue); err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", inv.Number, err)
	}
	if inv.DueDate, err = model.ParseDate(due); err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", inv.Number, err)
	}
	if inv.PaidDate, err = parseDate(paid); err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", inv.Number, err)
	}
	if inv.Amount, err = parseAmount(amount); err != nil {
		return model.Invoice{}, fmt.Errorf("invoice %s: %w", inv.Number, err)
	}
	inv.Description = desc.String
	inv.Status = model.InvoiceStatus(status)
	inv.PaymentMethod = method.String
	inv.Notes = notes.String
	inv.CreatedAt = parseTimestamp(created)
	inv.BusinessName = name.String
	inv.ContactPerson = contact.String
	inv.Email = email.String
	return inv, nil
}

// ListInvoices returns invoices matching f, most recently issued first.
// It is a plain read; overdue promotion is the caller's concern.
func (s *Store) ListInvoices(ctx context.Context, f model.InvoiceFilter) ([]model.Invoice, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "i.status = ?")
		args = append(args, string(f.Status))
	}
	if f.MemberID != 0 {
		where = append(where, "i.member_id = ?")
		args = append(args, f.MemberID)
	}
	query := invoiceSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY i.issue_date DESC, i.id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storeErr("list invoices", err)
	}
	defer rows.Close()

	var invoices []model.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, storeErr("scan invoice", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list invoices", err)
	}
	return invoices, nil
}

// GetInvoice returns one invoice or a NotFoundError.
func (s *Store) GetInvoice(ctx context.Context, id int64) (model.Invoice, error) {
	inv, err := scanInvoice(s.db.QueryRowContext(ctx, invoiceSelect+` WHERE i.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Invoice{}, model.NotFoundError{Entity: "invoice", ID: id}
	}
	if err != nil {
		return model.Invoice{}, storeErr("get invoice", err)
	}
	return inv, nil
}

// InvoiceNumbers returns every invoice number with the INV- prefix.
func (s *Store) InvoiceNumbers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT invoice_number FROM invoices WHERE invoice_number LIKE 'INV-%'`)
	if err != nil {
		return nil, storeErr("list invoice numbers", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, storeErr("scan invoice number", err)
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list invoice numbers", err)
	}
	return numbers, nil
}

// AddInvoice inserts an invoice and returns its id.
func (s *Store) AddInvoice(ctx context.Context, inv model.Invoice) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO invoices
		(invoice_number, member_id, issue_date, due_date, amount, description, status,
		paid_date, payment_method, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.Number, inv.MemberID, model.FormatDate(inv.IssueDate), model.FormatDate(inv.DueDate),
		inv.Amount.String(), nullString(inv.Description), string(inv.Status), nullDate(inv.PaidDate),
		nullString(inv.PaymentMethod), nullString(inv.Notes), s.timestamp())
	if err != nil {
		return 0, storeErr("insert invoice", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("insert invoice", err)
	}
	return id, nil
}

// UpdateInvoiceStatus moves an invoice from one status to another. The
// update only applies while the stored status still equals from, so a
// repeated transition changes nothing. paidDate and paymentMethod are
// recorded when non-empty.
func (s *Store) UpdateInvoiceStatus(ctx context.Context, id int64, from, to model.InvoiceStatus, paidDate time.Time, paymentMethod string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE invoices SET
		status = ?,
		paid_date = COALESCE(?, paid_date),
		payment_method = COALESCE(?, payment_method)
		WHERE id = ? AND status = ?`,
		string(to), nullDate(paidDate), nullString(paymentMethod), id, string(from))
	if err != nil {
		return 0, storeErr("update invoice status", err)
	}
	return affected(res), nil
}

// PromoteOverdue marks pending invoices due before today as overdue and
// returns how many changed.
func (s *Store) PromoteOverdue(ctx context.Context, today time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invoices SET status = 'overdue' WHERE status = 'pending' AND due_date < ?`,
		model.FormatDate(today))
	if err != nil {
		return 0, storeErr("promote overdue invoices", err)
	}
	return affected(res), nil
}

// DeleteInvoice removes an invoice. Any transaction posted when it was paid stays.
func (s *Store) DeleteInvoice(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id)
	if err != nil {
		return 0, storeErr("delete invoice", err)
	}
	return affected(res), nil
}
