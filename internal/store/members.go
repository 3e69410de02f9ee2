package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/duesbook/duesbook/internal/model"
)

const memberColumns = `id, business_name, membership_type, contact_person, email, phone,
	address, join_date, renewal_date, status, notes`

func scanMember(sc scanner) (model.Member, error) {
	var (
		m                                     model.Member
		contact, email, phone, address, notes sql.NullString
		joinDate, renewalDate                 sql.NullString
		status                                string
	)
	if err := sc.Scan(&m.ID, &m.BusinessName, &m.MembershipType, &contact, &email, &phone,
		&address, &joinDate, &renewalDate, &status, &notes); err != nil {
		return model.Member{}, err
	}
	m.ContactPerson = contact.String
	m.Email = email.String
	m.Phone = phone.String
	m.Address = address.String
	m.Notes = notes.String
	m.Status = model.MemberStatus(status)

	var err error
	if m.JoinDate, err = parseDate(joinDate); err != nil {
		return model.Member{}, fmt.Errorf("member %d: %w", m.ID, err)
	}
	if m.RenewalDate, err = parseDate(renewalDate); err != nil {
		return model.Member{}, fmt.Errorf("member %d: %w", m.ID, err)
	}
	return m, nil
}

// ListMembers returns all members ordered by business name.
func (s *Store) ListMembers(ctx context.Context) ([]model.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members ORDER BY business_name COLLATE NOCASE, id`)
	if err != nil {
		return nil, storeErr("list members", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, storeErr("scan member", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list members", err)
	}
	return members, nil
}

// GetMember returns one member or a NotFoundError.
func (s *Store) GetMember(ctx context.Context, id int64) (model.Member, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id)
	m, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Member{}, model.NotFoundError{Entity: "member", ID: id}
	}
	if err != nil {
		return model.Member{}, storeErr("get member", err)
	}
	return m, nil
}

// AddMember inserts a member and returns its id.
func (s *Store) AddMember(ctx context.Context, m model.Member) (int64, error) {
	status := m.Status
	if status == "" {
		status = model.MemberActive
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO members
		(business_name, membership_type, contact_person, email, phone, address, join_date, renewal_date, status, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.BusinessName, m.MembershipType, nullString(m.ContactPerson), nullString(m.Email),
		nullString(m.Phone), nullString(m.Address), nullDate(m.JoinDate), nullDate(m.RenewalDate),
		string(status), nullString(m.Notes))
	if err != nil {
		return 0, storeErr("insert member", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("insert member", err)
	}
	return id, nil
}

// UpdateMember overwrites a member's fields and returns the changed row count.
func (s *Store) UpdateMember(ctx context.Context, id int64, m model.Member) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE members SET
		business_name = ?, membership_type = ?, contact_person = ?, email = ?, phone = ?,
		address = ?, join_date = ?, renewal_date = ?, status = ?, notes = ?
		WHERE id = ?`,
		m.BusinessName, m.MembershipType, nullString(m.ContactPerson), nullString(m.Email),
		nullString(m.Phone), nullString(m.Address), nullDate(m.JoinDate), nullDate(m.RenewalDate),
		string(m.Status), nullString(m.Notes), id)
	if err != nil {
		return 0, storeErr("update member", err)
	}
	return affected(res), nil
}

// DeleteMember removes a member. Its transactions and invoices cascade.
func (s *Store) DeleteMember(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	if err != nil {
		return 0, storeErr("delete member", err)
	}
	return affected(res), nil
}
