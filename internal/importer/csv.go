package importer

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

const bom = "\ufeff"

// Row is one CSV record keyed by header name.
type Row map[string]string

// ReadRows reads a CSV with a header line. A leading byte order mark is
// ignored, headers and values are trimmed, and short rows leave the
// missing columns empty.
func ReadRows(r io.Reader) ([]Row, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(bom)); err == nil && string(b) == bom {
		if _, err := br.Discard(len(bom)); err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		row := make(Row, len(header))
		for i, h := range header {
			if h == "" || i >= len(rec) {
				continue
			}
			row[h] = strings.TrimSpace(rec[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// FieldMap lists, per logical field, the header names that may carry it.
type FieldMap map[string][]string

// Lookup returns the first non-empty value among field's synonyms.
func (fm FieldMap) Lookup(row Row, field string) string {
	for _, name := range fm[field] {
		if v := row[name]; v != "" {
			return v
		}
	}
	return ""
}

// Logical field names.
const (
	FieldDate           = "date"
	FieldDescription    = "description"
	FieldAmount         = "amount"
	FieldReference      = "reference"
	FieldBusinessName   = "business_name"
	FieldMembershipType = "membership_type"
	FieldContactPerson  = "contact_person"
	FieldEmail          = "email"
	FieldPhone          = "phone"
	FieldAddress        = "address"
	FieldCity           = "city"
	FieldJoinDate       = "join_date"
	FieldRenewalDate    = "renewal_date"
	FieldStatus         = "status"
	FieldNotes          = "notes"
)

// TransactionFields maps bank export headers.
var TransactionFields = FieldMap{
	FieldDate:        {"DATE", "Date", "Transaction Date", "date"},
	FieldDescription: {"DESCRIPTION", "Description", "Memo", "description"},
	FieldAmount:      {"AMOUNT", "Amount", "Debit", "Credit", "amount"},
	FieldReference:   {"NOTE", "Reference", "Check Number", "reference"},
}

// MemberFields maps membership roster headers.
var MemberFields = FieldMap{
	FieldBusinessName: {"Business Name", "business_name", "company", "Company", "businessname",
		"businessName", "BUSINESS_NAME", "BusinessName", "Company Name", "company_name"},
	FieldMembershipType: {"Membership type", "membership_type", "Membership Type", "type", "Type",
		"membershiptype", "membershipType", "MEMBERSHIP_TYPE", "MembershipType", "member_type", "Member Type"},
	FieldContactPerson: {"contact_person", "Contact Person", "contact", "Contact", "contactperson",
		"contactPerson", "CONTACT_PERSON", "ContactPerson", "contact_name", "Contact Name"},
	FieldEmail: {"E-mail", "email", "Email", "email_address", "Email Address", "EMAIL",
		"EmailAddress", "emailaddress"},
	FieldPhone: {"Phone", "phone", "phone_number", "Phone Number", "PHONE", "PhoneNumber",
		"phonenumber", "telephone", "Telephone"},
	FieldAddress: {"zip_code_address", "address", "Address", "business_address", "Business Address",
		"ADDRESS", "BusinessAddress", "businessaddress", "street", "Street"},
	FieldCity: {"city", "City", "CITY"},
	FieldJoinDate: {"join_date", "Join Date", "joined", "Joined", "joindate", "joinDate", "JOIN_DATE",
		"JoinDate", "member_since", "Member Since"},
	FieldRenewalDate: {"renewal_date", "Renewal Date", "renewal", "Renewal", "renewaldate", "renewalDate",
		"RENEWAL_DATE", "RenewalDate", "expires", "Expires", "expiration", "Expiration"},
	FieldStatus: {"status", "Status", "member_status", "Member Status", "STATUS", "memberstatus",
		"memberStatus", "MemberStatus", "active", "Active"},
	FieldNotes: {"notes", "Notes", "comment", "Comment", "NOTES", "comments", "Comments",
		"description", "Description"},
}
