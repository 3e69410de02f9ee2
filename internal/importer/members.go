package importer

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/duesbook/duesbook/internal/logger"
	"github.com/duesbook/duesbook/internal/model"
)

// Defaults for roster columns left blank.
const (
	DefaultMembershipType = "Individual ($100)"
	DefaultMemberNotes    = "Imported from CSV"
)

// MemberAdder persists an imported member.
type MemberAdder interface {
	Import(ctx context.Context, m model.Member) (int64, error)
}

// MemberImporter turns roster CSV rows into members.
type MemberImporter struct {
	adder MemberAdder
}

// NewMemberImporter creates a MemberImporter.
func NewMemberImporter(adder MemberAdder) *MemberImporter {
	return &MemberImporter{adder: adder}
}

// Kind returns the importer name.
func (i *MemberImporter) Kind() string { return "members" }

// Import adds one member per row. Rows without a business name are skipped;
// rows the member rules reject, such as duplicates, count as errors.
func (i *MemberImporter) Import(ctx context.Context, r io.Reader) (model.BatchResult, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return model.BatchResult{}, err
	}

	batchID := uuid.New().String()
	log := logger.FromContext(ctx).With().Str("batch_id", batchID).Str("kind", i.Kind()).Logger()

	res := model.BatchResult{BatchID: batchID}
	for n, row := range rows {
		m, ok := ConvertMember(row)
		if !ok {
			log.Debug().Int("row", n+1).Msg("skipping row without business name")
			res.Skipped++
			continue
		}
		if _, err := i.adder.Import(ctx, m); err != nil {
			log.Warn().Int("row", n+1).Str("business_name", m.BusinessName).Err(err).Msg("importing member")
			res.ErrorCount++
			continue
		}
		res.SuccessCount++
	}

	log.Info().Int("count", res.SuccessCount).Int("errors", res.ErrorCount).Int("skipped", res.Skipped).
		Msg("members imported")
	return res, nil
}

// ConvertMember maps a roster row to a member. It reports false when the
// row has no business name. Unreadable dates are left empty.
func ConvertMember(row Row) (model.Member, bool) {
	name := MemberFields.Lookup(row, FieldBusinessName)
	if name == "" {
		return model.Member{}, false
	}

	m := model.Member{
		BusinessName:   name,
		MembershipType: orDefault(MemberFields.Lookup(row, FieldMembershipType), DefaultMembershipType),
		ContactPerson:  MemberFields.Lookup(row, FieldContactPerson),
		Email:          MemberFields.Lookup(row, FieldEmail),
		Phone:          MemberFields.Lookup(row, FieldPhone),
		Address:        joinAddress(MemberFields.Lookup(row, FieldAddress), MemberFields.Lookup(row, FieldCity)),
		Status:         model.MemberStatus(MemberFields.Lookup(row, FieldStatus)),
		Notes:          orDefault(MemberFields.Lookup(row, FieldNotes), DefaultMemberNotes),
	}

	m.JoinDate = parseOptionalDate(MemberFields.Lookup(row, FieldJoinDate))
	renewal := MemberFields.Lookup(row, FieldRenewalDate)
	switch {
	case renewal != "":
		m.RenewalDate = parseOptionalDate(renewal)
	case !m.JoinDate.IsZero():
		m.RenewalDate = m.JoinDate.AddDate(1, 0, 0)
	}
	return m, true
}

func parseOptionalDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	d, err := ParseDate(s)
	if err != nil {
		return time.Time{}
	}
	return d
}

func joinAddress(address, city string) string {
	switch {
	case address != "" && city != "":
		return address + ", " + city
	case address != "":
		return address
	default:
		return city
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
