package model

import "time"

// MemberStatus is the membership standing of a member.
type MemberStatus string

const (
	MemberActive   MemberStatus = "active"
	MemberInactive MemberStatus = "inactive"
)

// Member is a business belonging to the organization.
type Member struct {
	ID             int64
	BusinessName   string
	MembershipType string // free text embedding the dues, e.g. "Individual ($100)"
	ContactPerson  string
	Email          string
	Phone          string
	Address        string
	JoinDate       time.Time // zero if unknown
	RenewalDate    time.Time // zero if unset
	Status         MemberStatus
	Notes          string
}

// IsActive reports whether the member is in good standing.
func (m Member) IsActive() bool {
	return m.Status == MemberActive
}

// HasRenewalDate reports whether a renewal date is recorded.
func (m Member) HasRenewalDate() bool {
	return !m.RenewalDate.IsZero()
}
