package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Transaction is a single income or expense posting.
type Transaction struct {
	ID              int64
	Date            time.Time
	Amount          decimal.Decimal // always positive
	Description     string
	PayeePayer      string
	CategoryID      int64 // 0 = uncategorized
	MemberID        int64 // 0 = no member
	Type            TransactionType
	PaymentMethod   string
	ReferenceNumber string
	Notes           string
	CreatedAt       time.Time

	// Populated by listings.
	CategoryName string
	MemberName   string
	SplitCount   int
}

// HasSplits reports whether the transaction owns recorded splits.
func (t Transaction) HasSplits() bool {
	return t.SplitCount > 0
}

// Split allocates part of a transaction to a category or member.
type Split struct {
	ID            int64
	TransactionID int64
	Amount        decimal.Decimal // signed; negative for refunds within the group
	CategoryID    int64
	MemberID      int64
	Description   string
	Notes         string
	CreatedAt     time.Time

	CategoryName string
	MemberName   string
}

// TransactionFilter narrows a transaction listing. Zero values match everything.
type TransactionFilter struct {
	Start         time.Time
	End           time.Time
	Type          TransactionType
	CategoryID    int64
	Uncategorized bool
	MemberID      int64
}
