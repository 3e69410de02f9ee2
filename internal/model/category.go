package model

// CategoryType partitions categories into income and expense.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Category labels transactions and splits for reporting.
type Category struct {
	ID          int64
	Name        string
	Type        CategoryType
	Description string
	Active      bool
}

// Uncategorized is the report label for line items without a category.
const Uncategorized = "Uncategorized"
