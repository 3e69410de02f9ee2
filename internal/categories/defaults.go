package categories

import "github.com/duesbook/duesbook/internal/model"

// DuesCategory is the category paid invoices post to.
const DuesCategory = "Membership Dues"

// Defaults returns the starting category chart for a chamber of commerce.
func Defaults() []model.Category {
	return []model.Category{
		{Name: DuesCategory, Type: model.CategoryIncome, Description: "Annual membership fees", Active: true},
		{Name: "Banquet Revenue", Type: model.CategoryIncome, Description: "Annual banquet income", Active: true},
		{Name: "Bourbon Chase", Type: model.CategoryIncome, Description: "Bourbon Chase event revenue", Active: true},
		{Name: "Christmas Parade", Type: model.CategoryIncome, Description: "Christmas parade revenue", Active: true},
		{Name: "Chamber Merchandise", Type: model.CategoryIncome, Description: "Merchandise sales", Active: true},
		{Name: "Donations", Type: model.CategoryIncome, Description: "Donations received", Active: true},
		{Name: "Grants", Type: model.CategoryIncome, Description: "Grant funding", Active: true},
		{Name: "Phone", Type: model.CategoryExpense, Description: "Phone and communication expenses", Active: true},
		{Name: "Salary", Type: model.CategoryExpense, Description: "Staff salaries", Active: true},
		{Name: "Reimbursement", Type: model.CategoryExpense, Description: "Employee reimbursements", Active: true},
		{Name: "Office Supplies", Type: model.CategoryExpense, Description: "Office and administrative supplies", Active: true},
		{Name: "Equipment Lease", Type: model.CategoryExpense, Description: "Equipment leases (copier, etc.)", Active: true},
		{Name: "Dues & Subscriptions", Type: model.CategoryExpense, Description: "Professional dues and subscriptions", Active: true},
		{Name: "Utilities", Type: model.CategoryExpense, Description: "Electricity, water, internet", Active: true},
		{Name: "Rent", Type: model.CategoryExpense, Description: "Office rent", Active: true},
	}
}
