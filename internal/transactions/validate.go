package transactions

import "github.com/duesbook/duesbook/internal/model"

// Validate checks the fields every transaction needs.
func Validate(t model.Transaction) error {
	return validate(t, false)
}

// validate checks t. allowZero admits a zero amount, which bank exports
// carry for waived fees and holds.
func validate(t model.Transaction, allowZero bool) error {
	if t.Date.IsZero() {
		return model.ValidationError{Field: "date", Message: "is required"}
	}
	if t.Amount.IsNegative() {
		return model.ValidationError{Field: "amount", Message: "cannot be negative"}
	}
	if t.Amount.IsZero() && !allowZero {
		return model.ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	if !t.Type.Valid() {
		return model.ValidationError{Field: "type", Message: "must be income or expense"}
	}
	return nil
}
