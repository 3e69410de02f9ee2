package categories

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/duesbook/duesbook/internal/model"
)

const (
	numFields = 4
	colName   = 0
	colType   = 1
	colDesc   = 2
	colActive = 3
)

// ReadCategories reads a categories CSV with a header row.
func ReadCategories(r io.Reader) ([]model.Category, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading categories CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var cats []model.Category
	for i, rec := range records[1:] {
		c, err := UnmarshalCategory(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		cats = append(cats, c)
	}
	return cats, nil
}

// WriteCategories writes categories as CSV with a header row.
func WriteCategories(w io.Writer, cats []model.Category) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"name", "type", "description", "active"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, c := range cats {
		if err := cw.Write(MarshalCategory(c)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalCategory converts a Category to a CSV row.
func MarshalCategory(c model.Category) []string {
	row := make([]string, numFields)
	row[colName] = c.Name
	row[colType] = string(c.Type)
	row[colDesc] = c.Description
	row[colActive] = strconv.FormatBool(c.Active)
	return row
}

// UnmarshalCategory converts a CSV row to a Category.
func UnmarshalCategory(record []string) (model.Category, error) {
	if len(record) != numFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	typ := model.CategoryType(record[colType])
	if !typ.Valid() {
		return model.Category{}, fmt.Errorf("invalid category type %q", record[colType])
	}

	active := true
	if record[colActive] != "" {
		var err error
		active, err = strconv.ParseBool(record[colActive])
		if err != nil {
			return model.Category{}, fmt.Errorf("parsing active %q: %w", record[colActive], err)
		}
	}

	return model.Category{
		Name:        record[colName],
		Type:        typ,
		Description: record[colDesc],
		Active:      active,
	}, nil
}
