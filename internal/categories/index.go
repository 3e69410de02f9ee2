package categories

import (
	"strings"

	"github.com/duesbook/duesbook/internal/model"
)

// Index provides in-memory lookup over a loaded category list.
type Index struct {
	categories []model.Category
	byID       map[int64]model.Category
	byName     map[string]model.Category
}

// NewIndex creates an Index from a slice of categories.
func NewIndex(cats []model.Category) *Index {
	byID := make(map[int64]model.Category, len(cats))
	byName := make(map[string]model.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
		byName[strings.ToLower(c.Name)] = c
	}
	return &Index{categories: cats, byID: byID, byName: byName}
}

// All returns all categories.
func (x *Index) All() []model.Category {
	return x.categories
}

// Get returns a category by ID.
func (x *Index) Get(id int64) (model.Category, bool) {
	c, ok := x.byID[id]
	return c, ok
}

// ByName returns a category by case-insensitive name.
func (x *Index) ByName(name string) (model.Category, bool) {
	c, ok := x.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// ByType returns all categories of the given type.
func (x *Index) ByType(t model.CategoryType) []model.Category {
	var result []model.Category
	for _, c := range x.categories {
		if c.Type == t {
			result = append(result, c)
		}
	}
	return result
}
