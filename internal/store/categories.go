package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/duesbook/duesbook/internal/model"
)

const categoryColumns = `id, name, type, description, is_active`

func scanCategory(sc scanner) (model.Category, error) {
	var (
		c    model.Category
		typ  string
		desc sql.NullString
	)
	if err := sc.Scan(&c.ID, &c.Name, &typ, &desc, &c.Active); err != nil {
		return model.Category{}, err
	}
	c.Type = model.CategoryType(typ)
	c.Description = desc.String
	return c, nil
}

// ListCategories returns categories grouped by type then name.
func (s *Store) ListCategories(ctx context.Context, activeOnly bool) ([]model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY type, name`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, storeErr("scan category", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list categories", err)
	}
	return cats, nil
}

// GetCategory returns one category or a NotFoundError.
func (s *Store) GetCategory(ctx context.Context, id int64) (model.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, model.NotFoundError{Entity: "category", ID: id}
	}
	if err != nil {
		return model.Category{}, storeErr("get category", err)
	}
	return c, nil
}

// CategoryByName looks a category up by case-insensitive name.
func (s *Store) CategoryByName(ctx context.Context, name string) (model.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name = ? COLLATE NOCASE`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Category{}, model.NotFoundError{Entity: "category", Key: name}
	}
	if err != nil {
		return model.Category{}, storeErr("get category by name", err)
	}
	return c, nil
}

// AddCategory inserts an active category and returns its id.
func (s *Store) AddCategory(ctx context.Context, c model.Category) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (name, type, description, is_active) VALUES (?, ?, ?, 1)`,
		c.Name, string(c.Type), nullString(c.Description))
	if err != nil {
		return 0, storeErr("insert category", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("insert category", err)
	}
	return id, nil
}

// UpdateCategory overwrites a category's name, type and description.
func (s *Store) UpdateCategory(ctx context.Context, id int64, c model.Category) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, type = ?, description = ? WHERE id = ?`,
		c.Name, string(c.Type), nullString(c.Description), id)
	if err != nil {
		return 0, storeErr("update category", err)
	}
	return affected(res), nil
}

// DeactivateCategory soft-deletes a category so historical rows keep their label.
func (s *Store) DeactivateCategory(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE categories SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return 0, storeErr("deactivate category", err)
	}
	return affected(res), nil
}

// EnsureCategories inserts any categories whose names are not yet present
// and returns how many were added.
func (s *Store) EnsureCategories(ctx context.Context, cats []model.Category) (int, error) {
	added := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, c := range cats {
			res, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO categories (name, type, description, is_active) VALUES (?, ?, ?, 1)`,
				c.Name, string(c.Type), nullString(c.Description))
			if err != nil {
				return err
			}
			added += int(affected(res))
		}
		return nil
	})
	if err != nil {
		return 0, storeErr("seed categories", err)
	}
	return added, nil
}
