package repos

import (
	"context"

	"beecommerce/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CategoryRepo struct{ db sqlx.ExtContext }

func NewCategoryRepo(db sqlx.ExtContext) *CategoryRepo { return &CategoryRepo{db: db} }

const categoryCols = `id, name, slug, description, created_at, updated_at`

func (r *CategoryRepo) List(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	out := []domain.Category{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
	  SELECT `+categoryCols+`
	  FROM categories
	  ORDER BY name
	  LIMIT ? OFFSET ?
	`), limit, offset)
	return out, err
}

func (r *CategoryRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `SELECT COUNT(*) FROM categories`)
	return n, err
}

func (r *CategoryRepo) Get(ctx context.Context, id string) (domain.Category, error) {
	var c domain.Category
	err := sqlx.GetContext(ctx, r.db, &c, r.db.Rebind(`SELECT `+categoryCols+` FROM categories WHERE id = ?`), id)
	return c, err
}

// Taken reports whether another category already uses name or slug.
func (r *CategoryRepo) Taken(ctx context.Context, name, slug, exceptID string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`
	  SELECT COUNT(*) FROM categories
	  WHERE (LOWER(name) = LOWER(?) OR slug = ?) AND id <> ?
	`), name, slug, exceptID)
	return n > 0, err
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	c.CreatedAt = now()
	c.UpdatedAt = c.CreatedAt
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO categories(id, name, slug, description, created_at, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?)
	`), c.ID, c.Name, c.Slug, c.Description, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	c.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  UPDATE categories SET name = ?, slug = ?, description = ?, updated_at = ?
	  WHERE id = ?
	`), c.Name, c.Slug, c.Description, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Delete removes a category and detaches its products (category_id -> NULL).
// Run it inside a transaction so both writes land together.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  UPDATE products SET category_id = NULL, updated_at = ? WHERE category_id = ?
	`), now(), id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM categories WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
