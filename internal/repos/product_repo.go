package repos

import (
	"context"
	"database/sql"
	"strings"

	"beecommerce/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ProductRepo struct{ db sqlx.ExtContext }

func NewProductRepo(db sqlx.ExtContext) *ProductRepo { return &ProductRepo{db: db} }

const productSelect = `
  SELECT
    p.id, p.category_id, c.name AS category_name, c.slug AS category_slug,
    p.name, p.description, p.price, p.stock, p.available, p.created_at, p.updated_at
  FROM products p
  LEFT JOIN categories c ON c.id = p.category_id`

// priceExpr compares prices numerically; SQLite keeps them as text.
func (r *ProductRepo) priceExpr() string {
	if isPostgres(r.db) {
		return "p.price"
	}
	return "CAST(p.price AS REAL)"
}

func (r *ProductRepo) where(f domain.ProductFilter) (string, []any) {
	where := []string{"1 = 1"}
	args := []any{}
	if f.CategoryID != "" {
		where = append(where, "p.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.Available != nil {
		where = append(where, "p.available = ?")
		args = append(args, *f.Available)
	}
	if f.MinPrice != nil {
		where = append(where, r.priceExpr()+" >= ?")
		args = append(args, f.MinPrice.InexactFloat64())
	}
	if f.MaxPrice != nil {
		where = append(where, r.priceExpr()+" <= ?")
		args = append(args, f.MaxPrice.InexactFloat64())
	}
	if f.Search != "" {
		where = append(where, "(LOWER(p.name) LIKE ? OR LOWER(p.description) LIKE ?)")
		q := "%" + strings.ToLower(f.Search) + "%"
		args = append(args, q, q)
	}
	return strings.Join(where, " AND "), args
}

func (r *ProductRepo) orderBy(ordering string) string {
	dir := "ASC"
	if strings.HasPrefix(ordering, "-") {
		dir = "DESC"
		ordering = ordering[1:]
	}
	switch ordering {
	case "price":
		return r.priceExpr() + " " + dir + ", p.id"
	case "created_at":
		return "p.created_at " + dir + ", p.id"
	case "name":
		return "p.name " + dir + ", p.id"
	}
	return "p.name ASC, p.id"
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter, limit, offset int) ([]domain.Product, error) {
	where, args := r.where(f)
	args = append(args, limit, offset)
	out := []domain.Product{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(productSelect+`
	  WHERE `+where+`
	  ORDER BY `+r.orderBy(f.Ordering)+`
	  LIMIT ? OFFSET ?`), args...)
	return out, err
}

func (r *ProductRepo) Count(ctx context.Context, f domain.ProductFilter) (int, error) {
	where, args := r.where(f)
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM products p WHERE `+where), args...)
	return n, err
}

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, r.db.Rebind(productSelect+` WHERE p.id = ?`), id)
	return p, err
}

// GetForUpdate reads a product and, on PostgreSQL, row-locks it until the
// surrounding transaction ends. SQLite is already serialised by OpenDB.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (domain.Product, error) {
	if !isPostgres(r.db) {
		return r.Get(ctx, id)
	}
	var p domain.Product
	err := sqlx.GetContext(ctx, r.db, &p, r.db.Rebind(productSelect+` WHERE p.id = ? FOR UPDATE OF p`), id)
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, p *domain.Product) error {
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO products(id, category_id, name, description, price, stock, available, created_at, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), p.ID, p.CategoryID, p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.Available, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *ProductRepo) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = now()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  UPDATE products
	  SET category_id = ?, name = ?, description = ?, price = ?, stock = ?, available = ?, updated_at = ?
	  WHERE id = ?
	`), p.CategoryID, p.Name, p.Description, p.Price.StringFixed(2), p.Stock, p.Available, p.UpdatedAt, p.ID)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// DecrementStock subtracts qty only if enough stock remains. It reports
// false, without error, when the guard rejects the update.
func (r *ProductRepo) DecrementStock(ctx context.Context, id string, qty int) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  UPDATE products SET stock = stock - ?, updated_at = ?
	  WHERE id = ? AND stock >= ?
	`), qty, now(), id, qty)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (r *ProductRepo) IncrementStock(ctx context.Context, id string, qty int) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  UPDATE products SET stock = stock + ?, updated_at = ? WHERE id = ?
	`), qty, now(), id)
	return err
}

func (r *ProductRepo) Ordered(ctx context.Context, id string) (bool, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM order_items WHERE product_id = ?`), id)
	return n > 0, err
}

// Delete removes the product from every cart, then the product row.
// Callers must first check Ordered; order history keeps its references.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE product_id = ?`), id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM products WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRows
	}
	return nil
}
