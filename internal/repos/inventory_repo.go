package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type InventoryRepo struct{ db sqlx.ExtContext }

func NewInventoryRepo(db sqlx.ExtContext) *InventoryRepo { return &InventoryRepo{db: db} }

// Row used by the admin stock report
type InventoryRow struct {
	ProductID string `db:"product_id" json:"product_id"`
	Name      string `db:"name" json:"name"`
	Stock     int    `db:"stock" json:"stock"`
	Available bool   `db:"available" json:"available"`
}

// Low returns products at or below threshold, emptiest first.
func (r *InventoryRepo) Low(ctx context.Context, threshold int) ([]InventoryRow, error) {
	rows := []InventoryRow{}
	err := sqlx.SelectContext(ctx, r.db, &rows, r.db.Rebind(`
		SELECT id AS product_id, name, stock, available
		FROM products
		WHERE stock <= ?
		ORDER BY stock, name
	`), threshold)
	return rows, err
}

// Stock returns current stock for a product.
// If no row exists, it returns sql.ErrNoRows.
func (r *InventoryRepo) Stock(ctx context.Context, productID string) (int, error) {
	var qty int
	err := sqlx.GetContext(ctx, r.db, &qty, r.db.Rebind(`SELECT stock FROM products WHERE id = ?`), productID)
	return qty, err
}

// SetStock overwrites the stock level for a product (admin restock).
func (r *InventoryRepo) SetStock(ctx context.Context, productID string, qty int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE products SET stock = ?, updated_at = ? WHERE id = ?
	`), qty, now(), productID)
	if err != nil {
		return err
	}
	return expectOne(res)
}
