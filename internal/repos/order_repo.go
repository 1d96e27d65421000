package repos

import (
	"context"

	"beecommerce/internal/domain"

	"github.com/jmoiron/sqlx"
)

type OrderRepo struct{ db sqlx.ExtContext }

func NewOrderRepo(db sqlx.ExtContext) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `id, user_id, total_amount, status, ordered_at, updated_at`

const orderItemSelect = `
  SELECT oi.id, oi.order_id, oi.product_id, p.name AS product_name, oi.quantity, oi.price
  FROM order_items oi
  JOIN products p ON p.id = oi.product_id`

// Create inserts the order header.
func (r *OrderRepo) Create(ctx context.Context, o *domain.Order) error {
	o.OrderedAt = now()
	o.UpdatedAt = o.OrderedAt
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO orders(id, user_id, total_amount, status, ordered_at, updated_at)
	  VALUES(?, ?, ?, ?, ?, ?)
	`), o.ID, o.UserID, o.TotalAmount.StringFixed(2), o.Status, o.OrderedAt, o.UpdatedAt)
	return err
}

// InsertItem inserts a single line item with its price snapshot.
func (r *OrderRepo) InsertItem(ctx context.Context, it domain.OrderItem) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO order_items(id, order_id, product_id, quantity, price)
	  VALUES(?, ?, ?, ?, ?)
	`), it.ID, it.OrderID, it.ProductID, it.Quantity, it.Price.StringFixed(2))
	return err
}

// Get loads an order with its items.
func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	if err := sqlx.GetContext(ctx, r.db, &o, r.db.Rebind(`SELECT `+orderCols+` FROM orders WHERE id = ?`), id); err != nil {
		return domain.Order{}, err
	}
	items, err := r.Items(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

// GetForUpdate row-locks the order header on PostgreSQL.
func (r *OrderRepo) GetForUpdate(ctx context.Context, id string) (domain.Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders WHERE id = ?`
	if isPostgres(r.db) {
		q += ` FOR UPDATE`
	}
	var o domain.Order
	if err := sqlx.GetContext(ctx, r.db, &o, r.db.Rebind(q), id); err != nil {
		return domain.Order{}, err
	}
	items, err := r.Items(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepo) Items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	out := []domain.OrderItem{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(orderItemSelect+`
	  WHERE oi.order_id = ?
	  ORDER BY oi.product_id
	`), orderID)
	return out, err
}

// List returns order headers, newest first; an empty userID lists everyone's.
func (r *OrderRepo) List(ctx context.Context, userID string, limit, offset int) ([]domain.Order, error) {
	where, args := "1 = 1", []any{}
	if userID != "" {
		where, args = "user_id = ?", append(args, userID)
	}
	args = append(args, limit, offset)
	out := []domain.Order{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(`
	  SELECT `+orderCols+` FROM orders
	  WHERE `+where+`
	  ORDER BY ordered_at DESC, id
	  LIMIT ? OFFSET ?
	`), args...)
	return out, err
}

func (r *OrderRepo) Count(ctx context.Context, userID string) (int, error) {
	where, args := "1 = 1", []any{}
	if userID != "" {
		where, args = "user_id = ?", append(args, userID)
	}
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(`SELECT COUNT(*) FROM orders WHERE `+where), args...)
	return n, err
}

// ItemsByUser lists the line items of every order the user placed.
func (r *OrderRepo) ItemsByUser(ctx context.Context, userID string) ([]domain.OrderItem, error) {
	out := []domain.OrderItem{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(orderItemSelect+`
	  JOIN orders o ON o.id = oi.order_id
	  WHERE o.user_id = ?
	  ORDER BY o.ordered_at DESC, oi.product_id
	`), userID)
	return out, err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`), status, now(), id)
	if err != nil {
		return err
	}
	return expectOne(res)
}
