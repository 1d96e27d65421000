package repos

import (
	"context"

	"beecommerce/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db sqlx.ExtContext }

func NewCartRepo(db sqlx.ExtContext) *CartRepo { return &CartRepo{db: db} }

// EnsureCart returns the user's cart, creating it on first access.
func (r *CartRepo) EnsureCart(ctx context.Context, userID string) (domain.Cart, error) {
	ts := now()
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO carts(id, user_id, created_at, updated_at)
	  VALUES(?, ?, ?, ?)
	  ON CONFLICT(user_id) DO NOTHING
	`), uuid.NewString(), userID, ts, ts); err != nil {
		return domain.Cart{}, err
	}
	var c domain.Cart
	err := sqlx.GetContext(ctx, r.db, &c, r.db.Rebind(`
	  SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = ?
	`), userID)
	return c, err
}

const cartItemSelect = `
  SELECT ci.id, ci.cart_id, ci.product_id, p.name AS product_name, p.price AS unit_price,
         ci.quantity, ci.added_at
  FROM cart_items ci
  JOIN products p ON p.id = ci.product_id`

// Items lists a cart's lines ordered by product id, the lock order used at checkout.
func (r *CartRepo) Items(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	out := []domain.CartItem{}
	err := sqlx.SelectContext(ctx, r.db, &out, r.db.Rebind(cartItemSelect+`
	  WHERE ci.cart_id = ?
	  ORDER BY ci.product_id
	`), cartID)
	return out, err
}

func (r *CartRepo) Item(ctx context.Context, cartID, itemID string) (domain.CartItem, error) {
	var it domain.CartItem
	err := sqlx.GetContext(ctx, r.db, &it, r.db.Rebind(cartItemSelect+`
	  WHERE ci.cart_id = ? AND ci.id = ?
	`), cartID, itemID)
	return it, err
}

// Quantity returns the quantity already in the cart for productID, 0 if none.
func (r *CartRepo) Quantity(ctx context.Context, cartID, productID string) (int, error) {
	var qty int
	err := sqlx.GetContext(ctx, r.db, &qty, r.db.Rebind(`
	  SELECT quantity FROM cart_items WHERE cart_id = ? AND product_id = ?
	`), cartID, productID)
	if IsNotFound(err) {
		return 0, nil
	}
	return qty, err
}

// AddItem inserts a line or accumulates onto the existing (cart, product) row.
func (r *CartRepo) AddItem(ctx context.Context, cartID, productID string, qty int) (domain.CartItem, error) {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO cart_items(id, cart_id, product_id, quantity, added_at)
	  VALUES(?, ?, ?, ?, ?)
	  ON CONFLICT(cart_id, product_id) DO UPDATE
	  SET quantity = cart_items.quantity + excluded.quantity
	`), uuid.NewString(), cartID, productID, qty, now()); err != nil {
		return domain.CartItem{}, err
	}
	if err := r.touch(ctx, cartID); err != nil {
		return domain.CartItem{}, err
	}
	var it domain.CartItem
	err := sqlx.GetContext(ctx, r.db, &it, r.db.Rebind(cartItemSelect+`
	  WHERE ci.cart_id = ? AND ci.product_id = ?
	`), cartID, productID)
	return it, err
}

func (r *CartRepo) SetQuantity(ctx context.Context, cartID, itemID string, qty int) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  UPDATE cart_items SET quantity = ? WHERE cart_id = ? AND id = ?
	`), qty, cartID, itemID)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) RemoveItem(ctx context.Context, cartID, itemID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE cart_id = ? AND id = ?`), cartID, itemID)
	if err != nil {
		return err
	}
	if err := expectOne(res); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

// Clear empties the cart; the cart row itself stays.
func (r *CartRepo) Clear(ctx context.Context, cartID string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_items WHERE cart_id = ?`), cartID); err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *CartRepo) touch(ctx context.Context, cartID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE carts SET updated_at = ? WHERE id = ?`), now(), cartID)
	return err
}
