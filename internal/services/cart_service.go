package services

import (
	"context"
	"fmt"

	"beecommerce/internal/domain"
	"beecommerce/internal/repos"
	"beecommerce/internal/validate"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type CartService struct {
	DB *sqlx.DB
}

func NewCartService(db *sqlx.DB) *CartService {
	return &CartService{DB: db}
}

// AddItem puts qty of a product in the user's cart, accumulating onto an
// existing line. The cumulative quantity may not exceed current stock.
// Stock itself is untouched until checkout.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, qty int) (domain.CartItem, error) {
	if !validate.Qty(qty) {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must be between 1 and 1000", ErrInvalidQuantityOrPrice)
	}
	var item domain.CartItem
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts := repos.NewCartRepo(tx)
		p, err := availableProduct(ctx, repos.NewProductRepo(tx), productID)
		if err != nil {
			return err
		}
		cart, err := carts.EnsureCart(ctx, userID)
		if err != nil {
			return err
		}
		have, err := carts.Quantity(ctx, cart.ID, productID)
		if err != nil {
			return err
		}
		if have+qty > p.Stock {
			return &StockError{ProductID: productID, Requested: have + qty, Available: p.Stock}
		}
		item, err = carts.AddItem(ctx, cart.ID, productID, qty)
		return err
	})
	return item, err
}

// SetQuantity overwrites the quantity of one of the user's cart lines.
func (s *CartService) SetQuantity(ctx context.Context, userID, itemID string, qty int) (domain.CartItem, error) {
	if !validate.Qty(qty) {
		return domain.CartItem{}, fmt.Errorf("%w: quantity must be between 1 and 1000", ErrInvalidQuantityOrPrice)
	}
	var item domain.CartItem
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts := repos.NewCartRepo(tx)
		cart, err := carts.EnsureCart(ctx, userID)
		if err != nil {
			return err
		}
		cur, err := carts.Item(ctx, cart.ID, itemID)
		if err != nil {
			return notFoundAs(err, ErrNotFound)
		}
		p, err := availableProduct(ctx, repos.NewProductRepo(tx), cur.ProductID)
		if err != nil {
			return err
		}
		if qty > p.Stock {
			return &StockError{ProductID: p.ID, Requested: qty, Available: p.Stock}
		}
		if err := carts.SetQuantity(ctx, cart.ID, itemID, qty); err != nil {
			return notFoundAs(err, ErrNotFound)
		}
		item, err = carts.Item(ctx, cart.ID, itemID)
		return err
	})
	return item, err
}

func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	return repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts := repos.NewCartRepo(tx)
		cart, err := carts.EnsureCart(ctx, userID)
		if err != nil {
			return err
		}
		return notFoundAs(carts.RemoveItem(ctx, cart.ID, itemID), ErrNotFound)
	})
}

func (s *CartService) Items(ctx context.Context, userID string) ([]domain.CartItem, error) {
	cart, err := s.View(ctx, userID)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// View returns the user's cart priced at current product prices.
func (s *CartService) View(ctx context.Context, userID string) (domain.Cart, error) {
	carts := repos.NewCartRepo(s.DB)
	cart, err := carts.EnsureCart(ctx, userID)
	if err != nil {
		return domain.Cart{}, err
	}
	if cart.Items, err = carts.Items(ctx, cart.ID); err != nil {
		return domain.Cart{}, err
	}
	cart.Total = domain.NewMoney(PriceTotal(cart.Items,
		func(it domain.CartItem) decimal.Decimal { return it.UnitPrice.Decimal },
		func(it domain.CartItem) int { return it.Quantity }))
	return cart, nil
}

// availableProduct treats unavailable products as missing.
func availableProduct(ctx context.Context, prods *repos.ProductRepo, id string) (domain.Product, error) {
	p, err := prods.GetForUpdate(ctx, id)
	if err != nil {
		return domain.Product{}, notFoundAs(err, ErrProductNotFound)
	}
	if !p.Available {
		return domain.Product{}, ErrProductNotFound
	}
	return p, nil
}
