package services

import (
	"context"
	"fmt"

	"beecommerce/internal/authz"
	"beecommerce/internal/domain"
	"beecommerce/internal/events"
	"beecommerce/internal/repos"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderService struct {
	DB       *sqlx.DB
	Orders   *repos.OrderRepo
	PageSize int
}

func NewOrderService(db *sqlx.DB, pageSize int) *OrderService {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &OrderService{DB: db, Orders: repos.NewOrderRepo(db), PageSize: pageSize}
}

// Checkout turns the user's cart into a pending order in one transaction:
// stock is re-checked and decremented, items are priced at the current
// product price, and the cart is emptied. Any failure leaves catalog, cart
// and orders exactly as they were.
func (s *OrderService) Checkout(ctx context.Context, userID string) (domain.Order, error) {
	var order domain.Order
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		carts := repos.NewCartRepo(tx)
		prods := repos.NewProductRepo(tx)
		orders := repos.NewOrderRepo(tx)

		cart, err := carts.EnsureCart(ctx, userID)
		if err != nil {
			return err
		}
		// Items come back in product id order, which is also the lock order.
		items, err := carts.Items(ctx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}

		lines := make([]domain.OrderItem, 0, len(items))
		total := decimal.Zero
		for _, it := range items {
			if it.Quantity < 1 {
				return fmt.Errorf("%w: cart line %s has quantity %d", ErrInvalidQuantityOrPrice, it.ID, it.Quantity)
			}
			p, err := availableProduct(ctx, prods, it.ProductID)
			if err != nil {
				return err
			}
			if p.Price.IsNegative() {
				return fmt.Errorf("%w: product %s has a negative price", ErrInvalidQuantityOrPrice, p.ID)
			}
			if it.Quantity > p.Stock {
				return &StockError{ProductID: p.ID, Requested: it.Quantity, Available: p.Stock}
			}
			line := domain.OrderItem{
				ID:          uuid.NewString(),
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    it.Quantity,
				Price:       p.Price,
			}
			total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			lines = append(lines, line)
		}

		order = domain.Order{
			ID:          uuid.NewString(),
			UserID:      userID,
			TotalAmount: domain.NewMoney(total),
			Status:      domain.StatusPending,
		}
		if err := orders.Create(ctx, &order); err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = order.ID
			if err := orders.InsertItem(ctx, lines[i]); err != nil {
				return err
			}
			ok, err := prods.DecrementStock(ctx, lines[i].ProductID, lines[i].Quantity)
			if err != nil {
				return err
			}
			if !ok {
				have, _ := repos.NewInventoryRepo(tx).Stock(ctx, lines[i].ProductID)
				return &StockError{ProductID: lines[i].ProductID, Requested: lines[i].Quantity, Available: have}
			}
		}
		if err := carts.Clear(ctx, cart.ID); err != nil {
			return err
		}
		order.Items = lines

		evLines := make([]events.Line, 0, len(lines))
		for _, l := range lines {
			evLines = append(evLines, events.Line{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price})
		}
		ev := events.New(events.OrderCreated, order.ID, map[string]any{
			"user_id":      userID,
			"total_amount": total.StringFixed(2),
			"items":        evLines,
		})
		return repos.NewOutboxRepo(tx).Insert(ctx, ev.EventID, ev.Type, order.ID, ev)
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, notFoundAs(err, ErrNotFound)
	}
	return o, nil
}

// List pages through orders newest first. An empty userID lists all orders.
func (s *OrderService) List(ctx context.Context, userID string, page int) ([]domain.Order, int, error) {
	if page < 1 {
		page = 1
	}
	n, err := s.Orders.Count(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	out, err := s.Orders.List(ctx, userID, s.PageSize, (page-1)*s.PageSize)
	if err != nil {
		return nil, 0, err
	}
	for i := range out {
		if out[i].Items, err = s.Orders.Items(ctx, out[i].ID); err != nil {
			return nil, 0, err
		}
	}
	return out, n, nil
}

func (s *OrderService) ListItems(ctx context.Context, userID string) ([]domain.OrderItem, error) {
	return s.Orders.ItemsByUser(ctx, userID)
}

// UpdateStatus moves an order forward along the fulfilment workflow.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, to domain.OrderStatus) (domain.Order, error) {
	return s.transition(ctx, id, to, func(domain.Order) error { return nil })
}

// Cancel lets the owner cancel their own pending order. Orders the caller
// may not cancel are reported as missing.
func (s *OrderService) Cancel(ctx context.Context, who authz.Identity, id string) (domain.Order, error) {
	return s.transition(ctx, id, domain.StatusCancelled, func(o domain.Order) error {
		if !authz.Can(who, authz.CancelOrder, authz.Resource{Kind: "order", OwnerID: o.UserID}) {
			return ErrNotFound
		}
		if o.Status != domain.StatusPending {
			return fmt.Errorf("%w: only pending orders can be cancelled by the customer", ErrInvalidTransition)
		}
		return nil
	})
}

// transition applies a status change; cancelling puts the items back in stock.
func (s *OrderService) transition(ctx context.Context, id string, to domain.OrderStatus, check func(domain.Order) error) (domain.Order, error) {
	var out domain.Order
	err := repos.WithTx(ctx, s.DB, func(tx *sqlx.Tx) error {
		orders := repos.NewOrderRepo(tx)
		o, err := orders.GetForUpdate(ctx, id)
		if err != nil {
			return notFoundAs(err, ErrNotFound)
		}
		if err := check(o); err != nil {
			return err
		}
		if !o.Status.CanTransition(to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
		}
		if to == domain.StatusCancelled {
			prods := repos.NewProductRepo(tx)
			for _, it := range o.Items {
				if err := prods.IncrementStock(ctx, it.ProductID, it.Quantity); err != nil {
					return err
				}
			}
		}
		if err := orders.UpdateStatus(ctx, id, to); err != nil {
			return err
		}
		ev := events.New(events.OrderStatusChanged, id, map[string]any{
			"from": o.Status,
			"to":   to,
		})
		if err := repos.NewOutboxRepo(tx).Insert(ctx, ev.EventID, ev.Type, id, ev); err != nil {
			return err
		}
		out, err = orders.Get(ctx, id)
		return err
	})
	return out, err
}
